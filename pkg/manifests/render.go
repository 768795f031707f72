package manifests

import (
	"fmt"
	"strings"

	"helm.sh/helm/v3/pkg/releaseutil"
	"sigs.k8s.io/yaml"

	"github.com/webui-adk/adkctl/pkg/values"
)

// RenderAll renders the complete manifest set for one release as a single
// multi-document YAML stream, ordered the way helm installs kinds. The
// ingress document is produced by its own renderer so annotation order and
// the TLS contract hold; everything else goes through the typed structs.
func RenderAll(v *values.Values) (string, error) {
	if err := v.Validate(); err != nil {
		return "", err
	}

	byKind := map[string][]string{}
	add := func(kind string, obj interface{}) error {
		data, err := yaml.Marshal(obj)
		if err != nil {
			return fmt.Errorf("error marshaling %s: %w", kind, err)
		}
		byKind[kind] = append(byKind[kind], string(data))
		return nil
	}

	if err := add("ServiceAccount", BuildServiceAccount(v)); err != nil {
		return "", err
	}
	if secret := BuildSecret(v); secret != nil {
		if err := add("Secret", secret); err != nil {
			return "", err
		}
	}
	pvc, err := BuildPVC(v)
	if err != nil {
		return "", err
	}
	if pvc != nil {
		if err := add("PersistentVolumeClaim", pvc); err != nil {
			return "", err
		}
	}
	if err := add("Service", BuildService(v)); err != nil {
		return "", err
	}
	deploy, err := BuildDeployment(v)
	if err != nil {
		return "", err
	}
	if err := add("Deployment", deploy); err != nil {
		return "", err
	}

	ingressDoc, err := v.IngressConfig().Render()
	if err != nil {
		return "", err
	}
	if ingressDoc != "" {
		byKind["Ingress"] = append(byKind["Ingress"], ingressDoc)
	}

	var sb strings.Builder
	for _, kind := range releaseutil.InstallOrder {
		for _, doc := range byKind[kind] {
			sb.WriteString("---\n")
			sb.WriteString(doc)
		}
	}
	return sb.String(), nil
}

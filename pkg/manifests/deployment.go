package manifests

import (
	"fmt"
	"sort"
	"strconv"

	appsv1 "k8s.io/api/apps/v1"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"sigs.k8s.io/yaml"

	"github.com/webui-adk/adkctl/pkg/values"
)

const dataMountPath = "/app/backend/data"

// BuildDeployment assembles the release pod: the web UI container with the
// ADK backend and Ollama proxy as sidecars sharing the pod network, which is
// why the UI reaches both over localhost.
func BuildDeployment(v *values.Values) (*appsv1.Deployment, error) {
	replicas := int32(v.ReplicaCount)
	if replicas == 0 {
		replicas = 1
	}

	podSpec := corev1.PodSpec{
		ServiceAccountName: v.ReleaseName,
		HostNetwork:        v.Local.HostNetwork,
		Containers: []corev1.Container{
			webUIContainer(v),
			adkBackendContainer(v),
			ollamaProxyContainer(v),
		},
	}
	if v.Persistence.Enabled {
		podSpec.Volumes = []corev1.Volume{{
			Name: "data",
			VolumeSource: corev1.VolumeSource{
				PersistentVolumeClaim: &corev1.PersistentVolumeClaimVolumeSource{
					ClaimName: dataClaimName(v),
				},
			},
		}}
	}
	affinity, err := nodeAffinity(v)
	if err != nil {
		return nil, err
	}
	podSpec.Affinity = affinity

	return &appsv1.Deployment{
		TypeMeta: metav1.TypeMeta{APIVersion: "apps/v1", Kind: "Deployment"},
		ObjectMeta: metav1.ObjectMeta{
			Name:   v.ReleaseName,
			Labels: releaseLabels(v),
		},
		Spec: appsv1.DeploymentSpec{
			Replicas: &replicas,
			Selector: &metav1.LabelSelector{MatchLabels: releaseLabels(v)},
			Template: corev1.PodTemplateSpec{
				ObjectMeta: metav1.ObjectMeta{Labels: releaseLabels(v)},
				Spec:       podSpec,
			},
		},
	}, nil
}

func webUIContainer(v *values.Values) corev1.Container {
	env := []corev1.EnvVar{
		{Name: "WEBUI_AUTH", Value: strconv.FormatBool(v.OpenWebUI.Auth.Enabled)},
		{Name: "OLLAMA_BASE_URL", Value: fmt.Sprintf("http://localhost:%d", v.OllamaProxy.Port)},
		{Name: "ADK_API_BASE_URL", Value: fmt.Sprintf("http://localhost:%d", v.ADKBackend.Port)},
	}
	if v.OpenWebUI.SSO.Enabled {
		env = append(env,
			corev1.EnvVar{Name: "ENABLE_OAUTH_SIGNUP", Value: "true"},
			corev1.EnvVar{Name: "OAUTH_PROVIDER_NAME", Value: v.OpenWebUI.SSO.ProviderName},
			secretEnv("OAUTH_CLIENT_ID", oauthSecretName(v), "clientId"),
			secretEnv("OAUTH_CLIENT_SECRET", oauthSecretName(v), "clientSecret"),
		)
	}
	if v.OpenWebUI.Admin.AutoCreate {
		env = append(env,
			secretEnv("ADMIN_USER_EMAIL", oauthSecretName(v), "adminEmail"),
			secretEnv("ADMIN_USER_PASSWORD", oauthSecretName(v), "adminPassword"),
		)
	}
	c := corev1.Container{
		Name:            "open-webui",
		Image:           v.OpenWebUI.Image.Ref(),
		ImagePullPolicy: corev1.PullPolicy(v.OpenWebUI.Image.PullPolicy),
		Ports:           []corev1.ContainerPort{{ContainerPort: int32(v.OpenWebUI.Service.Port), Name: "http"}},
		Env:             env,
	}
	if v.Persistence.Enabled {
		c.VolumeMounts = []corev1.VolumeMount{{Name: "data", MountPath: dataMountPath}}
	}
	return c
}

func adkBackendContainer(v *values.Values) corev1.Container {
	env := []corev1.EnvVar{
		{Name: "GOOGLE_CLOUD_PROJECT", Value: v.ADKBackend.GCP.Project},
		{Name: "GOOGLE_CLOUD_LOCATION", Value: v.ADKBackend.GCP.Region},
	}
	// extra env passthrough, sorted so renders stay byte-identical
	keys := make([]string, 0, len(v.ADKBackend.Env))
	for k := range v.ADKBackend.Env {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		env = append(env, corev1.EnvVar{Name: k, Value: v.ADKBackend.Env[k]})
	}
	return corev1.Container{
		Name:            "adk-backend",
		Image:           v.ADKBackend.Image.Ref(),
		ImagePullPolicy: corev1.PullPolicy(v.ADKBackend.Image.PullPolicy),
		Ports:           []corev1.ContainerPort{{ContainerPort: int32(v.ADKBackend.Port), Name: "adk"}},
		Env:             env,
	}
}

func ollamaProxyContainer(v *values.Values) corev1.Container {
	return corev1.Container{
		Name:            "ollama-proxy",
		Image:           v.OllamaProxy.Image.Ref(),
		ImagePullPolicy: corev1.PullPolicy(v.OllamaProxy.Image.PullPolicy),
		Ports:           []corev1.ContainerPort{{ContainerPort: int32(v.OllamaProxy.Port), Name: "ollama"}},
		Env:             []corev1.EnvVar{{Name: "LOG_LEVEL", Value: v.OllamaProxy.LogLevel}},
	}
}

func secretEnv(name, secret, key string) corev1.EnvVar {
	return corev1.EnvVar{
		Name: name,
		ValueFrom: &corev1.EnvVarSource{
			SecretKeyRef: &corev1.SecretKeySelector{
				LocalObjectReference: corev1.LocalObjectReference{Name: secret},
				Key:                  key,
			},
		},
	}
}

// nodeAffinity decodes the opaque nodeAffinity subtree into the typed form.
// The subtree is pass-through configuration: whatever the values file says
// lands in the pod spec unchanged.
func nodeAffinity(v *values.Values) (*corev1.Affinity, error) {
	if len(v.NodeAffinity) == 0 {
		return nil, nil
	}
	data, err := yaml.Marshal(v.NodeAffinity)
	if err != nil {
		return nil, fmt.Errorf("failed to encode nodeAffinity: %w", err)
	}
	var na corev1.NodeAffinity
	if err := yaml.Unmarshal(data, &na); err != nil {
		return nil, fmt.Errorf("invalid nodeAffinity block: %w", err)
	}
	return &corev1.Affinity{NodeAffinity: &na}, nil
}

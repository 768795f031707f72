package manifests

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	corev1 "k8s.io/api/core/v1"

	"github.com/webui-adk/adkctl/pkg/ingress"
	"github.com/webui-adk/adkctl/pkg/values"
)

func prodValues() *values.Values {
	return &values.Values{
		ReplicaCount: 2,
		ReleaseName:  "webui-adk-prod",
		Persistence: values.Persistence{
			Enabled:     true,
			Size:        "10Gi",
			AccessModes: []string{"ReadWriteOnce"},
		},
		OpenWebUI: values.OpenWebUI{
			Image:   values.Image{Repository: "ghcr.io/open-webui/open-webui", Tag: "v0.6.5"},
			Service: values.ServiceValues{Type: "ClusterIP", Port: 80},
			SSO:     values.SSO{Enabled: true, ProviderName: "google"},
			Admin:   values.AdminBootstrap{AutoCreate: true},
			Auth:    values.Auth{Enabled: true},
		},
		ADKBackend: values.ADKBackend{
			Image: values.Image{Repository: "us-docker.pkg.dev/adk/backend", Tag: "1.4.0"},
			Port:  8000,
			GCP: values.GCP{
				Project:        "adk-prod",
				Region:         "us-central1",
				ServiceAccount: "adk-backend@adk-prod.iam.gserviceaccount.com",
			},
			Env: map[string]string{"MODEL_NAME": "gemini-2.0-flash", "AGENT_NAME": "data-science"},
		},
		OllamaProxy: values.OllamaProxy{
			Image:    values.Image{Repository: "us-docker.pkg.dev/adk/ollama-proxy", Tag: "1.4.0"},
			Port:     11434,
			LogLevel: "info",
		},
		Ingress: ingress.Config{
			Enabled:   true,
			ClassName: "nginx",
			Host:      "app.example.com",
			TLS:       ingress.TLS{Enabled: true, SecretName: "app.example.com-tls-secret"},
		},
		OAuth: values.OAuth{ClientID: "client-123", ClientSecret: "secret-456"},
		Admin: values.Admin{Email: "admin@example.com", Password: "hunter2"},
	}
}

func TestRenderAllKindOrder(t *testing.T) {
	out, err := RenderAll(prodValues())
	require.NoError(t, err)

	order := []string{
		"kind: ServiceAccount",
		"kind: Secret",
		"kind: PersistentVolumeClaim",
		"kind: Service\n",
		"kind: Deployment",
		"kind: Ingress",
	}
	last := -1
	for _, marker := range order {
		idx := strings.Index(out, marker)
		require.NotEqual(t, -1, idx, "missing %q", marker)
		assert.Greater(t, idx, last, "%q rendered out of install order", marker)
		last = idx
	}
	assert.True(t, strings.HasPrefix(out, "---\n"))
}

func TestRenderAllIsIdempotent(t *testing.T) {
	first, err := RenderAll(prodValues())
	require.NoError(t, err)
	second, err := RenderAll(prodValues())
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestRenderAllSkipsDisabledIngress(t *testing.T) {
	v := prodValues()
	v.Ingress = ingress.Config{}
	out, err := RenderAll(v)
	require.NoError(t, err)
	assert.NotContains(t, out, "kind: Ingress")
}

func TestRenderAllRejectsInvalidValues(t *testing.T) {
	v := prodValues()
	v.Ingress.Host = ""
	_, err := RenderAll(v)
	require.Error(t, err)
	var verr *ingress.ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestBuildDeploymentSidecars(t *testing.T) {
	v := prodValues()
	deploy, err := BuildDeployment(v)
	require.NoError(t, err)

	containers := deploy.Spec.Template.Spec.Containers
	require.Len(t, containers, 3)
	assert.Equal(t, "open-webui", containers[0].Name)
	assert.Equal(t, "adk-backend", containers[1].Name)
	assert.Equal(t, "ollama-proxy", containers[2].Name)
	assert.Equal(t, "webui-adk-prod", deploy.Spec.Template.Spec.ServiceAccountName)
	assert.EqualValues(t, 2, *deploy.Spec.Replicas)

	webui := containers[0]
	assert.Contains(t, webui.Env, corev1.EnvVar{Name: "OLLAMA_BASE_URL", Value: "http://localhost:11434"})
	assert.Contains(t, webui.Env, corev1.EnvVar{Name: "ADK_API_BASE_URL", Value: "http://localhost:8000"})
	require.Len(t, webui.VolumeMounts, 1)
	assert.Equal(t, dataMountPath, webui.VolumeMounts[0].MountPath)

	adk := containers[1]
	assert.Contains(t, adk.Env, corev1.EnvVar{Name: "GOOGLE_CLOUD_PROJECT", Value: "adk-prod"})
	// passthrough env is sorted for stable renders
	var extra []string
	for _, e := range adk.Env {
		if e.Name == "AGENT_NAME" || e.Name == "MODEL_NAME" {
			extra = append(extra, e.Name)
		}
	}
	assert.Equal(t, []string{"AGENT_NAME", "MODEL_NAME"}, extra)
}

func TestBuildDeploymentSecretWiring(t *testing.T) {
	deploy, err := BuildDeployment(prodValues())
	require.NoError(t, err)

	var fromSecret []string
	for _, e := range deploy.Spec.Template.Spec.Containers[0].Env {
		if e.ValueFrom != nil && e.ValueFrom.SecretKeyRef != nil {
			assert.Equal(t, "webui-adk-prod-oauth", e.ValueFrom.SecretKeyRef.Name)
			fromSecret = append(fromSecret, e.Name)
		}
	}
	assert.ElementsMatch(t, []string{
		"OAUTH_CLIENT_ID", "OAUTH_CLIENT_SECRET", "ADMIN_USER_EMAIL", "ADMIN_USER_PASSWORD",
	}, fromSecret)
}

func TestBuildDeploymentHostNetwork(t *testing.T) {
	v := prodValues()
	v.Local.HostNetwork = true
	deploy, err := BuildDeployment(v)
	require.NoError(t, err)
	assert.True(t, deploy.Spec.Template.Spec.HostNetwork)
}

func TestBuildDeploymentNodeAffinity(t *testing.T) {
	v := prodValues()
	v.NodeAffinity = map[string]interface{}{
		"requiredDuringSchedulingIgnoredDuringExecution": map[string]interface{}{
			"nodeSelectorTerms": []interface{}{
				map[string]interface{}{
					"matchExpressions": []interface{}{
						map[string]interface{}{
							"key":      "cloud.google.com/gke-spot",
							"operator": "In",
							"values":   []interface{}{"true"},
						},
					},
				},
			},
		},
	}
	deploy, err := BuildDeployment(v)
	require.NoError(t, err)
	affinity := deploy.Spec.Template.Spec.Affinity
	require.NotNil(t, affinity)
	require.NotNil(t, affinity.NodeAffinity)
	terms := affinity.NodeAffinity.RequiredDuringSchedulingIgnoredDuringExecution.NodeSelectorTerms
	require.Len(t, terms, 1)
	assert.Equal(t, "cloud.google.com/gke-spot", terms[0].MatchExpressions[0].Key)
}

func TestBuildService(t *testing.T) {
	v := prodValues()
	svc := BuildService(v)
	assert.Equal(t, "webui-adk-prod-service", svc.Name)
	assert.Equal(t, corev1.ServiceTypeClusterIP, svc.Spec.Type)
	assert.EqualValues(t, 80, svc.Spec.Ports[0].Port)

	v.Local.ExposeServices = true
	assert.Equal(t, corev1.ServiceTypeLoadBalancer, BuildService(v).Spec.Type)
}

func TestBuildPVC(t *testing.T) {
	v := prodValues()
	pvc, err := BuildPVC(v)
	require.NoError(t, err)
	require.NotNil(t, pvc)
	assert.Equal(t, "webui-adk-prod-data", pvc.Name)
	size := pvc.Spec.Resources.Requests[corev1.ResourceStorage]
	assert.Equal(t, "10Gi", size.String())

	v.Persistence.Enabled = false
	pvc, err = BuildPVC(v)
	require.NoError(t, err)
	assert.Nil(t, pvc)

	v.Persistence.Enabled = true
	v.Persistence.Size = "ten gigs"
	_, err = BuildPVC(v)
	require.Error(t, err)
}

func TestBuildSecret(t *testing.T) {
	v := prodValues()
	secret := BuildSecret(v)
	require.NotNil(t, secret)
	assert.Equal(t, "webui-adk-prod-oauth", secret.Name)
	assert.Equal(t, "client-123", secret.StringData["clientId"])
	assert.Equal(t, "hunter2", secret.StringData["adminPassword"])

	v.OAuth = values.OAuth{}
	v.Admin = values.Admin{}
	assert.Nil(t, BuildSecret(v))
}

func TestBuildServiceAccountWorkloadIdentity(t *testing.T) {
	v := prodValues()
	sa := BuildServiceAccount(v)
	assert.Equal(t, "webui-adk-prod", sa.Name)
	assert.Equal(t,
		"adk-backend@adk-prod.iam.gserviceaccount.com",
		sa.Annotations[workloadIdentityAnnotation])

	v.ADKBackend.GCP.ServiceAccount = ""
	assert.Empty(t, BuildServiceAccount(v).Annotations)
}

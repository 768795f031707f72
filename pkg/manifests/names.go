package manifests

import "github.com/webui-adk/adkctl/pkg/values"

func serviceName(v *values.Values) string    { return v.ReleaseName + "-service" }
func dataClaimName(v *values.Values) string  { return v.ReleaseName + "-data" }
func oauthSecretName(v *values.Values) string { return v.ReleaseName + "-oauth" }

func releaseLabels(v *values.Values) map[string]string {
	return map[string]string{"app": v.ReleaseName}
}

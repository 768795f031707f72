package manifests

import (
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	"github.com/webui-adk/adkctl/pkg/values"
)

// BuildSecret carries the OAuth client pair and the admin bootstrap
// credentials. Returns nil when none of them are set, so a local render
// without secrets produces no empty Secret resource.
func BuildSecret(v *values.Values) *corev1.Secret {
	data := map[string]string{}
	if v.OAuth.ClientID != "" {
		data["clientId"] = v.OAuth.ClientID
	}
	if v.OAuth.ClientSecret != "" {
		data["clientSecret"] = v.OAuth.ClientSecret
	}
	if v.Admin.Email != "" {
		data["adminEmail"] = v.Admin.Email
	}
	if v.Admin.Password != "" {
		data["adminPassword"] = v.Admin.Password
	}
	if len(data) == 0 {
		return nil
	}
	return &corev1.Secret{
		TypeMeta: metav1.TypeMeta{APIVersion: "v1", Kind: "Secret"},
		ObjectMeta: metav1.ObjectMeta{
			Name:   oauthSecretName(v),
			Labels: releaseLabels(v),
		},
		Type:       corev1.SecretTypeOpaque,
		StringData: data,
	}
}

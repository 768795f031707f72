package manifests

import (
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	"github.com/webui-adk/adkctl/pkg/values"
)

const workloadIdentityAnnotation = "iam.gke.io/gcp-service-account"

// BuildServiceAccount binds the pod to a GCP identity through Workload
// Identity when adkBackend.gcp.serviceAccount is set. The account is created
// either way: the deployment references it by release name.
func BuildServiceAccount(v *values.Values) *corev1.ServiceAccount {
	sa := &corev1.ServiceAccount{
		TypeMeta: metav1.TypeMeta{APIVersion: "v1", Kind: "ServiceAccount"},
		ObjectMeta: metav1.ObjectMeta{
			Name:   v.ReleaseName,
			Labels: releaseLabels(v),
		},
	}
	if v.ADKBackend.GCP.ServiceAccount != "" {
		sa.Annotations = map[string]string{
			workloadIdentityAnnotation: v.ADKBackend.GCP.ServiceAccount,
		}
	}
	return sa
}

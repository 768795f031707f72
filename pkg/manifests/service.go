package manifests

import (
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/util/intstr"

	"github.com/webui-adk/adkctl/pkg/values"
)

// BuildService exposes the web UI container. The service type comes from the
// values, except that local.exposeServices forces LoadBalancer so a dev
// cluster hands out a reachable address.
func BuildService(v *values.Values) *corev1.Service {
	svcType := corev1.ServiceType(v.OpenWebUI.Service.Type)
	if svcType == "" {
		svcType = corev1.ServiceTypeClusterIP
	}
	if v.Local.ExposeServices {
		svcType = corev1.ServiceTypeLoadBalancer
	}
	return &corev1.Service{
		TypeMeta: metav1.TypeMeta{APIVersion: "v1", Kind: "Service"},
		ObjectMeta: metav1.ObjectMeta{
			Name:   serviceName(v),
			Labels: releaseLabels(v),
		},
		Spec: corev1.ServiceSpec{
			Type:     svcType,
			Selector: releaseLabels(v),
			Ports: []corev1.ServicePort{{
				Name:       "http",
				Port:       int32(v.OpenWebUI.Service.Port),
				TargetPort: intstr.FromString("http"),
			}},
		},
	}
}

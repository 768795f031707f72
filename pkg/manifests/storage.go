package manifests

import (
	"fmt"

	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/api/resource"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	"github.com/webui-adk/adkctl/pkg/values"
)

// BuildPVC returns the data claim, or nil when persistence is disabled.
func BuildPVC(v *values.Values) (*corev1.PersistentVolumeClaim, error) {
	if !v.Persistence.Enabled {
		return nil, nil
	}
	size, err := resource.ParseQuantity(v.Persistence.Size)
	if err != nil {
		return nil, fmt.Errorf("invalid persistence.size %q: %w", v.Persistence.Size, err)
	}
	modes := []corev1.PersistentVolumeAccessMode{corev1.ReadWriteOnce}
	if len(v.Persistence.AccessModes) > 0 {
		modes = modes[:0]
		for _, m := range v.Persistence.AccessModes {
			modes = append(modes, corev1.PersistentVolumeAccessMode(m))
		}
	}
	pvc := &corev1.PersistentVolumeClaim{
		TypeMeta: metav1.TypeMeta{APIVersion: "v1", Kind: "PersistentVolumeClaim"},
		ObjectMeta: metav1.ObjectMeta{
			Name:   dataClaimName(v),
			Labels: releaseLabels(v),
		},
		Spec: corev1.PersistentVolumeClaimSpec{
			AccessModes: modes,
			Resources: corev1.VolumeResourceRequirements{
				Requests: corev1.ResourceList{corev1.ResourceStorage: size},
			},
		},
	}
	if v.Persistence.StorageClass != "" {
		sc := v.Persistence.StorageClass
		pvc.Spec.StorageClassName = &sc
	}
	return pvc, nil
}

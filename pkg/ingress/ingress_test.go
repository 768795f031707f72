package ingress

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"
)

func validConfig() Config {
	return Config{
		Enabled:     true,
		ReleaseName: "webui-adk-prod",
		ClassName:   "nginx",
		Host:        "app.example.com",
		Annotations: Annotations{
			{Key: "nginx.ingress.kubernetes.io/proxy-body-size", Value: "0"},
		},
		TLS:         TLS{Enabled: true, SecretName: "app.example.com-tls-secret"},
		ServicePort: 80,
	}
}

func parseManifest(t *testing.T, doc string) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, yaml.Unmarshal([]byte(doc), &out))
	return out
}

func dig(t *testing.T, m map[string]interface{}, keys ...string) interface{} {
	t.Helper()
	var current interface{} = m
	for _, key := range keys {
		asMap, ok := current.(map[string]interface{})
		require.True(t, ok, "expected mapping at %q", key)
		current, ok = asMap[key]
		require.True(t, ok, "missing key %q", key)
	}
	return current
}

func firstItem(t *testing.T, v interface{}) map[string]interface{} {
	t.Helper()
	seq, ok := v.([]interface{})
	require.True(t, ok, "expected sequence")
	require.Len(t, seq, 1)
	entry, ok := seq[0].(map[string]interface{})
	require.True(t, ok, "expected mapping entry")
	return entry
}

func TestRenderDisabledProducesNothing(t *testing.T) {
	// disabled wins over everything else, even inconsistent leftovers
	cfg := Config{
		Enabled:     false,
		Host:        "",
		ReleaseName: "",
		ServicePort: -1,
		TLS:         TLS{Enabled: true, SecretName: ""},
	}
	out, err := cfg.Render()
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestRenderWithoutTLS(t *testing.T) {
	cfg := validConfig()
	cfg.TLS = TLS{}
	out, err := cfg.Render()
	require.NoError(t, err)

	m := parseManifest(t, out)
	assert.Equal(t, "networking.k8s.io/v1", dig(t, m, "apiVersion"))
	assert.Equal(t, "Ingress", dig(t, m, "kind"))

	spec, ok := dig(t, m, "spec").(map[string]interface{})
	require.True(t, ok)
	_, hasTLS := spec["tls"]
	assert.False(t, hasTLS, "tls block must be omitted entirely when disabled")

	rule := firstItem(t, spec["rules"])
	assert.Equal(t, "app.example.com", rule["host"])
}

func TestRenderRuleAndBackend(t *testing.T) {
	cfg := validConfig()
	cfg.TLS = TLS{}
	out, err := cfg.Render()
	require.NoError(t, err)

	m := parseManifest(t, out)
	rule := firstItem(t, dig(t, m, "spec", "rules"))
	httpBlock, ok := rule["http"].(map[string]interface{})
	require.True(t, ok)
	path := firstItem(t, httpBlock["paths"])
	assert.Equal(t, "/", path["path"])
	assert.Equal(t, "Prefix", path["pathType"])

	service := dig(t, path, "backend", "service").(map[string]interface{})
	assert.Equal(t, "webui-adk-prod-service", service["name"])
	assert.Equal(t, 80, dig(t, service, "port", "number"))
}

func TestRenderWithTLS(t *testing.T) {
	cfg := validConfig()
	out, err := cfg.Render()
	require.NoError(t, err)

	m := parseManifest(t, out)
	assert.Equal(t, "webui-adk-prod-ingress", dig(t, m, "metadata", "name"))
	assert.Equal(t, "nginx", dig(t, m, "spec", "ingressClassName"))

	tlsEntry := firstItem(t, dig(t, m, "spec", "tls"))
	assert.Equal(t, []interface{}{"app.example.com"}, tlsEntry["hosts"])
	assert.Equal(t, "app.example.com-tls-secret", tlsEntry["secretName"])

	anns, ok := dig(t, m, "metadata", "annotations").(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "letsencrypt-prod", anns[ClusterIssuerAnnotation])
	assert.Equal(t, "0", anns["nginx.ingress.kubernetes.io/proxy-body-size"])
}

func TestRenderIsIdempotent(t *testing.T) {
	cfg := validConfig()
	first, err := cfg.Render()
	require.NoError(t, err)
	second, err := cfg.Render()
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestRenderPreservesAnnotationOrder(t *testing.T) {
	cfg := validConfig()
	cfg.TLS = TLS{}
	cfg.Annotations = Annotations{
		{Key: "zz.example.com/last-in-map-order", Value: "1"},
		{Key: "aa.example.com/first-in-map-order", Value: "2"},
		{Key: "mm.example.com/middle", Value: "3"},
	}
	out, err := cfg.Render()
	require.NoError(t, err)

	zz := strings.Index(out, "zz.example.com/last-in-map-order")
	aa := strings.Index(out, "aa.example.com/first-in-map-order")
	mm := strings.Index(out, "mm.example.com/middle")
	require.NotEqual(t, -1, zz)
	require.NotEqual(t, -1, aa)
	require.NotEqual(t, -1, mm)
	assert.Less(t, zz, aa, "annotations must render in input order")
	assert.Less(t, aa, mm, "annotations must render in input order")
}

func TestRenderCallerClusterIssuerWins(t *testing.T) {
	cfg := validConfig()
	cfg.Annotations = Annotations{
		{Key: ClusterIssuerAnnotation, Value: "letsencrypt-staging"},
	}
	out, err := cfg.Render()
	require.NoError(t, err)

	assert.Equal(t, 1, strings.Count(out, ClusterIssuerAnnotation))
	anns := dig(t, parseManifest(t, out), "metadata", "annotations").(map[string]interface{})
	assert.Equal(t, "letsencrypt-staging", anns[ClusterIssuerAnnotation])
}

func TestRenderOmitsEmptyAnnotations(t *testing.T) {
	cfg := validConfig()
	cfg.TLS = TLS{}
	cfg.Annotations = nil
	out, err := cfg.Render()
	require.NoError(t, err)

	meta := dig(t, parseManifest(t, out), "metadata").(map[string]interface{})
	_, has := meta["annotations"]
	assert.False(t, has, "empty annotation set must not render an annotations key")
}

func TestValidation(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"empty host", func(c *Config) { c.Host = "" }, "host"},
		{"empty secret with tls", func(c *Config) { c.TLS.SecretName = "" }, "tls.secretName"},
		{"tls without ingress", func(c *Config) { c.Enabled = false }, "tls.enabled"},
		{"empty class", func(c *Config) { c.ClassName = "" }, "className"},
		{"empty release", func(c *Config) { c.ReleaseName = "  " }, "releaseName"},
		{"bad port", func(c *Config) { c.ServicePort = 0 }, "servicePort"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, tc.field, verr.Field)
		})
	}
}

func TestRenderPropagatesValidation(t *testing.T) {
	cfg := validConfig()
	cfg.Host = ""
	out, err := cfg.Render()
	require.Error(t, err)
	assert.Empty(t, out, "no partial output on validation failure")
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "host", verr.Field)
}

func TestAnnotationsUnmarshalKeepsOrder(t *testing.T) {
	doc := "zebra: one\nalpha: two\nmike: three\n"
	var anns Annotations
	require.NoError(t, yaml.Unmarshal([]byte(doc), &anns))
	require.Len(t, anns, 3)
	assert.Equal(t, "zebra", anns[0].Key)
	assert.Equal(t, "alpha", anns[1].Key)
	assert.Equal(t, "mike", anns[2].Key)
	assert.Equal(t, "two", anns[1].Value)
}

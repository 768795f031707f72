package ingress

import (
	"fmt"
	"strconv"
	"strings"

	"go.yaml.in/yaml/v3"
)

const (
	// ClusterIssuerAnnotation is synthesized whenever TLS is enabled, so
	// cert-manager provisions the certificate for the rendered host.
	ClusterIssuerAnnotation = "cert-manager.io/cluster-issuer"
	DefaultClusterIssuer    = "letsencrypt-prod"
)

// Renderer produces one manifest document, or an empty string when the
// resource is disabled.
type Renderer interface {
	Name() string
	Render() (string, error)
}

// Annotation is one metadata annotation. Annotations are kept as a slice
// instead of a map so that rendering follows the order of the values file.
type Annotation struct {
	Key   string
	Value string
}

type Annotations []Annotation

// UnmarshalYAML keeps document order, which map decoding would lose.
func (a *Annotations) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.MappingNode {
		return fmt.Errorf("annotations must be a mapping, got %v at line %d", value.Kind, value.Line)
	}
	out := make(Annotations, 0, len(value.Content)/2)
	for i := 0; i+1 < len(value.Content); i += 2 {
		key := value.Content[i]
		val := value.Content[i+1]
		if key.Kind != yaml.ScalarNode || val.Kind != yaml.ScalarNode {
			return fmt.Errorf("annotation entries must be scalar key/value pairs at line %d", key.Line)
		}
		out = append(out, Annotation{Key: key.Value, Value: val.Value})
	}
	*a = out
	return nil
}

func (a Annotations) MarshalYAML() (interface{}, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, ann := range a {
		node.Content = append(node.Content, strNode(ann.Key), strNode(ann.Value))
	}
	return node, nil
}

// Get returns the value for key and whether the key is present.
func (a Annotations) Get(key string) (string, bool) {
	for _, ann := range a {
		if ann.Key == key {
			return ann.Value, true
		}
	}
	return "", false
}

// Set updates key in place if present, otherwise appends it.
func (a Annotations) Set(key, value string) Annotations {
	for i, ann := range a {
		if ann.Key == key {
			a[i].Value = value
			return a
		}
	}
	return append(a, Annotation{Key: key, Value: value})
}

type TLS struct {
	Enabled    bool   `yaml:"enabled"`
	SecretName string `yaml:"secretName"`
}

// Config is everything the ingress renderer needs, fully resolved: any
// placeholder substitution happens before a Config is constructed.
type Config struct {
	Enabled     bool        `yaml:"enabled"`
	ReleaseName string      `yaml:"-"`
	ClassName   string      `yaml:"className"`
	Host        string      `yaml:"host"`
	Annotations Annotations `yaml:"annotations"`
	TLS         TLS         `yaml:"tls"`
	ServicePort int         `yaml:"-"`
}

// ValidationError reports a Config field that fails the render contract.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid ingress config: %s %s", e.Field, e.Reason)
}

func (c Config) Name() string {
	return c.ReleaseName + "-ingress"
}

func (c Config) serviceName() string {
	return c.ReleaseName + "-service"
}

// Validate checks the invariants that must hold before rendering. A disabled
// ingress with TLS still on is rejected rather than silently dropped.
func (c Config) Validate() error {
	if c.TLS.Enabled && !c.Enabled {
		return &ValidationError{Field: "tls.enabled", Reason: "requires ingress.enabled"}
	}
	if !c.Enabled {
		return nil
	}
	if strings.TrimSpace(c.ReleaseName) == "" {
		return &ValidationError{Field: "releaseName", Reason: "must not be empty"}
	}
	if c.ClassName == "" {
		return &ValidationError{Field: "className", Reason: "must not be empty when ingress is enabled"}
	}
	if c.Host == "" {
		return &ValidationError{Field: "host", Reason: "must not be empty when ingress is enabled"}
	}
	if c.ServicePort <= 0 {
		return &ValidationError{Field: "servicePort", Reason: "must be a positive port number"}
	}
	if c.TLS.Enabled && c.TLS.SecretName == "" {
		return &ValidationError{Field: "tls.secretName", Reason: "must not be empty when tls is enabled"}
	}
	return nil
}

// Render maps the config to a networking.k8s.io/v1 Ingress manifest. It is a
// pure function: same config in, byte-identical document out. A disabled
// config renders to the empty string without error.
//
// The document is assembled as a yaml node tree and serialized once, so the
// optional blocks (annotations, tls) are either fully present or absent and
// annotation order survives serialization.
func (c Config) Render() (string, error) {
	if !c.Enabled {
		return "", nil
	}
	if err := c.Validate(); err != nil {
		return "", err
	}

	metadata := mapNode()
	addPair(metadata, "name", strNode(c.Name()))
	if anns := c.renderedAnnotations(); len(anns) > 0 {
		annNode := mapNode()
		for _, ann := range anns {
			addPair(annNode, ann.Key, strNode(ann.Value))
		}
		addPair(metadata, "annotations", annNode)
	}

	spec := mapNode()
	addPair(spec, "ingressClassName", strNode(c.ClassName))
	if c.TLS.Enabled {
		entry := mapNode()
		addPair(entry, "hosts", seqNode(strNode(c.Host)))
		addPair(entry, "secretName", strNode(c.TLS.SecretName))
		addPair(spec, "tls", seqNode(entry))
	}
	addPair(spec, "rules", seqNode(c.ruleNode()))

	root := mapNode()
	addPair(root, "apiVersion", strNode("networking.k8s.io/v1"))
	addPair(root, "kind", strNode("Ingress"))
	addPair(root, "metadata", metadata)
	addPair(root, "spec", spec)

	var sb strings.Builder
	enc := yaml.NewEncoder(&sb)
	enc.SetIndent(2)
	if err := enc.Encode(root); err != nil {
		return "", fmt.Errorf("error encoding ingress manifest: %w", err)
	}
	if err := enc.Close(); err != nil {
		return "", fmt.Errorf("error encoding ingress manifest: %w", err)
	}
	return sb.String(), nil
}

// renderedAnnotations appends the cluster-issuer annotation when TLS is on.
// A caller-supplied value for the same key wins over the synthesized one.
func (c Config) renderedAnnotations() Annotations {
	anns := make(Annotations, len(c.Annotations))
	copy(anns, c.Annotations)
	if !c.TLS.Enabled {
		return anns
	}
	if _, ok := anns.Get(ClusterIssuerAnnotation); ok {
		return anns
	}
	return append(anns, Annotation{Key: ClusterIssuerAnnotation, Value: DefaultClusterIssuer})
}

func (c Config) ruleNode() *yaml.Node {
	service := mapNode()
	addPair(service, "name", strNode(c.serviceName()))
	port := mapNode()
	addPair(port, "number", intNode(c.ServicePort))
	addPair(service, "port", port)

	backend := mapNode()
	addPair(backend, "service", service)

	path := mapNode()
	addPair(path, "path", strNode("/"))
	addPair(path, "pathType", strNode("Prefix"))
	addPair(path, "backend", backend)

	http := mapNode()
	addPair(http, "paths", seqNode(path))

	rule := mapNode()
	addPair(rule, "host", strNode(c.Host))
	addPair(rule, "http", http)
	return rule
}

func mapNode() *yaml.Node {
	return &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
}

func seqNode(items ...*yaml.Node) *yaml.Node {
	return &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq", Content: items}
}

func strNode(s string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: s}
}

func intNode(i int) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: strconv.Itoa(i)}
}

func addPair(m *yaml.Node, key string, value *yaml.Node) {
	m.Content = append(m.Content, strNode(key), value)
}

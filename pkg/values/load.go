package values

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"go.yaml.in/yaml/v3"
	"helm.sh/helm/v3/pkg/chartutil"
	"helm.sh/helm/v3/pkg/strvals"

	"github.com/webui-adk/adkctl/pkg/ingress"
)

// Options controls loading. Lookup defaults to the process environment; a
// test can inject its own.
type Options struct {
	Set    []string
	Expand ExpandPolicy
	Lookup func(string) (string, bool)
}

// Load reads the base values file plus any override files, merges them
// last-wins, applies --set overrides, and expands ${VAR} placeholders.
// Later files override earlier ones per key; --set is applied after all
// files. Annotation order follows the values files: keys keep the position
// of their first appearance, overrides only replace the value.
func Load(paths []string, opts Options) (*Values, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("no values files given")
	}
	if opts.Lookup == nil {
		opts.Lookup = os.LookupEnv
	}

	merged := map[string]interface{}{}
	var order ingress.Annotations
	for _, path := range paths {
		root, err := parseFile(path)
		if err != nil {
			return nil, err
		}
		tree := make(map[string]interface{})
		if root != nil {
			if err := decodeMappingNode(root, tree); err != nil {
				return nil, fmt.Errorf("failed to parse %s: %w", path, err)
			}
			order = mergeAnnotationOrder(order, root)
		}
		merged = chartutil.CoalesceTables(tree, merged)
	}

	for _, s := range opts.Set {
		if err := strvals.ParseInto(s, merged); err != nil {
			return nil, fmt.Errorf("failed parsing --set %q: %w", s, err)
		}
	}

	if err := expandTree(merged, opts.Lookup, opts.Expand); err != nil {
		return nil, err
	}

	vals, err := decode(merged)
	if err != nil {
		return nil, err
	}
	vals.Ingress.Annotations = syncAnnotations(order, merged)
	return vals, nil
}

// parseFile returns the root mapping node of the document, or nil for an
// empty file. A missing override file is an error, unlike the base chart
// behavior: environment overrides are named explicitly on the command line.
func parseFile(path string) (*yaml.Node, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read values file %s: %w", path, err)
	}
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if root.Kind != yaml.DocumentNode || len(root.Content) == 0 {
		return nil, nil
	}
	top := root.Content[0]
	if top.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("values file %s must contain a mapping at the top level", path)
	}
	return top, nil
}

// decodeMappingNode converts a mapping node into nested maps the way helm's
// coalescing expects them.
func decodeMappingNode(node *yaml.Node, result map[string]interface{}) error {
	if len(node.Content)%2 != 0 {
		return fmt.Errorf("invalid mapping node: odd number of elements")
	}
	for i := 0; i < len(node.Content); i += 2 {
		keyNode := node.Content[i]
		valueNode := node.Content[i+1]
		if keyNode.Kind != yaml.ScalarNode {
			return fmt.Errorf("non-scalar key found at line %d", keyNode.Line)
		}
		var value interface{}
		switch valueNode.Kind {
		case yaml.MappingNode:
			nested := make(map[string]interface{})
			if err := decodeMappingNode(valueNode, nested); err != nil {
				return err
			}
			value = nested
		default:
			if err := valueNode.Decode(&value); err != nil {
				return err
			}
		}
		result[keyNode.Value] = value
	}
	return nil
}

// mergeAnnotationOrder folds the ingress.annotations block of one file into
// the running order: existing keys keep their slot, new keys append.
func mergeAnnotationOrder(order ingress.Annotations, root *yaml.Node) ingress.Annotations {
	annotations := childMapping(childMapping(root, "ingress"), "annotations")
	if annotations == nil {
		return order
	}
	for i := 0; i+1 < len(annotations.Content); i += 2 {
		key := annotations.Content[i]
		val := annotations.Content[i+1]
		if key.Kind != yaml.ScalarNode || val.Kind != yaml.ScalarNode {
			continue
		}
		order = order.Set(key.Value, val.Value)
	}
	return order
}

func childMapping(node *yaml.Node, key string) *yaml.Node {
	if node == nil || node.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Kind == yaml.ScalarNode && node.Content[i].Value == key {
			if node.Content[i+1].Kind == yaml.MappingNode {
				return node.Content[i+1]
			}
			return nil
		}
	}
	return nil
}

// syncAnnotations reconciles the file-derived order with the merged tree,
// which is authoritative for content: --set can add, change, or clear keys
// the files never mention. Keys added only via --set append in sorted order
// for determinism.
func syncAnnotations(order ingress.Annotations, merged map[string]interface{}) ingress.Annotations {
	content := annotationTable(merged)
	var out ingress.Annotations
	for _, ann := range order {
		if v, ok := content[ann.Key]; ok {
			out = append(out, ingress.Annotation{Key: ann.Key, Value: v})
			delete(content, ann.Key)
		}
	}
	extra := make([]string, 0, len(content))
	for k := range content {
		extra = append(extra, k)
	}
	sort.Strings(extra)
	for _, k := range extra {
		out = append(out, ingress.Annotation{Key: k, Value: content[k]})
	}
	return out
}

func annotationTable(merged map[string]interface{}) map[string]string {
	out := map[string]string{}
	ing, ok := merged["ingress"].(map[string]interface{})
	if !ok {
		return out
	}
	anns, ok := ing["annotations"].(map[string]interface{})
	if !ok {
		return out
	}
	for k, v := range anns {
		out[k] = fmt.Sprintf("%v", v)
	}
	return out
}

// decode round-trips the merged tree through yaml into the typed surface.
// Unrecognized keys are dropped here, matching chart behavior for unknown
// values.
func decode(merged map[string]interface{}) (*Values, error) {
	data, err := yaml.Marshal(merged)
	if err != nil {
		return nil, fmt.Errorf("failed to re-encode merged values: %w", err)
	}
	var vals Values
	if err := yaml.Unmarshal(data, &vals); err != nil {
		return nil, fmt.Errorf("failed to decode merged values: %w", err)
	}
	if vals.ReleaseName != "" {
		vals.ReleaseName = strings.TrimSpace(vals.ReleaseName)
	}
	return &vals, nil
}

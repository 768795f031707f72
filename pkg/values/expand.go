package values

import (
	"fmt"
	"regexp"
)

// ExpandPolicy decides what happens to a ${VAR} placeholder with no value in
// the environment.
type ExpandPolicy int

const (
	// ExpandStrict rejects unresolved placeholders. This is the default: a
	// secret that never got substituted should fail the render, not ship.
	ExpandStrict ExpandPolicy = iota
	// ExpandPassthrough keeps unresolved placeholders verbatim, for callers
	// that run a later substitution step of their own.
	ExpandPassthrough
)

var placeholderPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// expandTree resolves ${VAR} placeholders in every string value of the
// merged tree, in place. Keys are never expanded.
func expandTree(tree map[string]interface{}, lookup func(string) (string, bool), policy ExpandPolicy) error {
	for k, v := range tree {
		expanded, err := expandValue(v, lookup, policy)
		if err != nil {
			return fmt.Errorf("in key %q: %w", k, err)
		}
		tree[k] = expanded
	}
	return nil
}

func expandValue(v interface{}, lookup func(string) (string, bool), policy ExpandPolicy) (interface{}, error) {
	switch val := v.(type) {
	case string:
		return expandString(val, lookup, policy)
	case map[string]interface{}:
		if err := expandTree(val, lookup, policy); err != nil {
			return nil, err
		}
		return val, nil
	case []interface{}:
		for i, item := range val {
			expanded, err := expandValue(item, lookup, policy)
			if err != nil {
				return nil, err
			}
			val[i] = expanded
		}
		return val, nil
	default:
		return v, nil
	}
}

func expandString(s string, lookup func(string) (string, bool), policy ExpandPolicy) (string, error) {
	var missing string
	out := placeholderPattern.ReplaceAllStringFunc(s, func(token string) string {
		name := placeholderPattern.FindStringSubmatch(token)[1]
		if value, ok := lookup(name); ok {
			return value
		}
		if missing == "" {
			missing = name
		}
		return token
	})
	if missing != "" && policy == ExpandStrict {
		return "", fmt.Errorf("unresolved placeholder ${%s}", missing)
	}
	return out, nil
}

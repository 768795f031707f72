package values

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandNestedTrees(t *testing.T) {
	tree := map[string]interface{}{
		"oauth": map[string]interface{}{
			"clientId": "${CLIENT}",
		},
		"list": []interface{}{"${CLIENT}", 42, "plain"},
		"mixed": "prefix-${CLIENT}-suffix",
		"count": 3,
	}
	lookup := testLookup(map[string]string{"CLIENT": "abc"})
	require.NoError(t, expandTree(tree, lookup, ExpandStrict))

	oauth := tree["oauth"].(map[string]interface{})
	assert.Equal(t, "abc", oauth["clientId"])
	assert.Equal(t, []interface{}{"abc", 42, "plain"}, tree["list"])
	assert.Equal(t, "prefix-abc-suffix", tree["mixed"])
	assert.Equal(t, 3, tree["count"])
}

func TestExpandStrictNamesTheVariable(t *testing.T) {
	tree := map[string]interface{}{"secret": "${MISSING_SECRET}"}
	err := expandTree(tree, testLookup(nil), ExpandStrict)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MISSING_SECRET")
}

func TestExpandIgnoresNonPlaceholderDollars(t *testing.T) {
	tree := map[string]interface{}{
		"a": "$HOME",
		"b": "${not-a-name}",
		"c": "cost is $5",
	}
	require.NoError(t, expandTree(tree, testLookup(nil), ExpandStrict))
	assert.Equal(t, "$HOME", tree["a"])
	assert.Equal(t, "${not-a-name}", tree["b"])
	assert.Equal(t, "cost is $5", tree["c"])
}

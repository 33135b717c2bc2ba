package pathlang

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/mapengine/jsontree"
)

func mustParse(t *testing.T, text string) jsontree.Node {
	t.Helper()
	n, err := jsontree.Parse([]byte(text))
	require.NoError(t, err)
	return n
}

func TestCompile_StripsRootMarker(t *testing.T) {
	p, err := Compile("$.assessmentId")
	require.NoError(t, err)
	assert.Equal(t, 1, p.Len())
	assert.Equal(t, "$.assessmentId", p.Text())
}

func TestCompile_RejectsEmpty(t *testing.T) {
	_, err := Compile("$.")
	assert.Error(t, err)
}

func TestCompile_IndexSegment(t *testing.T) {
	p, err := Compile("items[0].value")
	require.NoError(t, err)
	assert.True(t, p.HasNumericIndex())
}

func TestEvaluate_S1_SimpleField(t *testing.T) {
	root := mustParse(t, `{"assessmentId":"12345","other":"x"}`)
	p, err := Compile("$.assessmentId")
	require.NoError(t, err)
	got := Evaluate(root, p)
	text, ok := jsontree.AsText(got)
	require.True(t, ok)
	assert.Equal(t, "12345", text)
}

func TestEvaluate_S2_ArrayBroadcastField(t *testing.T) {
	root := mustParse(t, `{"items":[{"value":1},{"value":2},{"value":3}]}`)
	p, err := Compile("items.value")
	require.NoError(t, err)
	got := Evaluate(root, p)
	arr, ok := jsontree.Array(got)
	require.True(t, ok)
	require.Len(t, arr, 3)
	for i, want := range []string{"1", "2", "3"} {
		text, _ := jsontree.AsText(arr[i])
		assert.Equal(t, want, text)
	}
}

func TestEvaluate_S3_PredicateFilter(t *testing.T) {
	root := mustParse(t, `{"identifier":[{"system":"mrn","value":"A"},{"system":"ssn","value":"123-45-6789"}]}`)
	p, err := Compile("identifier[?(@.system=='ssn')].value")
	require.NoError(t, err)
	got := Evaluate(root, p)
	arr, ok := jsontree.Array(got)
	require.True(t, ok)
	require.Len(t, arr, 1)
	text, _ := jsontree.AsText(arr[0])
	assert.Equal(t, "123-45-6789", text)
}

func TestEvaluate_MissingOnScalar(t *testing.T) {
	root := mustParse(t, `"just a string"`)
	p, err := Compile("foo")
	require.NoError(t, err)
	got := Evaluate(root, p)
	assert.True(t, jsontree.IsMissing(got))
}

func TestEvaluate_FilterNoMatches(t *testing.T) {
	root := mustParse(t, `{"identifier":[{"system":"mrn","value":"A"}]}`)
	p, err := Compile("identifier[?(@.system=='ssn')]")
	require.NoError(t, err)
	got := Evaluate(root, p)
	arr, ok := jsontree.Array(got)
	require.True(t, ok)
	assert.Empty(t, arr)
}

func TestEvaluate_WildcardFlattensOneLevel(t *testing.T) {
	root := mustParse(t, `{"groups":[{"items":[1,2]},{"items":[3]}]}`)
	p, err := Compile("groups[*].items")
	require.NoError(t, err)
	got := Evaluate(root, p)
	arr, ok := jsontree.Array(got)
	require.True(t, ok)
	require.Len(t, arr, 3)
}

func TestEvaluate_BoolCoercedPredicate(t *testing.T) {
	root := mustParse(t, `{"flags":[{"active":true,"id":1},{"active":false,"id":2}]}`)
	p, err := Compile("flags[?(@.active=='TRUE')].id")
	require.NoError(t, err)
	got := Evaluate(root, p)
	arr, ok := jsontree.Array(got)
	require.True(t, ok)
	require.Len(t, arr, 1)
	text, _ := jsontree.AsText(arr[0])
	assert.Equal(t, "1", text)
}

func TestCache_CompileCached(t *testing.T) {
	c := NewCache()
	p1, err := c.CompileCached("a.b.c")
	require.NoError(t, err)
	p2, err := c.CompileCached("a.b.c")
	require.NoError(t, err)
	assert.Same(t, p1, p2)
}

package template

import (
	"encoding/base64"
	"encoding/json"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/mapengine/jsontree"
	"github.com/c360/mapengine/pathlang"
	"github.com/c360/mapengine/transform"
)

func compileT(t *testing.T, doc string) Template {
	t.Helper()
	tpl, err := Compile([]byte(doc), pathlang.NewCache(), nil)
	require.NoError(t, err)
	return tpl
}

func root(t *testing.T, doc string) jsontree.Node {
	t.Helper()
	n, err := jsontree.Parse([]byte(doc))
	require.NoError(t, err)
	return n
}

func marshal(t *testing.T, n jsontree.Node) string {
	t.Helper()
	b, err := json.Marshal(n)
	require.NoError(t, err)
	return string(b)
}

func TestProject_S1_SimpleLeaf(t *testing.T) {
	tpl := compileT(t, `{"assessmentId":{"paths":["$.assessmentId"]}}`)
	out, events := Project(root(t, `{"assessmentId":"12345","other":"x"}`), tpl)
	assert.Empty(t, events)
	assert.JSONEq(t, `{"assessmentId":"12345"}`, marshal(t, out))
}

func TestProject_PreservesKeyOrder(t *testing.T) {
	tpl := compileT(t, `{"z":{"paths":["$.z"]},"a":{"paths":["$.a"]}}`)
	out, _ := Project(root(t, `{"z":"1","a":"2"}`), tpl)
	oo, ok := out.(*jsontree.OrderedObject)
	require.True(t, ok)
	assert.Equal(t, []string{"z", "a"}, oo.Keys())
}

func TestProject_RequiredMissingEmitsNullAndEvent(t *testing.T) {
	tpl := compileT(t, `{"x":{"paths":["$.missing"],"required":true}}`)
	out, events := Project(root(t, `{}`), tpl)
	require.Len(t, events, 1)
	assert.Equal(t, EventRequiredMissing, events[0].Kind)
	assert.JSONEq(t, `{"x":null}`, marshal(t, out))
}

func TestProject_MultiArrayWrapsScalar(t *testing.T) {
	tpl := compileT(t, `{"x":{"paths":["$.val"],"multi":"array"}}`)
	out, _ := Project(root(t, `{"val":"single"}`), tpl)
	assert.JSONEq(t, `{"x":["single"]}`, marshal(t, out))
}

func TestProject_MultiFirstTakesFirstElement(t *testing.T) {
	tpl := compileT(t, `{"x":{"paths":["items.value"]}}`)
	out, _ := Project(root(t, `{"items":[{"value":1},{"value":2}]}`), tpl)
	assert.JSONEq(t, `{"x":1}`, marshal(t, out))
}

func TestProject_EmptyArrayRequiredViolation(t *testing.T) {
	tpl := compileT(t, `{"x":{"paths":["items[?(@.id=='zz')].value"],"required":true}}`)
	out, events := Project(root(t, `{"items":[{"id":"a","value":1}]}`), tpl)
	require.Len(t, events, 1)
	assert.JSONEq(t, `{"x":null}`, marshal(t, out))
}

func TestProject_ArrayTemplate(t *testing.T) {
	tpl := compileT(t, `{"$array":{"path":"items","item":{"v":{"paths":["value"]}}}}`)
	out, _ := Project(root(t, `{"items":[{"value":1},{"value":2}]}`), tpl)
	assert.JSONEq(t, `[{"v":1},{"v":2}]`, marshal(t, out))
}

func TestProject_ArrayTemplateMissingYieldsEmptyArray(t *testing.T) {
	tpl := compileT(t, `{"$array":{"path":"nope","item":{"v":{"paths":["value"]}}}}`)
	out, _ := Project(root(t, `{}`), tpl)
	assert.JSONEq(t, `[]`, marshal(t, out))
}

func TestCompile_RejectsNumericIndexPath(t *testing.T) {
	_, err := Compile([]byte(`{"x":{"paths":["items[0].value"]}}`), pathlang.NewCache(), nil)
	assert.Error(t, err)
}

func TestCompile_RejectsBadMulti(t *testing.T) {
	_, err := Compile([]byte(`{"x":{"paths":["a"],"multi":"BOGUS"}}`), pathlang.NewCache(), nil)
	assert.Error(t, err)
}

func TestCompile_RejectsEmptyPaths(t *testing.T) {
	_, err := Compile([]byte(`{"x":{"paths":[]}}`), pathlang.NewCache(), nil)
	assert.Error(t, err)
}

func TestCompile_UnknownTransformType(t *testing.T) {
	_, err := Compile([]byte(`{"x":{"paths":["a"],"transforms":[{"type":"nope"}]}}`), pathlang.NewCache(), nil)
	assert.Error(t, err)
}

func TestCompile_DateFormatRequiresFields(t *testing.T) {
	_, err := Compile([]byte(`{"x":{"paths":["a"],"transforms":[{"type":"dateFormat"}]}}`), pathlang.NewCache(), nil)
	assert.Error(t, err)
}

// TestCompile_EncryptReadsKeyField guards against regressing to a
// "keyRef" field name: the encrypt descriptor's wire contract is
// { "type":"encrypt", "key":"..." }, and a "key" reference authored
// against that contract must actually encrypt, not silently pass through.
func TestCompile_EncryptReadsKeyField(t *testing.T) {
	const envVar = "MAPENGINE_TEST_ENCRYPT_KEY"
	require.NoError(t, os.Setenv(envVar, base64.StdEncoding.EncodeToString(make([]byte, 32))))
	defer os.Unsetenv(envVar)

	enc := transform.NewEncryptor()
	tpl, err := Compile([]byte(`{"x":{"paths":["a"],"transforms":[{"type":"encrypt","key":"${`+envVar+`}"}]}}`), pathlang.NewCache(), enc)
	require.NoError(t, err)

	out, events := Project(root(t, `{"a":"secret-value"}`), tpl)
	assert.Empty(t, events)

	oo, ok := out.(*jsontree.OrderedObject)
	require.True(t, ok)
	val, ok := oo.Get("x")
	require.True(t, ok)
	text, ok := val.(string)
	require.True(t, ok)
	assert.NotEqual(t, "secret-value", text, "a \"key\"-configured encrypt transform must not pass the value through unencrypted")

	plain, err := enc.Decrypt("${"+envVar+"}", text)
	require.NoError(t, err)
	assert.Equal(t, "secret-value", plain)
}

// TestCompile_EncryptIgnoresLegacyKeyRefField locks in that an encrypt
// transform authored with a stale "keyRef" name (not the documented
// "key" field) is treated as having no key configured at all, rather
// than silently encrypting with a field nobody set.
func TestCompile_EncryptIgnoresLegacyKeyRefField(t *testing.T) {
	enc := transform.NewEncryptor()
	tpl, err := Compile([]byte(`{"x":{"paths":["a"],"transforms":[{"type":"encrypt","keyRef":"${SOME_KEY}"}]}}`), pathlang.NewCache(), enc)
	require.NoError(t, err)

	out, events := Project(root(t, `{"a":"secret-value"}`), tpl)
	require.Len(t, events, 1)
	assert.Contains(t, events[0].Message, "no key reference configured")

	oo, ok := out.(*jsontree.OrderedObject)
	require.True(t, ok)
	val, _ := oo.Get("x")
	assert.Equal(t, "secret-value", val)
}

// TestCompile_MaskReadsCustomMaskField guards against regressing to a
// "custom" field name: the custom-pattern config key is "customMask".
func TestCompile_MaskReadsCustomMaskField(t *testing.T) {
	tpl := compileT(t, `{"x":{"paths":["a"],"transforms":[{"type":"mask","pattern":"custom","customMask":"\\d+|#"}]}}`)
	out, events := Project(root(t, `{"a":"order 12345"}`), tpl)
	assert.Empty(t, events)
	assert.JSONEq(t, `{"x":"order #"}`, marshal(t, out))
}

// TestCompile_MaskDefaultsMissingPatternToPartial: a mask transform
// with no pattern configured defaults to "partial" and must adopt at
// validation time rather than being rejected.
func TestCompile_MaskDefaultsMissingPatternToPartial(t *testing.T) {
	tpl := compileT(t, `{"x":{"paths":["a"],"transforms":[{"type":"mask"}]}}`)
	out, events := Project(root(t, `{"a":"abcdef"}`), tpl)
	assert.Empty(t, events)
	oo, ok := out.(*jsontree.OrderedObject)
	require.True(t, ok)
	val, ok := oo.Get("x")
	require.True(t, ok)
	text, ok := val.(string)
	require.True(t, ok)
	assert.True(t, strings.HasPrefix(text, "a"))
	assert.True(t, strings.HasSuffix(text, "f"))
}

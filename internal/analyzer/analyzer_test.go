package analyzer

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcncl/jsontab/internal/config"
	"github.com/mcncl/jsontab/internal/models"
	"github.com/mcncl/jsontab/internal/parser"
)

func mustParse(t *testing.T, s string) models.Value {
	t.Helper()
	v, err := parser.ParseString(s)
	require.NoError(t, err)
	return v
}

func property(t *testing.T, n *models.SchemaNode, name string) *models.SchemaNode {
	t.Helper()
	child, ok := n.Property(name)
	require.True(t, ok, "property %q missing", name)
	return child
}

func TestInfer_ReceiptDateScenario(t *testing.T) {
	node := Infer([]models.Value{mustParse(t, `{"ReceiptDate":"11/18/2022 14:37:31"}`)}, true)

	require.Equal(t, models.SchemaObject, node.Kind)
	date := property(t, node, "ReceiptDate")
	assert.Equal(t, models.TypeString, date.Type)
	assert.Equal(t, models.PatternDateTime, date.Pattern)
	require.NotNil(t, date.Example)
	assert.Equal(t, "11/18/2022 14:37:31", date.Example.Str)
	assert.Equal(t, []string{"ReceiptDate"}, node.Required)
}

func TestInfer_ScalarTypes(t *testing.T) {
	node := Infer([]models.Value{mustParse(t, `{"b": true, "i": 10, "w": 10.0, "d": 2.5, "s": "x", "n": null}`)}, false)

	want := map[string]string{
		"b": models.TypeBoolean,
		"i": models.TypeInteger,
		"w": models.TypeInteger,
		"d": models.TypeDecimal,
		"s": models.TypeString,
		"n": models.TypeNull,
	}
	for name, typ := range want {
		assert.Equal(t, typ, property(t, node, name).Type, name)
	}
	assert.True(t, property(t, node, "n").Nullable)
}

func TestInfer_PropertyOrderIsFirstSeen(t *testing.T) {
	node := Infer([]models.Value{
		mustParse(t, `{"z": 1, "a": 2}`),
		mustParse(t, `{"m": 3, "a": 4}`),
	}, false)

	names := make([]string, 0, len(node.Properties))
	for _, p := range node.Properties {
		names = append(names, p.Name)
	}
	assert.Equal(t, []string{"z", "a", "m"}, names)
}

func TestInfer_RequiredIffPresentInEverySibling(t *testing.T) {
	// Field k<i> is present in the first i of four samples.
	const siblings = 4
	samples := make([]models.Value, siblings)
	for s := 0; s < siblings; s++ {
		var fields []string
		for i := 0; i <= siblings; i++ {
			if s < i {
				fields = append(fields, fmt.Sprintf(`"k%d": %d`, i, s))
			}
		}
		fields = append(fields, `"always": null`)
		samples[s] = mustParse(t, "{"+strings.Join(fields, ",")+"}")
	}

	node := Infer(samples, true)

	for i := 1; i <= siblings; i++ {
		name := fmt.Sprintf("k%d", i)
		assert.Equal(t, i == siblings, node.IsRequired(name), name)
		child := property(t, node, name)
		assert.InDelta(t, float64(siblings-i)/siblings, child.NullRate, 1e-9, name)
	}
	// Present everywhere, even though always null.
	assert.True(t, node.IsRequired("always"))
	assert.Equal(t, 1.0, property(t, node, "always").NullRate)
}

func TestInfer_ArrayItemsMergeAcrossElements(t *testing.T) {
	node := Infer([]models.Value{mustParse(t, `{"WODetail":[
		{"QtyReceived":10,"StorerKey":"CUSTOMER","Sku":"978129244860"},
		{"QtyReceived":15,"StorerKey":"CUSTOMER","Note":"late"}
	]}`)}, true)

	detail := property(t, node, "WODetail")
	require.Equal(t, models.SchemaArray, detail.Kind)
	assert.Equal(t, 2, detail.ObservedLength)
	require.NotNil(t, detail.Items)

	item := detail.Items
	assert.Equal(t, models.SchemaObject, item.Kind)
	assert.Equal(t, []string{"QtyReceived", "StorerKey"}, item.Required)

	qty := property(t, item, "QtyReceived")
	assert.Equal(t, models.TypeInteger, qty.Type)
	assert.Equal(t, 2, qty.UniqueCount)
	assert.Equal(t, int64(10), qty.Example.Int)

	storer := property(t, item, "StorerKey")
	assert.Equal(t, models.PatternIdentifier, storer.Pattern)
	assert.Equal(t, 1, storer.UniqueCount)

	sku := property(t, item, "Sku")
	assert.Equal(t, models.PatternNumericString, sku.Pattern)
	assert.Equal(t, 0.5, sku.NullRate)
}

func TestInfer_ObservedLengthIsLongestInstance(t *testing.T) {
	node := Infer([]models.Value{
		mustParse(t, `{"a": [1]}`),
		mustParse(t, `{"a": [1, 2, 3]}`),
		mustParse(t, `{"a": []}`),
	}, false)

	a := property(t, node, "a")
	assert.Equal(t, 3, a.ObservedLength)
	assert.Equal(t, models.TypeInteger, a.Items.Type)
}

func TestInfer_EmptyArrayHasNoItems(t *testing.T) {
	node := Infer([]models.Value{mustParse(t, `{"a": []}`)}, false)

	a := property(t, node, "a")
	assert.Equal(t, models.SchemaArray, a.Kind)
	assert.Nil(t, a.Items)
	assert.Equal(t, 0, a.ObservedLength)
}

func TestInfer_TypeAmbiguityWidensToString(t *testing.T) {
	node := Infer([]models.Value{
		mustParse(t, `{"code": 1}`),
		mustParse(t, `{"code": "A1"}`),
	}, false)

	code := property(t, node, "code")
	assert.Equal(t, models.TypeString, code.Type)
	assert.True(t, code.Ambiguous())
	assert.Equal(t, []string{models.TypeInteger, models.TypeString}, code.Observed)
	assert.Equal(t, models.PatternNone, code.Pattern)
}

func TestInfer_IntegerAndDecimalWidenToDecimal(t *testing.T) {
	node := Infer([]models.Value{mustParse(t, `[1, 2.5, null]`)}, false)

	require.Equal(t, models.SchemaArray, node.Kind)
	assert.Equal(t, models.TypeDecimal, node.Items.Type)
	assert.True(t, node.Items.Nullable)
}

func TestInfer_StructuralMismatchDegradesToString(t *testing.T) {
	node := Infer([]models.Value{mustParse(t, `{"items": [{"id": 1}, "loose", 3]}`)}, true)

	items := property(t, node, "items")
	require.NotNil(t, items.Items)
	assert.Equal(t, models.SchemaScalar, items.Items.Kind)
	assert.Equal(t, models.TypeString, items.Items.Type)
	assert.Equal(t, []string{models.TypeObject, models.TypeString, models.TypeInteger}, items.Items.Observed)
	// Only the scalars "loose" and 3 are counted.
	assert.Equal(t, 2, items.Items.UniqueCount)
}

func TestInfer_UniqueCountComparesNumbersByValue(t *testing.T) {
	node := Infer([]models.Value{mustParse(t, `[
		{"n": 10, "s": "10", "o": {"k": 1}},
		{"n": 10.0, "s": "10", "o": {"k": 1}},
		{"n": 1e1, "s": 10, "o": {"k": 2}},
		{"n": 2.5, "s": null, "o": null}
	]`)}, true)

	assert.Equal(t, 2, property(t, node.Items, "n").UniqueCount)
	// The string "10" and the number 10 are different values.
	assert.Equal(t, 2, property(t, node.Items, "s").UniqueCount)
	// Objects and arrays are not counted.
	assert.Zero(t, property(t, node.Items, "o").UniqueCount)
}

func TestInfer_NullableObject(t *testing.T) {
	node := Infer([]models.Value{
		mustParse(t, `{"addr": {"city": "X"}}`),
		mustParse(t, `{"addr": null}`),
	}, true)

	addr := property(t, node, "addr")
	assert.Equal(t, models.SchemaObject, addr.Kind)
	assert.True(t, addr.Nullable)
	assert.Equal(t, 0.5, addr.NullRate)
	assert.Equal(t, []string{"city"}, addr.Required)
	assert.Nil(t, addr.Example)
}

func TestInfer_Roots(t *testing.T) {
	tests := []struct {
		in   string
		kind models.SchemaKind
		typ  string
	}{
		{`{}`, models.SchemaObject, models.TypeObject},
		{`[]`, models.SchemaArray, models.TypeArray},
		{`null`, models.SchemaScalar, models.TypeNull},
		{`"PP129"`, models.SchemaScalar, models.TypeString},
		{`7`, models.SchemaScalar, models.TypeInteger},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			node := Infer([]models.Value{mustParse(t, tt.in)}, true)
			assert.Equal(t, tt.kind, node.Kind)
			assert.Equal(t, tt.typ, node.Type)
			assert.Equal(t, 1, node.Samples)
		})
	}
}

func TestInfer_NoSamples(t *testing.T) {
	node := Infer(nil, true)
	assert.Equal(t, models.TypeNull, node.Type)
	assert.Equal(t, 0, node.Samples)
}

func TestInfer_StatisticsOnlyInDetailedMode(t *testing.T) {
	in := []models.Value{mustParse(t, `{"a": "x"}`), mustParse(t, `{"b": 1}`)}

	plain := Infer(in, false)
	a := property(t, plain, "a")
	assert.False(t, a.Detailed)
	assert.Zero(t, a.NullRate)
	assert.Zero(t, a.UniqueCount)
	assert.Nil(t, a.Example)

	detailed := Infer(in, true)
	a = property(t, detailed, "a")
	assert.True(t, a.Detailed)
	assert.Equal(t, 0.5, a.NullRate)
	assert.Equal(t, 1, a.UniqueCount)
	require.NotNil(t, a.Example)
	assert.Equal(t, "x", a.Example.Str)
}

func TestInfer_PatternMustBeShared(t *testing.T) {
	node := Infer([]models.Value{mustParse(t, `[
		{"d": "11/18/2022", "mix": "11/18/2022"},
		{"d": "01/02/2023", "mix": "CUSTOMER"}
	]`)}, false)

	assert.Equal(t, models.PatternDate, property(t, node.Items, "d").Pattern)
	assert.Equal(t, models.PatternNone, property(t, node.Items, "mix").Pattern)
}

func TestNewAnalyzerWithConfig(t *testing.T) {
	cfg := config.NewConfig()
	cfg.Schema.Detailed = true

	node := NewAnalyzerWithConfig(cfg).Infer(mustParse(t, `{"a": 1}`))
	assert.True(t, property(t, node, "a").Detailed)
}

func TestMergeTypes(t *testing.T) {
	assert.Equal(t, models.TypeNull, MergeTypes(nil))
	assert.Equal(t, models.TypeBoolean, MergeTypes([]string{models.TypeBoolean}))
	assert.Equal(t, models.TypeDecimal, MergeTypes([]string{models.TypeInteger, models.TypeDecimal}))
	assert.Equal(t, models.TypeString, MergeTypes([]string{models.TypeInteger, models.TypeBoolean}))
}

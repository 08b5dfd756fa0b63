package transform

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func apply(t *testing.T, value interface{}, tr FieldTransformation) interface{} {
	t.Helper()
	return ApplyTransformations(value, []FieldTransformation{tr}, Context{})
}

func TestSplitTransformation(t *testing.T) {
	tr := FieldTransformation{Type: TransformSplit, Params: map[string]interface{}{"delimiter": ",", "index": 1}}
	assert.Equal(t, " Main St", apply(t, "123, Main St, Springfield", tr))

	// No index returns the whole array
	noIdx := FieldTransformation{Type: TransformSplit, Params: map[string]interface{}{"delimiter": "-"}}
	assert.Equal(t, []string{"E01", "E02"}, apply(t, "E01-E02", noIdx))

	// Out-of-range index passes through
	far := FieldTransformation{Type: TransformSplit, Params: map[string]interface{}{"delimiter": ",", "index": 9}}
	assert.Equal(t, "a,b", apply(t, "a,b", far))

	// Non-string passes through
	assert.Equal(t, 42, apply(t, 42, tr))
}

func TestJoinTransformation(t *testing.T) {
	tr := FieldTransformation{Type: TransformJoin, Params: map[string]interface{}{"delimiter": " / "}}
	assert.Equal(t, "E01 / L03", apply(t, []string{"E01", "L03"}, tr))

	def := FieldTransformation{Type: TransformJoin}
	assert.Equal(t, "a, b", apply(t, []interface{}{"a", "b"}, def))
	assert.Equal(t, "plain", apply(t, "plain", def))
}

func TestFormatDate(t *testing.T) {
	mdY := FieldTransformation{Type: TransformFormat, Params: map[string]interface{}{"format": "MM/DD/YYYY"}}
	assert.Equal(t, "01/15/2024", apply(t, "2024-01-15 14:23:45", mdY))

	iso := FieldTransformation{Type: TransformFormat, Params: map[string]interface{}{"format": "YYYY-MM-DD"}}
	assert.Equal(t, "2024-01-15", apply(t, "01/15/2024", iso))

	custom := FieldTransformation{Type: TransformFormat, Params: map[string]interface{}{"format": "YYYY/MM/DD/HH/mm/ss"}}
	assert.Equal(t, "2024/01/15/14/23/45", apply(t, "01/15/2024 14:23:45", custom))

	// Invalid dates pass through
	assert.Equal(t, "not a date", apply(t, "not a date", mdY))
}

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		format string
		in     interface{}
		want   interface{}
	}{
		{"integer", 3.7, "4"},
		{"decimal", "1500", "1500.00"},
		{"currency", 12.5, "$12.50"},
		{"percent", 98.25, "98.2%"},
		{"decimal", "not numeric", "not numeric"},
	}
	for _, tt := range tests {
		tr := FieldTransformation{Type: TransformFormat, Params: map[string]interface{}{"format": tt.format}}
		assert.Equal(t, tt.want, apply(t, tt.in, tr), "format %s", tt.format)
	}
}

func TestConvertTransformation(t *testing.T) {
	toNum := FieldTransformation{Type: TransformConvert, Params: map[string]interface{}{"to": "number"}}
	assert.Equal(t, 111.0, apply(t, "111", toNum))
	assert.Equal(t, "E01", apply(t, "E01", toNum)) // unparseable passes through

	toStr := FieldTransformation{Type: TransformConvert, Params: map[string]interface{}{"to": "string"}}
	assert.Equal(t, "111", apply(t, 111.0, toStr))

	toBool := FieldTransformation{Type: TransformConvert, Params: map[string]interface{}{"to": "boolean"}}
	assert.Equal(t, true, apply(t, "yes", toBool))
	assert.Equal(t, false, apply(t, "0", toBool))
	assert.Equal(t, "maybe", apply(t, "maybe", toBool))

	toDate := FieldTransformation{Type: TransformConvert, Params: map[string]interface{}{"to": "date"}}
	assert.Equal(t, "2024-01-15", apply(t, "01/15/2024", toDate))
	assert.Equal(t, "garbage", apply(t, "garbage", toDate))
}

func TestExtractTransformation(t *testing.T) {
	group := FieldTransformation{Type: TransformExtract, Params: map[string]interface{}{"pattern": `INC-(\d+)`}}
	assert.Equal(t, "4521", apply(t, "INC-4521", group))

	full := FieldTransformation{Type: TransformExtract, Params: map[string]interface{}{"pattern": `\d+`}}
	assert.Equal(t, "4521", apply(t, "INC-4521", full))

	// Invalid regex passes through
	bad := FieldTransformation{Type: TransformExtract, Params: map[string]interface{}{"pattern": `([`}}
	assert.Equal(t, "INC-4521", apply(t, "INC-4521", bad))

	// No match passes through
	miss := FieldTransformation{Type: TransformExtract, Params: map[string]interface{}{"pattern": `XYZ`}}
	assert.Equal(t, "INC-4521", apply(t, "INC-4521", miss))
}

func TestReplaceTransformation(t *testing.T) {
	lit := FieldTransformation{Type: TransformReplace, Params: map[string]interface{}{"search": "AVE.", "replacement": "Avenue"}}
	assert.Equal(t, "5th Avenue", apply(t, "5th AVE.", lit))

	re := FieldTransformation{Type: TransformReplace, Params: map[string]interface{}{"search": `\s+`, "replacement": " ", "regex": true}}
	assert.Equal(t, "MAIN ST", apply(t, "MAIN   ST", re))

	bad := FieldTransformation{Type: TransformReplace, Params: map[string]interface{}{"search": `([`, "replacement": "x", "regex": true}}
	assert.Equal(t, "input", apply(t, "input", bad))
}

func TestDatetimeCombine(t *testing.T) {
	row := Row{"CALL_DATE": "01/15/2024", "CALL_TIME": "14:23:45"}
	tr := FieldTransformation{Type: TransformDatetimeCombine, Params: map[string]interface{}{"dateField": "CALL_DATE", "timeField": "CALL_TIME"}}

	got := ApplyTransformations("ignored", []FieldTransformation{tr}, Context{Row: row})
	assert.Equal(t, "01/15/2024 14:23:45", got)

	// Missing sibling returns the primary value unchanged
	partial := Row{"CALL_DATE": "01/15/2024"}
	got = ApplyTransformations("primary", []FieldTransformation{tr}, Context{Row: partial})
	assert.Equal(t, "primary", got)
}

func TestDatetimeExtract(t *testing.T) {
	timeTr := FieldTransformation{Type: TransformDatetimeExtract, Params: map[string]interface{}{"extractType": "time"}}
	assert.Equal(t, "14:23:45", apply(t, "01/15/2024 14:23:45", timeTr))

	dateTr := FieldTransformation{Type: TransformDatetimeExtract, Params: map[string]interface{}{"extractType": "date"}}
	assert.Equal(t, "01/15/2024", apply(t, "01/15/2024 14:23:45", dateTr))
}

func TestTransformationsChainLeftToRight(t *testing.T) {
	trs := []FieldTransformation{
		{Type: TransformSplit, Params: map[string]interface{}{"delimiter": " ", "index": 0}},
		{Type: TransformReplace, Params: map[string]interface{}{"search": "/", "replacement": "-"}},
	}
	got := ApplyTransformations("01/15/2024 14:23:45", trs, Context{})
	assert.Equal(t, "01-15-2024", got)
}

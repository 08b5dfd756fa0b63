package transform

import "strings"

// Row is one raw input record: source column name to raw value as parsed
// from the export (string, number, or nil).
type Row map[string]interface{}

// TransformedRow is one canonical output record, keyed by canonical field
// name plus any preserved original column names.
type TransformedRow map[string]interface{}

// TransformType identifies one step in a field's transformation list.
type TransformType string

const (
	TransformSplit           TransformType = "split"
	TransformJoin            TransformType = "join"
	TransformFormat          TransformType = "format"
	TransformConvert         TransformType = "convert"
	TransformExtract         TransformType = "extract"
	TransformReplace         TransformType = "replace"
	TransformDatetimeCombine TransformType = "datetime_combine"
	TransformDatetimeExtract TransformType = "datetime_extract"
)

// FieldTransformation is a single typed transformation step. Order within
// a mapping's list is significant: steps apply left to right, each
// consuming the previous output.
type FieldTransformation struct {
	Type   TransformType          `json:"type"`
	Params map[string]interface{} `json:"params,omitempty"`
}

// SourceFieldDefault is the sentinel source field meaning "no source
// column, write the mapping's default value".
const SourceFieldDefault = "__default__"

// FieldMapping maps one source column to one canonical target field.
// Multiple mappings may share a target (dual-mapping) or a source (one
// column feeding several canonical fields).
type FieldMapping struct {
	SourceField     string                `json:"sourceField"`
	TargetField     string                `json:"targetField"`
	DefaultValue    interface{}           `json:"defaultValue,omitempty"`
	Transformations []FieldTransformation `json:"transformations,omitempty"`
}

// parsedKeyMarker is the reserved substring that identifies a legacy
// parsed-field injection key. Keys carrying it are lookup plumbing, not
// data, and must never survive into a final TransformedRow.
const parsedKeyMarker = "__parsed__"

// ParsedFieldRef addresses one value extracted by an upstream parsing
// step: the source column it was derived from and the kind of field that
// was recognized in it.
type ParsedFieldRef struct {
	Column    string
	FieldType string
}

// ParsedFields is the explicit side channel for values produced by prior
// extraction steps. It travels alongside the row instead of being
// co-mingled with the row's own keys.
type ParsedFields map[ParsedFieldRef]interface{}

// ParsedKey renders the legacy injection-key form of a parsed-field
// reference, kept for callers that still address parsed values through
// row keys.
func ParsedKey(column, fieldType string) string {
	return column + parsedKeyMarker + fieldType
}

// IsParsedKey reports whether a row key is a parsed-field injection key.
func IsParsedKey(key string) bool {
	return strings.Contains(key, parsedKeyMarker)
}

// splitParsedKey recovers the (column, fieldType) pair from a legacy
// injection key. ok is false for keys without the marker.
func splitParsedKey(key string) (ParsedFieldRef, bool) {
	i := strings.Index(key, parsedKeyMarker)
	if i < 0 {
		return ParsedFieldRef{}, false
	}
	return ParsedFieldRef{Column: key[:i], FieldType: key[i+len(parsedKeyMarker):]}, true
}

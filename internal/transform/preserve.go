package transform

import "strings"

// Preservation dual-writes mapped values: besides the canonical target,
// the untouched original column name is written back into the output row
// so older tools that read pre-canonicalization names keep working.

// shouldPreserve decides whether the mapping's source field name gets a
// preserved copy in the output row. preserved tracks source fields
// already preserved earlier in the same row (first mapping wins).
func shouldPreserve(m FieldMapping, mappings []FieldMapping, preserved map[string]bool) bool {
	if m.SourceField == m.TargetField {
		return false
	}
	if m.SourceField == SourceFieldDefault || m.SourceField == "" {
		return false
	}
	if IsParsedKey(m.SourceField) {
		return false
	}
	if preserved[m.SourceField] {
		return false
	}
	// A source name that is itself some other mapping's target already
	// holds a transformed value; raw re-preservation must not clobber it.
	for _, other := range mappings {
		if other.TargetField == m.SourceField {
			return false
		}
	}
	return true
}

// preservedValue picks what gets written under the original column name.
// Normally the post-transformation value; for the date-only target fed
// from a full datetime column, the raw datetime string instead, so one
// source column serves both date-only and full-datetime consumers.
func preservedValue(m FieldMapping, transformed, raw interface{}) interface{} {
	if IsDateOnlyField(m.TargetField) {
		if s, ok := raw.(string); ok && strings.Contains(s, " ") {
			return s
		}
	}
	return transformed
}

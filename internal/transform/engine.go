package transform

import (
	"github.com/ignite/cad-normalizer/internal/pkg/logger"
)

// Engine turns raw export rows into canonical incident rows by applying
// an ordered list of field mappings to every row. Processing is
// synchronous and single-pass; there is no shared state across rows.
type Engine struct{}

// NewEngine creates a transformation engine.
func NewEngine() *Engine { return &Engine{} }

// Transform applies mappings to every row. parsed optionally supplies
// values produced by upstream extraction steps, keyed by (source column,
// field type); pass nil when there are none.
func (e *Engine) Transform(rows []Row, mappings []FieldMapping, parsed ParsedFields) []TransformedRow {
	out := make([]TransformedRow, 0, len(rows))
	for _, row := range rows {
		out = append(out, e.transformRow(row, mappings, parsed))
	}
	logger.Debug("transform complete", "rows", len(out), "mappings", len(mappings))
	return out
}

// TransformRow applies mappings to a single row.
func (e *Engine) TransformRow(row Row, mappings []FieldMapping, parsed ParsedFields) TransformedRow {
	return e.transformRow(row, mappings, parsed)
}

func (e *Engine) transformRow(row Row, mappings []FieldMapping, parsed ParsedFields) TransformedRow {
	out := make(TransformedRow, len(mappings))
	preserved := make(map[string]bool)

	for _, m := range mappings {
		raw, ok := e.resolveValue(row, m, parsed)
		if !ok {
			continue
		}

		value := ApplyTransformations(raw, m.Transformations, Context{
			TargetField: m.TargetField,
			Row:         row,
			Parsed:      parsed,
		})
		value = canonicalize(m.TargetField, value)
		out[m.TargetField] = value

		if shouldPreserve(m, mappings, preserved) {
			out[m.SourceField] = preservedValue(m, value, raw)
			preserved[m.SourceField] = true
		}
	}

	// Injection keys are lookup plumbing and must never leak into the
	// final row, whichever path put them there.
	for key := range out {
		if IsParsedKey(key) {
			delete(out, key)
		}
	}
	return out
}

// resolveValue finds the raw input for a mapping: the default sentinel,
// the explicit parsed-fields side channel (also reachable through legacy
// injection keys), or the source column itself.
func (e *Engine) resolveValue(row Row, m FieldMapping, parsed ParsedFields) (interface{}, bool) {
	if m.SourceField == SourceFieldDefault {
		return m.DefaultValue, true
	}
	if ref, ok := splitParsedKey(m.SourceField); ok {
		if parsed != nil {
			if v, ok := parsed[ref]; ok {
				return v, true
			}
		}
		// Older callers inject parsed values straight into the row.
		if v, ok := row[m.SourceField]; ok {
			return v, true
		}
		return nil, false
	}
	v, ok := row[m.SourceField]
	return v, ok
}

// canonicalize applies the two always-on passes that run after every
// transformation list, declared or not:
//
//  1. the incident-type field is always a string;
//  2. time-only and date-only targets get the matching extractor run once
//     more as a safety net, so the field-role invariant holds even for
//     mappings that never declared a datetime_extract step.
//
// incident_time is neither time-only nor date-only and keeps the full
// datetime untouched.
func canonicalize(target string, value interface{}) interface{} {
	if target == FieldIncidentType {
		if _, ok := value.(string); !ok {
			return stringify(value)
		}
		return value
	}
	if s, ok := value.(string); ok {
		if IsTimeOnlyField(target) {
			return applyDatetimeExtract(s, map[string]interface{}{"extractType": "time"})
		}
		if IsDateOnlyField(target) {
			return applyDatetimeExtract(s, map[string]interface{}{"extractType": "date"})
		}
	}
	return value
}

// Package template holds the reusable field-mapping templates learned
// from successful import sessions, and the matching logic that suggests
// them for new CAD exports.
package template

import (
	"time"

	"github.com/ignite/cad-normalizer/internal/transform"
)

// SourceFieldPattern captures the shape of the export a template was
// learned from. It is recorded once at creation and only ever used for
// similarity comparison afterward.
type SourceFieldPattern struct {
	FieldNames         []string `json:"fieldNames"`
	FieldCount         int      `json:"fieldCount"`
	CommonPatterns     []string `json:"commonPatterns,omitempty"`
	CADVendorSignature string   `json:"cadVendorSignature,omitempty"`
}

// Metadata carries quality signals and per-field hints for a template.
// Version exists only as a hint to external tooling; no migrations run
// on it here.
type Metadata struct {
	QualityScore float64             `json:"qualityScore"`
	SuccessRate  float64             `json:"successRate"`
	DataTypes    map[string]string   `json:"dataTypes,omitempty"`
	SampleValues map[string][]string `json:"sampleValues,omitempty"`
	Tags         []string            `json:"tags,omitempty"`
	Version      int                 `json:"version,omitempty"`
}

// TagCertified marks a pre-validated vendor template. Certified public
// templates rank above ad hoc ones in suggestions.
const TagCertified = "certified"

// Template is a saved, reusable list of field mappings plus the field
// pattern it was learned from. Instances handed out by a Store are
// copies; mutating one never affects the stored record.
type Template struct {
	ID            string                   `json:"id"`
	Name          string                   `json:"name"`
	Description   string                   `json:"description,omitempty"`
	CADVendor     string                   `json:"cadVendor,omitempty"`
	TargetTool    string                   `json:"targetTool"`
	FieldMappings []transform.FieldMapping `json:"fieldMappings"`
	SourcePattern SourceFieldPattern       `json:"sourceFieldPattern"`
	Metadata      Metadata                 `json:"metadata"`
	CreatedAt     time.Time                `json:"createdAt"`
	UseCount      int                      `json:"useCount"`
	LastUsed      *time.Time               `json:"lastUsed,omitempty"`
	IsPublic      bool                     `json:"isPublic"`
}

// HasTag reports whether the template carries the given metadata tag.
func (t *Template) HasTag(tag string) bool {
	for _, have := range t.Metadata.Tags {
		if have == tag {
			return true
		}
	}
	return false
}

// Clone returns a deep copy safe to hand to callers.
func (t *Template) Clone() Template {
	out := *t
	out.FieldMappings = append([]transform.FieldMapping(nil), t.FieldMappings...)
	for i, m := range out.FieldMappings {
		out.FieldMappings[i].Transformations = append([]transform.FieldTransformation(nil), m.Transformations...)
	}
	out.SourcePattern.FieldNames = append([]string(nil), t.SourcePattern.FieldNames...)
	out.SourcePattern.CommonPatterns = append([]string(nil), t.SourcePattern.CommonPatterns...)
	out.Metadata.Tags = append([]string(nil), t.Metadata.Tags...)
	if t.Metadata.DataTypes != nil {
		out.Metadata.DataTypes = make(map[string]string, len(t.Metadata.DataTypes))
		for k, v := range t.Metadata.DataTypes {
			out.Metadata.DataTypes[k] = v
		}
	}
	if t.Metadata.SampleValues != nil {
		out.Metadata.SampleValues = make(map[string][]string, len(t.Metadata.SampleValues))
		for k, v := range t.Metadata.SampleValues {
			out.Metadata.SampleValues[k] = append([]string(nil), v...)
		}
	}
	if t.LastUsed != nil {
		lu := *t.LastUsed
		out.LastUsed = &lu
	}
	return out
}

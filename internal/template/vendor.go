package template

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// VendorOther is the generic label returned when no fingerprint clears
// the confidence floor.
const VendorOther = "Other"

// Fingerprint describes the characteristic column names of one CAD
// vendor's exports. Patterns match a source field when either string is
// a case-insensitive substring of the other.
type Fingerprint struct {
	Name     string   `yaml:"name" json:"name"`
	Required []string `yaml:"required" json:"required"`
	Optional []string `yaml:"optional" json:"optional"`
}

// Required-field overlap is a far stronger vendor indicator than
// optional-field overlap, hence the 0.7/0.3 split. The floor keeps
// generic CSVs from picking up a false vendor claim.
const (
	requiredWeight      = 0.7
	optionalWeight      = 0.3
	confidenceThreshold = 0.4
)

// DefaultFingerprints returns the built-in CAD vendor fingerprint table.
func DefaultFingerprints() []Fingerprint {
	return []Fingerprint{
		{
			Name:     "Console One",
			Required: []string{"inc_date_time", "problem_type", "unit_id"},
			Optional: []string{"inc_num", "agency_code"},
		},
		{
			Name:     "Tyler Technologies",
			Required: []string{"incident_number", "alarm_datetime", "nature_code"},
			Optional: []string{"responding_units", "cad_call_id"},
		},
		{
			Name:     "CentralSquare",
			Required: []string{"calltime", "callno", "naturecode"},
			Optional: []string{"unitcode", "streetname"},
		},
		{
			Name:     "Motorola Flex",
			Required: []string{"cfs_number", "dispatch_datetime", "incident_type_code"},
			Optional: []string{"primary_unit", "location_address"},
		},
		{
			Name:     "Zuercher",
			Required: []string{"call_number", "call_datetime", "call_type"},
			Optional: []string{"units_assigned", "common_name"},
		},
		{
			Name:     "ESO",
			Required: []string{"incident_num", "alarm_time", "call_category"},
			Optional: []string{"apparatus", "address1"},
		},
	}
}

// LoadFingerprints reads a fingerprint table from a YAML file. The file
// holds a list of {name, required, optional} entries.
func LoadFingerprints(path string) ([]Fingerprint, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fingerprint table: %w", err)
	}
	var fps []Fingerprint
	if err := yaml.Unmarshal(data, &fps); err != nil {
		return nil, fmt.Errorf("parse fingerprint table: %w", err)
	}
	return fps, nil
}

// VendorDetector scores source field lists against a fingerprint table.
// The table is injected at construction; there is no global state.
type VendorDetector struct {
	fingerprints []Fingerprint
}

// NewVendorDetector creates a detector over the given table. A nil or
// empty table falls back to the built-in fingerprints.
func NewVendorDetector(fps []Fingerprint) *VendorDetector {
	if len(fps) == 0 {
		fps = DefaultFingerprints()
	}
	return &VendorDetector{fingerprints: fps}
}

// Detect returns the best-matching vendor name and its confidence.
// confidence = 0.7*(matched required/total required) +
// 0.3*(matched optional/total optional); the highest score strictly
// above 0.4 wins, otherwise the result is "Other" with the best score
// seen.
func (d *VendorDetector) Detect(sourceFields []string) (string, float64) {
	bestName := VendorOther
	bestConf := 0.0

	for _, fp := range d.fingerprints {
		conf := fp.confidence(sourceFields)
		if conf > bestConf {
			bestConf = conf
			bestName = fp.Name
		}
	}

	if bestConf <= confidenceThreshold {
		return VendorOther, bestConf
	}
	return bestName, bestConf
}

func (fp Fingerprint) confidence(sourceFields []string) float64 {
	conf := 0.0
	if len(fp.Required) > 0 {
		conf += requiredWeight * float64(countMatches(fp.Required, sourceFields)) / float64(len(fp.Required))
	}
	if len(fp.Optional) > 0 {
		conf += optionalWeight * float64(countMatches(fp.Optional, sourceFields)) / float64(len(fp.Optional))
	}
	return conf
}

func countMatches(patterns, sourceFields []string) int {
	n := 0
	for _, p := range patterns {
		if matchesAny(p, sourceFields) {
			n++
		}
	}
	return n
}

func matchesAny(pattern string, sourceFields []string) bool {
	p := strings.ToLower(pattern)
	for _, f := range sourceFields {
		fl := strings.ToLower(strings.TrimSpace(f))
		if strings.Contains(fl, p) || strings.Contains(p, fl) {
			return true
		}
	}
	return false
}

// CapturePattern records the source-field shape of a new template. The
// common-pattern labels are coarse hints used only for display and
// similarity context, never mutated after creation.
func (d *VendorDetector) CapturePattern(sourceFields []string) SourceFieldPattern {
	vendor, _ := d.Detect(sourceFields)

	patterns := map[string]bool{}
	for _, f := range sourceFields {
		fl := strings.ToLower(f)
		switch {
		case strings.Contains(fl, "date") || strings.Contains(fl, "time"):
			patterns["datetime"] = true
		case strings.Contains(fl, "unit") || strings.Contains(fl, "apparatus"):
			patterns["units"] = true
		case strings.Contains(fl, "addr") || strings.Contains(fl, "location") || strings.Contains(fl, "street"):
			patterns["location"] = true
		case strings.Contains(fl, "lat") || strings.Contains(fl, "lon"):
			patterns["coordinates"] = true
		case strings.Contains(fl, "type") || strings.Contains(fl, "nature") || strings.Contains(fl, "problem"):
			patterns["incident_type"] = true
		}
	}
	common := make([]string, 0, len(patterns))
	for p := range patterns {
		common = append(common, p)
	}
	sort.Strings(common)

	return SourceFieldPattern{
		FieldNames:         append([]string(nil), sourceFields...),
		FieldCount:         len(sourceFields),
		CommonPatterns:     common,
		CADVendorSignature: vendor,
	}
}

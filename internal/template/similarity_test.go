package template

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFieldSetSimilarity(t *testing.T) {
	res := FieldSetSimilarity([]string{"a", "B", "x"}, []string{"A", "B", "C", "D"})

	assert.Equal(t, 50, res.Score)
	assert.Equal(t, []string{"A", "B"}, res.MatchingFields)
	assert.Equal(t, []string{"C", "D"}, res.MissingFields)
}

func TestFieldSetSimilarityEmptyTemplate(t *testing.T) {
	res := FieldSetSimilarity([]string{"a"}, nil)
	assert.Equal(t, 0, res.Score)
	assert.Empty(t, res.MatchingFields)
}

func TestFieldSetSimilarityFullMatch(t *testing.T) {
	res := FieldSetSimilarity(
		[]string{"INC_NUM", "inc_date_time", "unit_id"},
		[]string{"INC_DATE_TIME", "UNIT_ID"},
	)
	assert.Equal(t, 100, res.Score)
	assert.Empty(t, res.MissingFields)
}

func TestStringSimilarity(t *testing.T) {
	// Renamed-column shape must clear the fuzzy acceptance threshold
	assert.GreaterOrEqual(t, StringSimilarity("INC_DATE_TIME", "INC_DATE_TM"), 0.7)
	// Unrelated columns must fall well below it
	assert.Less(t, StringSimilarity("INC_DATE_TIME", "ADDRESS"), 0.7)

	assert.Equal(t, 1.0, StringSimilarity("same", "same"))
	assert.Equal(t, 1.0, StringSimilarity("", ""))
	assert.Equal(t, 0.0, StringSimilarity("abc", "xyz"))
}

func TestVendorDetection(t *testing.T) {
	d := NewVendorDetector(nil)

	name, conf := d.Detect([]string{"INC_DATE_TIME", "PROBLEM_TYPE", "UNIT_ID", "INC_NUM"})
	assert.Equal(t, "Console One", name)
	assert.Greater(t, conf, 0.4)

	// Generic CSV columns must not claim a vendor
	name, _ = d.Detect([]string{"name", "value", "notes"})
	assert.Equal(t, VendorOther, name)

	// Empty input
	name, conf = d.Detect(nil)
	assert.Equal(t, VendorOther, name)
	assert.Equal(t, 0.0, conf)
}

func TestVendorDetectionCustomTable(t *testing.T) {
	d := NewVendorDetector([]Fingerprint{
		{Name: "Acme CAD", Required: []string{"acme_call_no"}, Optional: []string{"acme_unit"}},
	})
	name, conf := d.Detect([]string{"ACME_CALL_NO", "ACME_UNIT"})
	assert.Equal(t, "Acme CAD", name)
	assert.InDelta(t, 1.0, conf, 1e-9)
}

func TestCapturePattern(t *testing.T) {
	d := NewVendorDetector(nil)
	p := d.CapturePattern([]string{"INC_DATE_TIME", "PROBLEM_TYPE", "UNIT_ID", "LOCATION_ADDR"})

	assert.Equal(t, 4, p.FieldCount)
	assert.Equal(t, "Console One", p.CADVendorSignature)
	assert.Contains(t, p.CommonPatterns, "datetime")
	assert.Contains(t, p.CommonPatterns, "location")
}

package ingest

import (
	"bytes"
	"strings"
	"testing"

	"github.com/ignite/cad-normalizer/internal/transform"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadRows(t *testing.T) {
	input := "INC_NUM,UNIT_ID,ADDRESS\n" +
		"2024-000123,E01,\"123 Main St, Springfield\"\n" +
		"2024-000124,L03,456 Oak Ave\n"

	header, rows, err := ReadRows(strings.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, []string{"INC_NUM", "UNIT_ID", "ADDRESS"}, header)
	require.Len(t, rows, 2)
	assert.Equal(t, "123 Main St, Springfield", rows[0]["ADDRESS"])
	assert.Equal(t, "L03", rows[1]["UNIT_ID"])
}

func TestReadRowsStripsBOM(t *testing.T) {
	input := "\xEF\xBB\xBFINC_NUM,UNIT_ID\n1,E01\n"

	header, rows, err := ReadRows(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, []string{"INC_NUM", "UNIT_ID"}, header)
	require.Len(t, rows, 1)
}

func TestReadRowsRaggedRows(t *testing.T) {
	input := "A,B,C\n1,2\n1,2,3,4\n"

	header, rows, err := ReadRows(strings.NewReader(input))
	require.NoError(t, err)
	assert.Len(t, header, 3)
	require.Len(t, rows, 2)
	// Short row only fills the columns it has
	assert.Equal(t, "2", rows[0]["B"])
	_, hasC := rows[0]["C"]
	assert.False(t, hasC)
	// Long row drops the extra cell
	assert.Equal(t, "3", rows[1]["C"])
}

func TestReadRowsEmpty(t *testing.T) {
	header, rows, err := ReadRows(strings.NewReader(""))
	require.NoError(t, err)
	assert.Nil(t, header)
	assert.Nil(t, rows)
}

func TestWriteRowsColumnOrder(t *testing.T) {
	rows := []transform.TransformedRow{
		{
			transform.FieldRespondingUnit: "E01",
			transform.FieldIncidentTime:   "01/15/2024 14:23:45",
			"INC_DATE_TIME":               "01/15/2024 14:23:45",
			transform.FieldIncidentType:   "111",
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteRows(&buf, rows))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	// Canonical fields come first in fixed order, preserved columns after
	assert.Equal(t, "incident_time,incident_type,responding_unit,INC_DATE_TIME", lines[0])
	assert.Equal(t, "01/15/2024 14:23:45,111,E01,01/15/2024 14:23:45", lines[1])
}

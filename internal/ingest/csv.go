// Package ingest reads raw CAD export files and runs them through
// vendor detection, template matching, and transformation.
package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/ignite/cad-normalizer/internal/transform"
)

// ReadRows parses a CSV export into its header and untyped rows. Vendors
// disagree on quoting and column counts, so parsing is lenient: lazy
// quotes, ragged rows tolerated, UTF-8 BOM stripped.
func ReadRows(r io.Reader) ([]string, []transform.Row, error) {
	reader := csv.NewReader(stripBOM(r))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return nil, nil, nil
		}
		return nil, nil, fmt.Errorf("read header: %w", err)
	}
	for i, h := range header {
		header[i] = strings.TrimSpace(h)
	}

	var rows []transform.Row
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// Malformed line; keep going with the rest of the file
			continue
		}
		row := make(transform.Row, len(header))
		for i, val := range record {
			if i >= len(header) || header[i] == "" {
				continue
			}
			row[header[i]] = val
		}
		rows = append(rows, row)
	}
	return header, rows, nil
}

// stripBOM wraps a reader to strip a UTF-8 BOM if present.
func stripBOM(r io.Reader) io.Reader {
	buf := make([]byte, 3)
	n, err := r.Read(buf)
	if err != nil || n < 3 {
		return io.MultiReader(strings.NewReader(string(buf[:n])), r)
	}
	if buf[0] == 0xEF && buf[1] == 0xBB && buf[2] == 0xBF {
		return r
	}
	return io.MultiReader(strings.NewReader(string(buf[:n])), r)
}

// canonicalColumnOrder fixes the column order of written output: the
// canonical fields every downstream tool expects first, preserved
// original columns after.
var canonicalColumnOrder = []string{
	transform.FieldIncidentID,
	transform.FieldIncidentTime,
	transform.FieldIncidentDate,
	transform.FieldDispatchTime,
	transform.FieldEnrouteTime,
	transform.FieldArrivalTime,
	transform.FieldClearTime,
	transform.FieldIncidentType,
	transform.FieldRespondingUnit,
	transform.FieldAddress,
	transform.FieldCity,
	transform.FieldState,
	transform.FieldLatitude,
	transform.FieldLongitude,
}

// WriteRows writes transformed rows as CSV with a stable column order.
func WriteRows(w io.Writer, rows []transform.TransformedRow) error {
	columns := outputColumns(rows)
	writer := csv.NewWriter(w)

	if err := writer.Write(columns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	record := make([]string, len(columns))
	for _, row := range rows {
		for i, col := range columns {
			if v, ok := row[col]; ok && v != nil {
				record[i] = fmt.Sprintf("%v", v)
			} else {
				record[i] = ""
			}
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	writer.Flush()
	return writer.Error()
}

func outputColumns(rows []transform.TransformedRow) []string {
	seen := map[string]bool{}
	for _, row := range rows {
		for key := range row {
			seen[key] = true
		}
	}

	columns := make([]string, 0, len(seen))
	for _, c := range canonicalColumnOrder {
		if seen[c] {
			columns = append(columns, c)
			delete(seen, c)
		}
	}
	rest := make([]string, 0, len(seen))
	for c := range seen {
		rest = append(rest, c)
	}
	sort.Strings(rest)
	return append(columns, rest...)
}

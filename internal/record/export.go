package record

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"time"
)

const (
	dayLayout       = "2006-01-02"
	timestampLayout = "2006-01-02 15:04:05"
)

// DateLayout returns the layout used to write the date column of t: RFC3339
// when any date carries a zone other than UTC, otherwise a plain day when
// every date is midnight and a timestamp when not.
func DateLayout(t *Table) string {
	layout := dayLayout
	for _, r := range t.Rows {
		if r.Date.Location() != time.UTC {
			return time.RFC3339
		}
		h, m, s := r.Date.Clock()
		if h != 0 || m != 0 || s != 0 || r.Date.Nanosecond() != 0 {
			layout = timestampLayout
		}
	}
	return layout
}

// WriteCSV writes t as CSV with its header, in column order and without an
// index column. Missing cells become empty fields.
func WriteCSV(w io.Writer, t *Table) error {
	header, rows := t.Strings()
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("write rows: %w", err)
	}
	return nil
}

// ExportCSV returns t serialized by WriteCSV.
func ExportCSV(t *Table) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, t); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

package record

import (
	"bufio"
	"bytes"
	"encoding/csv"
	stderrors "errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/Lewis310/lewishealthapplication/internal/errors"
)

// LoadOptions controls how a CSV stream is read.
type LoadOptions struct {
	// Table names the input in error messages ("activity", "nutrition").
	Table string
	// Delimiter is ',' when zero. ';' and '\t' are also accepted.
	Delimiter rune
	// MaxRows limits data rows; 0 means unlimited.
	MaxRows int
}

// dateLayouts are tried in order; the first layout that parses wins.
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006/01/02",
	"01/02/2006",
	"1/2/2006",
	"02.01.2006",
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// naTokens are cell values read as missing, the same set common CSV tooling
// (pandas read_csv) treats as NA by default. Matching is exact after trimming.
var naTokens = map[string]bool{
	"#N/A": true, "#N/A N/A": true, "#NA": true,
	"-1.#IND": true, "-1.#QNAN": true, "1.#IND": true, "1.#QNAN": true,
	"-NaN": true, "-nan": true, "NaN": true, "nan": true,
	"<NA>": true, "N/A": true, "n/a": true, "NA": true,
	"NULL": true, "null": true, "None": true,
}

// IsMissing reports whether a raw cell value stands for a missing value.
func IsMissing(raw string) bool {
	s := strings.TrimSpace(raw)
	return s == "" || naTokens[s]
}

// Load parses a CSV stream with a header row into a Table. The date column is
// required and every date cell is coerced to a time.Time. Other columns are
// kept as text.
func Load(r io.Reader, opt LoadOptions) (*Table, error) {
	delim := opt.Delimiter
	if delim == 0 {
		delim = ','
	}
	if delim != ',' && delim != ';' && delim != '\t' {
		return nil, errors.NewInvalidRequest(fmt.Sprintf("unsupported delimiter %q", delim))
	}
	tableName := opt.Table
	if tableName == "" {
		tableName = "input"
	}

	br := bufio.NewReader(r)
	if head, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(head, utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
	}

	cr := csv.NewReader(br)
	cr.Comma = delim
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		if stderrors.Is(err, io.EOF) {
			return nil, errors.NewParse(fmt.Sprintf("%s: missing header row", tableName), 0)
		}
		return nil, parseError(err)
	}
	ncol := len(header)

	t := &Table{Columns: make([]string, ncol), DateIndex: -1}
	for i, h := range header {
		t.Columns[i] = strings.TrimSpace(h)
	}
	t.DateIndex = t.Index(ColDate)
	if t.DateIndex < 0 {
		return nil, errors.NewMissingColumn(ColDate, tableName)
	}

	for n := 1; ; n++ {
		rec, err := cr.Read()
		if err != nil {
			if stderrors.Is(err, io.EOF) {
				break
			}
			return nil, parseError(err)
		}
		if opt.MaxRows > 0 && n > opt.MaxRows {
			return nil, errors.NewInvalidRequest(fmt.Sprintf("%s has more than %d rows", tableName, opt.MaxRows))
		}
		if len(rec) > ncol {
			line, _ := cr.FieldPos(0)
			return nil, errors.NewParse(fmt.Sprintf("%s: expected %d fields, got %d", tableName, ncol, len(rec)), line)
		}

		row := Row{Cells: make([]Cell, ncol)}
		for j := 0; j < ncol; j++ {
			if j >= len(rec) || IsMissing(rec[j]) {
				row.Cells[j] = Cell{Missing: true}
				continue
			}
			row.Cells[j] = Cell{Raw: rec[j]}
		}

		var raw string
		if t.DateIndex < len(rec) {
			raw = strings.TrimSpace(rec[t.DateIndex])
		}
		d, ok := ParseDate(raw)
		if !ok {
			return nil, errors.NewDateFormat(n, raw)
		}
		row.Date = d
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

// ParseDate parses s with the supported date layouts.
func ParseDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, l := range dateLayouts {
		if d, err := time.Parse(l, s); err == nil {
			return d, true
		}
	}
	return time.Time{}, false
}

func parseError(err error) error {
	var pe *csv.ParseError
	if stderrors.As(err, &pe) {
		return errors.NewParse(pe.Err.Error(), pe.Line)
	}
	return errors.NewParse(err.Error(), 0)
}

// Package record loads, types and exports the daily tables the report
// pipeline works on.
package record

import (
	"strings"
	"time"
)

// Column names the pipeline reads by name.
const (
	ColDate           = "date"
	ColCaloriesBurned = "calories_burned"
	ColActiveMinutes  = "active_minutes"
	ColSleepMinutes   = "sleep_minutes"
	ColProteinG       = "protein_g"
	ColRecommendation = "recommendation"
)

// Cell is one loosely typed value. Missing is set for empty fields and for
// placeholders added by a join that found no match.
type Cell struct {
	Raw     string
	Missing bool
}

// Row is one day of data. Cells is aligned with Table.Columns and includes the
// original date text at Table.DateIndex.
type Row struct {
	Date  time.Time
	Cells []Cell
}

// Table is an ordered set of rows sharing one header.
type Table struct {
	Columns   []string
	DateIndex int
	Rows      []Row
}

// Len returns the number of rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// Index returns the position of the named column or -1. Matching trims spaces
// and ignores case.
func (t *Table) Index(name string) int {
	want := normalizeName(name)
	for i, c := range t.Columns {
		if normalizeName(c) == want {
			return i
		}
	}
	return -1
}

// Has reports whether the named column exists.
func (t *Table) Has(name string) bool {
	return t.Index(name) >= 0
}

// Clone returns a deep copy of t.
func (t *Table) Clone() *Table {
	out := &Table{
		Columns:   append([]string(nil), t.Columns...),
		DateIndex: t.DateIndex,
		Rows:      make([]Row, len(t.Rows)),
	}
	for i, r := range t.Rows {
		out.Rows[i] = Row{Date: r.Date, Cells: append([]Cell(nil), r.Cells...)}
	}
	return out
}

// Tail returns the last n rows of t by position, or every row when t is shorter.
func (t *Table) Tail(n int) []Row {
	if n <= 0 {
		return nil
	}
	if len(t.Rows) <= n {
		return t.Rows
	}
	return t.Rows[len(t.Rows)-n:]
}

// Strings returns the table as header plus rows of raw text, with the date
// column formatted by the export layout.
func (t *Table) Strings() (header []string, rows [][]string) {
	layout := DateLayout(t)
	header = append([]string(nil), t.Columns...)
	rows = make([][]string, len(t.Rows))
	for i, r := range t.Rows {
		rec := make([]string, len(t.Columns))
		for j := range t.Columns {
			if j == t.DateIndex {
				rec[j] = r.Date.Format(layout)
				continue
			}
			if j < len(r.Cells) && !r.Cells[j].Missing {
				rec[j] = r.Cells[j].Raw
			}
		}
		rows[i] = rec
	}
	return header, rows
}

func normalizeName(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

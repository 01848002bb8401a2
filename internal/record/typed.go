package record

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/Lewis310/lewishealthapplication/internal/errors"
)

// NotAvailable is how an invalid Optional is shown to users.
const NotAvailable = "not available"

// Optional is a number that may be absent. An absent value is neither zero
// nor an error.
type Optional struct {
	Value float64
	Valid bool
}

// Some returns a present Optional.
func Some(v float64) Optional { return Optional{Value: v, Valid: true} }

// None returns an absent Optional.
func None() Optional { return Optional{} }

// String formats the value in shortest form, or NotAvailable.
func (o Optional) String() string {
	if !o.Valid {
		return NotAvailable
	}
	return FormatNumber(o.Value)
}

// MarshalJSON encodes a present value as a number and an absent one as the
// NotAvailable string.
func (o Optional) MarshalJSON() ([]byte, error) {
	if !o.Valid {
		return json.Marshal(NotAvailable)
	}
	return json.Marshal(o.Value)
}

// UnmarshalJSON accepts a number or the NotAvailable string.
func (o *Optional) UnmarshalJSON(b []byte) error {
	var v float64
	if err := json.Unmarshal(b, &v); err == nil {
		*o = Some(v)
		return nil
	}
	*o = None()
	return nil
}

// ActivityRecord is the typed view of one activity row.
type ActivityRecord struct {
	Date           time.Time
	CaloriesBurned float64
	ActiveMinutes  float64
	SleepMinutes   float64
}

// NutritionRecord is the typed view of one nutrition row.
type NutritionRecord struct {
	Date     time.Time
	ProteinG Optional
}

// MergedRecord is an activity row joined with its nutrition data, if any.
type MergedRecord struct {
	ActivityRecord
	ProteinG Optional
}

// FormatNumber prints v in its shortest form (50, 72.5).
func FormatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// ParseNumber parses a numeric cell. NaN and infinities are rejected.
func ParseNumber(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// Require returns the indexes of the named columns, failing with
// MISSING_COLUMN on the first one that is absent.
func (t *Table) Require(table string, names ...string) ([]int, error) {
	idx := make([]int, len(names))
	for i, n := range names {
		idx[i] = t.Index(n)
		if idx[i] < 0 {
			return nil, errors.NewMissingColumn(n, table)
		}
	}
	return idx, nil
}

// Number reads a required numeric cell. Rows are reported 1-based.
func (t *Table) Number(row, col int) (float64, error) {
	c := t.cell(row, col)
	if c.Missing {
		return 0, errors.NewMissingValue(t.Columns[col], row+1)
	}
	v, ok := ParseNumber(c.Raw)
	if !ok {
		return 0, errors.NewNotNumeric(t.Columns[col], row+1, c.Raw)
	}
	return v, nil
}

// OptionalNumber reads a numeric cell that may be absent. A negative col
// means the column does not exist.
func (t *Table) OptionalNumber(row, col int) (Optional, error) {
	if col < 0 {
		return None(), nil
	}
	c := t.cell(row, col)
	if c.Missing {
		return None(), nil
	}
	v, ok := ParseNumber(c.Raw)
	if !ok {
		return None(), errors.NewNotNumeric(t.Columns[col], row+1, c.Raw)
	}
	return Some(v), nil
}

// Activity returns row i as an ActivityRecord.
func (t *Table) Activity(i int) (ActivityRecord, error) {
	idx, err := t.Require("activity", ColCaloriesBurned, ColActiveMinutes, ColSleepMinutes)
	if err != nil {
		return ActivityRecord{}, err
	}
	rec := ActivityRecord{Date: t.Rows[i].Date}
	fields := []*float64{&rec.CaloriesBurned, &rec.ActiveMinutes, &rec.SleepMinutes}
	for k, col := range idx {
		v, err := t.Number(i, col)
		if err != nil {
			return ActivityRecord{}, err
		}
		*fields[k] = v
	}
	return rec, nil
}

// Nutrition returns row i as a NutritionRecord.
func (t *Table) Nutrition(i int) (NutritionRecord, error) {
	p, err := t.OptionalNumber(i, t.Index(ColProteinG))
	if err != nil {
		return NutritionRecord{}, err
	}
	return NutritionRecord{Date: t.Rows[i].Date, ProteinG: p}, nil
}

// Merged returns row i as a MergedRecord.
func (t *Table) Merged(i int) (MergedRecord, error) {
	a, err := t.Activity(i)
	if err != nil {
		return MergedRecord{}, err
	}
	n, err := t.Nutrition(i)
	if err != nil {
		return MergedRecord{}, err
	}
	return MergedRecord{ActivityRecord: a, ProteinG: n.ProteinG}, nil
}

func (t *Table) cell(row, col int) Cell {
	cells := t.Rows[row].Cells
	if col >= len(cells) {
		return Cell{Missing: true}
	}
	return cells[col]
}

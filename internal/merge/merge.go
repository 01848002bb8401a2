// Package merge joins the activity table with the optional nutrition table.
package merge

import (
	"fmt"
	"strings"
	"time"

	"github.com/Lewis310/lewishealthapplication/internal/errors"
	"github.com/Lewis310/lewishealthapplication/internal/record"
)

// DuplicatePolicy decides what happens when the secondary table repeats a date.
type DuplicatePolicy string

const (
	// KeepFirst joins each primary row with the first secondary row of that date.
	KeepFirst DuplicatePolicy = "first"
	// Reject fails the join with DUPLICATE_DATE.
	Reject DuplicatePolicy = "reject"
)

// Suffixes applied to column names present in both tables.
const (
	SuffixPrimary   = "_x"
	SuffixSecondary = "_y"
)

// ParsePolicy validates a policy name. The empty string selects KeepFirst.
func ParsePolicy(s string) (DuplicatePolicy, error) {
	switch DuplicatePolicy(s) {
	case "", KeepFirst:
		return KeepFirst, nil
	case Reject:
		return Reject, nil
	}
	return "", errors.NewInvalidRequest(fmt.Sprintf("unknown duplicate date policy %q (want first or reject)", s))
}

// Result is a joined table plus the secondary dates that matched no primary row.
type Result struct {
	Table     *record.Table
	Unmatched []time.Time
}

// LeftJoin keeps every primary row once, in order, and appends the secondary
// columns (except its date) matched on exact date equality. Unmatched rows get
// missing cells. A nil secondary returns a copy of primary.
func LeftJoin(primary, secondary *record.Table, policy DuplicatePolicy) (*record.Table, error) {
	res, err := Join(primary, secondary, policy)
	if err != nil {
		return nil, err
	}
	return res.Table, nil
}

// Join is LeftJoin that also reports unmatched secondary dates.
func Join(primary, secondary *record.Table, policy DuplicatePolicy) (*Result, error) {
	if primary == nil {
		return nil, errors.NewInvalidRequest("primary table is required")
	}
	if secondary == nil {
		return &Result{Table: primary.Clone()}, nil
	}
	if policy == "" {
		policy = KeepFirst
	}

	index := make(map[time.Time]int, len(secondary.Rows))
	order := make([]time.Time, 0, len(secondary.Rows))
	for i, r := range secondary.Rows {
		key := dateKey(r.Date)
		if _, dup := index[key]; dup {
			if policy == Reject {
				return nil, errors.NewDuplicateDate(r.Date.Format(record.DateLayout(secondary)))
			}
			continue
		}
		index[key] = i
		order = append(order, key)
	}

	extra := make([]int, 0, len(secondary.Columns))
	for j := range secondary.Columns {
		if j != secondary.DateIndex {
			extra = append(extra, j)
		}
	}

	out := &record.Table{DateIndex: primary.DateIndex}
	out.Columns = joinColumns(primary, secondary, extra)

	matched := make(map[time.Time]bool, len(index))
	out.Rows = make([]record.Row, len(primary.Rows))
	for i, r := range primary.Rows {
		cells := make([]record.Cell, 0, len(out.Columns))
		cells = append(cells, r.Cells...)
		for len(cells) < len(primary.Columns) {
			cells = append(cells, record.Cell{Missing: true})
		}

		key := dateKey(r.Date)
		si, ok := index[key]
		for _, j := range extra {
			if !ok || j >= len(secondary.Rows[si].Cells) {
				cells = append(cells, record.Cell{Missing: true})
				continue
			}
			cells = append(cells, secondary.Rows[si].Cells[j])
		}
		if ok {
			matched[key] = true
		}
		out.Rows[i] = record.Row{Date: r.Date, Cells: cells}
	}

	res := &Result{Table: out}
	for _, key := range order {
		if !matched[key] {
			res.Unmatched = append(res.Unmatched, secondary.Rows[index[key]].Date)
		}
	}
	return res, nil
}

// joinColumns suffixes names that collide between the two sides.
func joinColumns(primary, secondary *record.Table, extra []int) []string {
	seen := make(map[string]bool, len(extra))
	for _, j := range extra {
		seen[normalize(secondary.Columns[j])] = true
	}
	primarySeen := make(map[string]bool, len(primary.Columns))

	cols := make([]string, 0, len(primary.Columns)+len(extra))
	for i, c := range primary.Columns {
		if i != primary.DateIndex && seen[normalize(c)] {
			cols = append(cols, c+SuffixPrimary)
		} else {
			cols = append(cols, c)
		}
		if i != primary.DateIndex {
			primarySeen[normalize(c)] = true
		}
	}
	for _, j := range extra {
		c := secondary.Columns[j]
		if primarySeen[normalize(c)] {
			c += SuffixSecondary
		}
		cols = append(cols, c)
	}
	return cols
}

// dateKey makes equal instants written in different zones match.
func dateKey(t time.Time) time.Time {
	return t.UTC()
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

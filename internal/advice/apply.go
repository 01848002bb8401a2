package advice

import (
	"github.com/Lewis310/lewishealthapplication/internal/record"
)

// Apply returns a copy of t with the recommendation column filled for every
// row. An existing recommendation column is replaced in place, otherwise one
// is appended. Any row that cannot be evaluated fails the whole table.
func Apply(t *record.Table, p Params) (*record.Table, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if _, err := t.Require("merged", record.ColCaloriesBurned, record.ColActiveMinutes, record.ColSleepMinutes); err != nil {
		return nil, err
	}

	out := t.Clone()
	recCol := out.Index(record.ColRecommendation)
	if recCol < 0 {
		out.Columns = append(out.Columns, record.ColRecommendation)
		recCol = len(out.Columns) - 1
	}

	for i := range out.Rows {
		rec, err := t.Merged(i)
		if err != nil {
			return nil, err
		}

		cells := out.Rows[i].Cells
		for len(cells) < len(out.Columns) {
			cells = append(cells, record.Cell{Missing: true})
		}
		cells[recCol] = record.Cell{Raw: Text(rec, p)}
		out.Rows[i].Cells = cells
	}
	return out, nil
}

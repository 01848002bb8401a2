// Package report runs the full pipeline for one upload: load, join, advise,
// summarize, chart and export.
package report

import (
	"fmt"
	"io"
	"time"

	"github.com/Lewis310/lewishealthapplication/internal/advice"
	"github.com/Lewis310/lewishealthapplication/internal/chart"
	"github.com/Lewis310/lewishealthapplication/internal/errors"
	"github.com/Lewis310/lewishealthapplication/internal/merge"
	"github.com/Lewis310/lewishealthapplication/internal/record"
	"github.com/Lewis310/lewishealthapplication/internal/summary"
)

// Filename is the download name of the exported table.
const Filename = "health_report.csv"

// Input holds the uploaded streams. Nutrition may be nil.
type Input struct {
	Activity      io.Reader
	ActivityName  string
	Nutrition     io.Reader
	NutritionName string
}

// Options configures one run.
type Options struct {
	Params     advice.Params
	Duplicates merge.DuplicatePolicy
	MaxRows    int
	Delimiter  rune
	Chart      chart.Options
}

// DefaultOptions returns the options used when nothing is configured.
func DefaultOptions() Options {
	return Options{
		Params:     advice.DefaultParams(),
		Duplicates: merge.KeepFirst,
		Chart:      chart.Options{Width: chart.DefaultWidth, Height: chart.DefaultHeight},
	}
}

// Report is the result of one pipeline run.
type Report struct {
	Source    string
	Table     *record.Table
	Summary   summary.Weekly
	Chart     *chart.Chart
	CSV       []byte
	Params    advice.Params
	Unmatched []time.Time
}

// Generate runs the pipeline. Any failure aborts the whole run; there are no
// partial reports.
func Generate(in Input, opt Options) (*Report, error) {
	if in.Activity == nil {
		return nil, errors.NewInvalidRequest("activity CSV is required")
	}
	if opt.Params == (advice.Params{}) {
		opt.Params = advice.DefaultParams()
	}

	act, err := record.Load(in.Activity, record.LoadOptions{Table: "activity", Delimiter: opt.Delimiter, MaxRows: opt.MaxRows})
	if err != nil {
		return nil, err
	}
	if _, err := act.Require("activity", record.ColCaloriesBurned, record.ColActiveMinutes, record.ColSleepMinutes); err != nil {
		return nil, err
	}

	var nut *record.Table
	if in.Nutrition != nil {
		nut, err = record.Load(in.Nutrition, record.LoadOptions{Table: "nutrition", Delimiter: opt.Delimiter, MaxRows: opt.MaxRows})
		if err != nil {
			return nil, err
		}
		if _, err := nut.Require("nutrition", record.ColProteinG); err != nil {
			return nil, err
		}
	}

	joined, err := merge.Join(act, nut, opt.Duplicates)
	if err != nil {
		return nil, err
	}

	table, err := advice.Apply(joined.Table, opt.Params)
	if err != nil {
		return nil, err
	}

	weekly, err := summary.Compute(table)
	if err != nil {
		return nil, err
	}

	c, err := chart.Render(table, opt.Chart)
	if err != nil {
		return nil, err
	}

	csv, err := record.ExportCSV(table)
	if err != nil {
		return nil, errors.NewInternal(fmt.Errorf("export csv: %w", err))
	}

	return &Report{
		Source:    sourceName(in),
		Table:     table,
		Summary:   weekly,
		Chart:     c,
		CSV:       csv,
		Params:    opt.Params,
		Unmatched: joined.Unmatched,
	}, nil
}

func sourceName(in Input) string {
	name := in.ActivityName
	if name == "" {
		name = "activity"
	}
	if in.Nutrition != nil {
		n := in.NutritionName
		if n == "" {
			n = "nutrition"
		}
		name += " + " + n
	}
	return name
}

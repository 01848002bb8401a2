// Package summary computes the weekly figures shown next to the daily table.
package summary

import (
	"strconv"

	"github.com/Lewis310/lewishealthapplication/internal/record"
)

// WindowSize is the number of trailing rows summarized.
//
// The window is the last WindowSize rows in table order, not a calendar week.
// Gaps or unsorted dates in the input are summarized as they appear.
const WindowSize = 7

// Weekly is the summary of the trailing window.
type Weekly struct {
	TotalCaloriesBurned float64         `json:"total_calories_burned"`
	AvgSleepHours       float64         `json:"avg_sleep_hours"`
	AvgProteinG         record.Optional `json:"avg_protein_g"`
	Days                int             `json:"days"`
}

// Compute summarizes the last WindowSize rows of t. An empty table yields
// zero totals and no protein average.
func Compute(t *record.Table) (Weekly, error) {
	idx, err := t.Require("merged", record.ColCaloriesBurned, record.ColSleepMinutes)
	if err != nil {
		return Weekly{}, err
	}
	calCol, sleepCol := idx[0], idx[1]
	proteinCol := t.Index(record.ColProteinG)

	start := t.Len() - WindowSize
	if start < 0 {
		start = 0
	}

	var w Weekly
	var sleepSum, proteinSum float64
	var proteinN int
	for i := start; i < t.Len(); i++ {
		cal, err := t.Number(i, calCol)
		if err != nil {
			return Weekly{}, err
		}
		sleep, err := t.Number(i, sleepCol)
		if err != nil {
			return Weekly{}, err
		}
		protein, err := t.OptionalNumber(i, proteinCol)
		if err != nil {
			return Weekly{}, err
		}

		w.TotalCaloriesBurned += cal
		sleepSum += sleep
		if protein.Valid {
			proteinSum += protein.Value
			proteinN++
		}
		w.Days++
	}

	if w.Days > 0 {
		w.AvgSleepHours = round1(sleepSum / float64(w.Days) / 60)
	}
	if proteinN > 0 {
		w.AvgProteinG = record.Some(round1(proteinSum / float64(proteinN)))
	}
	return w, nil
}

// Rows returns the summary as ordered label/value pairs for display.
func (w Weekly) Rows() [][2]string {
	return [][2]string{
		{"Total Calories Burned", record.FormatNumber(w.TotalCaloriesBurned)},
		{"Avg Sleep (hrs)", record.FormatNumber(w.AvgSleepHours)},
		{"Avg Protein (g)", w.AvgProteinG.String()},
	}
}

// round1 rounds to one decimal using the correctly rounded decimal form of x,
// so exact ties go to the even digit: 7.25 -> 7.2, 0.15 -> 0.1.
func round1(x float64) float64 {
	v, err := strconv.ParseFloat(strconv.FormatFloat(x, 'f', 1, 64), 64)
	if err != nil {
		return x
	}
	return v
}

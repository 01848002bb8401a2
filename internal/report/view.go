package report

import (
	"github.com/Lewis310/lewishealthapplication/internal/advice"
	"github.com/Lewis310/lewishealthapplication/internal/chart"
	"github.com/Lewis310/lewishealthapplication/internal/summary"
)

// View is the JSON shape of a report shared by the CLI, web and MCP surfaces.
type View struct {
	Source    string         `json:"source"`
	Columns   []string       `json:"columns"`
	Rows      [][]string     `json:"rows"`
	Summary   summary.Weekly `json:"summary"`
	Chart     ChartView      `json:"chart"`
	Params    advice.Params  `json:"params"`
	Unmatched []string       `json:"unmatched_nutrition_dates,omitempty"`
}

// ChartView describes the chart without its image bytes.
type ChartView struct {
	Title  string        `json:"title"`
	Points []chart.Point `json:"points"`
}

// View returns the serializable form of r.
func (r *Report) View() View {
	header, rows := r.Table.Strings()
	v := View{
		Source:  r.Source,
		Columns: header,
		Rows:    rows,
		Summary: r.Summary,
		Params:  r.Params,
	}
	if r.Chart != nil {
		v.Chart = ChartView{Title: r.Chart.Title, Points: r.Chart.Points}
	}
	for _, d := range r.Unmatched {
		v.Unmatched = append(v.Unmatched, d.Format("2006-01-02"))
	}
	return v
}

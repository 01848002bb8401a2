package report

import (
	"fmt"
	"strings"

	"github.com/Lewis310/lewishealthapplication/internal/record"
	"github.com/Lewis310/lewishealthapplication/internal/summary"
)

// Markdown renders the report as sectioned Markdown.
func (r *Report) Markdown() string {
	var b strings.Builder
	header, rows := r.Table.Strings()

	b.WriteString("[DAILY DATA & RECOMMENDATIONS]\n\n")
	if r.Source != "" {
		b.WriteString(fmt.Sprintf("Source: %s\n\n", safeCell(r.Source)))
	}
	if len(rows) == 0 {
		b.WriteString("No rows.\n\n")
	} else {
		writeRow(&b, header)
		sep := make([]string, len(header))
		for i := range sep {
			sep[i] = "---"
		}
		writeRow(&b, sep)
		for _, row := range rows {
			writeRow(&b, row)
		}
		b.WriteString("\n")
	}

	b.WriteString("[WEEKLY SUMMARY]\n\n")
	for _, kv := range r.Summary.Rows() {
		b.WriteString(fmt.Sprintf("- %s: %s\n", kv[0], kv[1]))
	}
	b.WriteString("\n")

	b.WriteString("[NOTES]\n\n")
	b.WriteString(fmt.Sprintf("- Weekly window: last %d rows in table order (%d used).\n", summary.WindowSize, r.Summary.Days))
	b.WriteString(fmt.Sprintf("- Protein target: %sg (%s kg × %s g/kg).\n",
		record.FormatNumber(r.Params.ProteinTarget()),
		record.FormatNumber(r.Params.WeightKg),
		record.FormatNumber(r.Params.ProteinPerKg)))
	if !r.Table.Has(record.ColProteinG) {
		b.WriteString("- No nutrition data: protein advice and average are not available.\n")
	}
	if n := len(r.Unmatched); n > 0 {
		dates := make([]string, n)
		for i, d := range r.Unmatched {
			dates[i] = d.Format("2006-01-02")
		}
		b.WriteString(fmt.Sprintf("- %d nutrition date(s) matched no activity row: %s.\n", n, strings.Join(dates, ", ")))
	}
	return b.String()
}

func writeRow(b *strings.Builder, cells []string) {
	b.WriteString("|")
	for _, c := range cells {
		b.WriteString(" ")
		b.WriteString(safeCell(c))
		b.WriteString(" |")
	}
	b.WriteString("\n")
}

// safeCell keeps a value on one table line.
func safeCell(s string) string {
	s = strings.ReplaceAll(s, "|", "\\|")
	s = strings.ReplaceAll(s, "\r", " ")
	return strings.ReplaceAll(s, "\n", " ")
}

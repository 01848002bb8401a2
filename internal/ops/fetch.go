package ops

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Lewis310/lewishealthapplication/internal/db"
	"github.com/Lewis310/lewishealthapplication/internal/errors"
	"github.com/Lewis310/lewishealthapplication/internal/report"
	"github.com/Lewis310/lewishealthapplication/internal/summary"
)

// FetchInput contains parameters for the Fetch operation.
type FetchInput struct {
	ID              string
	IncludeCSV      bool
	IncludeMarkdown *bool // default: true (nil means default)
}

// FetchOutput contains the result of the Fetch operation.
type FetchOutput struct {
	ID         string         `json:"id"`
	CreatedAt  int64          `json:"created_at"`
	SourceName string         `json:"source_name"`
	RowCount   int            `json:"row_count"`
	Summary    summary.Weekly `json:"summary"`
	Markdown   string         `json:"markdown,omitempty"`
	CSV        string         `json:"csv,omitempty"`
}

// Fetch retrieves a stored report by ID.
func Fetch(database *sql.DB, input FetchInput) (*FetchOutput, error) {
	id := strings.TrimSpace(input.ID)
	if id == "" {
		return nil, errors.NewInvalidRequest("id is required")
	}

	a, err := db.GetByID(database, id)
	if err != nil {
		return nil, err
	}

	var weekly summary.Weekly
	if err := json.Unmarshal([]byte(a.SummaryJSON), &weekly); err != nil {
		return nil, errors.NewInternal(fmt.Errorf("decode summary: %w", err))
	}

	output := &FetchOutput{
		ID:         a.ID,
		CreatedAt:  a.CreatedAt,
		SourceName: a.SourceName,
		RowCount:   a.RowCount,
		Summary:    weekly,
	}

	includeMarkdown := true
	if input.IncludeMarkdown != nil {
		includeMarkdown = *input.IncludeMarkdown
	}
	if includeMarkdown {
		output.Markdown = a.Markdown
	}
	if input.IncludeCSV {
		output.CSV = string(a.CSV)
	}

	return output, nil
}

// Artifact kinds that can be downloaded.
const (
	KindCSV      = "csv"
	KindChart    = "png"
	KindMarkdown = "md"
)

// Download is one downloadable file of a stored report.
type Download struct {
	Filename    string
	ContentType string
	Body        []byte
}

// FetchDownload returns one file of a stored report.
func FetchDownload(database *sql.DB, id, kind string) (*Download, error) {
	a, err := db.GetByID(database, strings.TrimSpace(id))
	if err != nil {
		return nil, err
	}

	switch kind {
	case KindCSV:
		return &Download{Filename: report.Filename, ContentType: "text/csv; charset=utf-8", Body: a.CSV}, nil
	case KindChart:
		return &Download{Filename: "chart.png", ContentType: "image/png", Body: a.ChartPNG}, nil
	case KindMarkdown:
		return &Download{Filename: "report.md", ContentType: "text/markdown; charset=utf-8", Body: []byte(a.Markdown)}, nil
	default:
		return nil, errors.NewInvalidRequest(fmt.Sprintf("unknown artifact kind %q", kind))
	}
}

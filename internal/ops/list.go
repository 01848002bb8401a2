package ops

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/Lewis310/lewishealthapplication/internal/db"
	"github.com/Lewis310/lewishealthapplication/internal/errors"
	"github.com/Lewis310/lewishealthapplication/internal/summary"
)

// ListInput contains parameters for the List operation.
type ListInput struct {
	Limit  int // default: 20, max: 100
	Offset int // default: 0
}

// ReportSummary is one row of a report listing.
type ReportSummary struct {
	db.ArtifactSummary
	Summary summary.Weekly `json:"summary"`
}

// ListOutput contains the result of the List operation.
type ListOutput struct {
	Items      []ReportSummary `json:"items"`
	Pagination Pagination      `json:"pagination"`
	Sort       string          `json:"sort"`
}

// List retrieves stored report summaries, newest first, with pagination.
func List(database *sql.DB, input ListInput) (*ListOutput, error) {
	// Apply limit defaults and bounds
	limit := input.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}

	// Ensure offset is non-negative
	offset := max(input.Offset, 0)

	rows, total, err := db.List(database, limit, offset)
	if err != nil {
		return nil, err
	}

	// Ensure we return an empty array rather than nil
	items := make([]ReportSummary, 0, len(rows))
	for _, r := range rows {
		item := ReportSummary{ArtifactSummary: r}
		if err := json.Unmarshal([]byte(r.SummaryJSON), &item.Summary); err != nil {
			return nil, errors.NewInternal(fmt.Errorf("decode summary of %s: %w", r.ID, err))
		}
		items = append(items, item)
	}

	return &ListOutput{
		Items: items,
		Pagination: Pagination{
			Limit:   limit,
			Offset:  offset,
			HasMore: offset+len(items) < total,
			Total:   total,
		},
		Sort: "created_at_desc",
	}, nil
}

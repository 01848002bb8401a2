package ops

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Lewis310/lewishealthapplication/internal/db"
	"github.com/Lewis310/lewishealthapplication/internal/errors"
	"github.com/Lewis310/lewishealthapplication/internal/observability"
)

// PurgeInput contains parameters for the Purge operation.
type PurgeInput struct {
	Keep *int // optional, keep the newest N reports (default 0: delete all)
}

// PurgeOutput contains the result of the Purge operation.
type PurgeOutput struct {
	Purged  int    `json:"purged"`
	Message string `json:"message"`
}

// Purge deletes stored reports, optionally keeping the newest ones.
func Purge(ctx context.Context, database *sql.DB, input PurgeInput) (*PurgeOutput, error) {
	keep := 0
	if input.Keep != nil {
		if *input.Keep < 0 {
			return nil, errors.NewInvalidRequest("keep must not be negative")
		}
		keep = *input.Keep
	}

	count, err := db.PruneOldest(database, keep)
	if err != nil {
		return nil, err
	}
	if n, err := db.Count(database); err == nil {
		observability.SetArtifactsStored(n)
	}

	return &PurgeOutput{
		Purged:  count,
		Message: formatPurgeMessage(count, input.Keep),
	}, nil
}

// formatPurgeMessage creates a human-readable message for the purge result.
func formatPurgeMessage(count int, keep *int) string {
	if count == 0 {
		return "No reports to purge"
	}

	reportWord := "report"
	if count > 1 {
		reportWord = "reports"
	}

	msg := fmt.Sprintf("Deleted %d %s", count, reportWord)

	if keep != nil && *keep > 0 {
		msg += fmt.Sprintf(" (kept the newest %d)", *keep)
	}

	return msg
}

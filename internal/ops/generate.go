package ops

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/Lewis310/lewishealthapplication/internal/config"
	"github.com/Lewis310/lewishealthapplication/internal/db"
	"github.com/Lewis310/lewishealthapplication/internal/errors"
	"github.com/Lewis310/lewishealthapplication/internal/observability"
	"github.com/Lewis310/lewishealthapplication/internal/report"
)

// GenerateInput contains parameters for the Generate operation.
type GenerateInput struct {
	Activity      io.Reader // required
	ActivityName  string
	Nutrition     io.Reader // optional
	NutritionName string
	Overrides     Overrides
	Delimiter     rune   // applies to both tables; zero means ','
	Surface       string // metrics label, defaults to "cli"
}

// GenerateOutput contains the result of the Generate operation.
type GenerateOutput struct {
	ID        string         `json:"id"`
	CreatedAt int64          `json:"created_at"`
	Evicted   int            `json:"evicted"`
	Report    *report.Report `json:"-"`
}

// Generate runs the report pipeline and stores the result as a new artifact.
// The oldest artifacts beyond cfg.MaxReports are evicted afterwards.
func Generate(ctx context.Context, database *sql.DB, cfg *config.Config, input GenerateInput) (out *GenerateOutput, err error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	surface := input.Surface
	if surface == "" {
		surface = observability.SurfaceCLI
	}

	started := time.Now()
	rows := 0
	defer func() {
		observability.RecordRun(surface, started, rows, err)
	}()

	if err := ctx.Err(); err != nil {
		return nil, errors.NewInvalidRequest("request cancelled")
	}

	opt, err := ReportOptions(cfg, input.Overrides)
	if err != nil {
		return nil, err
	}
	opt.Delimiter = input.Delimiter

	rep, err := report.Generate(report.Input{
		Activity:      input.Activity,
		ActivityName:  input.ActivityName,
		Nutrition:     input.Nutrition,
		NutritionName: input.NutritionName,
	}, opt)
	if err != nil {
		return nil, err
	}
	rows = rep.Table.Len()

	summaryJSON, err := json.Marshal(rep.Summary)
	if err != nil {
		return nil, errors.NewInternal(fmt.Errorf("encode summary: %w", err))
	}

	id, err := generateULID()
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	now := time.Now().Unix()
	artifact := &db.Artifact{
		ID:          id,
		CreatedAt:   now,
		SourceName:  rep.Source,
		RowCount:    rows,
		SummaryJSON: string(summaryJSON),
		Markdown:    rep.Markdown(),
		CSV:         rep.CSV,
		ChartPNG:    rep.Chart.PNG,
	}
	if err := db.Insert(database, artifact); err != nil {
		return nil, err
	}

	evicted, err := db.PruneOldest(database, cfg.MaxReports)
	if err != nil {
		return nil, err
	}
	if n, err := db.Count(database); err == nil {
		observability.SetArtifactsStored(n)
	}

	return &GenerateOutput{
		ID:        id,
		CreatedAt: now,
		Evicted:   evicted,
		Report:    rep,
	}, nil
}

var (
	entropyMu sync.Mutex
	entropy   = ulid.Monotonic(rand.Reader, 0)
)

// generateULID creates a new ULID string. IDs from one process sort in
// creation order, which eviction relies on.
func generateULID() (string, error) {
	entropyMu.Lock()
	defer entropyMu.Unlock()
	id, err := ulid.New(ulid.Timestamp(time.Now()), entropy)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

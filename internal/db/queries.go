package db

import (
	"database/sql"

	"github.com/Lewis310/lewishealthapplication/internal/errors"
)

// Artifact is one stored report with its downloadable files.
type Artifact struct {
	ID          string
	CreatedAt   int64
	SourceName  string
	RowCount    int
	SummaryJSON string
	Markdown    string
	CSV         []byte
	ChartPNG    []byte
}

// ArtifactSummary is an Artifact without its file contents.
type ArtifactSummary struct {
	ID          string `json:"id"`
	CreatedAt   int64  `json:"created_at"`
	SourceName  string `json:"source_name"`
	RowCount    int    `json:"row_count"`
	SummaryJSON string `json:"-"`
}

// Insert stores a new artifact.
func Insert(db *sql.DB, a *Artifact) error {
	query := `
		INSERT INTO reports (
			id, created_at, source_name, row_count,
			summary_json, markdown, csv, chart_png
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := db.Exec(query,
		a.ID, a.CreatedAt, a.SourceName, a.RowCount,
		a.SummaryJSON, a.Markdown, a.CSV, a.ChartPNG,
	)
	if err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

// GetByID retrieves an artifact by its ULID.
func GetByID(db *sql.DB, id string) (*Artifact, error) {
	query := `
		SELECT id, created_at, source_name, row_count,
			summary_json, markdown, csv, chart_png
		FROM reports
		WHERE id = ?
	`

	var a Artifact
	err := db.QueryRow(query, id).Scan(
		&a.ID, &a.CreatedAt, &a.SourceName, &a.RowCount,
		&a.SummaryJSON, &a.Markdown, &a.CSV, &a.ChartPNG,
	)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFound(id)
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return &a, nil
}

// List returns artifact summaries, newest first, and the total count.
func List(db *sql.DB, limit, offset int) ([]ArtifactSummary, int, error) {
	total, err := Count(db)
	if err != nil {
		return nil, 0, err
	}

	query := `
		SELECT id, created_at, source_name, row_count, summary_json
		FROM reports
		ORDER BY created_at DESC, id DESC
		LIMIT ? OFFSET ?
	`
	rows, err := db.Query(query, limit, offset)
	if err != nil {
		return nil, 0, errors.NewInternal(err)
	}
	defer rows.Close()

	var out []ArtifactSummary
	for rows.Next() {
		var s ArtifactSummary
		if err := rows.Scan(&s.ID, &s.CreatedAt, &s.SourceName, &s.RowCount, &s.SummaryJSON); err != nil {
			return nil, 0, errors.NewInternal(err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, errors.NewInternal(err)
	}
	return out, total, nil
}

// Count returns the number of stored artifacts.
func Count(db *sql.DB) (int, error) {
	var n int
	if err := db.QueryRow("SELECT COUNT(*) FROM reports").Scan(&n); err != nil {
		return 0, errors.NewInternal(err)
	}
	return n, nil
}

// PruneOldest deletes all but the newest keep artifacts and returns how many
// were removed. keep <= 0 deletes everything.
func PruneOldest(db *sql.DB, keep int) (int, error) {
	if keep < 0 {
		keep = 0
	}
	query := `
		DELETE FROM reports
		WHERE id NOT IN (
			SELECT id FROM reports
			ORDER BY created_at DESC, id DESC
			LIMIT ?
		)
	`
	result, err := db.Exec(query, keep)
	if err != nil {
		return 0, errors.NewInternal(err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, errors.NewInternal(err)
	}
	return int(n), nil
}

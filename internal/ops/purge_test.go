package ops

import (
	"context"
	"testing"

	"github.com/Lewis310/lewishealthapplication/internal/db"
	"github.com/Lewis310/lewishealthapplication/internal/errors"
)

func TestPurge_All(t *testing.T) {
	database := openTestDB(t)
	generateN(t, database, nil, 3)

	out, err := Purge(context.Background(), database, PurgeInput{})
	if err != nil {
		t.Fatalf("Purge failed: %v", err)
	}
	if out.Purged != 3 {
		t.Errorf("Purged = %d, want 3", out.Purged)
	}
	if out.Message != "Deleted 3 reports" {
		t.Errorf("Message = %q", out.Message)
	}
	if n, _ := db.Count(database); n != 0 {
		t.Errorf("Count = %d, want 0", n)
	}
}

func TestPurge_Keep(t *testing.T) {
	database := openTestDB(t)
	ids := generateN(t, database, nil, 3)

	out, err := Purge(context.Background(), database, PurgeInput{Keep: intPtr(1)})
	if err != nil {
		t.Fatalf("Purge failed: %v", err)
	}
	if out.Purged != 2 {
		t.Errorf("Purged = %d, want 2", out.Purged)
	}
	if _, err := db.GetByID(database, ids[2]); err != nil {
		t.Errorf("newest report should survive: %v", err)
	}
}

func TestPurge_NegativeKeep(t *testing.T) {
	database := openTestDB(t)

	_, err := Purge(context.Background(), database, PurgeInput{Keep: intPtr(-1)})
	if !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("err = %v, want INVALID_REQUEST", err)
	}
}

func TestFormatPurgeMessage(t *testing.T) {
	tests := []struct {
		count int
		keep  *int
		want  string
	}{
		{0, nil, "No reports to purge"},
		{1, nil, "Deleted 1 report"},
		{2, intPtr(0), "Deleted 2 reports"},
		{4, intPtr(5), "Deleted 4 reports (kept the newest 5)"},
	}
	for _, tt := range tests {
		if got := formatPurgeMessage(tt.count, tt.keep); got != tt.want {
			t.Errorf("formatPurgeMessage(%d) = %q, want %q", tt.count, got, tt.want)
		}
	}
}

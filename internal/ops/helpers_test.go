package ops

import (
	"context"
	"database/sql"
	"strings"
	"testing"

	"github.com/Lewis310/lewishealthapplication/internal/config"
	"github.com/Lewis310/lewishealthapplication/internal/db"
)

const activityCSV = `date,calories_burned,active_minutes,sleep_minutes
2024-03-01,2100,15,300
2024-03-02,2400,30,450
2024-03-03,1900,45,480
`

const nutritionCSV = `date,protein_g
2024-03-01,50
2024-03-02,100
`

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	database, err := db.Open()
	if err != nil {
		t.Fatalf("db.Open failed: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return database
}

// generateN stores n reports from the same activity table and returns their IDs
// in creation order.
func generateN(t *testing.T, database *sql.DB, cfg *config.Config, n int) []string {
	t.Helper()
	ids := make([]string, 0, n)
	for range n {
		out, err := Generate(context.Background(), database, cfg, GenerateInput{
			Activity:     strings.NewReader(activityCSV),
			ActivityName: "activity.csv",
		})
		if err != nil {
			t.Fatalf("Generate failed: %v", err)
		}
		ids = append(ids, out.ID)
	}
	return ids
}

func floatPtr(v float64) *float64 { return &v }
func intPtr(v int) *int           { return &v }
func stringPtr(v string) *string  { return &v }
func boolPtr(v bool) *bool        { return &v }

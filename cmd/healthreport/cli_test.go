package main

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Lewis310/lewishealthapplication/internal/config"
	"github.com/Lewis310/lewishealthapplication/internal/db"
	"github.com/Lewis310/lewishealthapplication/internal/ops"
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

// setupTestDB creates an in-memory database for testing.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	database, err := db.Open()
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return database
}

// writeInputs writes the sample CSVs into dir and returns their paths.
func writeInputs(t *testing.T, dir string) (activity, nutrition string) {
	t.Helper()
	activity = filepath.Join(dir, "activity.csv")
	nutrition = filepath.Join(dir, "nutrition.csv")
	if err := os.WriteFile(activity, []byte(activityCSV), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(nutrition, []byte(nutritionCSV), 0o600); err != nil {
		t.Fatal(err)
	}
	return activity, nutrition
}

// runCLI runs the app with args and returns what it printed to stdout.
func runCLI(t *testing.T, database *sql.DB, cfg *config.Config, args ...string) (string, error) {
	t.Helper()

	oldStdout := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	app := newCLIApp(database, cfg, nil)
	err := app.Run(append([]string{"healthreport"}, args...))

	w.Close()
	os.Stdout = oldStdout

	var buf bytes.Buffer
	_, _ = io.Copy(&buf, r)
	return buf.String(), err
}

func TestIsCLIMode(t *testing.T) {
	tests := []struct {
		args []string
		want bool
	}{
		{[]string{"healthreport"}, false},
		{[]string{"healthreport", "report"}, true},
		{[]string{"healthreport", "serve"}, true},
		{[]string{"healthreport", "mcp"}, true},
		{[]string{"healthreport", "config", "show"}, true},
		{[]string{"healthreport", "--version"}, true},
		{[]string{"healthreport", "bogus"}, false},
	}
	for _, tt := range tests {
		if got := isCLIMode(tt.args); got != tt.want {
			t.Errorf("isCLIMode(%v) = %v, want %v", tt.args, got, tt.want)
		}
	}
}

func TestCLIReport_JSON(t *testing.T) {
	database := setupTestDB(t)
	dir := t.TempDir()
	activity, nutrition := writeInputs(t, dir)

	out, err := runCLI(t, database, config.DefaultConfig(),
		"report", "--activity", activity, "--nutrition", nutrition)
	if err != nil {
		t.Fatalf("report failed: %v", err)
	}

	var result ReportOutput
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("failed to parse output: %v\n%s", err, out)
	}
	if result.ID == "" {
		t.Error("expected an id")
	}
	if result.Report.Source != "activity.csv" {
		t.Errorf("source = %q, want activity.csv", result.Report.Source)
	}
	if len(result.Report.Rows) != 3 {
		t.Fatalf("rows = %d, want 3", len(result.Report.Rows))
	}
	if result.Report.Summary.TotalCaloriesBurned != 6400 {
		t.Errorf("total calories = %v, want 6400", result.Report.Summary.TotalCaloriesBurned)
	}
	if result.Report.Summary.AvgProteinG.Value != 75 {
		t.Errorf("avg protein = %v, want 75", result.Report.Summary.AvgProteinG)
	}
	if len(result.Files) != 0 {
		t.Errorf("files = %v, want none", result.Files)
	}
}

func TestCLIReport_WritesArtifacts(t *testing.T) {
	database := setupTestDB(t)
	dir := t.TempDir()
	activity, nutrition := writeInputs(t, dir)
	outDir := filepath.Join(dir, "out")

	out, err := runCLI(t, database, config.DefaultConfig(),
		"report",
		"--activity", activity,
		"--nutrition", nutrition,
		"--out", filepath.Join(outDir, "health_report.csv"),
		"--chart", filepath.Join(outDir, "chart.png"),
		"--markdown", filepath.Join(outDir, "report.md"),
	)
	if err != nil {
		t.Fatalf("report failed: %v", err)
	}

	var result ReportOutput
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("failed to parse output: %v", err)
	}
	if len(result.Files) != 3 {
		t.Fatalf("files = %d, want 3", len(result.Files))
	}

	csv, err := os.ReadFile(filepath.Join(outDir, "health_report.csv"))
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	if !strings.HasPrefix(string(csv), "date,calories_burned,active_minutes,sleep_minutes,protein_g,recommendation\n") {
		t.Errorf("unexpected csv header:\n%s", csv)
	}

	png, err := os.ReadFile(filepath.Join(outDir, "chart.png"))
	if err != nil {
		t.Fatalf("read chart: %v", err)
	}
	if !bytes.HasPrefix(png, []byte("\x89PNG\r\n\x1a\n")) {
		t.Error("chart.png is not a PNG")
	}

	md, err := os.ReadFile(filepath.Join(outDir, "report.md"))
	if err != nil {
		t.Fatalf("read markdown: %v", err)
	}
	if !strings.Contains(string(md), "[WEEKLY SUMMARY]") {
		t.Error("report.md missing weekly summary")
	}

	entries, _ := os.ReadDir(outDir)
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".tmp") {
			t.Errorf("temp file left behind: %s", e.Name())
		}
	}
}

func TestCLIReport_MarkdownFormat(t *testing.T) {
	database := setupTestDB(t)
	activity, _ := writeInputs(t, t.TempDir())

	out, err := runCLI(t, database, config.DefaultConfig(),
		"report", "--activity", activity, "--format", "markdown")
	if err != nil {
		t.Fatalf("report failed: %v", err)
	}
	if !strings.HasPrefix(out, "[DAILY DATA & RECOMMENDATIONS]") {
		t.Errorf("unexpected markdown output:\n%s", out)
	}
	if !strings.Contains(out, "Avg Protein (g): not available") {
		t.Errorf("expected protein not available without nutrition:\n%s", out)
	}
}

func TestCLIReport_Overrides(t *testing.T) {
	database := setupTestDB(t)
	activity, nutrition := writeInputs(t, t.TempDir())

	out, err := runCLI(t, database, config.DefaultConfig(),
		"report", "--activity", activity, "--nutrition", nutrition,
		"--weight-kg", "50", "--protein-per-kg", "1")
	if err != nil {
		t.Fatalf("report failed: %v", err)
	}

	var result ReportOutput
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("failed to parse output: %v", err)
	}
	if result.Report.Params.WeightKg != 50 || result.Report.Params.ProteinPerKg != 1 {
		t.Errorf("params = %+v, want weight 50 factor 1", result.Report.Params)
	}
	// 50g meets a 50g target, so only the activity and sleep advice remain.
	if strings.Contains(result.Report.Rows[0][5], "Protein low") {
		t.Errorf("row 0 recommendation = %q, protein should meet the target", result.Report.Rows[0][5])
	}
}

func TestCLIReport_Errors(t *testing.T) {
	database := setupTestDB(t)
	dir := t.TempDir()
	activity, _ := writeInputs(t, dir)

	badDates := filepath.Join(dir, "bad.csv")
	if err := os.WriteFile(badDates, []byte("date,calories_burned,active_minutes,sleep_minutes\nnot-a-date,1,2,3\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	wrongExt := filepath.Join(dir, "activity.json")
	if err := os.WriteFile(wrongExt, []byte(activityCSV), 0o600); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"missing activity", []string{"report"}, "[INVALID_REQUEST]"},
		{"file not found", []string{"report", "--activity", filepath.Join(dir, "nope.csv")}, "[FILE_NOT_FOUND]"},
		{"traversal", []string{"report", "--activity", "../activity.csv"}, "[INVALID_REQUEST]"},
		{"wrong extension", []string{"report", "--activity", wrongExt}, "[INVALID_REQUEST]"},
		{"bad date", []string{"report", "--activity", badDates}, "[DATE_FORMAT]"},
		{"bad format", []string{"report", "--activity", activity, "--format", "xml"}, "[INVALID_REQUEST]"},
		{"bad policy", []string{"report", "--activity", activity, "--duplicate-dates", "all"}, "[INVALID_REQUEST]"},
		{"bad output extension", []string{"report", "--activity", activity, "--out", filepath.Join(dir, "report.txt")}, "[INVALID_REQUEST]"},
		{"negative weight", []string{"report", "--activity", activity, "--weight-kg", "-1"}, "[INVALID_REQUEST]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runCLI(t, database, config.DefaultConfig(), tt.args...)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.HasPrefix(err.Error(), tt.want) {
				t.Errorf("error = %q, want prefix %s", err.Error(), tt.want)
			}
		})
	}
}

func TestCLIReport_StoresArtifact(t *testing.T) {
	database := setupTestDB(t)
	activity, _ := writeInputs(t, t.TempDir())

	out, err := runCLI(t, database, config.DefaultConfig(), "report", "--activity", activity)
	if err != nil {
		t.Fatalf("report failed: %v", err)
	}
	var result ReportOutput
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("failed to parse output: %v", err)
	}

	fetched, err := ops.Fetch(database, ops.FetchInput{ID: result.ID})
	if err != nil {
		t.Fatalf("fetch stored report: %v", err)
	}
	if fetched.RowCount != 3 {
		t.Errorf("row_count = %d, want 3", fetched.RowCount)
	}
}

func TestCLIConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, config.FileName)

	t.Run("init", func(t *testing.T) {
		out, err := runCLI(t, nil, config.DefaultConfig(), "config", "init", "--path", path)
		if err != nil {
			t.Fatalf("config init failed: %v", err)
		}
		if !strings.Contains(out, path) {
			t.Errorf("output should mention the path, got %s", out)
		}

		loaded, err := config.Load(dir)
		if err != nil {
			t.Fatalf("load written config: %v", err)
		}
		if loaded.WeightKg != 75 || loaded.Port != 8501 {
			t.Errorf("loaded config = %+v, want defaults", loaded)
		}
	})

	t.Run("init refuses to overwrite", func(t *testing.T) {
		_, err := runCLI(t, nil, config.DefaultConfig(), "config", "init", "--path", path)
		if err == nil || !strings.HasPrefix(err.Error(), "[INVALID_REQUEST]") {
			t.Fatalf("expected INVALID_REQUEST, got %v", err)
		}
		if _, err := runCLI(t, nil, config.DefaultConfig(), "config", "init", "--path", path, "--force"); err != nil {
			t.Fatalf("config init --force failed: %v", err)
		}
	})

	t.Run("show", func(t *testing.T) {
		cfg := config.DefaultConfig()
		cfg.WeightKg = 68
		out, err := runCLI(t, nil, cfg, "config", "show")
		if err != nil {
			t.Fatalf("config show failed: %v", err)
		}
		if !strings.Contains(out, "weight_kg: 68") {
			t.Errorf("config show output missing weight_kg:\n%s", out)
		}
	})
}

func TestParseDelimiter(t *testing.T) {
	tests := []struct {
		flag, path string
		want       rune
		wantErr    bool
	}{
		{"", "activity.csv", ',', false},
		{"", "activity.TSV", '\t', false},
		{";", "activity.csv", ';', false},
		{"tab", "activity.txt", '\t', false},
		{"|", "activity.csv", 0, true},
	}
	for _, tt := range tests {
		got, err := parseDelimiter(tt.flag, tt.path)
		if tt.wantErr {
			if err == nil {
				t.Errorf("parseDelimiter(%q, %q) expected error", tt.flag, tt.path)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("parseDelimiter(%q, %q) = %q, %v; want %q", tt.flag, tt.path, got, err, tt.want)
		}
	}
}

func TestCLIReport_TSV(t *testing.T) {
	database := setupTestDB(t)
	path := filepath.Join(t.TempDir(), "activity.tsv")
	tsv := strings.ReplaceAll(activityCSV, ",", "\t")
	if err := os.WriteFile(path, []byte(tsv), 0o600); err != nil {
		t.Fatal(err)
	}

	out, err := runCLI(t, database, config.DefaultConfig(), "report", "--activity", path)
	if err != nil {
		t.Fatalf("report failed: %v", err)
	}
	var result ReportOutput
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("failed to parse output: %v", err)
	}
	if result.Report.Summary.TotalCaloriesBurned != 6400 {
		t.Errorf("total calories = %v, want 6400", result.Report.Summary.TotalCaloriesBurned)
	}
}

package db

import (
	"testing"
)

func TestOpen(t *testing.T) {
	db, err := Open()
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer db.Close()

	// Verify schema was created by checking for reports table
	var tableName string
	err = db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name='reports'").Scan(&tableName)
	if err != nil {
		t.Fatalf("reports table not found: %v", err)
	}
	if tableName != "reports" {
		t.Errorf("table name = %s, want reports", tableName)
	}

	version, err := GetUserVersion(db)
	if err != nil {
		t.Fatalf("GetUserVersion() error = %v", err)
	}
	if version != CurrentSchemaVersion {
		t.Errorf("user_version = %d, want %d", version, CurrentSchemaVersion)
	}
}

func TestOpen_Isolated(t *testing.T) {
	a, err := Open()
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer a.Close()
	b, err := Open()
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer b.Close()

	if err := Insert(a, newTestArtifact("01A", 1)); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	n, err := Count(b)
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if n != 0 {
		t.Errorf("second store sees %d artifacts, want 0", n)
	}
}

func TestMigrate_Idempotent(t *testing.T) {
	db, err := Open()
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer db.Close()

	if err := migrate(db); err != nil {
		t.Fatalf("second migrate() error = %v", err)
	}
	version, _ := GetUserVersion(db)
	if version != 1 {
		t.Errorf("user_version = %d, want 1", version)
	}
}

package ops

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/Lewis310/lewishealthapplication/internal/errors"
)

func TestWrite_HappyPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out", "health_report.csv")

	out, err := Write(WriteInput{Path: path, Kind: KindCSV, Data: []byte("date\n2024-03-01\n")})
	if err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if out.Bytes != 16 {
		t.Errorf("Bytes = %d, want 16", out.Bytes)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if string(got) != "date\n2024-03-01\n" {
		t.Errorf("content = %q", got)
	}

	// No temp files left behind.
	entries, _ := os.ReadDir(filepath.Dir(path))
	if len(entries) != 1 {
		t.Errorf("dir has %d entries, want 1", len(entries))
	}
}

func TestWrite_Overwrites(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("rename over an existing file is rejected on Windows")
	}
	path := filepath.Join(t.TempDir(), "report.md")
	if err := os.WriteFile(path, []byte("old"), 0600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	if _, err := Write(WriteInput{Path: path, Kind: KindMarkdown, Data: []byte("new")}); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	got, _ := os.ReadFile(path)
	if string(got) != "new" {
		t.Errorf("content = %q, want new", got)
	}
}

func TestWrite_ExtensionMustMatchKind(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chart.csv")

	_, err := Write(WriteInput{Path: path, Kind: KindChart, Data: []byte{1}})
	if !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("err = %v, want INVALID_REQUEST", err)
	}
	if _, statErr := os.Stat(path); !os.IsNotExist(statErr) {
		t.Error("file should not be created")
	}
}

func TestWrite_UnknownKind(t *testing.T) {
	_, err := Write(WriteInput{Path: filepath.Join(t.TempDir(), "x.csv"), Kind: "xlsx"})
	if !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("err = %v, want INVALID_REQUEST", err)
	}
}

func TestWrite_RejectsSymlink(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks need privileges on Windows")
	}
	dir := t.TempDir()
	target := filepath.Join(dir, "target.csv")
	if err := os.WriteFile(target, []byte("keep"), 0600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	link := filepath.Join(dir, "link.csv")
	if err := os.Symlink(target, link); err != nil {
		t.Fatalf("Symlink failed: %v", err)
	}

	_, err := Write(WriteInput{Path: link, Kind: KindCSV, Data: []byte("x")})
	if !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("err = %v, want INVALID_REQUEST", err)
	}
	got, _ := os.ReadFile(target)
	if string(got) != "keep" {
		t.Errorf("symlink target modified: %q", got)
	}
}

package ops

import (
	"io"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/Lewis310/lewishealthapplication/internal/errors"
)

func TestValidatePath(t *testing.T) {
	dir := t.TempDir()
	existing := filepath.Join(dir, "activity.csv")
	if err := os.WriteFile(existing, []byte("date\n"), 0600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	tests := []struct {
		name     string
		path     string
		mode     PathCheckMode
		exts     []string
		wantCode errors.ErrorCode
	}{
		{"empty", "", PathCheckWrite, nil, errors.ErrInvalidRequest},
		{"traversal", "../x.csv", PathCheckWrite, []string{".csv"}, errors.ErrInvalidRequest},
		{"nested traversal", "a/../../x.csv", PathCheckWrite, []string{".csv"}, errors.ErrInvalidRequest},
		{"wrong extension", filepath.Join(dir, "x.txt"), PathCheckWrite, []string{".csv"}, errors.ErrInvalidRequest},
		{"upper-case extension", filepath.Join(dir, "X.CSV"), PathCheckWrite, []string{".csv"}, ""},
		{"missing read", filepath.Join(dir, "nope.csv"), PathCheckRead, InputExtensions, errors.ErrFileNotFound},
		{"existing read", existing, PathCheckRead, InputExtensions, ""},
		{"new file", filepath.Join(dir, "new.csv"), PathCheckWrite, []string{".csv"}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePath(tt.path, tt.mode, tt.exts...)
			if tt.wantCode == "" {
				if err != nil {
					t.Errorf("ValidatePath() error = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantCode) {
				t.Errorf("ValidatePath() error = %v, want %s", err, tt.wantCode)
			}
		})
	}
}

func TestValidatePath_Directory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "data.csv")
	if err := os.Mkdir(dir, 0700); err != nil {
		t.Fatalf("Mkdir failed: %v", err)
	}
	if err := ValidatePath(dir, PathCheckRead, ".csv"); !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("err = %v, want INVALID_REQUEST", err)
	}
}

func TestOpenInput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nutrition.csv")
	if err := os.WriteFile(path, []byte("date,protein_g\n"), 0600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	f, err := OpenInput(path)
	if err != nil {
		t.Fatalf("OpenInput failed: %v", err)
	}
	defer f.Close()
	b, _ := io.ReadAll(f)
	if string(b) != "date,protein_g\n" {
		t.Errorf("content = %q", b)
	}
}

func TestOpenInput_Symlink(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks need privileges on Windows")
	}
	dir := t.TempDir()
	target := filepath.Join(dir, "real.csv")
	if err := os.WriteFile(target, []byte("date\n"), 0600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	link := filepath.Join(dir, "link.csv")
	if err := os.Symlink(target, link); err != nil {
		t.Fatalf("Symlink failed: %v", err)
	}

	if _, err := OpenInput(link); !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("err = %v, want INVALID_REQUEST", err)
	}
}

func TestContainsTraversal(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"report.csv", false},
		{"out/report.csv", false},
		{"..report.csv", false},
		{"../report.csv", true},
		{"out/../../report.csv", true},
	}
	for _, tt := range tests {
		if got := containsTraversal(tt.path); got != tt.want {
			t.Errorf("containsTraversal(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

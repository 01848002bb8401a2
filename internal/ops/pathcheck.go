package ops

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/Lewis310/lewishealthapplication/internal/errors"
)

// PathCheckMode indicates whether the path check is for reading or writing.
type PathCheckMode int

const (
	PathCheckRead  PathCheckMode = iota // input CSV
	PathCheckWrite                      // artifact output
)

// InputExtensions are accepted for input tables.
var InputExtensions = []string{".csv", ".tsv", ".txt"}

// ValidatePath checks a user-supplied path before it is opened. It rejects
// ".." components, any extension not in exts, and a symlink as the final
// component. In read mode the file must exist.
//
// Intermediate directories are not checked; O_NOFOLLOW at open time covers
// only the final component.
func ValidatePath(path string, mode PathCheckMode, exts ...string) error {
	if strings.TrimSpace(path) == "" {
		return errors.NewInvalidRequest("path is required")
	}

	// Reject paths containing ".." (traversal attempt)
	if containsTraversal(path) {
		return errors.NewInvalidRequest("path must not contain directory traversal (..)")
	}

	cleaned := filepath.Clean(path)
	if len(exts) > 0 && !slices.Contains(exts, strings.ToLower(filepath.Ext(cleaned))) {
		return errors.NewInvalidRequest(fmt.Sprintf("path must have one of the extensions %s", strings.Join(exts, ", ")))
	}

	absPath, err := filepath.Abs(cleaned)
	if err != nil {
		return errors.NewInvalidRequest(fmt.Sprintf("invalid path: %v", err))
	}

	if mode == PathCheckRead {
		if _, err := os.Stat(absPath); os.IsNotExist(err) {
			return errors.NewFileNotFound(path)
		}
	}

	// O_NOFOLLOW would reject this at open time too; rejecting here gives a clearer error.
	if info, err := os.Lstat(absPath); err == nil {
		if info.Mode()&os.ModeSymlink != 0 {
			return errors.NewInvalidRequest("path must not be a symlink")
		}
		if info.IsDir() {
			return errors.NewInvalidRequest("path must be a file, not a directory")
		}
	}

	return nil
}

// OpenInput validates path as an input table and opens it for reading.
func OpenInput(path string) (*os.File, error) {
	if err := ValidatePath(path, PathCheckRead, InputExtensions...); err != nil {
		return nil, err
	}
	return openFileNoFollowRead(path)
}

// containsTraversal checks if path contains ".." directory traversal.
func containsTraversal(path string) bool {
	// Check each path component
	for _, part := range strings.Split(path, string(filepath.Separator)) {
		if part == ".." {
			return true
		}
	}
	// Also check for forward slashes on all platforms (e.g., user input)
	if filepath.Separator != '/' {
		for _, part := range strings.Split(path, "/") {
			if part == ".." {
				return true
			}
		}
	}
	return false
}

package ops

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/Lewis310/lewishealthapplication/internal/errors"
)

// WriteInput contains parameters for the Write operation.
type WriteInput struct {
	Path string
	Kind string // KindCSV, KindChart or KindMarkdown
	Data []byte
}

// WriteOutput contains the result of the Write operation.
type WriteOutput struct {
	Path  string `json:"path"`
	Kind  string `json:"kind"`
	Bytes int    `json:"bytes"`
}

// Write saves one report artifact to disk. The file is written to a
// temporary name and renamed into place, so an existing file is either
// fully replaced or left untouched.
func Write(input WriteInput) (*WriteOutput, error) {
	ext, ok := kindExtensions[input.Kind]
	if !ok {
		return nil, errors.NewInvalidRequest(fmt.Sprintf("unknown artifact kind %q", input.Kind))
	}
	path := input.Path
	if err := ValidatePath(path, PathCheckWrite, ext); err != nil {
		return nil, err
	}

	// Ensure parent directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to create output directory: %w", err))
	}

	randBytes := make([]byte, 8)
	if _, err := rand.Read(randBytes); err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to generate temp file name: %w", err))
	}
	tempPath := path + "." + hex.EncodeToString(randBytes) + ".tmp"
	file, err := openFileNoFollow(tempPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return nil, err
	}

	// Clean up temp file on failure (original file is preserved)
	success := false
	defer func() {
		if file != nil {
			file.Close()
		}
		if !success {
			os.Remove(tempPath)
		}
	}()

	if _, err := file.Write(input.Data); err != nil {
		return nil, errors.NewInternal(err)
	}
	if err := file.Sync(); err != nil {
		return nil, errors.NewInternal(err)
	}

	// Close before atomic replace (required on Windows; fine elsewhere).
	if err := file.Close(); err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to close output file: %w", err))
	}
	file = nil

	// Check if destination is a symlink (os.Rename would follow it)
	if info, err := os.Lstat(path); err == nil && info.Mode()&os.ModeSymlink != 0 {
		return nil, errors.NewInvalidRequest("path must not be a symlink")
	}

	// On Windows, os.Rename fails if the destination exists. The existing
	// file is kept rather than risking a delete+rename that could lose it.
	if err := os.Rename(tempPath, path); err != nil {
		if runtime.GOOS == "windows" {
			if _, statErr := os.Stat(path); statErr == nil {
				return nil, errors.NewInvalidRequest("output file already exists; overwriting is not supported on Windows yet (choose a new path or delete the existing file)")
			}
		}
		return nil, errors.NewInternal(fmt.Errorf("failed to finalize output: %w", err))
	}

	success = true
	return &WriteOutput{Path: path, Kind: input.Kind, Bytes: len(input.Data)}, nil
}

var kindExtensions = map[string]string{
	KindCSV:      ".csv",
	KindChart:    ".png",
	KindMarkdown: ".md",
}

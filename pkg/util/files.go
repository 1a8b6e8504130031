// Package util provides utility functions for file operations.
package util

import (
	"compress/gzip"
	"io"
	"os"
	"path/filepath"
	"strings"

	cferrors "github.com/cardflow/cardflow/pkg/errors"
)

// ValidateInputFile validates that an input file exists and is within the
// size ceiling. maxSizeMB <= 0 disables the size check.
func ValidateInputFile(path string, maxSizeMB int) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return cferrors.FileNotFound(path)
	}
	if err != nil {
		return cferrors.Wrap(err, cferrors.CodeFileNotFound, "cannot access file").
			WithContext("path", path)
	}
	if info.IsDir() {
		return cferrors.New(cferrors.CodeInvalidFormat, "path is a directory, expected file").
			WithContext("path", path)
	}

	if maxSizeMB > 0 {
		sizeMB := float64(info.Size()) / (1024 * 1024)
		if sizeMB > float64(maxSizeMB) {
			return cferrors.Newf(cferrors.CodeFileTooLarge,
				"input file too large: %.2fMB > %dMB", sizeMB, maxSizeMB).
				WithContext("path", path)
		}
	}
	return nil
}

// OpenFile opens a file, automatically decompressing if it's gzip-compressed.
// Returns the reader, a cleanup function (to close resources), and any error.
// The caller must call the cleanup function when done reading.
func OpenFile(path string) (io.Reader, func() error, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}

	if IsGzipFile(path) {
		gzReader, err := gzip.NewReader(file)
		if err != nil {
			file.Close()
			return nil, nil, err
		}
		cleanup := func() error {
			gzReader.Close()
			return file.Close()
		}
		return gzReader, cleanup, nil
	}

	cleanup := func() error {
		return file.Close()
	}
	return file, cleanup, nil
}

// IsGzipFile returns true if the file path indicates gzip compression.
func IsGzipFile(path string) bool {
	return strings.HasSuffix(strings.ToLower(path), ".gz")
}

// StripCompression removes compression extensions (.gz) from a path.
func StripCompression(path string) string {
	lower := strings.ToLower(path)
	if strings.HasSuffix(lower, ".gz") {
		return path[:len(path)-3]
	}
	return path
}

// BaseFormat extracts the format extension after stripping compression.
// e.g., "archive.json.gz" -> ".json", "archive.json" -> ".json"
func BaseFormat(path string) string {
	stripped := StripCompression(path)
	return strings.ToLower(filepath.Ext(stripped))
}

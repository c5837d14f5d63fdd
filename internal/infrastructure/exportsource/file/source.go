package fileexportsource

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/tdex-network/watchonly/internal/core/ports"
)

// MaxExportSize is the max size in bytes of an export file.
const MaxExportSize = 1 << 20

var (
	// ErrMissingPath ...
	ErrMissingPath = errors.New("export file path must not be empty")
	// ErrExportTooLarge ...
	ErrExportTooLarge = errors.New("export file is too large")
)

type source struct {
	path string
}

// NewExportSource returns a ports.ExportSource reading the export document
// from the file at the given path.
func NewExportSource(path string) (ports.ExportSource, error) {
	if len(path) <= 0 {
		return nil, ErrMissingPath
	}
	return &source{filepath.Clean(path)}, nil
}

func (s *source) Select(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	file, err := os.Open(s.path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", s.path)
	}

	raw, err := io.ReadAll(io.LimitReader(file, MaxExportSize+1))
	if err != nil {
		return nil, err
	}
	if len(raw) > MaxExportSize {
		return nil, ErrExportTooLarge
	}
	return raw, nil
}

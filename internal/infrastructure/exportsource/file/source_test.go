package fileexportsource_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	fileexportsource "github.com/tdex-network/watchonly/internal/infrastructure/exportsource/file"
)

func TestSelect(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "coldcard-export.json")
	content := []byte(`{"chain": "XTN"}`)
	require.NoError(t, os.WriteFile(path, content, 0600))

	source, err := fileexportsource.NewExportSource(path)
	require.NoError(t, err)

	raw, err := source.Select(context.Background())
	require.NoError(t, err)
	require.Equal(t, content, raw)
}

func TestFailingSelect(t *testing.T) {
	_, err := fileexportsource.NewExportSource("")
	require.ErrorIs(t, err, fileexportsource.ErrMissingPath)

	dir := t.TempDir()
	tooLarge := filepath.Join(dir, "large.json")
	require.NoError(t, os.WriteFile(
		tooLarge, bytes.Repeat([]byte{'a'}, fileexportsource.MaxExportSize+1), 0600,
	))

	tests := []struct {
		name string
		path string
		ctx  func() context.Context
	}{
		{"missing_file", filepath.Join(dir, "missing.json"), context.Background},
		{"directory", dir, context.Background},
		{"too_large", tooLarge, context.Background},
		{"canceled", tooLarge, func() context.Context {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			return ctx
		}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			source, err := fileexportsource.NewExportSource(tt.path)
			require.NoError(t, err)
			raw, err := source.Select(tt.ctx())
			require.Error(t, err)
			require.Nil(t, raw)
		})
	}
}

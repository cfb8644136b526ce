// Package testutil provides shared helpers for package tests: a
// thread-safe log buffer, an on-disk HCL fixture writer, and the canonical
// two-spool turbofan model used across the solver-facing packages.
package testutil

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vk/turbocycle/internal/config"
)

// WriteHCLFiles writes the given relative-path -> content map into a fresh
// temporary directory and returns its root. The directory is removed when
// the test finishes.
func WriteHCLFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	tmpDir := t.TempDir()
	for name, content := range files {
		filePath := filepath.Join(tmpDir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(filePath), 0755))
		require.NoError(t, os.WriteFile(filePath, []byte(content), 0644))
	}
	return tmpDir
}

// LoadModel loads a model from fixture files through the given loader.
func LoadModel(t *testing.T, loader config.Loader, files map[string]string) *config.Model {
	t.Helper()
	dir := WriteHCLFiles(t, files)
	model, err := loader.Load(context.Background(), dir)
	require.NoError(t, err)
	return model
}

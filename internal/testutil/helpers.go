package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// WriteJobFile writes a print job file with the given content into a fresh
// temp directory and returns its path. It uses require assertions for test
// setup.
func WriteJobFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644), "failed to write job file %s", path)
	return path
}

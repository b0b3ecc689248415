package fsutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFindFilesByExtension(t *testing.T) {
	// --- Arrange ---
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "nested"), 0o755))
	for _, name := range []string{"b.hcl", "a.hcl", "notes.txt", filepath.Join("nested", "c.hcl")} {
		require.NoError(t, os.WriteFile(filepath.Join(root, name), []byte("x"), 0o600))
	}

	// --- Act ---
	files, err := FindFilesByExtension(root, ".hcl")

	// --- Assert ---
	require.NoError(t, err)
	require.Equal(t, []string{
		filepath.Join(root, "a.hcl"),
		filepath.Join(root, "b.hcl"),
		filepath.Join(root, "nested", "c.hcl"),
	}, files)
}

func TestFindFilesByExtension_MissingRoot(t *testing.T) {
	files, err := FindFilesByExtension(filepath.Join(t.TempDir(), "absent"), ".hcl")
	require.NoError(t, err)
	require.Empty(t, files)
}

func TestFindFilesByExtension_EmptyExtensionPanics(t *testing.T) {
	require.Panics(t, func() { _, _ = FindFilesByExtension(t.TempDir(), "") })
}

package records

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeString(s string) func(io.Writer) error {
	return func(w io.Writer) error {
		_, err := io.WriteString(w, s)
		return err
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(b)
}

func TestSaveFileWritesNewFile(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "q1.pdf")

	saved, err := SaveFile(target, false, writeString("%PDF"))
	require.NoError(t, err)
	assert.Equal(t, target, saved)
	assert.Equal(t, "%PDF", readFile(t, saved))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file left behind")
}

func TestSaveFileKeepsExistingFile(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "q1.pdf")
	require.NoError(t, os.WriteFile(target, []byte("mine"), 0o600))

	saved, err := SaveFile(target, false, writeString("remote"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "q1 (1).pdf"), saved)
	assert.Equal(t, "mine", readFile(t, target))
	assert.Equal(t, "remote", readFile(t, saved))

	saved, err = SaveFile(target, false, writeString("again"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "q1 (2).pdf"), saved)
}

func TestSaveFileFailureLeavesExistingFile(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "q1.pdf")
	require.NoError(t, os.WriteFile(target, []byte("mine"), 0o600))
	boom := errors.New("connection reset")

	for _, replace := range []bool{false, true} {
		_, err := SaveFile(target, replace, func(w io.Writer) error {
			_, _ = io.WriteString(w, "partial")
			return boom
		})
		require.ErrorIs(t, err, boom)
		assert.Equal(t, "mine", readFile(t, target))
	}

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestSaveFileReplaceOverwrites(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "copy.pdf")
	require.NoError(t, os.WriteFile(target, []byte("old"), 0o600))

	saved, err := SaveFile(target, true, writeString("new"))
	require.NoError(t, err)
	assert.Equal(t, target, saved)
	assert.Equal(t, "new", readFile(t, target))
}

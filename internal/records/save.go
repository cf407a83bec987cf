package records

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

const maxNameAttempts = 100

// SaveFile streams content produced by write into a temporary file next to
// path and moves it into place only once write succeeds, so a failed download
// never touches an existing file. With replace set an existing file at path is
// overwritten; otherwise the first free "name (n).ext" is used. It returns the
// path that was written.
func SaveFile(path string, replace bool, write func(io.Writer) error) (string, error) {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".datafiles-*.part")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	err = write(tmp)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return "", err
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return "", fmt.Errorf("chmod %s: %w", tmp.Name(), err)
	}

	if replace {
		if err := os.Rename(tmp.Name(), path); err != nil {
			return "", fmt.Errorf("move into %s: %w", path, err)
		}
		return path, nil
	}
	return linkFree(tmp.Name(), path)
}

// linkFree hard-links src at path or the first numbered variant that does not
// exist yet. Linking fails instead of replacing an existing file.
func linkFree(src, path string) (string, error) {
	ext := filepath.Ext(path)
	stem := strings.TrimSuffix(path, ext)
	for n := 0; n < maxNameAttempts; n++ {
		candidate := path
		if n > 0 {
			candidate = fmt.Sprintf("%s (%d)%s", stem, n, ext)
		}
		err := os.Link(src, candidate)
		if err == nil {
			return candidate, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return "", fmt.Errorf("save %s: %w", candidate, err)
		}
	}
	return "", fmt.Errorf("save %s: no free name after %d attempts", path, maxNameAttempts)
}

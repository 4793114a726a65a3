// SPDX-License-Identifier: Apache-2.0

package patch

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// ErrMissingFile matches every MissingFileError through errors.Is
var ErrMissingFile = errors.New("missing file")

// MissingFileError reports a patch target that does not exist
type MissingFileError struct {
	Path string
}

func (e *MissingFileError) Error() string {
	return fmt.Sprintf("missing file: %s", e.Path)
}

// Is makes errors.Is(err, ErrMissingFile) work
func (e *MissingFileError) Is(target error) bool {
	return target == ErrMissingFile
}

// ReadFile reads a patch target. It never creates the file.
func ReadFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", &MissingFileError{Path: path}
		}
		return "", fmt.Errorf("error reading %s: %w", path, err)
	}
	return string(data), nil
}

// WriteFile replaces an existing file's content in one step. The content is
// written to a temporary sibling and renamed over the target, so readers see
// either the old or the new content.
func WriteFile(path, content string) error {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &MissingFileError{Path: path}
		}
		return fmt.Errorf("error reading %s: %w", path, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("error creating temporary file for %s: %w", path, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.WriteString(content); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("error writing %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("error writing %s: %w", path, err)
	}
	if err := os.Chmod(tmpName, info.Mode().Perm()); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("error setting permissions on %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("error replacing %s: %w", path, err)
	}

	return nil
}

// ApplyFile applies operations to the file at path. The file is only
// rewritten when the content changes. It returns whether a write happened.
func ApplyFile(path string, ops ...Operation) (bool, error) {
	content, err := ReadFile(path)
	if err != nil {
		return false, err
	}

	patched, err := ApplyAll(content, ops...)
	if err != nil {
		return false, fmt.Errorf("error patching %s: %w", path, err)
	}

	if patched == content {
		return false, nil
	}

	if err := WriteFile(path, patched); err != nil {
		return false, err
	}
	return true, nil
}

// SPDX-License-Identifier: Apache-2.0

package defaults

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

//go:embed catalog.yaml templates/*
var embeddedFiles embed.FS

const (
	// CatalogFile is the name of the step catalog
	CatalogFile = "catalog.yaml"

	// TemplatesDir holds the file stubs rendered by file actions
	TemplatesDir = "templates"
)

// Catalog returns the bundled step catalog
func Catalog() []byte {
	data, err := embeddedFiles.ReadFile(CatalogFile)
	if err != nil {
		// The catalog is compiled in
		panic(fmt.Sprintf("embedded catalog missing: %v", err))
	}
	return data
}

// Templates returns the bundled stubs rooted at the templates directory
func Templates() fs.FS {
	sub, err := fs.Sub(embeddedFiles, TemplatesDir)
	if err != nil {
		panic(fmt.Sprintf("embedded templates missing: %v", err))
	}
	return sub
}

// Manager manages access to default files
type Manager struct {
	files fs.FS
}

// NewManager creates a new defaults manager
func NewManager() *Manager {
	return &Manager{files: embeddedFiles}
}

// CopyDefaults writes the catalog and stubs to dir so they can be edited.
// Existing files are kept unless overwrite is set. It returns the paths
// written.
func (m *Manager) CopyDefaults(dir string, overwrite bool) ([]string, error) {
	var written []string

	err := fs.WalkDir(m.files, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		dstPath := filepath.Join(dir, filepath.FromSlash(path))
		if d.IsDir() {
			if err := os.MkdirAll(dstPath, 0755); err != nil {
				return fmt.Errorf("error creating directory %s: %w", dstPath, err)
			}
			return nil
		}

		if !overwrite {
			if _, err := os.Stat(dstPath); err == nil {
				return nil
			} else if !errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("error checking %s: %w", dstPath, err)
			}
		}

		data, err := fs.ReadFile(m.files, path)
		if err != nil {
			return fmt.Errorf("error reading embedded file %s: %w", path, err)
		}

		if err := os.WriteFile(dstPath, data, 0644); err != nil {
			return fmt.Errorf("error writing %s: %w", dstPath, err)
		}

		written = append(written, dstPath)
		return nil
	})
	if err != nil {
		return written, fmt.Errorf("error copying defaults: %w", err)
	}

	return written, nil
}

// ListEmbeddedFiles returns a list of all embedded default files
func (m *Manager) ListEmbeddedFiles() ([]string, error) {
	var files []string

	err := fs.WalkDir(m.files, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if !d.IsDir() {
			files = append(files, path)
		}

		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("error walking embedded files: %w", err)
	}

	return files, nil
}

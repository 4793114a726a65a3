// SPDX-License-Identifier: Apache-2.0

// Package database prepares local database files for a project
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// DriverName is the database/sql driver registered by modernc.org/sqlite
const DriverName = "sqlite"

// EnsureSQLite makes sure a usable SQLite database exists at path, creating
// the file and its parent directory when absent. It reports whether the
// file was created.
func EnsureSQLite(ctx context.Context, path string) (bool, error) {
	if path == "" {
		return false, fmt.Errorf("sqlite database path cannot be empty")
	}

	created := false
	if _, err := os.Stat(path); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return false, fmt.Errorf("error checking database %s: %w", path, err)
		}
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return false, fmt.Errorf("error creating database directory: %w", err)
		}
		created = true
	}

	db, err := sql.Open(DriverName, path)
	if err != nil {
		return false, fmt.Errorf("error opening database %s: %w", path, err)
	}
	defer db.Close()

	// Opening is lazy; the first query creates the file and proves it is a database
	var version int
	if err := db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return false, fmt.Errorf("error initialising database %s: %w", path, err)
	}

	return created, nil
}

// SPDX-License-Identifier: Apache-2.0

package database_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kusari-oss/ready/internal/core/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureSQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "database", "database.sqlite")

	created, err := database.EnsureSQLite(context.Background(), path)
	require.NoError(t, err)
	assert.True(t, created)
	assert.FileExists(t, path)

	// Second call finds the existing database
	created, err = database.EnsureSQLite(context.Background(), path)
	require.NoError(t, err)
	assert.False(t, created)
}

func TestEnsureSQLiteRejectsNonDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "database.sqlite")
	require.NoError(t, os.WriteFile(path, []byte(strings.Repeat("not a database ", 128)), 0644))

	_, err := database.EnsureSQLite(context.Background(), path)
	assert.Error(t, err)
}

func TestEnsureSQLiteEmptyPath(t *testing.T) {
	_, err := database.EnsureSQLite(context.Background(), "")
	assert.Error(t, err)
}

// SPDX-License-Identifier: Apache-2.0

package logger_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/kusari-oss/ready/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunLogAppendsLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "storage", "logs", "laravel-ready.log")
	runLog := logger.NewRunLog(path)

	// Nothing is created until a line is recorded
	require.NoError(t, runLog.Close())
	assert.NoFileExists(t, path)

	require.NoError(t, runLog.Record("Livewire is already installed in a different version."))
	require.NoError(t, runLog.Record("missing file: app/Providers/AppServiceProvider.php"))
	require.NoError(t, runLog.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Livewire is already installed in a different version.\nmissing file: app/Providers/AppServiceProvider.php\n", string(data))

	// A new run appends to the same file
	second := logger.NewRunLog(path)
	require.NoError(t, second.Record("again"))
	require.NoError(t, second.Close())

	data, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "version.\nmissing file")
	assert.Equal(t, "again\n", string(data)[len(data)-6:])
	assert.Equal(t, path, second.Path())
}

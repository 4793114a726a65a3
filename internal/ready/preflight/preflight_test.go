// SPDX-License-Identifier: Apache-2.0

package preflight_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/kusari-oss/ready/internal/ready/preflight"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func project(t *testing.T, withVendor bool, env string) string {
	dir := t.TempDir()
	if withVendor {
		require.NoError(t, os.MkdirAll(filepath.Join(dir, "vendor"), 0755))
		require.NoError(t, os.WriteFile(filepath.Join(dir, preflight.Autoloader), []byte("<?php\n"), 0644))
	}
	if env != "" {
		require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte(env), 0644))
	}
	return dir
}

func TestCheck(t *testing.T) {
	tests := []struct {
		name    string
		vendor  bool
		env     string
		message string
	}{
		{name: "local project", vendor: true, env: "APP_NAME=Laravel\nAPP_ENV=local\n"},
		{name: "no env file", vendor: true},
		{name: "no vendor", vendor: false, env: "APP_ENV=local\n", message: preflight.MissingDependencies},
		{name: "production", vendor: true, env: "APP_NAME=Laravel\nAPP_ENV=production\n", message: preflight.ProductionRefused},
		{name: "quoted production", vendor: true, env: "APP_ENV=\"production\"\n", message: preflight.ProductionRefused},
		{name: "staging", vendor: true, env: "APP_ENV=staging\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := project(t, tt.vendor, tt.env)

			env, err := preflight.Check(dir)
			if tt.message == "" {
				require.NoError(t, err)
				assert.Equal(t, tt.env, env)
				return
			}

			require.Error(t, err)
			var guardErr *preflight.Error
			require.True(t, errors.As(err, &guardErr))
			assert.Equal(t, tt.message, guardErr.Error())
			assert.Empty(t, env)
		})
	}
}

func TestLookupTools(t *testing.T) {
	tools := preflight.LookupTools("sh", "definitely-not-a-real-tool-4242")
	require.Len(t, tools, 2)

	assert.Equal(t, "sh", tools[0].Name)
	assert.True(t, tools[0].Found)
	assert.NotEmpty(t, tools[0].Path)

	assert.False(t, tools[1].Found)
	assert.Empty(t, tools[1].Path)
}

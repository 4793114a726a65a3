// SPDX-License-Identifier: Apache-2.0

package ready_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/kusari-oss/ready/internal/core/config"
	"github.com/kusari-oss/ready/internal/core/models"
	"github.com/kusari-oss/ready/internal/logger"
	"github.com/kusari-oss/ready/internal/ready"
	"github.com/kusari-oss/ready/internal/ready/preflight"
	"github.com/kusari-oss/ready/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const envFile = `APP_NAME=Laravel
APP_ENV=local
APP_URL=http://localhost

DB_CONNECTION=mysql
DB_HOST=127.0.0.1
DB_PORT=3306
DB_DATABASE=laravel
DB_USERNAME=root
DB_PASSWORD=
`

type fixture struct {
	home    string
	project string
}

func newFixture(t *testing.T) fixture {
	f := fixture{home: t.TempDir(), project: t.TempDir()}
	t.Setenv(config.HomeEnvVar, f.home)

	f.write(t, f.project, preflight.Autoloader, "<?php\n")
	f.write(t, f.project, ".env", envFile)
	return f
}

func (f fixture) write(t *testing.T, dir, name, content string) string {
	path := filepath.Join(dir, filepath.FromSlash(name))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func (f fixture) read(t *testing.T, name string) string {
	data, err := os.ReadFile(filepath.Join(f.project, filepath.FromSlash(name)))
	require.NoError(t, err)
	return string(data)
}

func (f fixture) session(t *testing.T) *ready.Session {
	session, err := ready.Load(f.project, "")
	require.NoError(t, err)
	return session
}

func quietConsole() (*logger.Console, *bytes.Buffer) {
	var buf bytes.Buffer
	return logger.New(&buf, false).WithoutColor(), &buf
}

func TestLoad(t *testing.T) {
	f := newFixture(t)
	session := f.session(t)

	assert.Equal(t, f.project, session.ProjectDir)
	assert.Equal(t, filepath.Join(f.home, ".laravel"), session.Config.CredentialsFile)

	_, ok := session.Registry.Get("environment")
	assert.True(t, ok)
	assert.Equal(t, []string{"format", "livewire_version", "valet_link"}, session.AnswerNames())
}

func TestLoadCatalogOverride(t *testing.T) {
	f := newFixture(t)
	catalogPath := f.write(t, f.project, "catalog.yaml", `steps:
  - id: hello
    label: Say hello
    category: optional-tool
    order: 1
    action:
      type: cli
      command: echo hello
`)
	f.write(t, f.project, ".ready/config.yaml", "catalog_file: "+catalogPath+"\n")

	session := f.session(t)
	assert.Equal(t, []string{"hello"}, session.SelectableIDs(models.ModePackages))
}

func TestProcessAnswers(t *testing.T) {
	session := newFixture(t).session(t)

	answers, err := session.ProcessAnswers(map[string]interface{}{"format": "yes"})
	require.NoError(t, err)
	assert.Equal(t, true, answers["format"])
	assert.Equal(t, "current", answers["livewire_version"])
	assert.Equal(t, "", answers["valet_link"])

	tests := []struct {
		name   string
		answer map[string]interface{}
	}{
		{"space in link", map[string]interface{}{"valet_link": "my site"}},
		{"test suffix", map[string]interface{}{"valet_link": "blog.test"}},
		{"unknown livewire version", map[string]interface{}{"livewire_version": "next"}},
		{"format not a boolean", map[string]interface{}{"format": "maybe"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := session.ProcessAnswers(tt.answer)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "invalid answers")
		})
	}
}

func TestPlan(t *testing.T) {
	session := newFixture(t).session(t)

	tests := []struct {
		name     string
		mode     models.Mode
		selected []string
		answers  map[string]interface{}
		expected []string
	}{
		{
			name:     "current livewire removes alpine",
			mode:     models.ModeProject,
			selected: []string{"migrations", "livewire", "environment"},
			answers:  map[string]interface{}{"livewire_version": "current"},
			expected: []string{"environment", "livewire", "alpine-removal", "migrations"},
		},
		{
			name:     "legacy livewire keeps alpine",
			mode:     models.ModeProject,
			selected: []string{"livewire"},
			answers:  map[string]interface{}{"livewire_version": "legacy"},
			expected: []string{"livewire"},
		},
		{
			name:     "valet link adds valet",
			mode:     models.ModeProject,
			selected: []string{"environment"},
			answers:  map[string]interface{}{"valet_link": "blog"},
			expected: []string{"environment", "valet"},
		},
		{
			name:     "packages mode drops core steps",
			mode:     models.ModePackages,
			selected: []string{"environment", "pint", "seeder", "larastan"},
			expected: []string{"pint", "larastan"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			answers, err := session.ProcessAnswers(tt.answers)
			require.NoError(t, err)

			p, err := session.Plan(tt.mode, tt.selected, answers)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, p.IDs())
		})
	}

	_, err := session.Plan(models.ModeProject, []string{"nope"}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown step: nope")
}

func TestPlanEverySelectableStep(t *testing.T) {
	session := newFixture(t).session(t)

	selectable := session.SelectableIDs(models.ModeProject)
	assert.Contains(t, selectable, "livewire")
	assert.NotContains(t, selectable, "alpine-removal")
	assert.NotContains(t, selectable, "valet")

	for _, mode := range []models.Mode{models.ModeProject, models.ModePackages} {
		answers, err := session.ProcessAnswers(map[string]interface{}{"livewire_version": "legacy"})
		require.NoError(t, err)

		p, err := session.Plan(mode, session.SelectableIDs(mode), answers)
		require.NoError(t, err)
		assert.True(t, p.Contains("livewire"), mode)
		assert.False(t, p.Contains("alpine-removal"), mode)
		assert.False(t, p.Contains("valet"), mode)
	}
}

func TestRun(t *testing.T) {
	f := newFixture(t)
	f.write(t, f.home, ".laravel", "DB_CONNECTION=sqlite\n")
	f.write(t, f.project, "laravel-ready.php", "<?php\n")
	f.write(t, f.project, ".ready/config.yaml", "script_file: laravel-ready.php\nexit_delay: 1ms\n")

	commands := &testutil.MockCommandRunner{}
	console, out := quietConsole()

	result, err := f.session(t).Run(context.Background(), ready.RunOptions{
		Mode:     models.ModeProject,
		Selected: []string{"migrations", "debugbar", "environment"},
		Answers:  map[string]interface{}{"valet_link": "blog"},
		Version:  "v1.0.0",
		Console:  console,
		Commands: commands,
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"environment", "debugbar", "migrations", "valet"}, result.Plan.IDs())
	assert.False(t, result.Report.HasFailures(), out.String())
	assert.Equal(t, []string{
		"composer require barryvdh/laravel-debugbar --dev",
		"php artisan migrate:fresh --seed",
		"valet link blog",
	}, commands.Ran())

	dbPath := filepath.Join(f.project, "database", "database.sqlite")
	env := f.read(t, ".env")
	assert.Contains(t, env, "DB_CONNECTION=sqlite\n")
	assert.Contains(t, env, "DB_DATABASE="+dbPath+"\n")
	assert.Contains(t, env, "APP_URL=http://blog.test\n")
	assert.FileExists(t, dbPath)

	state, err := config.LoadState(f.project)
	require.NoError(t, err)
	assert.Equal(t, "project", state.Mode)
	assert.Equal(t, "v1.0.0", state.Version)
	assert.Equal(t, []string{"environment", "debugbar", "migrations", "valet"}, state.Succeeded)
	assert.Empty(t, state.Failed)

	assert.True(t, result.ScriptRemoved)
	assert.NoFileExists(t, filepath.Join(f.project, "laravel-ready.php"))
	assert.NoFileExists(t, filepath.Join(f.project, "storage", "logs", "laravel-ready.log"))
}

func TestRunFailureKeepsScript(t *testing.T) {
	f := newFixture(t)
	f.write(t, f.project, "laravel-ready.php", "<?php\n")
	f.write(t, f.project, ".ready/config.yaml", "script_file: laravel-ready.php\nexit_delay: 1ms\n")

	commands := &testutil.MockCommandRunner{}
	console, out := quietConsole()

	result, err := f.session(t).Run(context.Background(), ready.RunOptions{
		Selected: []string{"environment", "migrations"},
		Console:  console,
		Commands: commands,
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"environment"}, result.Report.Failed())
	assert.Equal(t, []string{"migrations"}, result.Report.Succeeded())
	assert.Contains(t, out.String(), "Unable to prepare the environment. Please, review the docs.")

	assert.False(t, result.ScriptRemoved)
	assert.FileExists(t, filepath.Join(f.project, "laravel-ready.php"))
	assert.Equal(t, envFile, f.read(t, ".env"))

	logged := f.read(t, "storage/logs/laravel-ready.log")
	assert.Contains(t, logged, "Unable to prepare the environment. Please, review the docs.")
}

func TestRunWaitsExitDelayWithoutScript(t *testing.T) {
	f := newFixture(t)
	f.write(t, f.project, ".ready/config.yaml", "exit_delay: 50ms\n")

	console, _ := quietConsole()
	start := time.Now()
	result, err := f.session(t).Run(context.Background(), ready.RunOptions{
		Selected: []string{"migrations"},
		Console:  console,
		Commands: &testutil.MockCommandRunner{},
	})
	require.NoError(t, err)

	assert.False(t, result.Report.HasFailures())
	assert.False(t, result.ScriptRemoved)
	assert.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)
}

func TestRunPreflightAborts(t *testing.T) {
	tests := []struct {
		name    string
		prepare func(t *testing.T, f fixture)
		message string
	}{
		{
			name: "dependencies missing",
			prepare: func(t *testing.T, f fixture) {
				require.NoError(t, os.Remove(filepath.Join(f.project, preflight.Autoloader)))
			},
			message: preflight.MissingDependencies,
		},
		{
			name: "production",
			prepare: func(t *testing.T, f fixture) {
				f.write(t, f.project, ".env", "APP_ENV=production\n")
			},
			message: preflight.ProductionRefused,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			tt.prepare(t, f)

			commands := &testutil.MockCommandRunner{}
			console, _ := quietConsole()

			_, err := f.session(t).Run(context.Background(), ready.RunOptions{
				Selected: []string{"migrations"},
				Console:  console,
				Commands: commands,
			})
			require.Error(t, err)

			var guardErr *preflight.Error
			require.True(t, errors.As(err, &guardErr))
			assert.Equal(t, tt.message, guardErr.Message)

			assert.Empty(t, commands.Ran())
			_, err = config.LoadState(f.project)
			assert.Error(t, err)
		})
	}
}

func TestTypedAnswers(t *testing.T) {
	typed := ready.TypedAnswers(map[string]interface{}{
		"livewire_version": "legacy",
		"valet_link":       ".",
		"format":           true,
		"unrelated":        42,
	})
	assert.Equal(t, models.Answers{LivewireVersion: "legacy", ValetLink: ".", Format: true}, typed)

	assert.Equal(t, models.Answers{}, ready.TypedAnswers(nil))
}

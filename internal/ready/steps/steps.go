// SPDX-License-Identifier: Apache-2.0

// Package steps implements the step bodies that cannot be expressed as
// plain catalog actions
package steps

import (
	"fmt"
	"net/http"
	"path/filepath"
	"time"

	"github.com/kusari-oss/ready/internal/core/action"
	"github.com/kusari-oss/ready/internal/core/models"
)

// Builtin handler names referenced from the catalog
const (
	Environment   = "environment"
	PintPreset    = "pint-preset"
	Livewire      = "livewire"
	AlpineRemoval = "alpine-removal"
	Provider      = "provider"
	Valet         = "valet"
	Comments      = "comments"
)

// EnvFile is the project environment file
const EnvFile = ".env"

// DefaultHTTPTimeout bounds preset downloads when the context has no client
const DefaultHTTPTimeout = 30 * time.Second

// ConfigurationError reports missing or unusable user configuration
type ConfigurationError struct {
	File   string
	Key    string
	Reason string
}

func (e *ConfigurationError) Error() string {
	if e.Key == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s (%s is not set in %s)", e.Reason, e.Key, e.File)
}

// Builtins returns every builtin handler keyed by name
func Builtins() (map[string]action.Handler, error) {
	alpine, err := NewAlpineRemover()
	if err != nil {
		return nil, fmt.Errorf("error creating %s handler: %w", AlpineRemoval, err)
	}

	return map[string]action.Handler{
		Environment:   action.NewHandlerFunc("Prepare .env with database credentials", PrepareEnvironment),
		PintPreset:    action.NewHandlerFunc("Write the Laravel Pint preset", WritePintPreset),
		Livewire:      action.NewHandlerFunc("Install Livewire", InstallLivewire),
		AlpineRemoval: alpine,
		Provider:      action.NewHandlerFunc("Log in the first user from AppServiceProvider", PrepareProvider),
		Valet:         action.NewHandlerFunc("Link the project with Valet", LinkValet),
		Comments:      action.NewHandlerFunc("Remove unnecessary comments", RemoveComments),
	}, nil
}

func projectPath(ctx *models.ExecutionContext, name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(ctx.ProjectDir, name)
}

func httpClient(ctx *models.ExecutionContext) *http.Client {
	if ctx.HTTPClient != nil {
		return ctx.HTTPClient
	}
	return &http.Client{Timeout: DefaultHTTPTimeout}
}

func run(ctx *models.ExecutionContext, commandLine string) error {
	if ctx.Commands == nil {
		return fmt.Errorf("no command runner configured")
	}
	return ctx.Commands.Run(commandLine)
}

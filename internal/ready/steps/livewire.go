// SPDX-License-Identifier: Apache-2.0

package steps

import (
	"fmt"

	"github.com/kusari-oss/ready/internal/core/action"
	"github.com/kusari-oss/ready/internal/core/format"
	"github.com/kusari-oss/ready/internal/core/models"
	"github.com/kusari-oss/ready/internal/core/patch"
)

// Livewire release lines accepted as the livewire_version answer
const (
	LivewireCurrent = "current"
	LivewireLegacy  = "legacy"
)

// LivewirePackageName is the composer package installed by the livewire step
const LivewirePackageName = "livewire/livewire"

// FrontendEntry is the script Alpine.js is imported from
const FrontendEntry = "resources/js/app.js"

// LivewireConstraint returns the composer constraint for a release line
func LivewireConstraint(version string) string {
	if version == LivewireLegacy {
		return "^2.0"
	}
	return "^3.0"
}

// InstallLivewire requires the chosen Livewire release. A different
// constraint already present in composer.json is left alone.
func InstallLivewire(ctx *models.ExecutionContext) models.StepResult {
	desired := LivewireConstraint(ctx.Answers.LivewireVersion)

	manifest, err := format.ReadManifest(projectPath(ctx, action.ComposerManifest))
	if err != nil {
		return models.FailureFromError(err)
	}

	if installed, ok := manifest.LookupString("require", LivewirePackageName); ok && installed != desired {
		return models.Failure("Livewire is already installed in a different version.")
	}

	if err := run(ctx, fmt.Sprintf("composer require %s:%s", LivewirePackageName, desired)); err != nil {
		return models.FailureFromError(err)
	}

	return models.Success()
}

// AlpineRemover drops Alpine.js from the front-end build. Livewire 3 bundles
// its own copy; with the legacy release the step does nothing.
type AlpineRemover struct {
	steps *action.SequenceAction
}

// NewAlpineRemover creates the alpine-removal handler
func NewAlpineRemover() (*AlpineRemover, error) {
	uninstall, err := action.NewCommandAction(action.Config{Command: "npm remove alpinejs"})
	if err != nil {
		return nil, err
	}
	imports, err := action.NewPatchAction(action.Config{
		Patches: []patch.Operation{patch.DropLines(FrontendEntry, "alpine")},
	})
	if err != nil {
		return nil, err
	}
	build, err := action.NewCommandAction(action.Config{Command: "npm run build"})
	if err != nil {
		return nil, err
	}

	return &AlpineRemover{
		steps: action.NewSequenceAction("Remove Alpine.js", uninstall, imports, build),
	}, nil
}

// Execute runs the removal
func (a *AlpineRemover) Execute(ctx *models.ExecutionContext) models.StepResult {
	if ctx.Answers.LivewireVersion == LivewireLegacy {
		return models.Success()
	}
	return a.steps.Execute(ctx)
}

// Description returns the handler description
func (a *AlpineRemover) Description() string {
	return a.steps.Description()
}

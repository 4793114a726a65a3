// SPDX-License-Identifier: Apache-2.0

package action

import (
	"bytes"
	"fmt"
	"path/filepath"

	"github.com/kusari-oss/ready/internal/core/format"
	"github.com/kusari-oss/ready/internal/core/models"
	"github.com/kusari-oss/ready/internal/core/patch"
)

// ComposerManifest is the project manifest script entries are written to
const ComposerManifest = "composer.json"

// ScriptAction defines a composer script
type ScriptAction struct {
	config Config
}

// NewScriptAction creates a new script action
func NewScriptAction(config Config) (*ScriptAction, error) {
	if config.Script == "" {
		return nil, fmt.Errorf("script is required for script actions")
	}

	if config.ScriptValue == "" && len(config.ScriptValues) == 0 {
		return nil, fmt.Errorf("script_value or script_values is required for script actions")
	}

	return &ScriptAction{config: config}, nil
}

// Execute runs the script action
func (a *ScriptAction) Execute(ctx *models.ExecutionContext) models.StepResult {
	var value interface{} = a.config.ScriptValue
	if len(a.config.ScriptValues) > 0 {
		value = a.config.ScriptValues
	}

	if err := SetComposerScript(ctx.ProjectDir, a.config.Script, value); err != nil {
		return models.FailureFromError(err)
	}

	return models.Success()
}

// Description returns the action description
func (a *ScriptAction) Description() string {
	if a.config.Description != "" {
		return a.config.Description
	}
	return fmt.Sprintf("Define the composer %q script", a.config.Script)
}

// SetComposerScript sets scripts.<name> in the project's composer.json,
// keeping key order and composer's formatting. The file is only rewritten
// when it changes.
func SetComposerScript(projectDir, name string, value interface{}) error {
	path := filepath.Join(projectDir, ComposerManifest)

	content, err := patch.ReadFile(path)
	if err != nil {
		return err
	}

	manifest, err := format.ParseManifest([]byte(content))
	if err != nil {
		return fmt.Errorf("error reading %s: %w", path, err)
	}

	if err := manifest.Set([]string{"scripts", name}, value); err != nil {
		return fmt.Errorf("error updating %s: %w", path, err)
	}

	updated, err := manifest.Bytes()
	if err != nil {
		return err
	}

	if bytes.Equal(updated, []byte(content)) {
		return nil
	}

	return patch.WriteFile(path, string(updated))
}

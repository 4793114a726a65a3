// SPDX-License-Identifier: Apache-2.0

package action

import (
	"fmt"
	"path/filepath"

	"github.com/kusari-oss/ready/internal/core/models"
	"github.com/kusari-oss/ready/internal/core/patch"
	"github.com/kusari-oss/ready/internal/core/template"
)

// PatchAction applies idempotent edits to existing project files.
// Operations are grouped per file and applied in declaration order.
type PatchAction struct {
	config Config
}

// NewPatchAction creates a new patch action
func NewPatchAction(config Config) (*PatchAction, error) {
	if len(config.Patches) == 0 {
		return nil, fmt.Errorf("patches are required for patch actions")
	}

	for i, op := range config.Patches {
		if op.Path == "" {
			return nil, fmt.Errorf("patch %d has no path", i+1)
		}
	}

	return &PatchAction{config: config}, nil
}

// Execute runs the patch action
func (a *PatchAction) Execute(ctx *models.ExecutionContext) models.StepResult {
	params := TemplateParams(ctx, a.config.Params)

	var order []string
	byFile := make(map[string][]patch.Operation)

	for _, op := range a.config.Patches {
		replacement, err := template.ProcessString(op.Replacement, params)
		if err != nil {
			return models.FailureFromError(fmt.Errorf("error processing replacement for %s: %w", op.Path, err))
		}
		op.Replacement = string(replacement)

		path := op.Path
		if !filepath.IsAbs(path) {
			path = filepath.Join(ctx.ProjectDir, path)
		}

		if _, seen := byFile[path]; !seen {
			order = append(order, path)
		}
		byFile[path] = append(byFile[path], op)
	}

	for _, path := range order {
		if _, err := patch.ApplyFile(path, byFile[path]...); err != nil {
			return models.FailureFromError(err)
		}
	}

	return models.Success()
}

// Description returns the action description
func (a *PatchAction) Description() string {
	if a.config.Description != "" {
		return a.config.Description
	}
	return fmt.Sprintf("Patch %s", a.config.Patches[0].Path)
}

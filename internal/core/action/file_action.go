// SPDX-License-Identifier: Apache-2.0

package action

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/kusari-oss/ready/internal/core/models"
	"github.com/kusari-oss/ready/internal/core/schema"
	"github.com/kusari-oss/ready/internal/core/template"
)

// FileAction renders a template into a project file. Unlike patches it may
// create the target.
type FileAction struct {
	config       Config
	templates    fs.FS
	templatesDir string
}

// Execute runs the file action
func (a *FileAction) Execute(ctx *models.ExecutionContext) models.StepResult {
	params := TemplateParams(ctx, a.config.Params)

	if a.config.Schema != nil {
		if err := schema.ValidateParams(a.config.Schema, params); err != nil {
			return models.FailureFromError(fmt.Errorf("parameter validation failed: %w", err))
		}
	}

	content, source, err := a.render(params)
	if err != nil {
		return models.FailureFromError(err)
	}

	processedTarget, err := template.ProcessString(a.config.TargetPath, params)
	if err != nil {
		return models.FailureFromError(fmt.Errorf("error processing target path: %w", err))
	}

	target := string(processedTarget)
	if !filepath.IsAbs(target) {
		target = filepath.Join(ctx.ProjectDir, target)
	}

	if a.config.CreateDirs {
		if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
			return models.FailureFromError(fmt.Errorf("error creating directories: %w", err))
		}
	}

	if err := os.WriteFile(target, content, 0644); err != nil {
		return models.FailureFromError(fmt.Errorf("error writing file: %w", err))
	}

	if ctx.Verbose {
		fmt.Printf("Created file %s from %s\n", target, source)
	}
	return models.Success()
}

// render resolves the template: an override in templatesDir wins over the
// bundled stub
func (a *FileAction) render(params map[string]interface{}) ([]byte, string, error) {
	if a.templatesDir != "" {
		override := filepath.Join(a.templatesDir, a.config.TemplatePath)
		if _, err := os.Stat(override); err == nil {
			content, err := template.ProcessFile(override, params)
			if err != nil {
				return nil, "", fmt.Errorf("error processing template: %w", err)
			}
			return content, override, nil
		}
	}

	if a.templates != nil {
		content, err := template.ProcessFS(a.templates, a.config.TemplatePath, params)
		if err != nil {
			return nil, "", fmt.Errorf("error processing template: %w", err)
		}
		return content, a.config.TemplatePath, nil
	}

	return nil, "", fmt.Errorf("template '%s' not found in any configured location", a.config.TemplatePath)
}

// Description returns the action description
func (a *FileAction) Description() string {
	if a.config.Description != "" {
		return a.config.Description
	}
	return fmt.Sprintf("Create %s from a template", a.config.TargetPath)
}

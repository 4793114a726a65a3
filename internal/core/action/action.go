// SPDX-License-Identifier: Apache-2.0

package action

import (
	"github.com/kusari-oss/ready/internal/core/models"
	"github.com/kusari-oss/ready/internal/core/patch"
)

// Handler defines the interface that every step body implements
type Handler interface {
	// Execute runs the step against the shared execution context
	Execute(ctx *models.ExecutionContext) models.StepResult

	// Description returns a human-readable description of the step body
	Description() string
}

// HandlerFunc adapts a plain function to Handler
type HandlerFunc struct {
	Desc string
	Fn   func(ctx *models.ExecutionContext) models.StepResult
}

// NewHandlerFunc creates a Handler from a function
func NewHandlerFunc(description string, fn func(ctx *models.ExecutionContext) models.StepResult) *HandlerFunc {
	return &HandlerFunc{Desc: description, Fn: fn}
}

// Execute calls the wrapped function
func (h *HandlerFunc) Execute(ctx *models.ExecutionContext) models.StepResult {
	return h.Fn(ctx)
}

// Description returns the handler description
func (h *HandlerFunc) Description() string {
	return h.Desc
}

// Config holds the declarative description of a step body
type Config struct {
	Name        string `yaml:"name,omitempty"`
	Type        string `yaml:"type"`
	Description string `yaml:"description,omitempty"`

	// cli: a templated shell command line
	Command string `yaml:"command,omitempty"`

	// file: template rendered to a path relative to the project
	TemplatePath string `yaml:"template_path,omitempty"`
	TargetPath   string `yaml:"target_path,omitempty"`
	CreateDirs   bool   `yaml:"create_dirs,omitempty"`

	// patch: idempotent edits of existing files
	Patches []patch.Operation `yaml:"patches,omitempty"`

	// script: a composer.json script entry
	Script       string   `yaml:"script,omitempty"`
	ScriptValue  string   `yaml:"script_value,omitempty"`
	ScriptValues []string `yaml:"script_values,omitempty"`

	// sequence: actions run in order until the first failure
	Actions []Config `yaml:"actions,omitempty"`

	// builtin: name of a handler registered in code
	Builtin string `yaml:"builtin,omitempty"`

	// Schema validates the template parameters before rendering
	Schema map[string]interface{} `yaml:"schema,omitempty"`

	// Params are extra template parameters
	Params map[string]interface{} `yaml:"params,omitempty"`
}

// TemplateParams exposes the execution context to templates. Extra values
// override the derived ones.
func TemplateParams(ctx *models.ExecutionContext, extra map[string]interface{}) map[string]interface{} {
	params := map[string]interface{}{
		"project_dir":      ctx.ProjectDir,
		"livewire_version": ctx.Answers.LivewireVersion,
		"valet_link":       ctx.Answers.ValetLink,
		"format":           ctx.Answers.Format,
		"provider_line":    ctx.Settings.ProviderLine,
		"larastan_level":   ctx.Settings.LarastanLevel,
		"verbose":          ctx.Verbose,
	}

	for k, v := range extra {
		params[k] = v
	}

	return params
}

// SPDX-License-Identifier: Apache-2.0

package action

import (
	"fmt"

	"github.com/kusari-oss/ready/internal/core/models"
	"github.com/kusari-oss/ready/internal/core/template"
)

// CommandAction runs a templated shell command line through the context's
// command runner
type CommandAction struct {
	config Config
}

// NewCommandAction creates a new CLI action
func NewCommandAction(config Config) (*CommandAction, error) {
	if config.Command == "" {
		return nil, fmt.Errorf("command is required for CLI actions")
	}

	return &CommandAction{config: config}, nil
}

// CommandLine renders the command line for ctx
func (a *CommandAction) CommandLine(ctx *models.ExecutionContext) (string, error) {
	rendered, err := template.ProcessString(a.config.Command, TemplateParams(ctx, a.config.Params))
	if err != nil {
		return "", fmt.Errorf("error processing command: %w", err)
	}
	return string(rendered), nil
}

// Execute runs the CLI action
func (a *CommandAction) Execute(ctx *models.ExecutionContext) models.StepResult {
	if ctx.Commands == nil {
		return models.Failure("no command runner configured")
	}

	commandLine, err := a.CommandLine(ctx)
	if err != nil {
		return models.FailureFromError(err)
	}

	if err := ctx.Commands.Run(commandLine); err != nil {
		return models.FailureFromError(fmt.Errorf("command execution failed: %w", err))
	}

	return models.Success()
}

// Description returns the action description
func (a *CommandAction) Description() string {
	if a.config.Description != "" {
		return a.config.Description
	}
	return fmt.Sprintf("Run %s", a.config.Command)
}

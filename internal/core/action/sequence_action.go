// SPDX-License-Identifier: Apache-2.0

package action

import (
	"fmt"

	"github.com/kusari-oss/ready/internal/core/models"
)

// SequenceAction runs child handlers in order and stops at the first failure
type SequenceAction struct {
	config  Config
	actions []Handler
}

// NewSequenceAction creates a sequence from already built handlers
func NewSequenceAction(description string, actions ...Handler) *SequenceAction {
	return &SequenceAction{
		config:  Config{Type: TypeSequence, Description: description},
		actions: actions,
	}
}

// Execute runs the sequence
func (a *SequenceAction) Execute(ctx *models.ExecutionContext) models.StepResult {
	for _, handler := range a.actions {
		result := handler.Execute(ctx)
		if !result.Succeeded() {
			return result
		}
	}
	return models.Success()
}

// Description returns the action description
func (a *SequenceAction) Description() string {
	if a.config.Description != "" {
		return a.config.Description
	}
	return fmt.Sprintf("Run %d actions", len(a.actions))
}

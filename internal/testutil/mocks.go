// SPDX-License-Identifier: Apache-2.0

package testutil

import (
	"sync"

	"github.com/kusari-oss/ready/internal/core/action"
	"github.com/kusari-oss/ready/internal/core/models"
	"github.com/stretchr/testify/mock"
)

// MockAction provides a versatile mock implementation of the Handler interface.
// This can be used for both runner tests and factory tests
type MockAction struct {
	mock.Mock
	Config  action.Config
	Context action.ActionContext
}

// Execute mocks the Execute method
func (m *MockAction) Execute(ctx *models.ExecutionContext) models.StepResult {
	// If expectations are set, use those
	if len(m.Mock.ExpectedCalls) > 0 {
		args := m.Called(ctx)
		return args.Get(0).(models.StepResult)
	}

	// Otherwise, behave like a simple successful step
	return models.Success()
}

// Description returns the action description
func (m *MockAction) Description() string {
	return m.Config.Description
}

// NewMockActionCreator returns a factory function for creating MockActions.
// This is useful for registering with the factory
func NewMockActionCreator() action.ActionCreator {
	return func(config action.Config, ctx action.ActionContext) (action.Handler, error) {
		return &MockAction{
			Config:  config,
			Context: ctx,
		}, nil
	}
}

// MockCommandRunner records every command line it is asked to run
type MockCommandRunner struct {
	mock.Mock

	mu       sync.Mutex
	Commands []string
}

// Run mocks the Run method
func (m *MockCommandRunner) Run(commandLine string) error {
	m.mu.Lock()
	m.Commands = append(m.Commands, commandLine)
	m.mu.Unlock()

	if len(m.Mock.ExpectedCalls) > 0 {
		args := m.Called(commandLine)
		return args.Error(0)
	}
	return nil
}

// Ran returns a copy of the recorded command lines
func (m *MockCommandRunner) Ran() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.Commands...)
}

// StaticHandler returns a handler that always produces result
func StaticHandler(description string, result models.StepResult) action.Handler {
	return action.NewHandlerFunc(description, func(*models.ExecutionContext) models.StepResult {
		return result
	})
}

// PanickingHandler returns a handler that panics with value
func PanickingHandler(value interface{}) action.Handler {
	return action.NewHandlerFunc("panics", func(*models.ExecutionContext) models.StepResult {
		panic(value)
	})
}

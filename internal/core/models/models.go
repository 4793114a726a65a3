// SPDX-License-Identifier: Apache-2.0

package models

import (
	"context"
	"net/http"
	"time"
)

// Category groups steps for plan filtering
type Category string

const (
	CategoryCore         Category = "core"
	CategoryOptionalTool Category = "optional-tool"
)

// Mode selects which categories are eligible for a run
type Mode string

const (
	// ModeProject prepares a new project: every step is eligible
	ModeProject Mode = "project"
	// ModePackages only installs tooling: core steps are filtered out
	ModePackages Mode = "packages"
)

// ParseMode converts user input to a Mode
func ParseMode(s string) (Mode, bool) {
	switch Mode(s) {
	case ModeProject, "":
		return ModeProject, true
	case ModePackages:
		return ModePackages, true
	}
	return "", false
}

// StepStatus tracks a step through a run: pending, running, succeeded, failed
type StepStatus string

const (
	StatusPending   StepStatus = "pending"
	StatusRunning   StepStatus = "running"
	StatusSucceeded StepStatus = "succeeded"
	StatusFailed    StepStatus = "failed"
)

// IsTerminal reports whether no further transition is possible
func (s StepStatus) IsTerminal() bool {
	return s == StatusSucceeded || s == StatusFailed
}

// StepResult is what a handler invocation produces
type StepResult struct {
	Status  StepStatus `json:"status" yaml:"status"`
	Message string     `json:"message,omitempty" yaml:"message,omitempty"`
}

// Success returns a successful result
func Success() StepResult {
	return StepResult{Status: StatusSucceeded}
}

// Failure returns a failed result carrying a message
func Failure(message string) StepResult {
	return StepResult{Status: StatusFailed, Message: message}
}

// FailureFromError converts an error to a failed result
func FailureFromError(err error) StepResult {
	if err == nil {
		return Failure("unknown error")
	}
	return Failure(err.Error())
}

// Succeeded reports whether the result is a success
func (r StepResult) Succeeded() bool {
	return r.Status == StatusSucceeded
}

// CommandRunner runs a shell command line to completion
type CommandRunner interface {
	Run(commandLine string) error
}

// Answers holds the free-text and single-choice answers for parameterized steps
type Answers struct {
	// LivewireVersion is "current" or "legacy"
	LivewireVersion string
	// ValetLink is the local domain name, without the .test suffix
	ValetLink string
	// Format runs the formatter after the plan when true
	Format bool
}

// Settings carries the configuration values step handlers need
type Settings struct {
	CommentDirs       []string
	CommentExtensions []string
	StripLineComments bool
	ProviderLine      int
	LarastanLevel     int
	CredentialsFile   string
}

// ExecutionContext is the state shared by step handlers during one run.
// It is owned by the runner and never persisted.
type ExecutionContext struct {
	ProjectDir  string
	EnvContent  string
	Answers     Answers
	Credentials map[string]string
	Settings    Settings
	Commands    CommandRunner
	HTTPClient  *http.Client
	Verbose     bool

	ctx context.Context
}

// Context returns the run's context, never nil
func (c *ExecutionContext) Context() context.Context {
	if c.ctx == nil {
		return context.Background()
	}
	return c.ctx
}

// WithContext binds ctx to the execution context and returns it
func (c *ExecutionContext) WithContext(ctx context.Context) *ExecutionContext {
	c.ctx = ctx
	return c
}

// Credential returns a credential value or an empty string
func (c *ExecutionContext) Credential(key string) string {
	if c.Credentials == nil {
		return ""
	}
	return c.Credentials[key]
}

// PlanStep is one entry of an execution plan
type PlanStep struct {
	ID       string   `json:"id" yaml:"id"`
	Label    string   `json:"label" yaml:"label"`
	Message  string   `json:"-" yaml:"-"`
	Category Category `json:"category" yaml:"category"`
	Order    int      `json:"order" yaml:"order"`
}

// ExecutionPlan is the ordered, deduplicated list of steps for a run.
// It is immutable once built.
type ExecutionPlan struct {
	mode  Mode
	steps []PlanStep
}

// NewExecutionPlan creates a plan from already ordered steps
func NewExecutionPlan(mode Mode, steps []PlanStep) *ExecutionPlan {
	copied := make([]PlanStep, len(steps))
	copy(copied, steps)
	return &ExecutionPlan{mode: mode, steps: copied}
}

// Mode returns the mode the plan was built for
func (p *ExecutionPlan) Mode() Mode {
	return p.mode
}

// Steps returns a copy of the plan entries
func (p *ExecutionPlan) Steps() []PlanStep {
	out := make([]PlanStep, len(p.steps))
	copy(out, p.steps)
	return out
}

// IDs returns the step identifiers in execution order
func (p *ExecutionPlan) IDs() []string {
	ids := make([]string, 0, len(p.steps))
	for _, s := range p.steps {
		ids = append(ids, s.ID)
	}
	return ids
}

// Len returns the number of steps
func (p *ExecutionPlan) Len() int {
	return len(p.steps)
}

// IsEmpty returns true if there is nothing to run
func (p *ExecutionPlan) IsEmpty() bool {
	return len(p.steps) == 0
}

// Contains reports whether the plan includes a step
func (p *ExecutionPlan) Contains(id string) bool {
	for _, s := range p.steps {
		if s.ID == id {
			return true
		}
	}
	return false
}

// StepOutcome records how a step (or post-plan action) ended
type StepOutcome struct {
	ID       string        `json:"id" yaml:"id"`
	Label    string        `json:"label" yaml:"label"`
	Status   StepStatus    `json:"status" yaml:"status"`
	Message  string        `json:"message,omitempty" yaml:"message,omitempty"`
	Duration time.Duration `json:"duration" yaml:"duration"`
}

// RunReport aggregates the outcome of a run
type RunReport struct {
	Mode        Mode          `json:"mode" yaml:"mode"`
	Steps       []StepOutcome `json:"steps" yaml:"steps"`
	PostActions []StepOutcome `json:"post_actions,omitempty" yaml:"post_actions,omitempty"`
}

// Succeeded returns the IDs of steps that succeeded
func (r *RunReport) Succeeded() []string {
	return r.withStatus(StatusSucceeded)
}

// Failed returns the IDs of steps that failed
func (r *RunReport) Failed() []string {
	return r.withStatus(StatusFailed)
}

// HasFailures reports whether any step or post-plan action failed
func (r *RunReport) HasFailures() bool {
	if len(r.Failed()) > 0 {
		return true
	}
	for _, o := range r.PostActions {
		if o.Status == StatusFailed {
			return true
		}
	}
	return false
}

func (r *RunReport) withStatus(status StepStatus) []string {
	ids := make([]string, 0)
	for _, o := range r.Steps {
		if o.Status == status {
			ids = append(ids, o.ID)
		}
	}
	return ids
}

// SPDX-License-Identifier: Apache-2.0

// Package runner executes a plan one step at a time. A failed or panicking
// step is recorded and the next step still runs.
package runner

import (
	"fmt"
	"time"

	"github.com/felixgeelhaar/statekit"

	"github.com/kusari-oss/ready/internal/core/action"
	"github.com/kusari-oss/ready/internal/core/models"
	"github.com/kusari-oss/ready/internal/logger"
	"github.com/kusari-oss/ready/internal/ready/condition"
	"github.com/kusari-oss/ready/internal/ready/registry"
)

// Step lifecycle events
const (
	EventStart   = "START"
	EventSucceed = "SUCCEED"
	EventFail    = "FAIL"
)

// Lifecycle states, matching models.StepStatus
const (
	statePending   = "pending"
	stateRunning   = "running"
	stateSucceeded = "succeeded"
	stateFailed    = "failed"
)

// Done is appended to the message of a finished step
const Done = "✅"

// lifecycle is the per-step machine context
type lifecycle struct{}

// stepRecord is filled in by the lifecycle's entry actions
type stepRecord struct {
	started  time.Time
	duration time.Duration
	reason   string
}

// Runner drives the steps of a plan through pending, running and a
// terminal state
type Runner struct {
	registry *registry.Registry
	console  *logger.Console
	runLog   *logger.RunLog
}

// New creates a runner. runLog may be nil.
func New(reg *registry.Registry, console *logger.Console, runLog *logger.RunLog) *Runner {
	if console == nil {
		console = logger.Discard()
	}
	return &Runner{registry: reg, console: console, runLog: runLog}
}

// Run executes every step in order, then the post-plan actions whose
// condition holds. Step failures never stop the run and are reported in
// the returned report. An error is only returned when the run could not
// be driven at all.
func (r *Runner) Run(ctx *models.ExecutionContext, p *models.ExecutionPlan, answers map[string]interface{}) (*models.RunReport, error) {
	report := &models.RunReport{
		Mode:  p.Mode(),
		Steps: make([]models.StepOutcome, 0, p.Len()),
	}

	if p.IsEmpty() {
		r.console.Info("Nothing to run.\n")
		return report, nil
	}

	for _, planStep := range p.Steps() {
		step, ok := r.registry.Get(planStep.ID)
		if !ok {
			return report, fmt.Errorf("step %s is not registered", planStep.ID)
		}

		outcome, err := r.runStep(ctx, step)
		if err != nil {
			return report, err
		}
		report.Steps = append(report.Steps, outcome)
	}

	vars := condition.Vars{
		Selected:  p.IDs(),
		Answers:   answers,
		Succeeded: report.Succeeded(),
		Failed:    report.Failed(),
	}
	for _, post := range r.registry.PostActions() {
		outcome, ran := r.runPostAction(ctx, post, vars)
		if ran {
			report.PostActions = append(report.PostActions, outcome)
		}
	}

	r.printSummary(report)
	return report, nil
}

func (r *Runner) runStep(ctx *models.ExecutionContext, step registry.Step) (models.StepOutcome, error) {
	rec := &stepRecord{}
	interp, err := newLifecycle(rec)
	if err != nil {
		return models.StepOutcome{}, fmt.Errorf("error creating lifecycle for %s: %w", step.ID, err)
	}
	interp.Start()
	defer interp.Stop()

	r.console.Info("%s...\n", step.Message)
	interp.Send(statekit.Event{Type: EventStart})

	var result models.StepResult
	if err := ctx.Context().Err(); err != nil {
		result = models.FailureFromError(err)
	} else {
		result = execute(step.Handler, ctx)
	}

	if result.Succeeded() {
		interp.Send(statekit.Event{Type: EventSucceed})
	} else {
		interp.Send(statekit.Event{Type: EventFail, Payload: result.Message})
	}

	outcome := models.StepOutcome{
		ID:       step.ID,
		Label:    step.Label,
		Status:   models.StepStatus(string(interp.State().Value)),
		Message:  rec.reason,
		Duration: rec.duration,
	}

	if outcome.Status == models.StatusSucceeded {
		r.console.Info("%s %s\n", step.Message, Done)
		return outcome, nil
	}

	message := failureMessage(step.Message, outcome.Message)
	r.console.Error("%s\n", message)
	r.record(message)
	return outcome, nil
}

// runPostAction reports false when the condition does not hold. A cancelled
// run fails the action without invoking it.
func (r *Runner) runPostAction(ctx *models.ExecutionContext, post registry.PostAction, vars condition.Vars) (models.StepOutcome, bool) {
	outcome := models.StepOutcome{ID: post.ID, Label: post.Label}

	holds, err := r.registry.Evaluator().Evaluate(post.Condition, vars)
	if err != nil {
		outcome.Status = models.StatusFailed
		outcome.Message = fmt.Sprintf("error evaluating condition for %s: %v", post.ID, err)
		r.console.Error("%s\n", outcome.Message)
		return outcome, true
	}
	if !holds {
		r.console.Debug("Skipping %s\n", post.ID)
		return outcome, false
	}

	r.console.Info("%s...\n", post.Message)

	if err := ctx.Context().Err(); err != nil {
		outcome.Status = models.StatusFailed
		outcome.Message = err.Error()
		r.console.Error("%s\n", failureMessage(post.Message, outcome.Message))
		return outcome, true
	}

	start := time.Now()
	result := execute(post.Handler, ctx)
	outcome.Duration = time.Since(start)
	outcome.Status = result.Status
	outcome.Message = result.Message

	if !result.Succeeded() {
		outcome.Status = models.StatusFailed
		r.console.Error("%s\n", failureMessage(post.Message, result.Message))
		return outcome, true
	}

	done := post.Done
	if done == "" {
		done = post.Message
	}
	r.console.Info("%s %s\n", done, Done)
	return outcome, true
}

func (r *Runner) record(message string) {
	if r.runLog == nil {
		return
	}
	if err := r.runLog.Record(message); err != nil {
		r.console.Warn("Warning: could not write to %s: %v\n", r.runLog.Path(), err)
	}
}

func (r *Runner) printSummary(report *models.RunReport) {
	succeeded := len(report.Succeeded())
	failed := len(report.Failed())
	r.console.Debug("Execution summary: %d successful, %d failed (out of %d total steps)\n",
		succeeded, failed, len(report.Steps))

	if failed > 0 && r.runLog != nil {
		r.console.Warn("Some steps failed, see %s\n", r.runLog.Path())
	}
}

// execute turns a panic into a failed result
func execute(handler action.Handler, ctx *models.ExecutionContext) (result models.StepResult) {
	if handler == nil {
		return models.Failure("step has no handler")
	}

	defer func() {
		if rec := recover(); rec != nil {
			result = models.Failure(fmt.Sprintf("panic: %v", rec))
		}
	}()

	result = handler.Execute(ctx)
	if !result.Status.IsTerminal() {
		return models.Failure(fmt.Sprintf("unexpected step status %q", result.Status))
	}
	return result
}

func failureMessage(stepMessage, reason string) string {
	if reason == "" {
		return stepMessage + " failed"
	}
	return fmt.Sprintf("%s failed: %s", stepMessage, reason)
}

// newLifecycle builds the machine a step moves through. Succeeded and
// failed accept no events. Entry actions write timings and the failure
// reason to rec.
func newLifecycle(rec *stepRecord) (*statekit.Interpreter[lifecycle], error) {
	machine, err := statekit.NewMachine[lifecycle]("step").
		WithInitial(statePending).
		WithContext(lifecycle{}).
		WithAction("markStarted", func(_ *lifecycle, _ statekit.Event) {
			rec.started = time.Now()
		}).
		WithAction("markFinished", func(_ *lifecycle, event statekit.Event) {
			rec.duration = time.Since(rec.started)
			if reason, ok := event.Payload.(string); ok {
				rec.reason = reason
			}
		}).
		State(statePending).
		On(EventStart).Target(stateRunning).Done().
		State(stateRunning).
		OnEntry("markStarted").
		On(EventSucceed).Target(stateSucceeded).
		On(EventFail).Target(stateFailed).Done().
		State(stateSucceeded).
		OnEntry("markFinished").Done().
		State(stateFailed).
		OnEntry("markFinished").Done().
		Build()
	if err != nil {
		return nil, err
	}

	return statekit.NewInterpreter(machine), nil
}

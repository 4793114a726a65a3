// SPDX-License-Identifier: Apache-2.0

// Package ready wires configuration, the step catalog, the plan resolver
// and the runner together for the command line
package ready

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/kusari-oss/ready/internal/core/action"
	"github.com/kusari-oss/ready/internal/core/config"
	"github.com/kusari-oss/ready/internal/core/executor"
	"github.com/kusari-oss/ready/internal/core/models"
	"github.com/kusari-oss/ready/internal/core/schema"
	"github.com/kusari-oss/ready/internal/defaults"
	"github.com/kusari-oss/ready/internal/logger"
	"github.com/kusari-oss/ready/internal/ready/condition"
	"github.com/kusari-oss/ready/internal/ready/plan"
	"github.com/kusari-oss/ready/internal/ready/preflight"
	"github.com/kusari-oss/ready/internal/ready/registry"
	"github.com/kusari-oss/ready/internal/ready/runner"
	"github.com/kusari-oss/ready/internal/ready/steps"
)

// Answer keys understood by the bundled catalog
const (
	AnswerLivewireVersion = "livewire_version"
	AnswerValetLink       = "valet_link"
	AnswerFormat          = "format"
)

// Session holds everything loaded for one project
type Session struct {
	ProjectDir string
	Config     *config.Config
	Registry   *registry.Registry
}

// Load reads the configuration and builds the step registry for projectDir.
// An empty projectDir means the working directory.
func Load(projectDir, configPath string) (*Session, error) {
	if projectDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("error getting working directory: %w", err)
		}
		projectDir = wd
	}

	absDir, err := filepath.Abs(projectDir)
	if err != nil {
		return nil, fmt.Errorf("error resolving project directory: %w", err)
	}

	cfg, err := config.LoadConfig(absDir, configPath)
	if err != nil {
		return nil, fmt.Errorf("error loading configuration: %w", err)
	}

	// A relative catalog path is relative to the project
	if cfg.CatalogFile != "" && !filepath.IsAbs(cfg.CatalogFile) {
		cfg.CatalogFile = filepath.Join(absDir, cfg.CatalogFile)
	}

	catalog, err := registry.LoadCatalog(cfg.CatalogFile)
	if err != nil {
		return nil, err
	}

	evaluator, err := condition.NewCELEvaluator()
	if err != nil {
		return nil, err
	}

	builtins, err := steps.Builtins()
	if err != nil {
		return nil, err
	}

	factory := action.NewFactory(action.ActionContext{
		Templates:    defaults.Templates(),
		TemplatesDir: filepath.Join(absDir, config.DefaultConfigDir, defaults.TemplatesDir),
		Builtins:     builtins,
	})
	factory.RegisterDefaultTypes()

	reg, err := catalog.Build(factory, evaluator)
	if err != nil {
		return nil, fmt.Errorf("error building step catalog: %w", err)
	}

	return &Session{ProjectDir: absDir, Config: cfg, Registry: reg}, nil
}

// ProcessAnswers coerces raw answers to their schema types, fills defaults
// and validates them
func (s *Session) ProcessAnswers(raw map[string]interface{}) (map[string]interface{}, error) {
	if raw == nil {
		raw = map[string]interface{}{}
	}

	answerSchema := s.Registry.AnswersSchema()
	if len(answerSchema) == 0 {
		return raw, nil
	}

	answers, err := schema.ProcessAnswers(raw, answerSchema)
	if err != nil {
		return nil, fmt.Errorf("invalid answers: %w", err)
	}
	return answers, nil
}

// Plan resolves the selection into an execution plan. answers must already
// be processed.
func (s *Session) Plan(mode models.Mode, selected []string, answers map[string]interface{}) (*models.ExecutionPlan, error) {
	return plan.Generate(s.Registry, plan.GenerateOptions{
		Mode:     mode,
		Selected: selected,
		Answers:  stringAnswers(answers),
	})
}

// RunOptions contains options for a run
type RunOptions struct {
	Mode     models.Mode
	Selected []string
	Answers  map[string]interface{}
	Verbose  bool
	Version  string

	Console *logger.Console

	// Commands and HTTPClient replace the shell runner and the default
	// client when set
	Commands   models.CommandRunner
	HTTPClient *http.Client
}

// RunResult is the outcome of a run
type RunResult struct {
	Plan          *models.ExecutionPlan
	Report        *models.RunReport
	ScriptRemoved bool
}

// Run checks the guards, resolves the plan, executes it and records the
// outcome in the project state file. Step failures are part of the report;
// an error means the run did not happen or could not finish.
func (s *Session) Run(ctx context.Context, opts RunOptions) (*RunResult, error) {
	console := opts.Console
	if console == nil {
		console = logger.NewDefault(opts.Verbose)
	}

	envContent, err := preflight.Check(s.ProjectDir)
	if err != nil {
		return nil, err
	}

	answers, err := s.ProcessAnswers(opts.Answers)
	if err != nil {
		return nil, err
	}

	p, err := s.Plan(opts.Mode, opts.Selected, answers)
	if err != nil {
		return nil, err
	}

	credentials, err := config.LoadCredentials(s.Config.CredentialsFile)
	if err != nil {
		return nil, err
	}

	execCtx := s.executionContext(opts, envContent, answers, credentials).WithContext(ctx)

	runLog := logger.NewRunLog(s.logPath())
	defer func() {
		if err := runLog.Close(); err != nil {
			console.Warn("Warning: could not close %s: %v\n", runLog.Path(), err)
		}
	}()

	report, err := runner.New(s.Registry, console, runLog).Run(execCtx, p, answers)
	if err != nil {
		return nil, err
	}

	result := &RunResult{Plan: p, Report: report}

	state := config.NewState(s.ProjectDir, string(p.Mode()), opts.Version, report.Succeeded(), report.Failed())
	if err := config.SaveState(state, s.ProjectDir); err != nil {
		console.Warn("Warning: could not save state: %v\n", err)
	}

	if !report.HasFailures() {
		removed, err := s.finish(ctx, console)
		if err != nil {
			console.Warn("Warning: could not remove %s: %v\n", s.Config.ScriptFile, err)
		}
		result.ScriptRemoved = removed
	}

	return result, nil
}

func (s *Session) executionContext(opts RunOptions, envContent string, answers map[string]interface{}, credentials map[string]string) *models.ExecutionContext {
	commands := opts.Commands
	if commands == nil {
		commands = executor.NewRunner(s.ProjectDir).
			WithVerbose(opts.Verbose).
			WithStrictExitCodes(s.Config.StrictExitCodes)
	}

	return &models.ExecutionContext{
		ProjectDir:  s.ProjectDir,
		EnvContent:  envContent,
		Answers:     TypedAnswers(answers),
		Credentials: credentials,
		Settings: models.Settings{
			CommentDirs:       s.Config.CommentDirs,
			CommentExtensions: s.Config.CommentExtensions,
			StripLineComments: s.Config.StripLineComments,
			ProviderLine:      s.Config.ProviderLine,
			LarastanLevel:     s.Config.LarastanLevel,
			CredentialsFile:   s.Config.CredentialsFile,
		},
		Commands:   commands,
		HTTPClient: opts.HTTPClient,
		Verbose:    opts.Verbose,
	}
}

func (s *Session) logPath() string {
	if filepath.IsAbs(s.Config.LogFile) {
		return s.Config.LogFile
	}
	return filepath.Join(s.ProjectDir, s.Config.LogFile)
}

// finish waits for the exit delay, then deletes the configured script if
// there is one
func (s *Session) finish(ctx context.Context, console *logger.Console) (bool, error) {
	if s.Config.ScriptFile != "" && s.Config.ExitDelay > 0 {
		console.Info("Deleting %s in %s...\n", s.Config.ScriptFile, s.Config.ExitDelay)
	}

	select {
	case <-ctx.Done():
		return false, ctx.Err()
	case <-time.After(s.Config.ExitDelay):
	}

	if s.Config.ScriptFile == "" {
		return false, nil
	}

	path := s.Config.ScriptFile
	if !filepath.IsAbs(path) {
		path = filepath.Join(s.ProjectDir, path)
	}

	if err := os.Remove(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// TypedAnswers maps processed answers onto the execution context fields
func TypedAnswers(answers map[string]interface{}) models.Answers {
	var typed models.Answers
	if v, ok := answers[AnswerLivewireVersion].(string); ok {
		typed.LivewireVersion = v
	}
	if v, ok := answers[AnswerValetLink].(string); ok {
		typed.ValetLink = v
	}
	if v, ok := answers[AnswerFormat].(bool); ok {
		typed.Format = v
	}
	return typed
}

// stringAnswers renders answers for resolution rules, which compare strings
func stringAnswers(answers map[string]interface{}) map[string]string {
	out := make(map[string]string, len(answers))
	for k, v := range answers {
		out[k] = fmt.Sprint(v)
	}
	return out
}

// SelectableIDs lists the step IDs a user may choose in mode, in
// declaration order
func (s *Session) SelectableIDs(mode models.Mode) []string {
	selectable := plan.Selectable(s.Registry, mode)
	ids := make([]string, 0, len(selectable))
	for _, step := range selectable {
		ids = append(ids, step.ID)
	}
	return ids
}

// AnswerNames lists the answers the catalog's schema declares
func (s *Session) AnswerNames() []string {
	props, _ := s.Registry.AnswersSchema()["properties"].(map[string]interface{})
	names := make([]string, 0, len(props))
	for name := range props {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

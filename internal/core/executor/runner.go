// SPDX-License-Identifier: Apache-2.0

package executor

// Runner executes command lines inside one project directory. It satisfies
// models.CommandRunner.
type Runner struct {
	dir         string
	environment []string
	verbose     bool
	strict      bool
}

// NewRunner creates a runner for the given working directory
func NewRunner(dir string) *Runner {
	return &Runner{dir: dir}
}

// WithVerbose echoes command output to the console
func (r *Runner) WithVerbose(verbose bool) *Runner {
	r.verbose = verbose
	return r
}

// WithStrictExitCodes fails commands that exit non-zero
func (r *Runner) WithStrictExitCodes(strict bool) *Runner {
	r.strict = strict
	return r
}

// WithEnvironment adds environment variables to every command
func (r *Runner) WithEnvironment(env []string) *Runner {
	r.environment = env
	return r
}

// Run executes commandLine and reports only launch failures, or non-zero
// exits when strict exit codes are enabled
func (r *Runner) Run(commandLine string) error {
	_, err := r.executor(commandLine).Execute()
	return err
}

// Output executes commandLine and returns its captured stdout
func (r *Runner) Output(commandLine string) (string, error) {
	result, err := r.executor(commandLine).Execute()
	if result == nil {
		return "", err
	}
	return string(result.Output), err
}

func (r *Runner) executor(commandLine string) *CommandExecutor {
	return NewCommandExecutor(commandLine).
		WithWorkingDir(r.dir).
		WithEnvironment(r.environment).
		WithVerbose(r.verbose).
		WithStrictExitCodes(r.strict)
}

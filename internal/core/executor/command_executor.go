// SPDX-License-Identifier: Apache-2.0

package executor

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
)

// Shell is the interpreter every command line is handed to
const Shell = "sh"

// CommandExecutor handles running a shell command line
type CommandExecutor struct {
	commandLine string
	workingDir  string
	environment []string
	verbose     bool
	strict      bool
}

// CommandResult holds the result of command execution
type CommandResult struct {
	Output     []byte
	Stderr     []byte
	ExitStatus int
}

// NewCommandExecutor creates a new command executor for a shell command line
func NewCommandExecutor(commandLine string) *CommandExecutor {
	return &CommandExecutor{
		commandLine: commandLine,
	}
}

// WithWorkingDir sets the working directory
func (e *CommandExecutor) WithWorkingDir(dir string) *CommandExecutor {
	e.workingDir = dir
	return e
}

// WithEnvironment sets environment variables
func (e *CommandExecutor) WithEnvironment(env []string) *CommandExecutor {
	e.environment = env
	return e
}

// WithVerbose enables verbose output
func (e *CommandExecutor) WithVerbose(verbose bool) *CommandExecutor {
	e.verbose = verbose
	return e
}

// WithStrictExitCodes makes a non-zero exit status an error. By default only
// a failure to launch the command counts as an error.
func (e *CommandExecutor) WithStrictExitCodes(strict bool) *CommandExecutor {
	e.strict = strict
	return e
}

// CommandLine returns the command line as it will be executed
func (e *CommandExecutor) CommandLine() string {
	return e.commandLine
}

// Execute runs the command line through the shell and waits for it to exit.
// There is no timeout.
func (e *CommandExecutor) Execute() (*CommandResult, error) {
	if e.commandLine == "" {
		return nil, fmt.Errorf("empty command line")
	}

	cmd := exec.Command(Shell, "-c", e.commandLine)

	var stdout, stderr bytes.Buffer

	// Configure stdout/stderr based on verbosity
	if e.verbose {
		cmd.Stdout = io.MultiWriter(&stdout, os.Stdout)
		cmd.Stderr = io.MultiWriter(&stderr, os.Stderr)
		fmt.Printf("Executing: %s\n", e.commandLine)
	} else {
		cmd.Stdout = &stdout
		cmd.Stderr = &stderr
	}

	if e.workingDir != "" {
		cmd.Dir = e.workingDir
	}

	if len(e.environment) > 0 {
		cmd.Env = append(os.Environ(), e.environment...)
	}

	err := cmd.Run()

	result := &CommandResult{
		Output: stdout.Bytes(),
		Stderr: stderr.Bytes(),
	}

	if err == nil {
		return result, nil
	}

	var exitError *exec.ExitError
	if errors.As(err, &exitError) {
		result.ExitStatus = exitError.ExitCode()
		if !e.strict {
			return result, nil
		}
		return result, fmt.Errorf("command %q exited with status %d", e.commandLine, result.ExitStatus)
	}

	return result, fmt.Errorf("error executing %q: %w", e.commandLine, err)
}

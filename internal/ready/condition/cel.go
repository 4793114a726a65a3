// SPDX-License-Identifier: Apache-2.0

package condition

import (
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
)

// Vars are the values a condition can refer to
type Vars struct {
	// Selected holds the step IDs chosen so far
	Selected []string
	// Answers holds the user's answers keyed by answer name
	Answers map[string]interface{}
	// Succeeded and Failed are only populated after the plan ran
	Succeeded []string
	Failed    []string
}

func (v Vars) activation() map[string]interface{} {
	answers := v.Answers
	if answers == nil {
		answers = map[string]interface{}{}
	}
	return map[string]interface{}{
		"selected":  nonNil(v.Selected),
		"answers":   answers,
		"succeeded": nonNil(v.Succeeded),
		"failed":    nonNil(v.Failed),
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// CELEvaluator handles evaluation of CEL expressions. Compiled programs are
// cached per expression.
type CELEvaluator struct {
	env *cel.Env

	mu       sync.Mutex
	programs map[string]cel.Program
}

// NewCELEvaluator creates a new CEL evaluator
func NewCELEvaluator() (*CELEvaluator, error) {
	env, err := cel.NewEnv(
		cel.Variable("selected", cel.ListType(cel.StringType)),
		cel.Variable("answers", cel.MapType(cel.StringType, cel.DynType)),
		cel.Variable("succeeded", cel.ListType(cel.StringType)),
		cel.Variable("failed", cel.ListType(cel.StringType)),
	)
	if err != nil {
		return nil, fmt.Errorf("error creating CEL environment: %w", err)
	}

	return &CELEvaluator{env: env, programs: make(map[string]cel.Program)}, nil
}

// Compile checks an expression without evaluating it
func (e *CELEvaluator) Compile(expression string) error {
	_, err := e.program(expression)
	return err
}

// Evaluate evaluates a CEL expression. An empty expression is true.
func (e *CELEvaluator) Evaluate(expression string, vars Vars) (bool, error) {
	if expression == "" {
		return true, nil
	}

	program, err := e.program(expression)
	if err != nil {
		return false, err
	}

	result, _, err := program.Eval(vars.activation())
	if err != nil {
		return false, fmt.Errorf("error evaluating expression %q: %w", expression, err)
	}

	if result.Type() != types.BoolType {
		return false, fmt.Errorf("expression %q did not evaluate to a boolean", expression)
	}

	return result.Value().(bool), nil
}

func (e *CELEvaluator) program(expression string) (cel.Program, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if program, ok := e.programs[expression]; ok {
		return program, nil
	}

	ast, issues := e.env.Parse(expression)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("error parsing expression %q: %w", expression, issues.Err())
	}

	checked, issues := e.env.Check(ast)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("error type-checking expression %q: %w", expression, issues.Err())
	}

	program, err := e.env.Program(checked)
	if err != nil {
		return nil, fmt.Errorf("error compiling expression %q: %w", expression, err)
	}

	e.programs[expression] = program
	return program, nil
}

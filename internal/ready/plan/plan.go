// SPDX-License-Identifier: Apache-2.0

package plan

import (
	"fmt"
	"sort"

	"github.com/kusari-oss/ready/internal/core/models"
	"github.com/kusari-oss/ready/internal/ready/registry"
)

// GenerateOptions controls plan generation
type GenerateOptions struct {
	Mode     models.Mode
	Selected []string
	Answers  map[string]string
}

// Generate resolves the selection against the registry rules and builds the
// execution plan from the result
func Generate(reg *registry.Registry, options GenerateOptions) (*models.ExecutionPlan, error) {
	resolved, err := reg.Resolve(options.Selected, options.Answers)
	if err != nil {
		return nil, fmt.Errorf("error resolving selection: %w", err)
	}

	return BuildPlan(reg, resolved, options.Mode)
}

// BuildPlan turns a resolved selection into an ordered, deduplicated plan.
// In packages mode only optional-tool steps are kept. Steps are sorted by
// order key; steps sharing a key keep their declaration order regardless of
// selection order. An empty plan is valid.
func BuildPlan(reg *registry.Registry, resolved []string, mode models.Mode) (*models.ExecutionPlan, error) {
	if mode == "" {
		mode = models.ModeProject
	}
	if _, ok := models.ParseMode(string(mode)); !ok {
		return nil, fmt.Errorf("unknown mode: %s", mode)
	}

	seen := make(map[string]bool, len(resolved))
	steps := make([]registry.Step, 0, len(resolved))

	for _, id := range resolved {
		if seen[id] {
			continue
		}
		seen[id] = true

		step, ok := reg.Get(id)
		if !ok {
			return nil, fmt.Errorf("unknown step: %s", id)
		}

		if !Eligible(step, mode) {
			continue
		}

		steps = append(steps, step)
	}

	sort.SliceStable(steps, func(i, j int) bool {
		if steps[i].Order != steps[j].Order {
			return steps[i].Order < steps[j].Order
		}
		return reg.Position(steps[i].ID) < reg.Position(steps[j].ID)
	})

	entries := make([]models.PlanStep, 0, len(steps))
	for _, step := range steps {
		entries = append(entries, step.PlanStep())
	}

	return models.NewExecutionPlan(mode, entries), nil
}

// Eligible reports whether a step may run in mode
func Eligible(step registry.Step, mode models.Mode) bool {
	if mode == models.ModePackages {
		return step.Category == models.CategoryOptionalTool
	}
	return true
}

// Selectable returns the steps a user may pick in mode, in declaration
// order. Rule-only steps are left out.
func Selectable(reg *registry.Registry, mode models.Mode) []registry.Step {
	var out []registry.Step
	for _, step := range reg.Steps() {
		if !step.RuleOnly && Eligible(step, mode) {
			out = append(out, step)
		}
	}
	return out
}

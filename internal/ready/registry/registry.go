// SPDX-License-Identifier: Apache-2.0

package registry

import (
	"fmt"
	"sort"
	"strings"

	"github.com/kusari-oss/ready/internal/core/action"
	"github.com/kusari-oss/ready/internal/core/models"
	"github.com/kusari-oss/ready/internal/ready/condition"
)

// Step is a named unit of setup work
type Step struct {
	ID       string
	Label    string
	Message  string
	Category models.Category
	Order    int
	Handler  action.Handler

	// RuleOnly steps enter a plan through rules and are never offered for
	// selection
	RuleOnly bool
}

// PlanStep returns the plan entry for the step
func (s Step) PlanStep() models.PlanStep {
	return models.PlanStep{
		ID:       s.ID,
		Label:    s.Label,
		Message:  s.Message,
		Category: s.Category,
		Order:    s.Order,
	}
}

// Rule adds or suppresses steps when its condition holds.
// Suppression only ever removes steps a rule injected.
type Rule struct {
	ID         string   `yaml:"id"`
	Condition  string   `yaml:"condition"` // CEL expression
	Adds       []string `yaml:"adds,omitempty"`
	Suppresses []string `yaml:"suppresses,omitempty"`
	Reason     string   `yaml:"reason,omitempty"`
}

// PostAction runs once after the plan when its condition holds
type PostAction struct {
	ID        string
	Label     string
	Message   string
	Done      string
	Condition string // CEL expression over answers, selected, succeeded and failed
	Handler   action.Handler
}

// Registry holds the steps, rules and post-plan actions of a catalog
type Registry struct {
	steps       []Step
	index       map[string]int
	rules       []Rule
	postActions []PostAction
	schema      map[string]interface{}
	evaluator   *condition.CELEvaluator
}

// New creates an empty registry that evaluates conditions with evaluator
func New(evaluator *condition.CELEvaluator) *Registry {
	return &Registry{
		index:     make(map[string]int),
		evaluator: evaluator,
	}
}

// Register adds a step. IDs are unique; declaration order is kept.
func (r *Registry) Register(step Step) error {
	if step.ID == "" {
		return fmt.Errorf("step has no id")
	}
	if _, exists := r.index[step.ID]; exists {
		return fmt.Errorf("duplicate step: %s", step.ID)
	}
	if step.Handler == nil {
		return fmt.Errorf("step %s has no handler", step.ID)
	}
	if step.Category != models.CategoryCore && step.Category != models.CategoryOptionalTool {
		return fmt.Errorf("step %s has unknown category %q", step.ID, step.Category)
	}

	r.index[step.ID] = len(r.steps)
	r.steps = append(r.steps, step)
	return nil
}

// AddRule adds a resolution rule. Every step it names must be registered.
func (r *Registry) AddRule(rule Rule) error {
	if rule.ID == "" {
		return fmt.Errorf("rule has no id")
	}

	for _, id := range append(append([]string{}, rule.Adds...), rule.Suppresses...) {
		if _, ok := r.index[id]; !ok {
			return fmt.Errorf("rule %s references unknown step: %s", rule.ID, id)
		}
	}

	if rule.Condition != "" {
		if err := r.evaluator.Compile(rule.Condition); err != nil {
			return fmt.Errorf("rule %s: %w", rule.ID, err)
		}
	}

	r.rules = append(r.rules, rule)
	return nil
}

// AddPostAction adds an action run after the plan
func (r *Registry) AddPostAction(post PostAction) error {
	if post.ID == "" {
		return fmt.Errorf("post action has no id")
	}
	if post.Handler == nil {
		return fmt.Errorf("post action %s has no handler", post.ID)
	}

	if post.Condition != "" {
		if err := r.evaluator.Compile(post.Condition); err != nil {
			return fmt.Errorf("post action %s: %w", post.ID, err)
		}
	}

	r.postActions = append(r.postActions, post)
	return nil
}

// SetAnswersSchema sets the JSON schema the answers are validated against
func (r *Registry) SetAnswersSchema(schema map[string]interface{}) {
	r.schema = schema
}

// AnswersSchema returns the JSON schema for the answers
func (r *Registry) AnswersSchema() map[string]interface{} {
	return r.schema
}

// Evaluator returns the condition evaluator shared by rules and post actions
func (r *Registry) Evaluator() *condition.CELEvaluator {
	return r.evaluator
}

// Get returns a step by ID
func (r *Registry) Get(id string) (Step, bool) {
	i, ok := r.index[id]
	if !ok {
		return Step{}, false
	}
	return r.steps[i], true
}

// Steps returns all steps in declaration order
func (r *Registry) Steps() []Step {
	out := make([]Step, len(r.steps))
	copy(out, r.steps)
	return out
}

// Rules returns the resolution rules in declaration order
func (r *Registry) Rules() []Rule {
	out := make([]Rule, len(r.rules))
	copy(out, r.rules)
	return out
}

// PostActions returns the post-plan actions in declaration order
func (r *Registry) PostActions() []PostAction {
	out := make([]PostAction, len(r.postActions))
	copy(out, r.postActions)
	return out
}

// Position returns the declaration index of a step, -1 when unknown
func (r *Registry) Position(id string) int {
	if i, ok := r.index[id]; ok {
		return i
	}
	return -1
}

// Resolve applies the rules to a selection until nothing changes. Rules see
// the explicit selection plus everything injected so far; a step suppressed
// by a firing rule is never injected, but an explicitly selected step is
// never dropped. The result is deduplicated and in declaration order.
func (r *Registry) Resolve(selected []string, answers map[string]string) ([]string, error) {
	explicit := make(map[string]bool, len(selected))
	var unknown []string
	for _, id := range selected {
		if _, ok := r.index[id]; !ok {
			unknown = append(unknown, id)
			continue
		}
		explicit[id] = true
	}
	if len(unknown) > 0 {
		return nil, fmt.Errorf("unknown step: %s", strings.Join(unknown, ", "))
	}

	vars := condition.Vars{Answers: make(map[string]interface{}, len(answers))}
	for k, v := range answers {
		vars.Answers[k] = v
	}

	injected := map[string]bool{}

	// Bounded so rules that undo each other cannot loop forever
	for pass := 0; pass <= len(r.steps); pass++ {
		vars.Selected = r.ordered(explicit, injected)

		added := map[string]bool{}
		suppressed := map[string]bool{}
		for _, rule := range r.rules {
			fires, err := r.evaluator.Evaluate(rule.Condition, vars)
			if err != nil {
				return nil, fmt.Errorf("error evaluating rule %s: %w", rule.ID, err)
			}
			if !fires {
				continue
			}
			for _, id := range rule.Adds {
				added[id] = true
			}
			for _, id := range rule.Suppresses {
				suppressed[id] = true
			}
		}

		next := map[string]bool{}
		for id := range added {
			if !explicit[id] && !suppressed[id] {
				next[id] = true
			}
		}

		if sameSet(next, injected) {
			return r.ordered(explicit, injected), nil
		}
		injected = next
	}

	return nil, fmt.Errorf("resolution rules did not settle for selection %v", selected)
}

func (r *Registry) ordered(sets ...map[string]bool) []string {
	ids := make([]string, 0)
	seen := map[string]bool{}
	for _, set := range sets {
		for id := range set {
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
	}
	sort.Slice(ids, func(i, j int) bool {
		return r.index[ids[i]] < r.index[ids[j]]
	})
	return ids
}

func sameSet(a, b map[string]bool) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if !b[k] {
			return false
		}
	}
	return true
}

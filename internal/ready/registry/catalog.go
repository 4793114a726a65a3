// SPDX-License-Identifier: Apache-2.0

package registry

import (
	"fmt"
	"os"

	"github.com/kusari-oss/ready/internal/core/action"
	"github.com/kusari-oss/ready/internal/core/models"
	"github.com/kusari-oss/ready/internal/defaults"
	"github.com/kusari-oss/ready/internal/ready/condition"
	"gopkg.in/yaml.v3"
)

// StepConfig declares a step in a catalog file
type StepConfig struct {
	ID       string          `yaml:"id"`
	Label    string          `yaml:"label"`
	Message  string          `yaml:"message,omitempty"`
	Category models.Category `yaml:"category"`
	Order    int             `yaml:"order"`
	RuleOnly bool            `yaml:"rule_only,omitempty"`
	Action   action.Config   `yaml:"action"`
}

// PostActionConfig declares a post-plan action in a catalog file
type PostActionConfig struct {
	ID        string        `yaml:"id"`
	Label     string        `yaml:"label"`
	Message   string        `yaml:"message,omitempty"`
	Done      string        `yaml:"done,omitempty"`
	Condition string        `yaml:"condition,omitempty"`
	Action    action.Config `yaml:"action"`
}

// Catalog is the declarative form of a registry
type Catalog struct {
	AnswersSchema map[string]interface{} `yaml:"answers_schema,omitempty"`
	Steps         []StepConfig           `yaml:"steps"`
	Rules         []Rule                 `yaml:"rules,omitempty"`
	PostActions   []PostActionConfig     `yaml:"post_actions,omitempty"`
}

// ParseCatalog parses a catalog document
func ParseCatalog(data []byte) (*Catalog, error) {
	var catalog Catalog
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("error parsing catalog: %w", err)
	}
	return &catalog, nil
}

// LoadCatalog reads the catalog at path, or the bundled one when path is empty
func LoadCatalog(path string) (*Catalog, error) {
	if path == "" {
		return ParseCatalog(defaults.Catalog())
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading catalog file: %w", err)
	}

	return ParseCatalog(data)
}

// Build creates handlers for every declared step and post action through
// factory and returns the populated registry
func (c *Catalog) Build(factory *action.Factory, evaluator *condition.CELEvaluator) (*Registry, error) {
	reg := New(evaluator)
	reg.SetAnswersSchema(c.AnswersSchema)

	for _, sc := range c.Steps {
		if sc.Action.Description == "" {
			sc.Action.Description = sc.Label
		}

		handler, err := factory.Create(sc.Action)
		if err != nil {
			return nil, fmt.Errorf("error creating step %s: %w", sc.ID, err)
		}

		message := sc.Message
		if message == "" {
			message = sc.Label
		}

		step := Step{
			ID:       sc.ID,
			Label:    sc.Label,
			Message:  message,
			Category: sc.Category,
			Order:    sc.Order,
			Handler:  handler,
			RuleOnly: sc.RuleOnly,
		}
		if err := reg.Register(step); err != nil {
			return nil, err
		}
	}

	for _, rule := range c.Rules {
		if err := reg.AddRule(rule); err != nil {
			return nil, err
		}
	}

	for _, pc := range c.PostActions {
		handler, err := factory.Create(pc.Action)
		if err != nil {
			return nil, fmt.Errorf("error creating post action %s: %w", pc.ID, err)
		}

		message := pc.Message
		if message == "" {
			message = pc.Label
		}

		post := PostAction{
			ID:        pc.ID,
			Label:     pc.Label,
			Message:   message,
			Done:      pc.Done,
			Condition: pc.Condition,
			Handler:   handler,
		}
		if err := reg.AddPostAction(post); err != nil {
			return nil, err
		}
	}

	return reg, nil
}

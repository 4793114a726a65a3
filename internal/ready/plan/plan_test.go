// SPDX-License-Identifier: Apache-2.0

package plan_test

import (
	"testing"

	"github.com/kusari-oss/ready/internal/core/models"
	"github.com/kusari-oss/ready/internal/ready/condition"
	"github.com/kusari-oss/ready/internal/ready/plan"
	"github.com/kusari-oss/ready/internal/ready/registry"
	"github.com/kusari-oss/ready/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stepDef struct {
	id       string
	order    int
	category models.Category
	ruleOnly bool
}

func buildRegistry(t *testing.T, defs ...stepDef) *registry.Registry {
	evaluator, err := condition.NewCELEvaluator()
	require.NoError(t, err)

	reg := registry.New(evaluator)
	for _, def := range defs {
		require.NoError(t, reg.Register(registry.Step{
			ID:       def.id,
			Label:    def.id,
			Message:  def.id,
			Category: def.category,
			Order:    def.order,
			Handler:  testutil.StaticHandler(def.id, models.Success()),
			RuleOnly: def.ruleOnly,
		}))
	}
	return reg
}

func laravelRegistry(t *testing.T) *registry.Registry {
	reg := buildRegistry(t,
		stepDef{"environment", 1, models.CategoryCore, false},
		stepDef{"pint", 2, models.CategoryOptionalTool, false},
		stepDef{"larastan", 3, models.CategoryOptionalTool, false},
		stepDef{"livewire", 6, models.CategoryOptionalTool, false},
		stepDef{"alpine-removal", 6, models.CategoryOptionalTool, true},
		stepDef{"seeder", 7, models.CategoryCore, false},
		stepDef{"migrations", 8, models.CategoryCore, false},
		stepDef{"valet", 11, models.CategoryCore, true},
	)
	require.NoError(t, reg.AddRule(registry.Rule{
		ID:        "livewire-removes-alpine",
		Condition: "'livewire' in selected",
		Adds:      []string{"alpine-removal"},
	}))
	require.NoError(t, reg.AddRule(registry.Rule{
		ID:         "legacy-livewire-keeps-alpine",
		Condition:  "'livewire' in selected && 'livewire_version' in answers && answers.livewire_version == 'legacy'",
		Suppresses: []string{"alpine-removal"},
	}))
	return reg
}

func TestBuildPlanOrdersByOrderKey(t *testing.T) {
	reg := buildRegistry(t,
		stepDef{"one", 1, models.CategoryCore, false},
		stepDef{"two", 2, models.CategoryCore, false},
		stepDef{"three", 3, models.CategoryCore, false},
	)

	p, err := plan.BuildPlan(reg, []string{"three", "one", "two"}, models.ModeProject)
	require.NoError(t, err)

	assert.Equal(t, []string{"one", "two", "three"}, p.IDs())
	assert.Equal(t, models.ModeProject, p.Mode())
	assert.Equal(t, 3, p.Len())
}

func TestBuildPlanTiesKeepDeclarationOrder(t *testing.T) {
	reg := laravelRegistry(t)

	p, err := plan.BuildPlan(reg, []string{"migrations", "alpine-removal", "livewire"}, models.ModeProject)
	require.NoError(t, err)

	assert.Equal(t, []string{"livewire", "alpine-removal", "migrations"}, p.IDs())
}

func TestBuildPlanDeduplicates(t *testing.T) {
	reg := laravelRegistry(t)

	p, err := plan.BuildPlan(reg, []string{"pint", "pint", "environment", "pint"}, models.ModeProject)
	require.NoError(t, err)

	assert.Equal(t, []string{"environment", "pint"}, p.IDs())
}

func TestBuildPlanPackagesMode(t *testing.T) {
	reg := laravelRegistry(t)

	all := []string{"environment", "pint", "larastan", "livewire", "alpine-removal", "seeder", "migrations", "valet"}
	p, err := plan.BuildPlan(reg, all, models.ModePackages)
	require.NoError(t, err)

	assert.Equal(t, []string{"pint", "larastan", "livewire", "alpine-removal"}, p.IDs())
	for _, step := range p.Steps() {
		assert.NotEqual(t, models.CategoryCore, step.Category, step.ID)
	}
}

func TestBuildPlanEmpty(t *testing.T) {
	reg := laravelRegistry(t)

	p, err := plan.BuildPlan(reg, nil, models.ModeProject)
	require.NoError(t, err)
	assert.True(t, p.IsEmpty())

	p, err = plan.BuildPlan(reg, []string{"environment", "seeder"}, models.ModePackages)
	require.NoError(t, err)
	assert.True(t, p.IsEmpty())
}

func TestBuildPlanErrors(t *testing.T) {
	reg := laravelRegistry(t)

	_, err := plan.BuildPlan(reg, []string{"telescope"}, models.ModeProject)
	assert.ErrorContains(t, err, "unknown step: telescope")

	_, err = plan.BuildPlan(reg, []string{"pint"}, models.Mode("everything"))
	assert.ErrorContains(t, err, "unknown mode")
}

func TestGenerateConditionalInjection(t *testing.T) {
	reg := laravelRegistry(t)

	current, err := plan.Generate(reg, plan.GenerateOptions{
		Mode:     models.ModeProject,
		Selected: []string{"livewire"},
		Answers:  map[string]string{"livewire_version": "current"},
	})
	require.NoError(t, err)
	assert.True(t, current.Contains("alpine-removal"))

	legacy, err := plan.Generate(reg, plan.GenerateOptions{
		Mode:     models.ModeProject,
		Selected: []string{"livewire"},
		Answers:  map[string]string{"livewire_version": "legacy"},
	})
	require.NoError(t, err)
	assert.False(t, legacy.Contains("alpine-removal"))
	assert.Equal(t, []string{"livewire"}, legacy.IDs())

	_, err = plan.Generate(reg, plan.GenerateOptions{Selected: []string{"nope"}})
	assert.ErrorContains(t, err, "error resolving selection")
}

func TestSelectable(t *testing.T) {
	reg := laravelRegistry(t)

	var ids []string
	for _, step := range plan.Selectable(reg, models.ModePackages) {
		ids = append(ids, step.ID)
	}
	assert.Equal(t, []string{"pint", "larastan", "livewire"}, ids)
	assert.Len(t, plan.Selectable(reg, models.ModeProject), 6)
}

func TestSelectEverythingWithLegacyLivewire(t *testing.T) {
	reg := laravelRegistry(t)

	for _, mode := range []models.Mode{models.ModeProject, models.ModePackages} {
		var all []string
		for _, step := range plan.Selectable(reg, mode) {
			all = append(all, step.ID)
		}

		p, err := plan.Generate(reg, plan.GenerateOptions{
			Mode:     mode,
			Selected: all,
			Answers:  map[string]string{"livewire_version": "legacy"},
		})
		require.NoError(t, err)
		assert.True(t, p.Contains("livewire"), mode)
		assert.False(t, p.Contains("alpine-removal"), mode)
		assert.False(t, p.Contains("valet"), mode)
	}
}

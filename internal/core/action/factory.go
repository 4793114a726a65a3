// SPDX-License-Identifier: Apache-2.0

package action

import (
	"fmt"
	"io/fs"
)

// Action type names understood by RegisterDefaultTypes
const (
	TypeCLI      = "cli"
	TypeFile     = "file"
	TypePatch    = "patch"
	TypeScript   = "script"
	TypeSequence = "sequence"
	TypeBuiltin  = "builtin"
)

// ActionCreator is a function that creates a handler from a configuration
type ActionCreator func(Config, ActionContext) (Handler, error)

// ActionContext provides contextual information for handler creation
type ActionContext struct {
	// Templates holds the bundled file stubs
	Templates fs.FS

	// TemplatesDir is checked before Templates so a user can override a stub
	TemplatesDir string

	// Builtins maps names to handlers implemented in code
	Builtins map[string]Handler
}

// Factory creates handlers of different types
type Factory struct {
	actionCreators map[string]ActionCreator
	context        ActionContext
}

// NewFactory creates a new action factory with the given context
func NewFactory(context ActionContext) *Factory {
	return &Factory{
		actionCreators: make(map[string]ActionCreator),
		context:        context,
	}
}

// Register registers a new action type creator
func (f *Factory) Register(typeName string, creator ActionCreator) {
	f.actionCreators[typeName] = creator
}

// Create creates a handler of the configured type
func (f *Factory) Create(config Config) (Handler, error) {
	creator, ok := f.actionCreators[config.Type]
	if !ok {
		return nil, fmt.Errorf("unknown action type: %s", config.Type)
	}

	return creator(config, f.context)
}

// RegisterDefaultTypes registers all the standard action types
func (f *Factory) RegisterDefaultTypes() {
	f.Register(TypeCLI, func(config Config, context ActionContext) (Handler, error) {
		return NewCommandAction(config)
	})

	f.Register(TypeFile, func(config Config, context ActionContext) (Handler, error) {
		if config.TemplatePath == "" {
			return nil, fmt.Errorf("template_path is required for file actions")
		}

		if config.TargetPath == "" {
			return nil, fmt.Errorf("target_path is required for file actions")
		}

		return &FileAction{
			config:       config,
			templates:    context.Templates,
			templatesDir: context.TemplatesDir,
		}, nil
	})

	f.Register(TypePatch, func(config Config, context ActionContext) (Handler, error) {
		return NewPatchAction(config)
	})

	f.Register(TypeScript, func(config Config, context ActionContext) (Handler, error) {
		return NewScriptAction(config)
	})

	// Sequences build their children through this factory
	f.Register(TypeSequence, func(config Config, context ActionContext) (Handler, error) {
		if len(config.Actions) == 0 {
			return nil, fmt.Errorf("actions are required for sequence actions")
		}

		children := make([]Handler, 0, len(config.Actions))
		for i, child := range config.Actions {
			handler, err := f.Create(child)
			if err != nil {
				return nil, fmt.Errorf("error creating action %d of sequence: %w", i+1, err)
			}
			children = append(children, handler)
		}

		return &SequenceAction{config: config, actions: children}, nil
	})

	f.Register(TypeBuiltin, func(config Config, context ActionContext) (Handler, error) {
		if config.Builtin == "" {
			return nil, fmt.Errorf("builtin is required for builtin actions")
		}

		handler, ok := context.Builtins[config.Builtin]
		if !ok {
			return nil, fmt.Errorf("unknown builtin: %s", config.Builtin)
		}
		return handler, nil
	})
}

// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"

	"github.com/kusari-oss/ready/internal/core/format"
	"github.com/kusari-oss/ready/internal/core/models"
	"github.com/kusari-oss/ready/internal/ready"
	"github.com/spf13/cobra"
)

// selectionFlags are the step selection and answers shared by run and plan
type selectionFlags struct {
	mode      string
	steps     []string
	all       bool
	livewire  string
	valetLink string
	format    bool

	answersFile string
}

func (f *selectionFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.mode, "mode", "m", string(models.ModeProject), "project (every step) or packages (tooling only)")
	cmd.Flags().StringSliceVarP(&f.steps, "steps", "s", nil, "Comma separated step IDs to run")
	cmd.Flags().BoolVar(&f.all, "all", false, "Select every step available in the mode")
	cmd.Flags().StringVar(&f.livewire, "livewire", "", "Livewire version: current or legacy")
	cmd.Flags().StringVar(&f.valetLink, "valet-link", "", "Valet link name without .test, or . for the folder name")
	cmd.Flags().BoolVar(&f.format, "format", false, "Format the code once the steps ran")
	cmd.Flags().StringVar(&f.answersFile, "answers", "", "YAML or JSON file with answers; flags take precedence")
}

func (f *selectionFlags) parseMode() (models.Mode, error) {
	mode, ok := models.ParseMode(f.mode)
	if !ok {
		return "", fmt.Errorf("unknown mode %q (expected %s or %s)", f.mode, models.ModeProject, models.ModePackages)
	}
	return mode, nil
}

func (f *selectionFlags) selected(session *ready.Session, mode models.Mode) []string {
	if f.all {
		return session.SelectableIDs(mode)
	}
	return f.steps
}

// answers only carries the answers file and the flags the user set so
// schema defaults apply to the rest
func (f *selectionFlags) answers(cmd *cobra.Command) (map[string]interface{}, error) {
	answers := map[string]interface{}{}
	if f.answersFile != "" {
		loaded, err := format.LoadAnswers(f.answersFile)
		if err != nil {
			return nil, fmt.Errorf("error reading answers from %s: %w", f.answersFile, err)
		}
		answers = loaded
	}

	if cmd.Flags().Changed("livewire") {
		answers[ready.AnswerLivewireVersion] = f.livewire
	}
	if cmd.Flags().Changed("valet-link") {
		answers[ready.AnswerValetLink] = f.valetLink
	}
	if cmd.Flags().Changed("format") {
		answers[ready.AnswerFormat] = f.format
	}
	return answers, nil
}

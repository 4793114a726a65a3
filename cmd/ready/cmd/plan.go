// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"

	"github.com/kusari-oss/ready/internal/core/format"
	"github.com/kusari-oss/ready/internal/core/models"
	"github.com/spf13/cobra"
)

// planOutput is the printable form of an execution plan
type planOutput struct {
	Mode  models.Mode       `json:"mode" yaml:"mode"`
	Steps []models.PlanStep `json:"steps" yaml:"steps"`
}

func newPlanCmd(opts *rootOptions) *cobra.Command {
	flags := &selectionFlags{}
	var output, save string

	planCmd := &cobra.Command{
		Use:   "plan",
		Short: "Print the plan for a selection without running it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			encoding, err := format.ParseEncoding(output)
			if err != nil {
				return err
			}

			mode, err := flags.parseMode()
			if err != nil {
				return err
			}

			session, err := opts.session()
			if err != nil {
				return err
			}

			raw, err := flags.answers(cmd)
			if err != nil {
				return err
			}

			answers, err := session.ProcessAnswers(raw)
			if err != nil {
				return err
			}

			p, err := session.Plan(mode, flags.selected(session, mode), answers)
			if err != nil {
				return err
			}

			out := planOutput{Mode: p.Mode(), Steps: p.Steps()}
			if save != "" {
				if err := format.WriteFile(save, out); err != nil {
					return fmt.Errorf("error saving plan: %w", err)
				}
				opts.console(cmd).Info("Plan written to %s\n", save)
				return nil
			}

			rendered, err := format.Encode(out, encoding)
			if err != nil {
				return fmt.Errorf("error formatting plan: %w", err)
			}

			_, err = cmd.OutOrStdout().Write(rendered)
			return err
		},
	}

	flags.bind(planCmd)
	planCmd.Flags().StringVarP(&output, "output", "o", "yaml", "Output format: yaml or json")
	planCmd.Flags().StringVar(&save, "save", "", "Write the plan to a file instead of printing it (JSON for .json, YAML otherwise)")
	return planCmd
}

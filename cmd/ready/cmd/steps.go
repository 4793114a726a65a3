// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/kusari-oss/ready/internal/core/models"
	"github.com/kusari-oss/ready/internal/ready/plan"
	"github.com/spf13/cobra"
)

func newStepsCmd(opts *rootOptions) *cobra.Command {
	var mode string

	stepsCmd := &cobra.Command{
		Use:   "steps",
		Short: "List the steps of the catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			parsed, ok := models.ParseMode(mode)
			if !ok {
				return fmt.Errorf("unknown mode %q", mode)
			}

			session, err := opts.session()
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tCATEGORY\tORDER\tLABEL")
			for _, step := range plan.Selectable(session.Registry, parsed) {
				fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", step.ID, step.Category, step.Order, step.Label)
			}
			if err := w.Flush(); err != nil {
				return err
			}

			if !opts.verbose {
				return nil
			}

			if names := session.AnswerNames(); len(names) > 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "\nAnswers: %s\n", strings.Join(names, ", "))
			}

			rules := session.Registry.Rules()
			if len(rules) > 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "\nRules:")
				for _, rule := range rules {
					fmt.Fprintf(cmd.OutOrStdout(), "  %s: %s\n", rule.ID, rule.Reason)
				}
			}
			return nil
		},
	}

	stepsCmd.Flags().StringVarP(&mode, "mode", "m", string(models.ModeProject), "Only list steps available in this mode")
	return stepsCmd
}

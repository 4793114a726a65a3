// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"github.com/kusari-oss/ready/internal/ready"
	"github.com/kusari-oss/ready/internal/version"
	"github.com/spf13/cobra"
)

func newRunCmd(opts *rootOptions) *cobra.Command {
	flags := &selectionFlags{}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run the selected steps against the project",
		Long: `Run checks that dependencies are installed and that the project is not in
production, resolves the selected steps into a plan and executes it. Failed
steps are reported and logged; the remaining steps still run.`,
		Example: `  ready run --steps environment,pint,larastan,migrations --format
  ready run --mode packages --steps livewire --livewire legacy
  ready run --all --valet-link blog
  ready run --all --answers answers.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			mode, err := flags.parseMode()
			if err != nil {
				return err
			}

			session, err := opts.session()
			if err != nil {
				return err
			}

			answers, err := flags.answers(cmd)
			if err != nil {
				return err
			}

			console := opts.console(cmd)
			result, err := session.Run(cmd.Context(), ready.RunOptions{
				Mode:     mode,
				Selected: flags.selected(session, mode),
				Answers:  answers,
				Verbose:  opts.verbose,
				Version:  version.Version,
				Console:  console,
			})
			if err != nil {
				return err
			}

			succeeded := len(result.Report.Succeeded())
			failed := len(result.Report.Failed())
			if failed > 0 {
				console.Warn("%d of %d steps failed\n", failed, succeeded+failed)
			} else if succeeded > 0 {
				console.Info("Project ready.\n")
			}
			if result.ScriptRemoved {
				console.Debug("Removed %s\n", session.Config.ScriptFile)
			}
			return nil
		},
	}

	flags.bind(runCmd)
	return runCmd
}

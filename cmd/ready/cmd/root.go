// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"
	"fmt"

	"github.com/kusari-oss/ready/internal/logger"
	"github.com/kusari-oss/ready/internal/ready"
	"github.com/kusari-oss/ready/internal/version"
	"github.com/spf13/cobra"
)

// rootOptions holds the persistent flags shared by every subcommand
type rootOptions struct {
	projectDir string
	configFile string
	verbose    bool
	noColor    bool
}

// session loads the configuration and catalog for the selected project
func (o *rootOptions) session() (*ready.Session, error) {
	return ready.Load(o.projectDir, o.configFile)
}

// console prints to the command's output stream
func (o *rootOptions) console(cmd *cobra.Command) *logger.Console {
	console := logger.New(cmd.OutOrStdout(), o.verbose)
	if o.noColor {
		console.WithoutColor()
	}
	return console
}

// NewRootCmd creates the ready command tree
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "ready",
		Short: "Ready - Laravel project bootstrapping",
		Long: `Ready prepares a freshly created Laravel project. It installs the selected
tooling, patches the environment and stub files and links the project with
Valet. Steps run in a fixed order and a failing step never stops the others.`,
		Version:       fmt.Sprintf("%s (commit: %s)", version.Version, version.Commit),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.projectDir, "project-dir", "", "project directory (default is current directory)")
	rootCmd.PersistentFlags().StringVar(&opts.configFile, "config", "", "config file applied after .ready/config.yaml")
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().BoolVar(&opts.noColor, "no-color", false, "Disable colored output")

	rootCmd.AddCommand(newRunCmd(opts))
	rootCmd.AddCommand(newPlanCmd(opts))
	rootCmd.AddCommand(newStepsCmd(opts))
	rootCmd.AddCommand(newInitCmd(opts))
	rootCmd.AddCommand(newDoctorCmd(opts))

	return rootCmd
}

// Execute runs the command tree with ctx
func Execute(ctx context.Context) error {
	return NewRootCmd().ExecuteContext(ctx)
}

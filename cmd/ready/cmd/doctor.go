// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"errors"
	"io/fs"
	"sort"
	"strings"

	"github.com/kusari-oss/ready/internal/core/config"
	"github.com/kusari-oss/ready/internal/core/executor"
	"github.com/kusari-oss/ready/internal/ready/preflight"
	"github.com/spf13/cobra"
)

func newDoctorCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check the project, the credentials file and the external tools",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := opts.session()
			if err != nil {
				return err
			}
			console := opts.console(cmd)

			console.Info("Project: %s\n", session.ProjectDir)
			if _, err := preflight.Check(session.ProjectDir); err != nil {
				console.Error("  %v\n", err)
			} else {
				console.Info("  ready to run\n")
			}

			credentials, err := config.LoadCredentials(session.Config.CredentialsFile)
			switch {
			case err != nil:
				console.Error("Credentials: %v\n", err)
			case len(credentials) == 0:
				console.Warn("Credentials: %s is missing or empty\n", session.Config.CredentialsFile)
			default:
				console.Info("Credentials: %s (%s)\n", session.Config.CredentialsFile, strings.Join(sortedKeys(credentials), ", "))
			}

			console.Info("Tools:\n")
			shell := executor.NewRunner(session.ProjectDir)
			for _, tool := range preflight.LookupTools(preflight.DefaultTools...) {
				if tool.Found {
					console.Info("  %s: %s\n", tool.Name, tool.Path)
					if opts.verbose {
						if out, err := shell.Output(tool.Name + " --version"); err == nil {
							console.Info("    %s\n", firstLine(out))
						}
					}
				} else {
					console.Warn("  %s: not found\n", tool.Name)
				}
			}

			state, err := config.LoadState(session.ProjectDir)
			switch {
			case errors.Is(err, fs.ErrNotExist):
				console.Info("Last run: never\n")
			case err != nil:
				console.Warn("Last run: %v\n", err)
			default:
				console.Info("Last run: %s (%s mode, %d succeeded, %d failed)\n",
					state.LastRunAt, state.Mode, len(state.Succeeded), len(state.Failed))
				if len(state.Failed) > 0 {
					console.Warn("  failed: %s\n", strings.Join(state.Failed, ", "))
				}
			}
			return nil
		},
	}
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return strings.TrimSpace(s[:i])
	}
	return s
}

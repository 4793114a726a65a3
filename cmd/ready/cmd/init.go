// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/kusari-oss/ready/internal/core/config"
	"github.com/kusari-oss/ready/internal/defaults"
	"github.com/spf13/cobra"
)

func newInitCmd(opts *rootOptions) *cobra.Command {
	var force, list bool

	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Copy the default catalog and templates into .ready for editing",
		Long: `Init writes the built-in step catalog and file templates to the project's
.ready directory and points the project configuration at the copied catalog.
Templates in .ready/templates take precedence over the built-in ones.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			manager := defaults.NewManager()
			if list {
				files, err := manager.ListEmbeddedFiles()
				if err != nil {
					return err
				}
				for _, file := range files {
					fmt.Fprintln(cmd.OutOrStdout(), file)
				}
				return nil
			}

			projectDir := opts.projectDir
			if projectDir == "" {
				wd, err := os.Getwd()
				if err != nil {
					return fmt.Errorf("error getting current directory: %w", err)
				}
				projectDir = wd
			}

			configDir := filepath.Join(projectDir, config.DefaultConfigDir)
			written, err := manager.CopyDefaults(configDir, force)
			if err != nil {
				return err
			}

			console := opts.console(cmd)
			for _, path := range written {
				console.Info("Created %s\n", path)
			}

			configPath := config.ProjectConfigFilePath(projectDir)
			if _, err := os.Stat(configPath); err == nil && !force {
				console.Warn("Kept existing %s\n", configPath)
				return nil
			} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("error checking %s: %w", configPath, err)
			}

			cfg := &config.Config{CatalogFile: filepath.Join(config.DefaultConfigDir, defaults.CatalogFile)}
			if err := config.SaveConfig(cfg, projectDir); err != nil {
				return err
			}
			console.Info("Created %s\n", configPath)
			return nil
		},
	}

	initCmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite existing files")
	initCmd.Flags().BoolVar(&list, "list", false, "List the built-in files without writing anything")
	return initCmd
}

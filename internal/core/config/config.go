// SPDX-License-Identifier: Apache-2.0

// Package config loads ready's settings. Defaults are overlaid by the global
// file (~/.ready/config.yaml), then by the project file
// (<project>/.ready/config.yaml), then by a file named on the command line.

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Constants for default paths
const (
	DefaultConfigDir       = ".ready"
	DefaultConfigFileName  = "config.yaml"
	DefaultStateFileName   = "state.yaml"
	DefaultCredentialsFile = "~/.laravel"
	DefaultLogFile         = "storage/logs/laravel-ready.log"
	DefaultProviderLine    = 21
	DefaultLarastanLevel   = 5
	DefaultExitDelay       = 3 * time.Second

	// HomeEnvVar overrides the home directory, mostly for tests
	HomeEnvVar = "READY_HOME"
)

// Config holds the application configuration
type Config struct {
	// LogFile receives one line per failed step, relative to the project
	LogFile string `yaml:"log_file,omitempty"`

	// CredentialsFile holds the user's database credentials and presets
	CredentialsFile string `yaml:"credentials_file,omitempty"`

	CommentDirs       []string `yaml:"comment_dirs,omitempty"`
	CommentExtensions []string `yaml:"comment_extensions,omitempty"`
	StripLineComments bool     `yaml:"strip_line_comments,omitempty"`

	ProviderLine  int `yaml:"provider_line,omitempty"`
	LarastanLevel int `yaml:"larastan_level,omitempty"`

	// ScriptFile is removed after a fully successful run when set
	ScriptFile string        `yaml:"script_file,omitempty"`
	ExitDelay  time.Duration `yaml:"exit_delay,omitempty"`

	StrictExitCodes bool `yaml:"strict_exit_codes,omitempty"`

	// CatalogFile replaces the built-in step catalog
	CatalogFile string `yaml:"catalog_file,omitempty"`
}

// State records the outcome of the last run in a project
type State struct {
	ProjectDir string   `yaml:"project_dir"`
	LastRunAt  string   `yaml:"last_run_at"`
	Mode       string   `yaml:"mode"`
	Succeeded  []string `yaml:"succeeded"`
	Failed     []string `yaml:"failed"`
	Version    string   `yaml:"version"`
}

// NewDefaultConfig creates a default configuration
func NewDefaultConfig() *Config {
	return &Config{
		LogFile:           DefaultLogFile,
		CredentialsFile:   DefaultCredentialsFile,
		CommentDirs:       []string{"app", "database"},
		CommentExtensions: []string{".php"},
		StripLineComments: false,
		ProviderLine:      DefaultProviderLine,
		LarastanLevel:     DefaultLarastanLevel,
		ExitDelay:         DefaultExitDelay,
	}
}

// NewState creates a state record stamped with the current time
func NewState(projectDir, mode, version string, succeeded, failed []string) *State {
	return &State{
		ProjectDir: projectDir,
		LastRunAt:  time.Now().Format(time.RFC3339),
		Mode:       mode,
		Succeeded:  succeeded,
		Failed:     failed,
		Version:    version,
	}
}

// ExpandPathWithTilde expands ~ to user home directory.
// It respects the READY_HOME environment variable for testing purposes.
func ExpandPathWithTilde(path string) string {
	if path == "~" {
		home := getHomeDir()
		if home == "" {
			return path // Return original if can't expand
		}
		return home
	}
	if strings.HasPrefix(path, "~/") {
		home := getHomeDir()
		if home == "" {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}

// getHomeDir returns the home directory, respecting READY_HOME for testing
func getHomeDir() string {
	if readyHome := os.Getenv(HomeEnvVar); readyHome != "" {
		return readyHome
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return home
}

// GlobalConfigFilePath returns the absolute path to the global config file.
// It respects the READY_HOME environment variable for testing purposes.
func GlobalConfigFilePath() (string, error) {
	home := getHomeDir()
	if home == "" {
		return "", fmt.Errorf("could not get user home directory")
	}
	return filepath.Join(home, DefaultConfigDir, DefaultConfigFileName), nil
}

// ProjectConfigFilePath returns the project-local config file path
func ProjectConfigFilePath(projectDir string) string {
	return filepath.Join(projectDir, DefaultConfigDir, DefaultConfigFileName)
}

// LoadConfig loads the configuration for a project. Missing files are
// skipped; a file that exists but cannot be parsed is an error.
// configPathOverride names an extra file applied last.
func LoadConfig(projectDir string, configPathOverride string) (*Config, error) {
	config := NewDefaultConfig()

	var paths []string
	if globalPath, err := GlobalConfigFilePath(); err == nil {
		paths = append(paths, globalPath)
	}
	if projectDir != "" {
		paths = append(paths, ProjectConfigFilePath(projectDir))
	}

	for _, path := range paths {
		if err := decodeConfigFile(path, config); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, err
		}
	}

	// An explicitly requested file must exist
	if configPathOverride != "" {
		if err := decodeConfigFile(ExpandPathWithTilde(configPathOverride), config); err != nil {
			return nil, err
		}
	}

	config.CredentialsFile = ExpandPathWithTilde(config.CredentialsFile)
	if config.CatalogFile != "" {
		config.CatalogFile = ExpandPathWithTilde(config.CatalogFile)
	}

	return config, nil
}

// LoadConfigFile loads a configuration from a specific file path
func LoadConfigFile(path string) (*Config, error) {
	config := &Config{}
	if err := decodeConfigFile(path, config); err != nil {
		return nil, err
	}
	return config, nil
}

// decodeConfigFile applies the keys present in path onto config. Keys the
// file does not mention keep their value, so a later file can set a
// setting back to zero or false.
func decodeConfigFile(path string, config *Config) error {
	if path == "" {
		return fmt.Errorf("config file path cannot be empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("error reading config file %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return fmt.Errorf("error parsing config file %s: %w", path, err)
	}
	return nil
}

// SaveConfig saves the configuration to the project directory
func SaveConfig(config *Config, dir string) error {
	configDir := filepath.Join(dir, DefaultConfigDir)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("error creating config directory '%s': %w", configDir, err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}

	configPath := filepath.Join(configDir, DefaultConfigFileName)
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("error writing config file '%s': %w", configPath, err)
	}

	return nil
}

// SaveState saves the state to the specified directory
func SaveState(state *State, dir string) error {
	configDir := filepath.Join(dir, DefaultConfigDir)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	data, err := yaml.Marshal(state)
	if err != nil {
		return fmt.Errorf("error marshaling state: %w", err)
	}

	statePath := filepath.Join(configDir, DefaultStateFileName)
	if err := os.WriteFile(statePath, data, 0644); err != nil {
		return fmt.Errorf("error writing state file: %w", err)
	}

	return nil
}

// LoadState loads the state from the specified directory
func LoadState(dir string) (*State, error) {
	statePath := filepath.Join(dir, DefaultConfigDir, DefaultStateFileName)

	data, err := os.ReadFile(statePath)
	if err != nil {
		return nil, err
	}

	state := &State{}
	if err := yaml.Unmarshal(data, state); err != nil {
		return nil, fmt.Errorf("error parsing state file: %w", err)
	}

	return state, nil
}

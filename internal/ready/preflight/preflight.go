// SPDX-License-Identifier: Apache-2.0

package preflight

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/kusari-oss/ready/internal/core/config"
)

// Autoloader is created by "composer install"
const Autoloader = "vendor/autoload.php"

// Guard failure messages
const (
	MissingDependencies = `Please, run "composer install" before running this script.`
	ProductionRefused   = "For safety, you cannot run this script in production."
)

// Error is a guard failure. The run must stop before any step executes.
type Error struct {
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// Check runs every guard against the project and returns the .env content
// so the run can start from it. A missing .env is not an error.
func Check(projectDir string) (string, error) {
	if _, err := os.Stat(filepath.Join(projectDir, Autoloader)); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", &Error{Message: MissingDependencies}
		}
		return "", fmt.Errorf("error checking %s: %w", Autoloader, err)
	}

	data, err := os.ReadFile(filepath.Join(projectDir, ".env"))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("error reading .env: %w", err)
	}

	values, err := config.ParseKeyValues(data)
	if err != nil {
		return "", fmt.Errorf("error parsing .env: %w", err)
	}

	if strings.EqualFold(strings.Trim(values["APP_ENV"], `"'`), "production") {
		return "", &Error{Message: ProductionRefused}
	}

	return string(data), nil
}

// Tool is an external program the steps shell out to
type Tool struct {
	Name  string
	Path  string
	Found bool
}

// DefaultTools are the programs used by the bundled catalog
var DefaultTools = []string{"php", "composer", "npm", "valet"}

// LookupTools reports which programs are available on PATH
func LookupTools(names ...string) []Tool {
	tools := make([]Tool, 0, len(names))
	for _, name := range names {
		path, err := exec.LookPath(name)
		tools = append(tools, Tool{Name: name, Path: path, Found: err == nil})
	}
	return tools
}

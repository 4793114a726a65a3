// SPDX-License-Identifier: Apache-2.0

package steps

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/kusari-oss/ready/internal/core/format"
	"github.com/kusari-oss/ready/internal/core/models"
)

const pintUnavailable = "Unable to prepare the Laravel Pint. Please, review the docs."

// PintConfig is the file Laravel Pint reads its preset from
const PintConfig = "pint.json"

// DefaultPintPreset is used when the credentials name no preset
const DefaultPintPreset = "laravel"

// WritePintPreset writes pint.json from the PINT_PRESET credential. A value
// containing "http" is downloaded and written verbatim; anything else is a
// preset name.
func WritePintPreset(ctx *models.ExecutionContext) models.StepResult {
	if len(ctx.Credentials) == 0 {
		return models.FailureFromError(&ConfigurationError{File: ctx.Settings.CredentialsFile, Reason: pintUnavailable})
	}

	preset := ctx.Credential("PINT_PRESET")

	var content []byte
	var err error
	if strings.Contains(preset, "http") {
		content, err = fetchPreset(ctx, preset)
	} else {
		if preset == "" {
			preset = DefaultPintPreset
		}
		content, err = format.MarshalPretty(map[string]string{"preset": preset})
	}
	if err != nil {
		return models.FailureFromError(err)
	}

	if err := os.WriteFile(projectPath(ctx, PintConfig), content, 0644); err != nil {
		return models.FailureFromError(fmt.Errorf("error writing %s: %w", PintConfig, err))
	}

	return models.Success()
}

func fetchPreset(ctx *models.ExecutionContext, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx.Context(), http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("error creating request for %s: %w", url, err)
	}

	resp, err := httpClient(ctx).Do(req)
	if err != nil {
		return nil, fmt.Errorf("error fetching preset %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("error fetching preset %s: status %d", url, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading preset %s: %w", url, err)
	}

	return body, nil
}

// SPDX-License-Identifier: Apache-2.0

package schema

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// ValidationError lists every schema violation found in a document
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	var b strings.Builder
	b.WriteString("answer validation failed:\n")
	for _, p := range e.Problems {
		fmt.Fprintf(&b, "- %s\n", p)
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// ValidateParams validates parameters against a JSON schema. Violations are
// reported as a *ValidationError.
func ValidateParams(schema map[string]interface{}, params map[string]interface{}) error {
	schemaBytes, err := json.Marshal(schema)
	if err != nil {
		return fmt.Errorf("schema validation error: failed to serialize schema: %w", err)
	}
	schemaLoader := gojsonschema.NewBytesLoader(schemaBytes)

	paramsBytes, err := json.Marshal(params)
	if err != nil {
		return fmt.Errorf("schema validation error: failed to serialize params: %w", err)
	}
	documentLoader := gojsonschema.NewBytesLoader(paramsBytes)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return fmt.Errorf("schema validation error: %w", err)
	}

	if !result.Valid() {
		problems := make([]string, 0, len(result.Errors()))
		for _, resultErr := range result.Errors() {
			problems = append(problems, resultErr.String())
		}
		return &ValidationError{Problems: problems}
	}

	return nil
}

// MergeWithDefaults merges params with default values
func MergeWithDefaults(params map[string]interface{}, defaults map[string]interface{}) map[string]interface{} {
	result := make(map[string]interface{})

	for k, v := range defaults {
		result[k] = v
	}

	// Then override with actual params
	for k, v := range params {
		result[k] = v
	}

	return result
}

// Defaults collects the "default" of every top-level property in schema
func Defaults(schema map[string]interface{}) map[string]interface{} {
	defaults := make(map[string]interface{})

	properties, _ := schema["properties"].(map[string]interface{})
	for key, raw := range properties {
		prop, ok := raw.(map[string]interface{})
		if !ok {
			continue
		}
		if value, ok := prop["default"]; ok {
			defaults[key] = value
		}
	}

	return defaults
}

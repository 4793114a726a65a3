// SPDX-License-Identifier: Apache-2.0

package format

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Encoding is a document format accepted on the command line
type Encoding string

const (
	EncodingYAML Encoding = "yaml"
	EncodingJSON Encoding = "json"
)

// ParseEncoding validates an --output value
func ParseEncoding(s string) (Encoding, error) {
	switch enc := Encoding(strings.ToLower(s)); enc {
	case EncodingYAML, EncodingJSON:
		return enc, nil
	default:
		return "", fmt.Errorf("unknown output format %q (expected %s or %s)", s, EncodingYAML, EncodingJSON)
	}
}

// EncodingForPath picks JSON for .json files and YAML for everything else
func EncodingForPath(path string) Encoding {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return EncodingJSON
	}
	return EncodingYAML
}

// Encode renders v. JSON is indented by two spaces; both end with a newline.
func Encode(v interface{}, enc Encoding) ([]byte, error) {
	switch enc {
	case EncodingYAML:
		data, err := yaml.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("error encoding YAML: %w", err)
		}
		return data, nil
	case EncodingJSON:
		var buf bytes.Buffer
		encoder := json.NewEncoder(&buf)
		encoder.SetEscapeHTML(false)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(v); err != nil {
			return nil, fmt.Errorf("error encoding JSON: %w", err)
		}
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("unknown encoding %q", enc)
	}
}

// WriteFile encodes v into path using the encoding its extension implies
func WriteFile(path string, v interface{}) error {
	data, err := Encode(v, EncodingForPath(path))
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// LoadAnswers reads an answers file
func LoadAnswers(path string) (map[string]interface{}, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading file: %w", err)
	}
	return ParseAnswers(data)
}

// ParseAnswers decodes a YAML or JSON mapping of answer name to a single
// value. An empty document has no answers.
func ParseAnswers(data []byte) (map[string]interface{}, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("error parsing answers: %w", err)
	}

	answers := map[string]interface{}{}
	if len(doc.Content) == 0 {
		return answers, nil
	}

	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("answers must be a mapping of name to value (line %d)", root.Line)
	}

	for i := 0; i+1 < len(root.Content); i += 2 {
		key, value := root.Content[i], root.Content[i+1]
		if value.Kind != yaml.ScalarNode {
			return nil, fmt.Errorf("answer %q must be a single value (line %d)", key.Value, value.Line)
		}
	}

	if err := root.Decode(&answers); err != nil {
		return nil, fmt.Errorf("error parsing answers: %w", err)
	}
	return answers, nil
}

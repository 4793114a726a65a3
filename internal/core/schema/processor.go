// SPDX-License-Identifier: Apache-2.0

package schema

import (
	"encoding/json"
	"strconv"
	"strings"
)

// CoerceParams converts string values to the type their schema property
// declares. Command-line answers always arrive as strings; a value that
// cannot be converted is kept as a string so validation reports it.
func CoerceParams(params map[string]interface{}, schema map[string]interface{}) map[string]interface{} {
	result := make(map[string]interface{}, len(params))

	properties, _ := schema["properties"].(map[string]interface{})

	for key, value := range params {
		s, isString := value.(string)
		propSchema, hasSchema := properties[key].(map[string]interface{})
		if !isString || !hasSchema {
			result[key] = value
			continue
		}

		switch propSchema["type"] {
		case "array":
			if strings.HasPrefix(s, "[") && strings.HasSuffix(s, "]") {
				var arrayValue []interface{}
				if err := json.Unmarshal([]byte(s), &arrayValue); err == nil {
					result[key] = arrayValue
					continue
				}
			}
			if s == "" {
				result[key] = []interface{}{}
				continue
			}
			parts := strings.Split(s, ",")
			items := make([]interface{}, 0, len(parts))
			for _, part := range parts {
				items = append(items, strings.TrimSpace(part))
			}
			result[key] = items
			continue
		case "number", "integer":
			if num, err := strconv.ParseFloat(s, 64); err == nil {
				result[key] = num
				continue
			}
		case "boolean":
			if b, ok := parseBool(s); ok {
				result[key] = b
				continue
			}
		}

		result[key] = s
	}

	return result
}

// ProcessAnswers coerces params, fills absent keys from schema defaults and
// validates the result
func ProcessAnswers(params map[string]interface{}, schema map[string]interface{}) (map[string]interface{}, error) {
	merged := MergeWithDefaults(CoerceParams(params, schema), Defaults(schema))
	if err := ValidateParams(schema, merged); err != nil {
		return nil, err
	}
	return merged, nil
}

func parseBool(s string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "yes", "y", "1":
		return true, true
	case "false", "no", "n", "0":
		return false, true
	}
	return false, false
}

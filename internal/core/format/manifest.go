// SPDX-License-Identifier: Apache-2.0

package format

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"
)

// ManifestIndent is the indentation composer uses for composer.json
const ManifestIndent = "    "

// manifestStyle prints one array item per line, as composer does
var manifestStyle = &pretty.Options{Indent: ManifestIndent, SortKeys: false}

// Manifest is a JSON document edited in place, so object keys keep their
// original order across a read-modify-write cycle. It is used for
// composer.json, where a reordered file would produce a noisy diff.
type Manifest struct {
	raw []byte
}

// ParseManifest accepts a single JSON document whose top level is an object
func ParseManifest(data []byte) (*Manifest, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("error parsing manifest: invalid JSON")
	}
	if !gjson.ParseBytes(data).IsObject() {
		return nil, fmt.Errorf("error parsing manifest: top level is not an object")
	}
	return &Manifest{raw: append([]byte(nil), data...)}, nil
}

// ReadManifest reads and decodes a manifest file
func ReadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading manifest %s: %w", path, err)
	}
	return ParseManifest(data)
}

// Has reports whether the key path exists
func (m *Manifest) Has(path ...string) bool {
	return m.get(path).Exists()
}

// LookupString returns the string stored at the key path. Keys may contain
// slashes, as composer package names do.
func (m *Manifest) LookupString(path ...string) (string, bool) {
	value := m.get(path)
	if value.Type != gjson.String {
		return "", false
	}
	return value.Str, true
}

// Keys returns the keys of the object at the key path in document order
func (m *Manifest) Keys(path ...string) []string {
	value := m.get(path)
	if !value.IsObject() {
		return nil
	}

	var keys []string
	value.ForEach(func(key, _ gjson.Result) bool {
		keys = append(keys, key.String())
		return true
	})
	return keys
}

func (m *Manifest) get(path []string) gjson.Result {
	if m == nil || len(m.raw) == 0 {
		return gjson.Result{}
	}
	if len(path) == 0 {
		return gjson.ParseBytes(m.raw)
	}
	return gjson.GetBytes(m.raw, keyPath(path))
}

// Set stores value at the key path, creating missing intermediate objects.
// Existing keys keep their position; new keys are appended.
func (m *Manifest) Set(path []string, value interface{}) error {
	if len(path) == 0 {
		return fmt.Errorf("empty key path")
	}
	if len(m.raw) == 0 {
		m.raw = []byte("{}")
	}

	for i := 1; i < len(path); i++ {
		parent := m.get(path[:i])
		if parent.Exists() && !parent.IsObject() {
			return fmt.Errorf("cannot set %s: %s is not an object", strings.Join(path, "."), strings.Join(path[:i], "."))
		}
	}

	encoded, err := marshalCompact(value)
	if err != nil {
		return fmt.Errorf("error encoding %s: %w", strings.Join(path, "."), err)
	}

	updated, err := sjson.SetRawBytes(m.raw, keyPath(path), encoded)
	if err != nil {
		return fmt.Errorf("error setting %s: %w", strings.Join(path, "."), err)
	}
	m.raw = updated
	return nil
}

// Bytes encodes the manifest pretty-printed with four-space indentation,
// followed by a newline. Strings are written as they were read.
func (m *Manifest) Bytes() ([]byte, error) {
	raw := []byte("{}")
	if m != nil && len(m.raw) > 0 {
		raw = m.raw
	}
	return pretty.PrettyOptions(raw, manifestStyle), nil
}

// MarshalPretty encodes v the way Bytes encodes a manifest
func MarshalPretty(v interface{}) ([]byte, error) {
	encoded, err := marshalCompact(v)
	if err != nil {
		return nil, err
	}
	return pretty.PrettyOptions(encoded, manifestStyle), nil
}

// marshalCompact encodes v without escaping slashes or HTML characters
func marshalCompact(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// keyPath joins keys into a gjson/sjson path, escaping path syntax
func keyPath(keys []string) string {
	escaped := make([]string, len(keys))
	for i, key := range keys {
		var b strings.Builder
		for _, r := range key {
			switch r {
			case '\\', '.', '*', '?', '|', '#', '@', '!', '=', '<', '>', '%':
				b.WriteByte('\\')
			}
			b.WriteRune(r)
		}
		escaped[i] = b.String()
	}
	return strings.Join(escaped, ".")
}

// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/ini.v1"
)

// LoadCredentials reads a KEY=VALUE credentials file such as ~/.laravel.
// A missing file yields an empty map: steps that need credentials report
// the problem themselves.
func LoadCredentials(path string) (map[string]string, error) {
	data, err := os.ReadFile(ExpandPathWithTilde(path))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("error reading credentials file %s: %w", path, err)
	}

	return ParseKeyValues(data)
}

// ParseKeyValues parses dotenv-style KEY=VALUE content. Keys outside any
// section are returned; inline "#" is kept as part of the value.
func ParseKeyValues(data []byte) (map[string]string, error) {
	file, err := ini.LoadSources(ini.LoadOptions{
		IgnoreInlineComment:     true,
		SkipUnrecognizableLines: true,
	}, data)
	if err != nil {
		return nil, fmt.Errorf("error parsing key/value content: %w", err)
	}

	return file.Section(ini.DefaultSection).KeysHash(), nil
}

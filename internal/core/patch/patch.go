// SPDX-License-Identifier: Apache-2.0

// Package patch implements idempotent text transformations over file contents.
// Every transform is pure: callers read and write files through ReadFile,
// WriteFile or ApplyFile.
package patch

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Strategy selects how an Operation locates the text it replaces
type Strategy string

const (
	// StrategyAnchoredKey replaces the first KEY=... assignment line
	StrategyAnchoredKey Strategy = "anchored-key"
	// StrategyExactLine replaces an exact full-line match
	StrategyExactLine Strategy = "exact-line"
	// StrategyLineIndex replaces a token on a single zero-based line.
	// It relies on the scaffold keeping the target at a fixed line and
	// silently stops matching if the stub file changes length.
	StrategyLineIndex Strategy = "line-index"
	// StrategyUncommentLines strips "//" from commented lines
	StrategyUncommentLines Strategy = "uncomment-lines"
	// StrategyDropLines removes lines containing a token
	StrategyDropLines Strategy = "drop-lines"
)

// ErrLineOutOfRange is returned when a line-index operation targets a line
// beyond the end of the content
var ErrLineOutOfRange = errors.New("line index out of range")

// Operation describes one idempotent mutation of a file
type Operation struct {
	Path     string   `yaml:"path"`
	Strategy Strategy `yaml:"strategy"`

	// Key is the assignment key for StrategyAnchoredKey
	Key string `yaml:"key,omitempty"`

	// Match is the full line for StrategyExactLine and the token for
	// StrategyLineIndex and StrategyDropLines
	Match string `yaml:"match,omitempty"`

	// Line is the zero-based line for StrategyLineIndex
	Line int `yaml:"line,omitempty"`

	// Replacement is the new value (anchored), new line (exact) or new token (line-index)
	Replacement string `yaml:"replacement,omitempty"`

	// Skip lists markers that protect a line from StrategyUncommentLines
	Skip []string `yaml:"skip,omitempty"`
}

// AnchoredKey builds an operation setting KEY=value on the first assignment of key
func AnchoredKey(path, key, value string) Operation {
	return Operation{Path: path, Strategy: StrategyAnchoredKey, Key: key, Replacement: value}
}

// ExactLine builds an operation replacing the line `from` with `to`
func ExactLine(path, from, to string) Operation {
	return Operation{Path: path, Strategy: StrategyExactLine, Match: from, Replacement: to}
}

// LineIndex builds an operation replacing token on a single line
func LineIndex(path string, line int, token, replacement string) Operation {
	return Operation{Path: path, Strategy: StrategyLineIndex, Line: line, Match: token, Replacement: replacement}
}

// UncommentLines builds an operation uncommenting every line except those containing a skip marker
func UncommentLines(path string, skip ...string) Operation {
	return Operation{Path: path, Strategy: StrategyUncommentLines, Skip: skip}
}

// DropLines builds an operation removing lines that contain token
func DropLines(path, token string) Operation {
	return Operation{Path: path, Strategy: StrategyDropLines, Match: token}
}

// Apply transforms content according to op and returns the new content.
// Content that is already patched is returned byte-identical.
func Apply(content string, op Operation) (string, error) {
	switch op.Strategy {
	case StrategyAnchoredKey:
		return applyAnchoredKey(content, op)
	case StrategyExactLine:
		return applyExactLine(content, op), nil
	case StrategyLineIndex:
		return applyLineIndex(content, op)
	case StrategyUncommentLines:
		return applyUncommentLines(content, op), nil
	case StrategyDropLines:
		return applyDropLines(content, op), nil
	default:
		return content, fmt.Errorf("unknown patch strategy: %q", op.Strategy)
	}
}

// ApplyAll applies operations in order. Nothing is returned on error so a
// failed operation never leaves half-patched content behind.
func ApplyAll(content string, ops ...Operation) (string, error) {
	result := content
	for _, op := range ops {
		next, err := Apply(result, op)
		if err != nil {
			return content, err
		}
		result = next
	}
	return result, nil
}

func applyAnchoredKey(content string, op Operation) (string, error) {
	if op.Key == "" {
		return content, fmt.Errorf("anchored-key operation requires a key")
	}

	re, err := regexp.Compile(`(?m)^` + regexp.QuoteMeta(op.Key) + `\s*=[^\r\n]*`)
	if err != nil {
		return content, fmt.Errorf("error compiling pattern for %s: %w", op.Key, err)
	}

	loc := re.FindStringIndex(content)
	if loc == nil {
		return content, nil
	}

	return content[:loc[0]] + op.Key + "=" + op.Replacement + content[loc[1]:], nil
}

func applyExactLine(content string, op Operation) string {
	if op.Match == "" || op.Match == op.Replacement {
		return content
	}

	lines := strings.Split(content, "\n")
	changed := false
	for i, line := range lines {
		if strings.TrimSuffix(line, "\r") != op.Match {
			continue
		}
		if strings.HasSuffix(line, "\r") {
			lines[i] = op.Replacement + "\r"
		} else {
			lines[i] = op.Replacement
		}
		changed = true
	}

	if !changed {
		return content
	}
	return strings.Join(lines, "\n")
}

func applyLineIndex(content string, op Operation) (string, error) {
	lines := strings.Split(content, "\n")
	if op.Line < 0 || op.Line >= len(lines) {
		return content, fmt.Errorf("%w: line %d, file has %d lines", ErrLineOutOfRange, op.Line, len(lines))
	}

	target := lines[op.Line]
	if target == "" || op.Match == "" || !strings.Contains(target, op.Match) {
		return content, nil
	}

	lines[op.Line] = strings.ReplaceAll(target, op.Match, op.Replacement)
	return strings.Join(lines, "\n"), nil
}

func applyUncommentLines(content string, op Operation) string {
	lines := strings.Split(content, "\n")
	changed := false

	for i, line := range lines {
		if line == "" || !strings.Contains(line, "//") || containsAny(line, op.Skip) {
			continue
		}
		lines[i] = strings.ReplaceAll(line, "//", "")
		changed = true
	}

	if !changed {
		return content
	}
	return strings.Join(lines, "\n")
}

func applyDropLines(content string, op Operation) string {
	if op.Match == "" {
		return content
	}

	token := strings.ToLower(op.Match)
	lines := strings.Split(content, "\n")
	kept := make([]string, 0, len(lines))
	dropped := false

	for _, line := range lines {
		if strings.Contains(strings.ToLower(line), token) {
			dropped = true
			continue
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		kept = append(kept, line)
	}

	if !dropped {
		return content
	}

	result := strings.Join(kept, "\n")
	if strings.HasSuffix(content, "\n") {
		result += "\n"
	}
	return result
}

func containsAny(s string, markers []string) bool {
	for _, m := range markers {
		if m != "" && strings.Contains(s, m) {
			return true
		}
	}
	return false
}

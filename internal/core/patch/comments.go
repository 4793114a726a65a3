// SPDX-License-Identifier: Apache-2.0

package patch

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

var (
	blockCommentRegex = regexp.MustCompile(`(?s)/\*.*?\*/`)
	lineCommentRegex  = regexp.MustCompile(`//[^\r\n]*`)
	bothCommentsRegex = regexp.MustCompile(`(?s)/\*.*?\*/|//[^\r\n]*`)
)

// CommentOptions selects which comment forms StripComments removes
type CommentOptions struct {
	Block bool
	Line  bool
}

// StripComments removes comment spans with a single non-greedy pass over the
// whole content. Nested comments and comment markers inside string literals
// are not understood: a URL such as "http://example.com" loses everything
// after the scheme when line comments are stripped.
func StripComments(content string, opts CommentOptions) string {
	switch {
	case opts.Block && opts.Line:
		return bothCommentsRegex.ReplaceAllString(content, "")
	case opts.Block:
		return blockCommentRegex.ReplaceAllString(content, "")
	case opts.Line:
		return lineCommentRegex.ReplaceAllString(content, "")
	default:
		return content
	}
}

// StripCommentsInDirs strips comments from every file below each directory
// (relative to root) whose extension is listed. An empty extension list
// matches every file. Directories that do not exist are skipped. It returns
// the paths that were rewritten.
func StripCommentsInDirs(root string, dirs, extensions []string, opts CommentOptions) ([]string, error) {
	var rewritten []string

	for _, dir := range dirs {
		base := dir
		if !filepath.IsAbs(base) {
			base = filepath.Join(root, dir)
		}

		info, err := os.Stat(base)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return rewritten, fmt.Errorf("error reading %s: %w", base, err)
		}
		if !info.IsDir() {
			return rewritten, fmt.Errorf("error stripping comments in %s: not a directory", base)
		}

		err = filepath.WalkDir(base, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() || !d.Type().IsRegular() || !hasExtension(path, extensions) {
				return nil
			}

			content, err := ReadFile(path)
			if err != nil {
				return err
			}

			stripped := StripComments(content, opts)
			if stripped == content {
				return nil
			}

			if err := WriteFile(path, stripped); err != nil {
				return err
			}
			rewritten = append(rewritten, path)
			return nil
		})
		if err != nil {
			return rewritten, fmt.Errorf("error stripping comments in %s: %w", base, err)
		}
	}

	return rewritten, nil
}

func hasExtension(path string, extensions []string) bool {
	if len(extensions) == 0 {
		return true
	}
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range extensions {
		if strings.ToLower(e) == ext {
			return true
		}
	}
	return false
}

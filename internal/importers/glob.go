package importers

import (
	"fmt"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
)

// Expand resolves glob patterns ("catalogs/**/*.yml") to a sorted,
// de-duplicated list of files. A pattern without glob syntax is kept
// as-is so a missing file surfaces as a read error.
func Expand(patterns []string) ([]string, error) {
	seen := make(map[string]bool)
	var files []string
	for _, pattern := range patterns {
		if pattern == "" {
			continue
		}
		if !doublestar.ValidatePattern(filepath.ToSlash(pattern)) {
			return nil, fmt.Errorf("invalid pattern %q", pattern)
		}
		matches, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("expanding %q: %w", pattern, err)
		}
		if len(matches) == 0 && !hasMeta(pattern) {
			matches = []string{pattern}
		}
		for _, m := range matches {
			m = filepath.Clean(m)
			if !seen[m] {
				seen[m] = true
				files = append(files, m)
			}
		}
	}
	sort.Strings(files)
	return files, nil
}

func hasMeta(pattern string) bool {
	for _, c := range pattern {
		switch c {
		case '*', '?', '[', '{':
			return true
		}
	}
	return false
}

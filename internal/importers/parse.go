package importers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ziadkadry99/fixbot/internal/knowledge"
)

// catalogFile is the document form of a catalog. A bare list of
// entries is accepted too.
type catalogFile struct {
	Problems []knowledge.CatalogEntry `json:"problems" yaml:"problems"`
}

// FormatFor picks the catalog format from a file extension.
func FormatFor(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yml", ".yaml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	case ".md", ".markdown":
		return FormatMarkdown, nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
}

// ParseFile reads and parses one catalog file.
func ParseFile(path string) ([]knowledge.CatalogEntry, Format, error) {
	format, err := FormatFor(path)
	if err != nil {
		return nil, "", err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, format, fmt.Errorf("reading catalog %s: %w", path, err)
	}
	entries, err := Parse(data, format)
	if err != nil {
		return nil, format, fmt.Errorf("parsing catalog %s: %w", path, err)
	}
	return entries, format, nil
}

// Parse decodes catalog data. Entries missing a problem or a solution
// are dropped.
func Parse(data []byte, format Format) ([]knowledge.CatalogEntry, error) {
	var entries []knowledge.CatalogEntry
	switch format {
	case FormatMarkdown:
		entries = ParseMarkdown(string(data))
	case FormatYAML:
		var doc catalogFile
		if err := yaml.Unmarshal(data, &doc); err != nil {
			// Not a mapping; try a bare list.
			if listErr := yaml.Unmarshal(data, &entries); listErr != nil {
				return nil, err
			}
		} else {
			entries = doc.Problems
		}
	case FormatJSON:
		trimmed := bytes.TrimSpace(data)
		if bytes.HasPrefix(trimmed, []byte("[")) {
			if err := json.Unmarshal(trimmed, &entries); err != nil {
				return nil, err
			}
		} else {
			var doc catalogFile
			if err := json.Unmarshal(trimmed, &doc); err != nil {
				return nil, err
			}
			entries = doc.Problems
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}

	out := entries[:0]
	for _, e := range entries {
		e.Problem = strings.TrimSpace(e.Problem)
		e.Solution = strings.TrimSpace(e.Solution)
		if e.Problem == "" || e.Solution == "" {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

package importers

import (
	"regexp"
	"strings"

	"github.com/ziadkadry99/fixbot/internal/knowledge"
)

var headingRegex = regexp.MustCompile(`^(#{1,6})\s+(.+)$`)

// ParseSections splits markdown into heading sections. Text before the
// first heading is dropped.
func ParseSections(content string) []Section {
	lines := strings.Split(content, "\n")
	var sections []Section
	var current *Section

	for _, line := range lines {
		if m := headingRegex.FindStringSubmatch(strings.TrimRight(line, "\r")); m != nil {
			if current != nil {
				current.Content = strings.TrimSpace(current.Content)
				sections = append(sections, *current)
			}
			current = &Section{
				Heading: strings.TrimSpace(m[2]),
				Level:   len(m[1]),
			}
		} else if current != nil {
			current.Content += line + "\n"
		}
	}

	if current != nil {
		current.Content = strings.TrimSpace(current.Content)
		sections = append(sections, *current)
	}

	return sections
}

// ParseMarkdown reads a markdown catalog: every heading at the deepest
// level used in the file is a problem and its body is the solution. A
// single "# Title" above them is ignored. Sections without a body are
// skipped.
func ParseMarkdown(content string) []knowledge.CatalogEntry {
	sections := ParseSections(content)

	level := 0
	for _, s := range sections {
		if s.Level > level {
			level = s.Level
		}
	}

	var entries []knowledge.CatalogEntry
	for _, s := range sections {
		if s.Level != level || s.Content == "" {
			continue
		}
		entries = append(entries, knowledge.CatalogEntry{
			Problem:  s.Heading,
			Solution: s.Content,
		})
	}
	return entries
}

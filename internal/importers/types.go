package importers

import (
	"errors"
	"time"
)

// Format identifies how a catalog file is encoded.
type Format string

const (
	FormatYAML     Format = "yaml"
	FormatJSON     Format = "json"
	FormatMarkdown Format = "markdown"
)

// Status of a recorded import.
const (
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

var (
	// ErrUnsupportedFormat is returned for files whose extension names no
	// known catalog format.
	ErrUnsupportedFormat = errors.New("importers: unsupported catalog format")
	// ErrNoFiles is returned when no pattern matches a file.
	ErrNoFiles = errors.New("importers: no catalog files matched")
)

// Source records one catalog file that was imported into the knowledge
// base.
type Source struct {
	ID         string    `json:"id"`
	Path       string    `json:"path"`
	Format     Format    `json:"format"`
	Entries    int       `json:"entries"`
	Status     string    `json:"status"`
	Error      string    `json:"error,omitempty"`
	ImportedAt time.Time `json:"imported_at"`
}

// Result summarizes an import run.
type Result struct {
	Files    int      `json:"files"`
	Entries  int      `json:"entries"`
	Sources  []Source `json:"sources"`
	Failures []string `json:"failures,omitempty"`
}

// Section is a heading and the text under it in a markdown catalog.
type Section struct {
	Heading string `json:"heading"`
	Content string `json:"content"`
	Level   int    `json:"level"` // heading level (1-6)
}

package knowledge

import "errors"

// SystemAuthor is the submitter recorded on built-in solutions.
const SystemAuthor = "System"

var (
	// ErrUnknownProblem is returned when feedback targets a problem that
	// is not in the knowledge base.
	ErrUnknownProblem = errors.New("knowledge: problem not stored")
	// ErrEmptyProblem is returned when teaching a blank problem.
	ErrEmptyProblem = errors.New("knowledge: problem is empty")
)

// Record is a stored solution with its feedback history. The JSON names
// are the persisted blob format.
type Record struct {
	SolutionText string `json:"solution"`
	SubmittedBy  string `json:"submittedBy"`
	Confidence   int    `json:"confidence"`
	SuccessCount int    `json:"success"`
	FailureCount int    `json:"failure"`
}

// Layer says where an entry of the merged view comes from.
type Layer string

const (
	LayerDefault Layer = "default"
	LayerUser    Layer = "user"
)

// Entry is one problem of the merged knowledge view.
type Entry struct {
	Problem string `json:"problem"`
	Record
	Layer Layer `json:"layer"`
}

// CatalogEntry is a problem/solution pair from the built-in catalog or
// an imported catalog file.
type CatalogEntry struct {
	Problem     string `json:"problem" yaml:"problem"`
	Solution    string `json:"solution" yaml:"solution"`
	SubmittedBy string `json:"submitted_by,omitempty" yaml:"submitted_by,omitempty"`
}

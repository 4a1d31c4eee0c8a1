package harness

import (
	"github.com/roach88/specdiff/internal/ir"
	"github.com/roach88/specdiff/internal/pipeline"
)

// Result is the outcome of a test scenario execution.
type Result struct {
	// Pass is true when every expectation and assertion held.
	Pass bool `json:"pass"`

	// Findings holds every envelope written by the run, sorted by report line.
	Findings []ir.Envelope `json:"findings"`

	// Stats are the pipeline's run statistics.
	Stats pipeline.Stats `json:"stats"`

	// Errors contains validation error messages. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:     true,
		Findings: []ir.Envelope{},
		Errors:   []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

package paramcheck

import (
	"encoding/json"
)

// Result is the outcome of one Schema run.
type Result struct {
	// Errors holds the collected validation issues
	Errors *ErrorStore

	// Global is the run state: queued rules, post-validation records and
	// the execution tree
	Global *GlobalContext

	// Values maps every top-level parameter name to its sanitized value
	Values map[string]any
}

// Valid reports whether the run collected no issues.
func (r *Result) Valid() bool {
	return !r.Errors.HasErrors()
}

// Issues returns the collected issues in order.
func (r *Result) Issues() []ValidationIssue {
	return r.Errors.Issues()
}

// Nodes returns every node the run created for p.
func (r *Result) Nodes(p *Parameter) NodeList {
	return r.Global.Nodes(p)
}

// RunID returns the identifier of the run.
func (r *Result) RunID() string {
	return r.Global.ID()
}

// MarshalJSON encodes the result as {"runId","valid","issues","values"}.
func (r *Result) MarshalJSON() ([]byte, error) {
	issues := r.Issues()
	if issues == nil {
		issues = []ValidationIssue{}
	}
	return json.Marshal(struct {
		RunID  string            `json:"runId"`
		Valid  bool              `json:"valid"`
		Issues []ValidationIssue `json:"issues"`
		Values map[string]any    `json:"values,omitempty"`
	}{
		RunID:  r.RunID(),
		Valid:  r.Valid(),
		Issues: issues,
		Values: r.Values,
	})
}

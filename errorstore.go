package paramcheck

import (
	"reflect"
)

// ErrorStore collects the validation issues of one run in the order they
// were observed.
//
// The same error value can travel through several resolution frames (a
// failing leaf, its array, its object). ProcessOnce lets each frame try to
// record it while only the first one succeeds.
type ErrorStore struct {
	issues    []ValidationIssue
	processed map[error]struct{}
}

// NewErrorStore creates an empty store.
func NewErrorStore() *ErrorStore {
	return &ErrorStore{processed: make(map[error]struct{})}
}

// Add appends an issue.
func (s *ErrorStore) Add(issue ValidationIssue) *ErrorStore {
	s.issues = append(s.issues, issue)
	return s
}

// Issues returns the collected issues in order. The slice must not be
// modified.
func (s *ErrorStore) Issues() []ValidationIssue {
	return s.issues
}

// Len returns the number of collected issues.
func (s *ErrorStore) Len() int {
	return len(s.issues)
}

// HasErrors reports whether any issue was collected.
func (s *ErrorStore) HasErrors() bool {
	return len(s.issues) > 0
}

// ProcessOnce returns s the first time it sees err and nil on every later
// call with the same error value, so that
//
//	if store := errs.ProcessOnce(err); store != nil {
//	    store.Add(issue)
//	}
//
// records a shared failure exactly once. Errors that cannot be compared
// are always processed. Schema errors are never tracked: callers must
// check IsSchemaError first and propagate them.
func (s *ErrorStore) ProcessOnce(err error) *ErrorStore {
	if err == nil || !reflect.TypeOf(err).Comparable() {
		return s
	}
	if _, seen := s.processed[err]; seen {
		return nil
	}
	s.processed[err] = struct{}{}
	return s
}

// failure wraps an error observed at one tree position. Handlers may
// share error values across occurrences; the wrapper keeps each
// occurrence distinct for ProcessOnce.
type failure struct {
	err error
}

func (f *failure) Error() string { return f.err.Error() }

func (f *failure) Unwrap() error { return f.err }

// record adds the issue for err at rc unless that failure was already
// recorded by a deeper frame, and returns the error to propagate.
// Schema errors pass through untouched.
func (s *ErrorStore) record(rc *ResolveContext, p *Parameter, err error) error {
	if err == nil || IsSchemaError(err) {
		return err
	}
	f, ok := err.(*failure)
	if !ok {
		f = &failure{err: err}
	}
	if store := s.ProcessOnce(f); store != nil {
		store.Add(newIssue(rc, p, f.err))
	}
	return f
}

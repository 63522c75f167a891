// Package stream validates a sequence of JSON input documents against one
// schema, emitting a result per document as it is decoded.
//
// The input is either a JSON array of objects or newline-delimited JSON.
package stream

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"unicode"

	"github.com/buger/jsonparser"

	"github.com/gofhir/paramcheck"
	"github.com/gofhir/paramcheck/store"
)

// EntryResult is the outcome for one document.
type EntryResult struct {
	// Index is the position of the document in the input, or -1 for
	// errors that concern the input as a whole
	Index int

	// ID is the value of the configured id field, if present
	ID string

	// Result is nil when Error is set
	Result *paramcheck.Result

	// Error is a decoding error, a schema error or a failed rule
	Error error
}

// Validator streams documents through a schema.
//
// Documents are validated one at a time because the schema keeps the state
// of its last run. Use worker.BatchValidator to spread documents over
// several schemas.
type Validator struct {
	schema     *paramcheck.Schema
	bufferSize int
	idField    []string
}

// NewValidator creates a streaming validator for schema.
func NewValidator(schema *paramcheck.Schema) *Validator {
	return &Validator{
		schema:     schema,
		bufferSize: 100,
	}
}

// WithBufferSize sets the result channel buffer size.
func (v *Validator) WithBufferSize(size int) *Validator {
	if size > 0 {
		v.bufferSize = size
	}
	return v
}

// WithIDField names the key (or nested key path) that labels each entry.
func (v *Validator) WithIDField(path ...string) *Validator {
	v.idField = path
	return v
}

// ValidateStream reads documents from r and emits one result per document
// in input order. The channel is closed when r is exhausted, a fatal
// decoding error occurs, or ctx is done.
func (v *Validator) ValidateStream(ctx context.Context, r io.Reader) <-chan *EntryResult {
	results := make(chan *EntryResult, v.bufferSize)

	go func() {
		defer close(results)

		br := bufio.NewReader(r)
		first, err := peek(br)
		if errors.Is(err, io.EOF) {
			return
		}
		if err != nil {
			results <- &EntryResult{Index: -1, Error: fmt.Errorf("read input: %w", err)}
			return
		}

		decoder := json.NewDecoder(br)
		if first == '[' {
			if _, err := decoder.Token(); err != nil {
				results <- &EntryResult{Index: -1, Error: fmt.Errorf("read input: %w", err)}
				return
			}
		}

		for index := 0; ; index++ {
			if first == '[' && !decoder.More() {
				return
			}
			if err := ctx.Err(); err != nil {
				results <- &EntryResult{Index: index, Error: err}
				return
			}

			var raw json.RawMessage
			if err := decoder.Decode(&raw); err != nil {
				if first != '[' && errors.Is(err, io.EOF) {
					return
				}
				results <- &EntryResult{Index: index, Error: fmt.Errorf("decode entry %d: %w", index, err)}
				return
			}

			select {
			case results <- v.processEntry(ctx, raw, index):
			case <-ctx.Done():
				return
			}
		}
	}()

	return results
}

// processEntry validates a single document.
func (v *Validator) processEntry(ctx context.Context, raw json.RawMessage, index int) *EntryResult {
	result := &EntryResult{
		Index: index,
		ID:    v.entryID(raw),
	}

	in, err := store.FromJSON(raw)
	if err != nil {
		result.Error = fmt.Errorf("entry %d: %w", index, err)
		return result
	}

	result.Result, result.Error = v.schema.Run(ctx, in)
	return result
}

// entryID reads the id field without decoding the whole document.
func (v *Validator) entryID(raw []byte) string {
	if len(v.idField) == 0 {
		return ""
	}
	value, dataType, _, err := jsonparser.Get(raw, v.idField...)
	if err != nil {
		return ""
	}
	switch dataType {
	case jsonparser.String:
		s, err := jsonparser.ParseString(value)
		if err != nil {
			return ""
		}
		return s
	case jsonparser.Number:
		return string(value)
	default:
		return ""
	}
}

// peek returns the first non-space byte without consuming it.
func peek(br *bufio.Reader) (byte, error) {
	for {
		b, err := br.ReadByte()
		if err != nil {
			return 0, err
		}
		if !unicode.IsSpace(rune(b)) {
			return b, br.UnreadByte()
		}
	}
}

// Result aggregates the entries of a stream.
type Result struct {
	// TotalEntries is the number of documents validated
	TotalEntries int

	// InvalidEntries is the number of documents with at least one issue
	InvalidEntries int

	// TotalIssues is the number of issues across all documents
	TotalIssues int

	// ProcessingErrors are decoding and schema errors, not validation issues
	ProcessingErrors []error

	// Issues maps an entry index to its issues
	Issues map[int][]paramcheck.ValidationIssue
}

// Aggregate drains results into a Result.
func Aggregate(results <-chan *EntryResult) *Result {
	agg := &Result{
		Issues: make(map[int][]paramcheck.ValidationIssue),
	}

	for result := range results {
		if result.Error != nil {
			agg.ProcessingErrors = append(agg.ProcessingErrors, result.Error)
			continue
		}
		if result.Index < 0 || result.Result == nil {
			continue
		}

		agg.TotalEntries++
		if issues := result.Result.Issues(); len(issues) > 0 {
			agg.Issues[result.Index] = issues
			agg.TotalIssues += len(issues)
			agg.InvalidEntries++
		}
	}

	return agg
}

// HasErrors reports whether any entry was invalid or failed to process.
func (r *Result) HasErrors() bool {
	return r.InvalidEntries > 0 || len(r.ProcessingErrors) > 0
}

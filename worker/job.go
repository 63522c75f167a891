package worker

import (
	"time"

	"github.com/gofhir/paramcheck"
	"github.com/gofhir/paramcheck/store"
)

// Factory builds a fresh schema. It is called once per worker.
type Factory func() *paramcheck.Schema

// Job is one input to validate.
type Job struct {
	// ID identifies the job in its JobResult.
	ID string

	// Input is the value bag handed to Schema.Validate.
	Input store.Store
}

// JobResult is the outcome of one Job.
type JobResult struct {
	// ID matches the Job.ID that produced this result.
	ID string

	// Result is nil when Error is set.
	Result *paramcheck.Result

	// Error is a schema error, a failed rule or a cancelled context.
	Error error

	// Duration is the time spent in the run.
	Duration time.Duration
}

// Valid reports whether the job ran and collected no issues.
func (r *JobResult) Valid() bool {
	return r.Error == nil && r.Result != nil && r.Result.Valid()
}

// BatchResult aggregates the results of a batch.
type BatchResult struct {
	// Results holds one entry per completed job.
	Results []*JobResult

	// TotalJobs is the number of jobs submitted.
	TotalJobs int

	// CompletedJobs is the number of jobs completed, errors included.
	CompletedJobs int

	// FailedJobs is the number of jobs that ended with an error.
	FailedJobs int

	// TotalDuration is the summed run time of all jobs.
	TotalDuration time.Duration
}

// HasErrors reports whether any job failed or collected issues.
func (br *BatchResult) HasErrors() bool {
	for _, r := range br.Results {
		if r == nil {
			continue
		}
		if !r.Valid() {
			return true
		}
	}
	return false
}

// IssueCount returns the number of validation issues across all results.
func (br *BatchResult) IssueCount() int {
	count := 0
	for _, r := range br.Results {
		if r != nil && r.Result != nil {
			count += r.Result.Errors.Len()
		}
	}
	return count
}

func (br *BatchResult) add(r *JobResult) {
	br.CompletedJobs++
	br.TotalDuration += r.Duration
	if r.Error != nil {
		br.FailedJobs++
	}
}

package paramcheck

import (
	"sync/atomic"
	"time"
)

// Metrics tracks validation run counters using lock-free atomic operations.
// All methods are safe for concurrent use, so one Metrics can be shared
// by several schemas.
type Metrics struct {
	runsTotal atomic.Uint64
	runsValid atomic.Uint64

	// Timing (stored as nanoseconds)
	runTimeTotal atomic.Uint64
	runTimeMin   atomic.Uint64
	runTimeMax   atomic.Uint64

	issuesTotal  atomic.Uint64
	rulesTotal   atomic.Uint64
	suspensions  atomic.Uint64
	schemaErrors atomic.Uint64
}

// NewMetrics creates a new Metrics instance.
func NewMetrics() *Metrics {
	m := &Metrics{}
	// First recorded run becomes the minimum
	m.runTimeMin.Store(^uint64(0))
	return m
}

// RecordRun records a completed run.
func (m *Metrics) RecordRun(duration time.Duration, valid bool) {
	m.runsTotal.Add(1)
	if valid {
		m.runsValid.Add(1)
	}

	ns := uint64(duration.Nanoseconds()) //nolint:gosec // durations of finished runs are positive
	m.runTimeTotal.Add(ns)

	for {
		old := m.runTimeMin.Load()
		if ns >= old || m.runTimeMin.CompareAndSwap(old, ns) {
			break
		}
	}
	for {
		old := m.runTimeMax.Load()
		if ns <= old || m.runTimeMax.CompareAndSwap(old, ns) {
			break
		}
	}
}

// RecordIssues adds n collected issues.
func (m *Metrics) RecordIssues(n int) {
	if n > 0 {
		m.issuesTotal.Add(uint64(n))
	}
}

// RecordRule records an executed rule.
func (m *Metrics) RecordRule() {
	m.rulesTotal.Add(1)
}

// RecordSuspension records a run step that had to wait for async work.
func (m *Metrics) RecordSuspension() {
	m.suspensions.Add(1)
}

// RecordSchemaError records a run aborted by a schema error.
func (m *Metrics) RecordSchemaError() {
	m.schemaErrors.Add(1)
}

// RunsTotal returns the number of completed runs.
func (m *Metrics) RunsTotal() uint64 {
	return m.runsTotal.Load()
}

// RunsValid returns the number of runs without issues.
func (m *Metrics) RunsValid() uint64 {
	return m.runsValid.Load()
}

// ValidRate returns the share of valid runs (0.0 to 1.0).
func (m *Metrics) ValidRate() float64 {
	total := m.runsTotal.Load()
	if total == 0 {
		return 0
	}
	return float64(m.runsValid.Load()) / float64(total)
}

// AverageRunTime returns the average run duration.
func (m *Metrics) AverageRunTime() time.Duration {
	total := m.runsTotal.Load()
	if total == 0 {
		return 0
	}
	return time.Duration(m.runTimeTotal.Load() / total) //nolint:gosec // nanoseconds within int64 range
}

// MinRunTime returns the shortest run duration.
func (m *Metrics) MinRunTime() time.Duration {
	v := m.runTimeMin.Load()
	if v == ^uint64(0) {
		return 0
	}
	return time.Duration(v) //nolint:gosec // nanoseconds within int64 range
}

// MaxRunTime returns the longest run duration.
func (m *Metrics) MaxRunTime() time.Duration {
	return time.Duration(m.runTimeMax.Load()) //nolint:gosec // nanoseconds within int64 range
}

// IssuesTotal returns the number of collected issues.
func (m *Metrics) IssuesTotal() uint64 {
	return m.issuesTotal.Load()
}

// RulesTotal returns the number of executed rules.
func (m *Metrics) RulesTotal() uint64 {
	return m.rulesTotal.Load()
}

// Suspensions returns the number of steps that waited for async work.
func (m *Metrics) Suspensions() uint64 {
	return m.suspensions.Load()
}

// SchemaErrors returns the number of runs aborted by a schema error.
func (m *Metrics) SchemaErrors() uint64 {
	return m.schemaErrors.Load()
}

// Snapshot represents a point-in-time snapshot of all metrics.
type Snapshot struct {
	Timestamp time.Time `json:"timestamp"`

	RunsTotal uint64  `json:"runs_total"`
	RunsValid uint64  `json:"runs_valid"`
	ValidRate float64 `json:"valid_rate"`

	AvgRunTimeNs uint64 `json:"avg_run_time_ns"`
	MinRunTimeNs uint64 `json:"min_run_time_ns"`
	MaxRunTimeNs uint64 `json:"max_run_time_ns"`

	IssuesTotal  uint64 `json:"issues_total"`
	RulesTotal   uint64 `json:"rules_total"`
	Suspensions  uint64 `json:"suspensions"`
	SchemaErrors uint64 `json:"schema_errors"`
}

// Snapshot returns a point-in-time snapshot of all metrics.
func (m *Metrics) Snapshot() Snapshot {
	return Snapshot{
		Timestamp:    time.Now(),
		RunsTotal:    m.runsTotal.Load(),
		RunsValid:    m.runsValid.Load(),
		ValidRate:    m.ValidRate(),
		AvgRunTimeNs: uint64(m.AverageRunTime().Nanoseconds()), //nolint:gosec // positive
		MinRunTimeNs: uint64(m.MinRunTime().Nanoseconds()),     //nolint:gosec // positive
		MaxRunTimeNs: m.runTimeMax.Load(),
		IssuesTotal:  m.issuesTotal.Load(),
		RulesTotal:   m.rulesTotal.Load(),
		Suspensions:  m.suspensions.Load(),
		SchemaErrors: m.schemaErrors.Load(),
	}
}

// Export returns metrics as a flat map for external systems.
func (m *Metrics) Export() map[string]any {
	s := m.Snapshot()
	return map[string]any{
		"runs_total":      s.RunsTotal,
		"runs_valid":      s.RunsValid,
		"valid_rate":      s.ValidRate,
		"avg_run_time_ns": s.AvgRunTimeNs,
		"min_run_time_ns": s.MinRunTimeNs,
		"max_run_time_ns": s.MaxRunTimeNs,
		"issues_total":    s.IssuesTotal,
		"rules_total":     s.RulesTotal,
		"suspensions":     s.Suspensions,
		"schema_errors":   s.SchemaErrors,
	}
}

// Reset clears all metrics.
func (m *Metrics) Reset() {
	m.runsTotal.Store(0)
	m.runsValid.Store(0)
	m.runTimeTotal.Store(0)
	m.runTimeMin.Store(^uint64(0))
	m.runTimeMax.Store(0)
	m.issuesTotal.Store(0)
	m.rulesTotal.Store(0)
	m.suspensions.Store(0)
	m.schemaErrors.Store(0)
}

package worker

import (
	"context"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofhir/paramcheck"
)

// Pool runs jobs on a fixed set of workers, each with its own schema.
type Pool struct {
	workers    int
	jobsChan   chan Job
	resultChan chan *JobResult
	factory    Factory
	ctx        context.Context
	cancel     context.CancelFunc
	wg         sync.WaitGroup
	closed     atomic.Bool

	jobsSubmitted atomic.Uint64
	jobsCompleted atomic.Uint64
	totalDuration atomic.Int64
}

// NewPool starts a pool with the given number of workers.
// If workers <= 0, it defaults to runtime.NumCPU().
func NewPool(factory Factory, workers int) *Pool {
	return NewPoolContext(context.Background(), factory, workers)
}

// NewPoolContext is NewPool with a parent context. Cancelling ctx stops
// the workers; runs in flight stop waiting on their futures.
func NewPoolContext(ctx context.Context, factory Factory, workers int) *Pool {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	ctx, cancel := context.WithCancel(ctx)

	p := &Pool{
		workers:    workers,
		jobsChan:   make(chan Job, workers*2),
		resultChan: make(chan *JobResult, workers*2),
		factory:    factory,
		ctx:        ctx,
		cancel:     cancel,
	}

	p.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go p.worker()
	}

	return p
}

// Submit queues a job, blocking while the queue is full.
// It returns false once the pool is closed.
func (p *Pool) Submit(job Job) bool {
	if p.closed.Load() {
		return false
	}

	select {
	case <-p.ctx.Done():
		return false
	case p.jobsChan <- job:
		p.jobsSubmitted.Add(1)
		return true
	}
}

// TrySubmit queues a job without blocking.
// Returns false if the queue is full or the pool is closed.
func (p *Pool) TrySubmit(job Job) bool {
	if p.closed.Load() {
		return false
	}

	select {
	case <-p.ctx.Done():
		return false
	case p.jobsChan <- job:
		p.jobsSubmitted.Add(1)
		return true
	default:
		return false
	}
}

// Results returns the channel job results are delivered on.
func (p *Pool) Results() <-chan *JobResult {
	return p.resultChan
}

// Close stops the pool and discards results nobody read.
func (p *Pool) Close() {
	if p.closed.Swap(true) {
		return
	}

	p.cancel()
	close(p.jobsChan)

	done := make(chan struct{})
	go func() {
		for range p.resultChan {
		}
		close(done)
	}()

	p.wg.Wait()
	close(p.resultChan)
	<-done
}

// CloseAndWait stops accepting jobs, lets the queued ones finish and
// returns their results in completion order.
func (p *Pool) CloseAndWait() *BatchResult {
	if p.closed.Swap(true) {
		return &BatchResult{}
	}

	close(p.jobsChan)

	go func() {
		p.wg.Wait()
		close(p.resultChan)
	}()

	batch := &BatchResult{Results: make([]*JobResult, 0)}
	for r := range p.resultChan {
		batch.Results = append(batch.Results, r)
		batch.add(r)
	}
	batch.TotalJobs = int(p.jobsSubmitted.Load())
	p.cancel()

	return batch
}

// Stats returns current pool statistics.
func (p *Pool) Stats() PoolStats {
	return PoolStats{
		Workers:       p.workers,
		JobsSubmitted: p.jobsSubmitted.Load(),
		JobsCompleted: p.jobsCompleted.Load(),
		AvgDuration:   p.averageDuration(),
	}
}

// PoolStats contains pool statistics.
type PoolStats struct {
	Workers       int
	JobsSubmitted uint64
	JobsCompleted uint64
	AvgDuration   time.Duration
}

func (p *Pool) worker() {
	defer p.wg.Done()

	var schema *paramcheck.Schema
	if p.factory != nil {
		schema = p.factory()
	}

	for job := range p.jobsChan {
		result := run(p.ctx, schema, job)
		p.jobsCompleted.Add(1)
		p.totalDuration.Add(int64(result.Duration))

		select {
		case <-p.ctx.Done():
			return
		case p.resultChan <- result:
		}
	}
}

// run validates one job. A nil schema yields ErrNoSchema.
func run(ctx context.Context, schema *paramcheck.Schema, job Job) *JobResult {
	start := time.Now()
	result := &JobResult{ID: job.ID}

	switch {
	case schema == nil:
		result.Error = ErrNoSchema
	case ctx.Err() != nil:
		result.Error = ctx.Err()
	default:
		result.Result, result.Error = schema.Run(ctx, job.Input)
	}

	result.Duration = time.Since(start)
	return result
}

func (p *Pool) averageDuration() time.Duration {
	completed := p.jobsCompleted.Load()
	if completed == 0 {
		return 0
	}
	return time.Duration(p.totalDuration.Load() / int64(completed))
}

// ErrNoSchema is returned when the factory is nil or returns nil.
var ErrNoSchema = poolError("no schema configured")

type poolError string

func (e poolError) Error() string {
	return string(e)
}

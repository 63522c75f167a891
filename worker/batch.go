package worker

import (
	"context"
	"runtime"
	"strconv"
	"sync"

	"github.com/gofhir/paramcheck"
	"github.com/gofhir/paramcheck/store"
)

// BatchValidator validates slices of inputs and keeps results in input order.
type BatchValidator struct {
	factory Factory
	workers int
}

// NewBatchValidator creates a batch validator.
func NewBatchValidator(factory Factory, workers int) *BatchValidator {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &BatchValidator{
		factory: factory,
		workers: workers,
	}
}

// ValidateBatch validates inputs in parallel. Results[i] belongs to
// inputs[i] and has ID strconv.Itoa(i). Inputs not reached before ctx is
// cancelled have a nil entry.
func (bv *BatchValidator) ValidateBatch(ctx context.Context, inputs []store.Store) *BatchResult {
	if len(inputs) == 0 {
		return &BatchResult{Results: make([]*JobResult, 0)}
	}

	// Small batches are not worth a second schema.
	if len(inputs) <= 2 {
		return bv.validateSequential(ctx, inputs)
	}

	return bv.validateParallel(ctx, inputs)
}

func (bv *BatchValidator) validateSequential(ctx context.Context, inputs []store.Store) *BatchResult {
	batch := &BatchResult{
		Results:   make([]*JobResult, len(inputs)),
		TotalJobs: len(inputs),
	}
	schema := bv.newSchema()

	for i, in := range inputs {
		if ctx.Err() != nil {
			break
		}
		r := run(ctx, schema, Job{ID: strconv.Itoa(i), Input: in})
		batch.Results[i] = r
		batch.add(r)
	}

	return batch
}

func (bv *BatchValidator) validateParallel(ctx context.Context, inputs []store.Store) *BatchResult {
	numWorkers := min(bv.workers, len(inputs))

	jobs := make(chan int, len(inputs))
	resultsChan := make(chan indexedResult, len(inputs))

	var wg sync.WaitGroup
	wg.Add(numWorkers)
	for i := 0; i < numWorkers; i++ {
		go func() {
			defer wg.Done()
			schema := bv.newSchema()
			for idx := range jobs {
				if ctx.Err() != nil {
					return
				}
				resultsChan <- indexedResult{
					index:  idx,
					result: run(ctx, schema, Job{ID: strconv.Itoa(idx), Input: inputs[idx]}),
				}
			}
		}()
	}

	for i := range inputs {
		jobs <- i
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(resultsChan)
	}()

	batch := &BatchResult{
		Results:   make([]*JobResult, len(inputs)),
		TotalJobs: len(inputs),
	}
	for ir := range resultsChan {
		batch.Results[ir.index] = ir.result
		batch.add(ir.result)
	}

	return batch
}

func (bv *BatchValidator) newSchema() *paramcheck.Schema {
	if bv.factory == nil {
		return nil
	}
	return bv.factory()
}

type indexedResult struct {
	index  int
	result *JobResult
}

// ValidateBatchSimple validates inputs with one worker per CPU.
func ValidateBatchSimple(ctx context.Context, factory Factory, inputs []store.Store) *BatchResult {
	return NewBatchValidator(factory, runtime.NumCPU()).ValidateBatch(ctx, inputs)
}

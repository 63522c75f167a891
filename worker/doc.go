// Package worker validates many inputs against the same schema in parallel.
//
// A paramcheck.Schema keeps the outcome of its last run on its parameters,
// so it cannot be shared between goroutines. Every worker therefore owns a
// schema built by a Factory.
//
// Example usage:
//
//	pool := worker.NewPool(newUserSchema, 4)
//
//	for i, in := range inputs {
//	    pool.Submit(worker.Job{ID: strconv.Itoa(i), Input: in})
//	}
//
//	batch := pool.CloseAndWait()
//	for _, r := range batch.Results {
//	    if r.Error != nil {
//	        // schema error
//	    }
//	    // r.Result.Issues()
//	}
package worker

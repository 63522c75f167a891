// Package async provides the settled-or-pending result type used by the
// resolution pipeline.
//
// A Future is either immediate (its value was known when it was created)
// or deferred (it was produced by asynchronous work, or by a continuation
// of asynchronous work). Immediate futures never touch a goroutine, so a
// fully synchronous pipeline stays synchronous:
//
//	f := async.Then(step(), func(v int, err error) *async.Future[int] {
//	    if err != nil {
//	        return async.Fail[int](err)
//	    }
//	    return async.Value(v + 1)
//	})
//	if !f.Deferred() {
//	    v, err := f.Result() // never blocks
//	}
package async

import (
	"context"
	"fmt"
	"sync"
)

// Awaitable is implemented by every Future regardless of its value type.
// It lets code holding an untyped value detect a pending result.
type Awaitable interface {
	Deferred() bool
	Done() <-chan struct{}
}

// Future holds the outcome of one step of work.
type Future[T any] struct {
	done     chan struct{}
	value    T
	err      error
	deferred bool

	mu        sync.Mutex
	settled   bool
	callbacks []func()
}

var closed = func() chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}()

// Value returns an immediate future holding v.
func Value[T any](v T) *Future[T] {
	return &Future[T]{done: closed, value: v, settled: true}
}

// Fail returns an immediate future holding err.
func Fail[T any](err error) *Future[T] {
	return &Future[T]{done: closed, err: err, settled: true}
}

// Resolve returns a deferred future that is already settled with v.
// Asynchronous handlers that know their answer up front return this.
func Resolve[T any](v T) *Future[T] {
	return &Future[T]{done: closed, value: v, deferred: true, settled: true}
}

// Reject returns a deferred future that is already settled with err.
func Reject[T any](err error) *Future[T] {
	return &Future[T]{done: closed, err: err, deferred: true, settled: true}
}

// Go runs fn on a new goroutine and returns a deferred future for its
// outcome. A panic inside fn settles the future with a *PanicError.
func Go[T any](fn func() (T, error)) *Future[T] {
	f := pending[T]()
	go func() {
		var (
			v   T
			err error
		)
		defer func() {
			if r := recover(); r != nil {
				var zero T
				f.settle(zero, Recovered(r))
				return
			}
			f.settle(v, err)
		}()
		v, err = fn()
	}()
	return f
}

func pending[T any]() *Future[T] {
	return &Future[T]{done: make(chan struct{}), deferred: true}
}

// settle stores the outcome and runs the registered callbacks on the
// calling goroutine.
func (f *Future[T]) settle(v T, err error) {
	f.mu.Lock()
	f.value = v
	f.err = err
	f.settled = true
	callbacks := f.callbacks
	f.callbacks = nil
	f.mu.Unlock()

	close(f.done)
	for _, cb := range callbacks {
		cb()
	}
}

// onSettle runs cb once f is settled: on the settling goroutine if f is
// still pending, on a new goroutine otherwise.
func (f *Future[T]) onSettle(cb func()) {
	f.mu.Lock()
	if !f.settled {
		f.callbacks = append(f.callbacks, cb)
		f.mu.Unlock()
		return
	}
	f.mu.Unlock()
	go cb()
}

// Deferred reports whether the future came from asynchronous work.
// A deferred future may or may not be settled yet.
func (f *Future[T]) Deferred() bool {
	return f.deferred
}

// Done returns a channel closed once the future is settled.
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// Settled reports whether the outcome is available without blocking.
func (f *Future[T]) Settled() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}

// Result returns the outcome, blocking until the future settles.
// It never blocks on an immediate future.
func (f *Future[T]) Result() (T, error) {
	<-f.done
	return f.value, f.err
}

// Await waits for the outcome or for ctx to be done, whichever comes first.
// Giving up on the wait does not stop the underlying work.
func (f *Future[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.value, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Then chains fn after f. If f is immediate, fn runs right away on the
// caller's goroutine and its future is returned as is. If f is deferred,
// fn runs once f settles and the returned future is deferred as well.
//
// Deferred steps do not hold a goroutine while they wait: fn runs on the
// goroutine that settled f, and the returned future is settled by
// whichever goroutine settles the future fn returned.
func Then[T, U any](f *Future[T], fn func(T, error) *Future[U]) *Future[U] {
	if !f.deferred {
		return fn(f.value, f.err)
	}

	out := pending[U]()
	f.onSettle(func() {
		next, err := call(fn, f.value, f.err)
		if err != nil {
			var zero U
			out.settle(zero, err)
			return
		}
		if next.Settled() {
			out.settle(next.value, next.err)
			return
		}
		next.onSettle(func() {
			out.settle(next.value, next.err)
		})
	})
	return out
}

func call[T, U any](fn func(T, error) *Future[U], v T, err error) (next *Future[U], perr error) {
	defer func() {
		if r := recover(); r != nil {
			perr = Recovered(r)
		}
	}()
	next = fn(v, err)
	if next == nil {
		return nil, fmt.Errorf("async: continuation returned a nil future")
	}
	return next, nil
}

// Done is an immediate, successful future without a value.
func Done() *Future[struct{}] {
	return Value(struct{}{})
}

// Package future provides a settle-once deferred result.
//
// A Future[T] eventually succeeds with a T or fails with an error. Callers
// block on it with Await, or chain continuations with Then and Catch, each of
// which returns a derived Future without blocking.
//
// Deferred is the capability errtrace looks for when deciding whether a
// function result should have its failure intercepted.
package future

import (
	"context"
	"sync"
)

// Deferred is a result that settles later and can register a failure
// continuation.
type Deferred interface {
	// CatchError returns a derived result that settles with the same value on
	// success and with fn(err) on failure.
	CatchError(fn func(error) error) Deferred
}

// Future is a value of type T that will be available later.
//
// Continuations registered with Then and Catch run on the goroutine that
// settles the future, or inline when it has already settled. Attaching one
// never starts a goroutine.
type Future[T any] struct {
	done chan struct{}

	mu        sync.Mutex
	settled   bool
	value     T
	err       error
	callbacks []func()
}

// New returns a pending future together with the functions that settle it.
// Only the first call to either function has an effect.
func New[T any]() (*Future[T], func(T), func(error)) {
	f := &Future[T]{done: make(chan struct{})}
	resolve := func(v T) { f.settle(v, nil) }
	reject := func(err error) {
		var zero T
		f.settle(zero, err)
	}
	return f, resolve, reject
}

// Go runs fn on a new goroutine and returns a future for its result.
func Go[T any](fn func() (T, error)) *Future[T] {
	f, resolve, reject := New[T]()
	go func() {
		v, err := fn()
		if err != nil {
			reject(err)
			return
		}
		resolve(v)
	}()
	return f
}

// Resolved returns a future that has already succeeded with v.
func Resolved[T any](v T) *Future[T] {
	f, resolve, _ := New[T]()
	resolve(v)
	return f
}

// Rejected returns a future that has already failed with err.
func Rejected[T any](err error) *Future[T] {
	f, _, reject := New[T]()
	reject(err)
	return f
}

func (f *Future[T]) settle(v T, err error) {
	f.mu.Lock()
	if f.settled {
		f.mu.Unlock()
		return
	}
	f.value = v
	f.err = err
	f.settled = true
	callbacks := f.callbacks
	f.callbacks = nil
	close(f.done)
	f.mu.Unlock()

	for _, cb := range callbacks {
		cb()
	}
}

// onSettle runs cb once f has settled.
func (f *Future[T]) onSettle(cb func()) {
	f.mu.Lock()
	if !f.settled {
		f.callbacks = append(f.callbacks, cb)
		f.mu.Unlock()
		return
	}
	f.mu.Unlock()
	cb()
}

// Done returns a channel that is closed once the future has settled.
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// Await blocks until the future settles or ctx is done. Cancelling ctx stops
// the wait, not the computation.
func (f *Future[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.value, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Then returns a future that settles with fn(value) once f succeeds.
// Failures pass through without calling fn.
func (f *Future[T]) Then(fn func(T) (T, error)) *Future[T] {
	next, resolve, reject := New[T]()
	f.onSettle(func() {
		if f.err != nil {
			reject(f.err)
			return
		}
		v, err := fn(f.value)
		if err != nil {
			reject(err)
			return
		}
		resolve(v)
	})
	return next
}

// Catch returns a future that settles with f's value on success and with
// fn(err) on failure. A nil result from fn keeps the original error.
func (f *Future[T]) Catch(fn func(error) error) *Future[T] {
	next, resolve, reject := New[T]()
	f.onSettle(func() {
		if f.err == nil {
			resolve(f.value)
			return
		}
		if mapped := fn(f.err); mapped != nil {
			reject(mapped)
			return
		}
		reject(f.err)
	})
	return next
}

// CatchError implements Deferred.
func (f *Future[T]) CatchError(fn func(error) error) Deferred {
	return f.Catch(fn)
}

package async

import (
	"context"
	"sync"
)

// Promise is a value that settles once, either resolved with a string or
// rejected with an error.
type Promise struct {
	done  chan struct{}
	once  sync.Once
	value string
	err   error
}

// NewPromise returns a pending promise and the functions that settle it.
// Only the first settlement counts.
func NewPromise() (*Promise, func(string), func(error)) {
	p := &Promise{done: make(chan struct{})}
	resolve := func(v string) {
		p.once.Do(func() {
			p.value = v
			close(p.done)
		})
	}
	reject := func(err error) {
		p.once.Do(func() {
			p.err = err
			close(p.done)
		})
	}
	return p, resolve, reject
}

// Resolve returns a promise already resolved with v.
func Resolve(v string) *Promise {
	p, resolve, _ := NewPromise()
	resolve(v)
	return p
}

// Reject returns a promise already rejected with err.
func Reject(err error) *Promise {
	p, _, reject := NewPromise()
	reject(err)
	return p
}

// Done is closed once the promise settles.
func (p *Promise) Done() <-chan struct{} { return p.done }

// Await blocks until the promise settles or ctx ends.
func (p *Promise) Await(ctx context.Context) (string, error) {
	select {
	case <-p.done:
		return p.value, p.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

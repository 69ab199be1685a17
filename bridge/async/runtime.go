// Package async bridges a visitor whose handlers live on a single-threaded
// event loop and answer with promises.
//
// The traversal goroutine never runs a handler itself: every dispatch is
// scheduled on the loop and the traversal blocks until the handler's promise
// settles.
package async

import (
	"sync"

	"github.com/nicholasgasior/htmd/bridge"
)

// Runtime is a single-threaded controller loop. Jobs run one at a time in
// the order they were scheduled.
type Runtime struct {
	mu    sync.Mutex
	queue []func()
	wake  chan struct{}
	done  chan struct{}
	once  sync.Once
}

// NewRuntime starts a loop.
func NewRuntime() *Runtime {
	rt := &Runtime{
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
	go rt.loop()
	return rt
}

func (rt *Runtime) loop() {
	for {
		select {
		case <-rt.done:
			return
		case <-rt.wake:
		}
		for {
			rt.mu.Lock()
			if len(rt.queue) == 0 {
				rt.mu.Unlock()
				break
			}
			job := rt.queue[0]
			rt.queue[0] = nil
			rt.queue = rt.queue[1:]
			rt.mu.Unlock()

			select {
			case <-rt.done:
				return
			default:
			}
			job()
		}
	}
}

// Schedule queues fn on the loop. It never blocks, and may be called from
// a job.
func (rt *Runtime) Schedule(fn func()) error {
	select {
	case <-rt.done:
		return bridge.ErrClosed
	default:
	}
	rt.mu.Lock()
	rt.queue = append(rt.queue, fn)
	rt.mu.Unlock()
	select {
	case rt.wake <- struct{}{}:
	default:
	}
	return nil
}

// Close stops the loop. Queued jobs that have not started are dropped.
func (rt *Runtime) Close() {
	rt.once.Do(func() { close(rt.done) })
}

// Done is closed when the runtime is closed.
func (rt *Runtime) Done() <-chan struct{} { return rt.done }

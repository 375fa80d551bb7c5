package server

import (
	"errors"
	"fmt"

	"github.com/chazu/moonlet/pkg/runtime"
)

var errWorkerStopped = errors.New("host worker stopped")

// hostRequest represents a unit of work to be executed on the host goroutine.
type hostRequest struct {
	fn   func(*runtime.Host) any
	done chan hostResult
}

// hostResult holds the return value from a host operation.
type hostResult struct {
	value any
	err   error
}

// HostWorker owns a runtime.Host on a single goroutine. The LSP completion
// and hover handlers run concurrently and both read Host.Globals (to list
// candidate names and to report a global's kind), so they submit those
// lookups through Do instead of touching the map directly.
type HostWorker struct {
	host     *runtime.Host
	requests chan hostRequest
	quit     chan struct{}
}

// NewHostWorker creates a HostWorker and starts the processing goroutine.
func NewHostWorker(h *runtime.Host) *HostWorker {
	w := &HostWorker{
		host:     h,
		requests: make(chan hostRequest, 64),
		quit:     make(chan struct{}),
	}
	go w.loop()
	return w
}

func (w *HostWorker) loop() {
	for {
		select {
		case req := <-w.requests:
			req.done <- w.execute(req.fn)
		case <-w.quit:
			return
		}
	}
}

// execute runs fn on the host, recovering from panics.
func (w *HostWorker) execute(fn func(*runtime.Host) any) (result hostResult) {
	defer func() {
		if r := recover(); r != nil {
			result.err = fmt.Errorf("%v", r)
		}
	}()
	result.value = fn(w.host)
	return result
}

// Do submits fn for execution on the host goroutine and blocks until it
// completes. A panic in fn is returned as an error.
func (w *HostWorker) Do(fn func(*runtime.Host) any) (any, error) {
	req := hostRequest{
		fn:   fn,
		done: make(chan hostResult, 1),
	}
	select {
	case w.requests <- req:
	case <-w.quit:
		return nil, errWorkerStopped
	}
	select {
	case result := <-req.done:
		return result.value, result.err
	case <-w.quit:
		return nil, errWorkerStopped
	}
}

// Stop shuts down the worker goroutine. Later calls to Do fail.
func (w *HostWorker) Stop() {
	select {
	case <-w.quit:
	default:
		close(w.quit)
	}
}

// Copyright © 2026 ソニーレベル <C7kali3@gmail.com>
// Background pipeline runs

package pipeline

import "context"

// Run is a pipeline run executing on its own goroutine
type Run struct {
	Request Request

	done   chan struct{}
	result *Result
	err    error
}

// Start runs req on a new goroutine and returns immediately. Concurrent
// runs share nothing but the sink.
func (p *Pipeline) Start(ctx context.Context, req Request) *Run {
	r := &Run{Request: req, done: make(chan struct{})}
	go func() {
		defer close(r.done)
		r.result, r.err = p.Run(ctx, req)
	}()
	return r
}

// Done is closed when the run returns
func (r *Run) Done() <-chan struct{} {
	return r.done
}

// Wait blocks until the run returns
func (r *Run) Wait() (*Result, error) {
	<-r.done
	return r.result, r.err
}

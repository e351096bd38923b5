package inventory

import (
	"context"
	"sync"

	"github.com/tphummel/equipment_tracker/internal/models"
)

// Result is the outcome of one store operation. Record is set when the
// service returned a record for a create or update.
type Result struct {
	Record *models.Equipment
	Err    *OpError
	// Stale is set when the stale guard discarded the response because a
	// newer request for the same record had been issued.
	Stale bool
}

// OK reports whether the operation succeeded and its outcome was applied.
// A stale result is never OK, even when the service reported success.
func (r Result) OK() bool {
	return r.Err == nil && !r.Stale
}

// Pending is the handle for an issued operation. It resolves once, after the
// store has applied the outcome.
type Pending struct {
	done chan struct{}

	mu        sync.Mutex
	resolved  bool
	result    Result
	callbacks []func(Result)
}

func newPending() *Pending {
	return &Pending{done: make(chan struct{})}
}

// Done is closed once the outcome has been applied to the store and every
// callback registered with Then has returned.
func (p *Pending) Done() <-chan struct{} {
	return p.done
}

// Result returns the outcome. It is only meaningful after Done is closed.
func (p *Pending) Result() Result {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.result
}

// Wait blocks until the operation resolves or ctx is done. Abandoning the
// wait does not cancel the operation.
func (p *Pending) Wait(ctx context.Context) (Result, error) {
	select {
	case <-p.done:
		return p.Result(), nil
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
}

// Then registers fn to run with the outcome. If the operation has already
// resolved, fn runs immediately on the calling goroutine.
func (p *Pending) Then(fn func(Result)) {
	p.mu.Lock()
	if p.resolved {
		r := p.result
		p.mu.Unlock()
		fn(r)
		return
	}
	p.callbacks = append(p.callbacks, fn)
	p.mu.Unlock()
}

func (p *Pending) resolve(r Result) {
	p.mu.Lock()
	p.resolved = true
	p.result = r
	callbacks := p.callbacks
	p.callbacks = nil
	p.mu.Unlock()

	for _, fn := range callbacks {
		fn(r)
	}
	close(p.done)
}

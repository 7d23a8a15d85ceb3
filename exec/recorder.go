package exec

import (
	"context"
	"sync"
)

// Recorder is a Runner that records every Spec it receives and answers
// with a canned Outcome instead of starting a process. It is meant for tests.
type Recorder struct {
	// Outcome is returned for every call when Fn is nil.
	Outcome *Outcome

	// Err is returned alongside Outcome when Fn is nil.
	Err error

	// Fn, when set, computes the response for each call.
	Fn func(spec Spec) (*Outcome, error)

	mu    sync.Mutex
	calls []Spec
}

// Run records spec and returns the configured response.
func (r *Recorder) Run(ctx context.Context, spec Spec) (*Outcome, error) {
	r.mu.Lock()
	r.calls = append(r.calls, spec)
	r.mu.Unlock()

	if r.Fn != nil {
		return r.Fn(spec)
	}
	if r.Outcome == nil && r.Err == nil {
		return &Outcome{}, nil
	}
	return r.Outcome, r.Err
}

// Calls returns a copy of the recorded specs in call order.
func (r *Recorder) Calls() []Spec {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Spec, len(r.calls))
	copy(out, r.calls)
	return out
}

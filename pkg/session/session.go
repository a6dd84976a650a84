// Package session owns the lifecycle of a simulation submission: the
// single source of truth for what the UI renders.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/oisheenandy0505/urban-mobility/pkg/resilience"
)

// State is the request lifecycle state.
type State int

const (
	StateIdle State = iota
	StateValidating
	StateInFlight
	StateSucceeded
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateValidating:
		return "validating"
	case StateInFlight:
		return "in-flight"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// ErrInFlight is returned by Submit while a request is outstanding.
// There is no mid-flight cancellation; the UI disables its submit
// control and the tracker rejects anything that slips through.
var ErrInFlight = errors.New("a simulation request is already in flight")

// ValidationError is a precondition failure caught before any network
// activity. It surfaces as a blocking message, never a service failure.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

// Simulator is the slice of the service client the tracker needs.
type Simulator interface {
	Simulate(ctx context.Context, req resilience.SimulationRequest) (*resilience.SimulationResult, error)
}

// Snapshot is an immutable view of the tracker for rendering. Result
// and Err are only meaningful in StateSucceeded and StateFailed.
type Snapshot struct {
	State  State
	Result *resilience.SimulationResult
	Err    string
}

// Tracker runs the submission state machine:
//
//	Idle -> Validating -> InFlight -> Succeeded | Failed
//
// Succeeded and Failed return to Validating on the next Submit. At most
// one request is in flight; each accepted submission takes a fresh
// generation number and a completion carrying a stale generation is
// discarded, so a late response can never overwrite a newer run.
type Tracker struct {
	mu     sync.Mutex
	state  State
	result *resilience.SimulationResult
	errMsg string
	gen    uint64

	sim    Simulator
	notify func()
}

// NewTracker creates a tracker. notify is invoked after every state
// transition, outside the tracker's lock; the TUI uses it to post a
// redraw event. It may be nil.
func NewTracker(sim Simulator, notify func()) *Tracker {
	t := &Tracker{sim: sim, notify: notify}
	if t.notify == nil {
		t.notify = func() {}
	}
	return t
}

// Snapshot returns the current lifecycle state and, when present, the
// latest result. Metrics and geometry always come from the same run:
// the result pointer is replaced wholesale on success.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return Snapshot{State: t.state, Result: t.result, Err: t.errMsg}
}

// Submit validates req against the engine's accepted ranges and, when
// accepted, issues exactly one service call in the background. A
// validation failure leaves the tracker in Idle with no network
// activity. Entering InFlight clears the previous result so stale
// geometry is never rendered beside a new status.
func (t *Tracker) Submit(ctx context.Context, req resilience.SimulationRequest) error {
	t.mu.Lock()
	if t.state == StateInFlight {
		t.mu.Unlock()
		return ErrInFlight
	}

	t.state = StateValidating
	if err := req.Validate(); err != nil {
		t.state = StateIdle
		t.mu.Unlock()
		t.notify()
		return &ValidationError{Reason: err.Error()}
	}

	t.state = StateInFlight
	t.result = nil
	t.errMsg = ""
	t.gen++
	gen := t.gen
	t.mu.Unlock()
	t.notify()

	go func() {
		result, err := t.sim.Simulate(ctx, req)
		t.complete(gen, result, err)
	}()
	return nil
}

// complete applies the outcome of the call tagged with gen. Outcomes
// from superseded generations are dropped.
func (t *Tracker) complete(gen uint64, result *resilience.SimulationResult, err error) {
	t.mu.Lock()
	if gen != t.gen || t.state != StateInFlight {
		t.mu.Unlock()
		return
	}
	if err != nil {
		t.state = StateFailed
		t.errMsg = failureMessage(err)
	} else {
		t.state = StateSucceeded
		t.result = result
	}
	t.mu.Unlock()
	t.notify()
}

// failureMessage collapses service and transport errors into the
// user-facing failure string: the response body when the service sent
// one, a generic transport message otherwise.
func failureMessage(err error) string {
	var svcErr *resilience.ServiceError
	if errors.As(err, &svcErr) {
		return svcErr.Error()
	}
	return "simulation service unreachable"
}

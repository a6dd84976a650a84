package session

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oisheenandy0505/urban-mobility/pkg/resilience"
)

// fakeSimulator blocks each call until release is closed, then returns
// the configured outcome.
type fakeSimulator struct {
	calls   atomic.Int64
	release chan struct{}
	result  *resilience.SimulationResult
	err     error
}

func newFakeSimulator() *fakeSimulator {
	return &fakeSimulator{release: make(chan struct{})}
}

func (f *fakeSimulator) Simulate(ctx context.Context, req resilience.SimulationRequest) (*resilience.SimulationResult, error) {
	f.calls.Add(1)
	<-f.release
	return f.result, f.err
}

func validRequest() resilience.SimulationRequest {
	return resilience.SimulationRequest{
		City:     "Pittsburgh, Pennsylvania, USA",
		Scenario: "Random Failure",
		Severity: 0.05,
		NPairs:   40,
	}
}

// waitForState polls until the tracker reaches want or the deadline
// passes. Completions arrive from a goroutine, so tests synchronize on
// the observable state rather than on timing.
func waitForState(t *testing.T, tr *Tracker, want State) Snapshot {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		snap := tr.Snapshot()
		if snap.State == want {
			return snap
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("tracker never reached %v (currently %v)", want, tr.Snapshot().State)
	return Snapshot{}
}

func TestSubmitEmptyCityStaysIdle(t *testing.T) {
	sim := newFakeSimulator()
	tr := NewTracker(sim, nil)

	req := validRequest()
	req.City = ""
	err := tr.Submit(context.Background(), req)

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, StateIdle, tr.Snapshot().State)
	assert.EqualValues(t, 0, sim.calls.Load(), "validation failure must not issue a call")
}

func TestSubmitEmptyScenarioStaysIdle(t *testing.T) {
	sim := newFakeSimulator()
	tr := NewTracker(sim, nil)

	req := validRequest()
	req.Scenario = ""
	err := tr.Submit(context.Background(), req)

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.EqualValues(t, 0, sim.calls.Load())
}

func TestSubmitOutOfRangeStaysIdle(t *testing.T) {
	sim := newFakeSimulator()
	tr := NewTracker(sim, nil)

	tests := []struct {
		name   string
		mutate func(*resilience.SimulationRequest)
	}{
		{"severity zero", func(r *resilience.SimulationRequest) { r.Severity = 0 }},
		{"severity above max", func(r *resilience.SimulationRequest) { r.Severity = 0.9 }},
		{"pairs below min", func(r *resilience.SimulationRequest) { r.NPairs = 5 }},
		{"pairs above max", func(r *resilience.SimulationRequest) { r.NPairs = 500 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest()
			tt.mutate(&req)
			err := tr.Submit(context.Background(), req)

			var vErr *ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, StateIdle, tr.Snapshot().State)
			assert.EqualValues(t, 0, sim.calls.Load(), "out-of-range request must not issue a call")
		})
	}
}

func TestSubmitWhileInFlightRejected(t *testing.T) {
	sim := newFakeSimulator()
	sim.result = &resilience.SimulationResult{NRemovedEdges: 5}
	tr := NewTracker(sim, nil)

	require.NoError(t, tr.Submit(context.Background(), validRequest()))
	assert.Equal(t, StateInFlight, tr.Snapshot().State)

	err := tr.Submit(context.Background(), validRequest())
	require.ErrorIs(t, err, ErrInFlight)
	assert.EqualValues(t, 1, sim.calls.Load(), "no second call issued")

	close(sim.release)
	waitForState(t, tr, StateSucceeded)
}

func TestSuccessReplacesResultAtomically(t *testing.T) {
	sim := newFakeSimulator()
	sim.result = &resilience.SimulationResult{
		Scenario:      "Random Failure",
		NRemovedEdges: 12,
		AvgRatio:      1.34,
	}
	tr := NewTracker(sim, nil)

	require.NoError(t, tr.Submit(context.Background(), validRequest()))

	// InFlight clears any prior result before the call resolves.
	snap := tr.Snapshot()
	assert.Equal(t, StateInFlight, snap.State)
	assert.Nil(t, snap.Result)

	close(sim.release)
	snap = waitForState(t, tr, StateSucceeded)
	require.NotNil(t, snap.Result)
	assert.Equal(t, 12, snap.Result.NRemovedEdges)
	assert.InDelta(t, 1.34, snap.Result.AvgRatio, 1e-9)
}

func TestFailureCarriesServiceBody(t *testing.T) {
	sim := newFakeSimulator()
	sim.err = &resilience.ServiceError{StatusCode: 500, Body: "Unknown scenario: Meteor Strike"}
	tr := NewTracker(sim, nil)

	require.NoError(t, tr.Submit(context.Background(), validRequest()))
	close(sim.release)

	snap := waitForState(t, tr, StateFailed)
	assert.Equal(t, "Unknown scenario: Meteor Strike", snap.Err)
	assert.Nil(t, snap.Result)
}

func TestFailureGenericTransportMessage(t *testing.T) {
	sim := newFakeSimulator()
	sim.err = errors.New("dial tcp: connection refused")
	tr := NewTracker(sim, nil)

	require.NoError(t, tr.Submit(context.Background(), validRequest()))
	close(sim.release)

	snap := waitForState(t, tr, StateFailed)
	assert.Equal(t, "simulation service unreachable", snap.Err)
}

func TestResubmitAfterFailure(t *testing.T) {
	sim := newFakeSimulator()
	sim.err = errors.New("boom")
	tr := NewTracker(sim, nil)

	require.NoError(t, tr.Submit(context.Background(), validRequest()))
	close(sim.release)
	waitForState(t, tr, StateFailed)

	// Failed transitions back through Validating on the next submit.
	sim.release = make(chan struct{})
	sim.err = nil
	sim.result = &resilience.SimulationResult{NRemovedEdges: 3}
	require.NoError(t, tr.Submit(context.Background(), validRequest()))
	close(sim.release)

	snap := waitForState(t, tr, StateSucceeded)
	assert.Equal(t, 3, snap.Result.NRemovedEdges)
}

func TestStaleGenerationDiscarded(t *testing.T) {
	sim := newFakeSimulator()
	sim.result = &resilience.SimulationResult{NRemovedEdges: 7}
	tr := NewTracker(sim, nil)

	require.NoError(t, tr.Submit(context.Background(), validRequest()))
	close(sim.release)
	waitForState(t, tr, StateSucceeded)

	// A completion tagged with a superseded generation must not
	// overwrite the current run.
	tr.complete(0, &resilience.SimulationResult{NRemovedEdges: 999}, nil)
	snap := tr.Snapshot()
	assert.Equal(t, StateSucceeded, snap.State)
	assert.Equal(t, 7, snap.Result.NRemovedEdges)
}

func TestNotifyFiresOnTransitions(t *testing.T) {
	sim := newFakeSimulator()
	sim.result = &resilience.SimulationResult{}
	var notifications atomic.Int64
	tr := NewTracker(sim, func() { notifications.Add(1) })

	require.NoError(t, tr.Submit(context.Background(), validRequest()))
	after := notifications.Load()
	assert.GreaterOrEqual(t, after, int64(1), "entering InFlight notifies")

	close(sim.release)
	waitForState(t, tr, StateSucceeded)
	assert.Greater(t, notifications.Load(), after, "completion notifies")
}

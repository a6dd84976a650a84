package resilience

import (
	"fmt"

	"github.com/paulmach/orb/geojson"
)

// Severity and sample-size limits accepted by the simulation engine.
const (
	MinSeverity = 0.0 // exclusive
	MaxSeverity = 0.5 // inclusive
	MinPairs    = 10
	MaxPairs    = 200
)

// SimulationRequest parametrizes one shock run. Field names follow the
// wire contract of POST /simulate.
type SimulationRequest struct {
	City         string  `json:"city"`
	Scenario     string  `json:"scenario"`
	Severity     float64 `json:"severity"`
	NPairs       int     `json:"n_pairs"`
	UseUSGSFlood bool    `json:"use_usgs_flood"`
}

// Validate checks the request against the engine's accepted ranges.
func (r SimulationRequest) Validate() error {
	if r.City == "" {
		return fmt.Errorf("city must not be empty")
	}
	if r.Scenario == "" {
		return fmt.Errorf("scenario must be selected")
	}
	if r.Severity <= MinSeverity || r.Severity > MaxSeverity {
		return fmt.Errorf("severity %.3f outside (%.1f, %.1f]", r.Severity, MinSeverity, MaxSeverity)
	}
	if r.NPairs < MinPairs || r.NPairs > MaxPairs {
		return fmt.Errorf("n_pairs %d outside [%d, %d]", r.NPairs, MinPairs, MaxPairs)
	}
	return nil
}

// SimulationResult is the engine's response to a shock run: aggregate
// travel-time metrics plus the baseline network and the removed edges
// as GeoJSON collections. Removed edges are a subset of the baseline by
// construction of the engine; the client relies on that for overlay
// rendering and does not verify it.
type SimulationResult struct {
	City            string  `json:"city"`
	Scenario        string  `json:"scenario"`
	Severity        float64 `json:"severity"`
	AvgRatio        float64 `json:"avg_ratio"`
	MedianRatio     float64 `json:"median_ratio"`
	PctDisconnected float64 `json:"pct_disconnected"`
	NRemovedEdges   int     `json:"n_removed_edges"`
	NPairs          int     `json:"n_pairs"`

	BaselineEdges *geojson.FeatureCollection `json:"edges_geojson"`
	RemovedEdges  *geojson.FeatureCollection `json:"removed_edges_geojson"`
}

// ProgressiveRequest sweeps one scenario across several severities.
type ProgressiveRequest struct {
	City            string    `json:"city"`
	Scenario        string    `json:"scenario"`
	Severities      []float64 `json:"severities"`
	NPairs          int       `json:"n_pairs"`
	RunsPerSeverity int       `json:"runs_per_severity"`
	UseUSGSFlood    bool      `json:"use_usgs_flood"`
}

// ProgressivePoint is one aggregated row of a severity sweep.
type ProgressivePoint struct {
	Severity        float64 `json:"severity"`
	AvgRatio        float64 `json:"avg_ratio"`
	MedianRatio     float64 `json:"median_ratio"`
	PctDisconnected float64 `json:"pct_disconnected"`
	NRemovedEdges   int     `json:"n_removed_edges"`
}

// ServiceError is a non-2xx response from the engine. The body, when
// present, is surfaced verbatim as the failure message.
type ServiceError struct {
	StatusCode int
	Body       string
}

func (e *ServiceError) Error() string {
	if e.Body != "" {
		return e.Body
	}
	return fmt.Sprintf("simulation service returned status %d", e.StatusCode)
}

// Package view composes the renderable model from the session state
// and the scenario catalog. It owns no state: the same snapshot always
// produces the same model, so the TUI recomputes it on every draw.
package view

import (
	"fmt"

	"github.com/paulmach/orb/geojson"

	"github.com/oisheenandy0505/urban-mobility/pkg/geo"
	"github.com/oisheenandy0505/urban-mobility/pkg/session"
	"github.com/oisheenandy0505/urban-mobility/pkg/style"
)

// Layer is one geometry collection inside a pane, drawn in order.
type Layer struct {
	Collection *geojson.FeatureCollection
	// Removed selects the removed-edge classifier; the baseline
	// classifier applies otherwise.
	Removed bool
}

// Pane is one renderable map: title, layers bottom-up, and the bounds
// the consumer fits its viewport to. Bounds may be nil (degenerate
// geometry); the pane then renders as a placeholder.
type Pane struct {
	Title  string
	Layers []Layer
	Bounds *geo.Bounds
}

// Metrics is the formatted summary block shown after a successful run.
type Metrics struct {
	AvgRatio        string
	MedianRatio     string
	PctDisconnected string
	RemovedEdges    string
	ODPairs         string
}

// LegendEntry pairs a label with the descriptor its edges are drawn in.
type LegendEntry struct {
	Label string
	Desc  style.Descriptor
}

// Model is everything the screen needs for one frame.
type Model struct {
	Status        string
	SubmitEnabled bool
	Scenario      string
	Metrics       *Metrics
	Panes         []Pane
	Legend        []LegendEntry
}

// Compose derives the renderable model. Panes and metrics exist only in
// Succeeded; the after pane layers removed edges above the baseline so
// the underlying road stays visible beneath its failure marker.
func Compose(snap session.Snapshot, catalog []string) Model {
	m := Model{
		Status:        statusText(snap),
		SubmitEnabled: snap.State != session.StateInFlight && len(catalog) > 0,
	}

	if snap.State != session.StateSucceeded || snap.Result == nil {
		return m
	}
	result := snap.Result

	m.Scenario = result.Scenario
	m.Metrics = &Metrics{
		AvgRatio:        fmt.Sprintf("%.2f", result.AvgRatio),
		MedianRatio:     fmt.Sprintf("%.2f", result.MedianRatio),
		PctDisconnected: fmt.Sprintf("%.1f%%", result.PctDisconnected),
		RemovedEdges:    fmt.Sprintf("%d", result.NRemovedEdges),
		ODPairs:         fmt.Sprintf("%d", result.NPairs),
	}

	// Both panes share the baseline bounds: removed edges are a subset
	// of the baseline, so one rectangle covers both and the panes stay
	// visually aligned.
	bounds := geo.CollectionBounds(result.BaselineEdges)
	m.Panes = []Pane{
		{
			Title:  "Before",
			Layers: []Layer{{Collection: result.BaselineEdges}},
			Bounds: bounds,
		},
		{
			Title: "After: " + result.Scenario,
			Layers: []Layer{
				{Collection: result.BaselineEdges},
				{Collection: result.RemovedEdges, Removed: true},
			},
			Bounds: bounds,
		},
	}
	m.Legend = legendFor(result.Scenario)
	return m
}

func statusText(snap session.Snapshot) string {
	switch snap.State {
	case session.StateIdle:
		return "Ready"
	case session.StateValidating:
		return "Validating"
	case session.StateInFlight:
		return "Running simulation..."
	case session.StateSucceeded:
		return "Done"
	case session.StateFailed:
		return "Failed: " + snap.Err
	default:
		return ""
	}
}

func legendFor(scenario string) []LegendEntry {
	entries := []LegendEntry{
		{Label: "Road", Desc: style.Baseline(nil)},
		{Label: "Bridge", Desc: style.Baseline(geojson.Properties{"is_bridge": true})},
		{Label: "Tunnel", Desc: style.Baseline(geojson.Properties{"is_tunnel": true})},
	}

	kind := style.KindForScenario(scenario)
	var removedLabel string
	switch kind {
	case style.KindFlood:
		removedLabel = "Flooded"
	case style.KindTargeted:
		removedLabel = "Targeted"
	case style.KindRandom:
		removedLabel = "Failed"
	default:
		removedLabel = "Removed"
	}
	entries = append(entries,
		LegendEntry{Label: removedLabel, Desc: style.RemovedKind(nil, kind)},
		LegendEntry{Label: "Bridge down", Desc: style.Removed(geojson.Properties{"is_bridge": true}, scenario)},
		LegendEntry{Label: "Tunnel closed", Desc: style.Removed(geojson.Properties{"is_tunnel": true}, scenario)},
	)
	return entries
}

// Package style classifies road edges into visual style descriptors.
//
// Two classifiers exist: Baseline, which encodes structural vulnerability
// (bridge/tunnel) independent of any scenario so the before pane looks the
// same for every run, and Removed, which additionally colours an edge by
// the shock scenario that removed it. Both are total: unrecognized input
// falls through to a default descriptor, never an error.
package style

import (
	"strings"

	"github.com/paulmach/orb/geojson"
)

// Token names an entry in the rendering palette. Consumers resolve a
// token to a concrete terminal or RGBA colour; the classifier itself
// never deals in colour values.
type Token string

const (
	TokenBridge      Token = "bridge"       // baseline bridge, dashed
	TokenTunnel      Token = "tunnel"       // baseline tunnel, dashed
	TokenRoad        Token = "road"         // plain baseline road
	TokenBridgeAlert Token = "bridge-alert" // removed bridge
	TokenTunnelAlert Token = "tunnel-alert" // removed tunnel, violet
	TokenFlood       Token = "flood"        // flood scenario, orange
	TokenTargeted    Token = "targeted"     // targeted scenarios, strong red
	TokenRandom      Token = "random"       // random failure, near-black
)

// Stroke weights. Removed structural edges draw heaviest so a collapsed
// bridge or tunnel stands out even against the scenario overlay.
const (
	WeightThin    = 1.0
	WeightNormal  = 1.6
	WeightOverlay = 2.0
	WeightHeavy   = 2.4
)

// Descriptor describes how a single edge is drawn.
type Descriptor struct {
	Token  Token
	Weight float64
	Dashed bool
}

// ScenarioKind is the closed tag the removed-edge classifier dispatches
// on. Deriving the kind from the server's scenario name happens in
// KindForScenario and nowhere else.
type ScenarioKind int

const (
	KindOther ScenarioKind = iota
	KindFlood
	KindTargeted
	KindRandom
)

// Scenario names as served by the simulation engine. The targeted match
// is a prefix because the service exposes variants ("Targeted Attack
// (Top k%)", targeted-by-degree, ...) that all render identically.
const (
	floodScenario  = "Highway Flood"
	targetedPrefix = "Targeted"
	randomScenario = "Random Failure"
)

// KindForScenario maps a catalog scenario name to its kind.
func KindForScenario(name string) ScenarioKind {
	switch {
	case name == floodScenario:
		return KindFlood
	case strings.HasPrefix(name, targetedPrefix):
		return KindTargeted
	case name == randomScenario:
		return KindRandom
	default:
		return KindOther
	}
}

// Baseline classifies an edge for the before pane and the after pane's
// underlay. First match wins: bridge, tunnel, plain road.
func Baseline(props geojson.Properties) Descriptor {
	switch {
	case isSet(props, "is_bridge"):
		return Descriptor{Token: TokenBridge, Weight: WeightNormal, Dashed: true}
	case isSet(props, "is_tunnel"):
		return Descriptor{Token: TokenTunnel, Weight: WeightNormal, Dashed: true}
	default:
		return Descriptor{Token: TokenRoad, Weight: WeightThin}
	}
}

// Removed classifies an edge in the removed-edge overlay. Structural
// type dominates the scenario: a collapsed bridge is visually a bridge
// failure no matter why it failed.
func Removed(props geojson.Properties, scenario string) Descriptor {
	return RemovedKind(props, KindForScenario(scenario))
}

// RemovedKind is Removed with the scenario kind already derived.
func RemovedKind(props geojson.Properties, kind ScenarioKind) Descriptor {
	switch {
	case isSet(props, "is_bridge"):
		return Descriptor{Token: TokenBridgeAlert, Weight: WeightHeavy}
	case isSet(props, "is_tunnel"):
		return Descriptor{Token: TokenTunnelAlert, Weight: WeightHeavy}
	}
	switch kind {
	case KindFlood:
		return Descriptor{Token: TokenFlood, Weight: WeightOverlay}
	case KindRandom:
		return Descriptor{Token: TokenRandom, Weight: WeightOverlay}
	default:
		// Targeted and anything unrecognized share the strong red.
		return Descriptor{Token: TokenTargeted, Weight: WeightOverlay}
	}
}

// isSet reports whether a boolean property is present and true. The
// property bag is opaque passthrough data, so a missing key, a nil map
// and a non-boolean value all read as false.
func isSet(props geojson.Properties, key string) bool {
	if props == nil {
		return false
	}
	v, ok := props[key].(bool)
	return ok && v
}

package style

import (
	"testing"

	"github.com/paulmach/orb/geojson"
)

func TestBaselinePrecedence(t *testing.T) {
	tests := []struct {
		name   string
		props  geojson.Properties
		token  Token
		dashed bool
	}{
		{"bridge", geojson.Properties{"is_bridge": true}, TokenBridge, true},
		{"tunnel", geojson.Properties{"is_tunnel": true}, TokenTunnel, true},
		{"bridge wins over tunnel", geojson.Properties{"is_bridge": true, "is_tunnel": true}, TokenBridge, true},
		{"plain road", geojson.Properties{"highway": "residential"}, TokenRoad, false},
		{"nil properties", nil, TokenRoad, false},
		{"non-boolean flags ignored", geojson.Properties{"is_bridge": "yes"}, TokenRoad, false},
	}

	for _, tt := range tests {
		d := Baseline(tt.props)
		if d.Token != tt.token {
			t.Errorf("%s: token = %q, want %q", tt.name, d.Token, tt.token)
		}
		if d.Dashed != tt.dashed {
			t.Errorf("%s: dashed = %v, want %v", tt.name, d.Dashed, tt.dashed)
		}
	}
}

func TestBaselineRoadIsThinner(t *testing.T) {
	road := Baseline(nil)
	bridge := Baseline(geojson.Properties{"is_bridge": true})
	if road.Weight >= bridge.Weight {
		t.Errorf("plain road weight %.1f should be below bridge weight %.1f", road.Weight, bridge.Weight)
	}
}

func TestRemovedStructuralDominatesScenario(t *testing.T) {
	scenarios := []string{"Highway Flood", "Targeted Attack (Top k%)", "Random Failure", "unknown scenario", ""}
	for _, sc := range scenarios {
		d := Removed(geojson.Properties{"is_bridge": true}, sc)
		if d.Token != TokenBridgeAlert {
			t.Errorf("bridge under %q: token = %q, want %q", sc, d.Token, TokenBridgeAlert)
		}
		if d.Dashed {
			t.Errorf("bridge under %q: removed edges draw solid", sc)
		}
		d = Removed(geojson.Properties{"is_tunnel": true}, sc)
		if d.Token != TokenTunnelAlert {
			t.Errorf("tunnel under %q: token = %q, want %q", sc, d.Token, TokenTunnelAlert)
		}
	}
}

func TestRemovedScenarioDispatch(t *testing.T) {
	tests := []struct {
		scenario string
		token    Token
	}{
		{"Highway Flood", TokenFlood},
		{"Targeted Attack (Top k%)", TokenTargeted},
		{"Targeted Node Removal", TokenTargeted},
		{"Random Failure", TokenRandom},
		{"unknown scenario", TokenTargeted},
		{"", TokenTargeted},
	}
	for _, tt := range tests {
		d := Removed(geojson.Properties{}, tt.scenario)
		if d.Token != tt.token {
			t.Errorf("Removed({}, %q): token = %q, want %q", tt.scenario, d.Token, tt.token)
		}
	}
}

func TestRemovedHeavierThanBaseline(t *testing.T) {
	base := Baseline(nil)
	removed := Removed(nil, "Random Failure")
	structural := Removed(geojson.Properties{"is_tunnel": true}, "Random Failure")
	if removed.Weight <= base.Weight {
		t.Errorf("overlay weight %.1f should exceed baseline %.1f", removed.Weight, base.Weight)
	}
	if structural.Weight <= removed.Weight {
		t.Errorf("structural alert weight %.1f should exceed overlay %.1f", structural.Weight, removed.Weight)
	}
}

func TestKindForScenario(t *testing.T) {
	tests := []struct {
		name string
		kind ScenarioKind
	}{
		{"Highway Flood", KindFlood},
		{"Targeted Attack (Top k%)", KindTargeted},
		{"Targeted", KindTargeted},
		{"Random Failure", KindRandom},
		{"Bridge Collapse", KindOther},
		{"Tunnel Closure", KindOther},
		{"", KindOther},
	}
	for _, tt := range tests {
		if k := KindForScenario(tt.name); k != tt.kind {
			t.Errorf("KindForScenario(%q) = %v, want %v", tt.name, k, tt.kind)
		}
	}
}

func TestClassifiersDeterministic(t *testing.T) {
	props := geojson.Properties{"is_bridge": true, "osmid": 12345}
	for i := 0; i < 3; i++ {
		if Baseline(props) != Baseline(props) {
			t.Fatal("Baseline not deterministic")
		}
		if Removed(props, "Highway Flood") != Removed(props, "Highway Flood") {
			t.Fatal("Removed not deterministic")
		}
	}
}

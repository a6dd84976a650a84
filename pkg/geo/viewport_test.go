package geo

import "testing"

func TestFitViewportNilBounds(t *testing.T) {
	if v := FitViewport(nil, 80, 24, 1); v != nil {
		t.Error("expected nil viewport for nil bounds")
	}
}

func TestFitViewportTooSmall(t *testing.T) {
	b := &Bounds{LatMin: 40, LatMax: 41, LngMin: -80, LngMax: -79}
	if v := FitViewport(b, 4, 4, 2); v != nil {
		t.Error("expected nil viewport when padding swallows the grid")
	}
}

func TestProjectCorners(t *testing.T) {
	b := &Bounds{LatMin: 40, LatMax: 41, LngMin: -80, LngMax: -79}
	v := FitViewport(b, 40, 20, 2)
	if v == nil {
		t.Fatal("expected viewport")
	}

	tests := []struct {
		name     string
		lat, lng float64
		x, y     int
	}{
		{"north-west corner", 41, -80, 2, 2},
		{"south-east corner", 40, -79, 37, 17},
		{"north-east corner", 41, -79, 37, 2},
		{"south-west corner", 40, -80, 2, 17},
	}
	for _, tt := range tests {
		x, y := v.Project(tt.lat, tt.lng)
		if x != tt.x || y != tt.y {
			t.Errorf("%s: got (%d, %d), want (%d, %d)", tt.name, x, y, tt.x, tt.y)
		}
	}
}

func TestProjectNorthUp(t *testing.T) {
	b := &Bounds{LatMin: 40, LatMax: 41, LngMin: -80, LngMax: -79}
	v := FitViewport(b, 40, 20, 1)

	_, yNorth := v.Project(41, -79.5)
	_, ySouth := v.Project(40, -79.5)
	if yNorth >= ySouth {
		t.Errorf("north should map above south: north y=%d, south y=%d", yNorth, ySouth)
	}
}

func TestProjectDegenerateBounds(t *testing.T) {
	// A single-coordinate collection yields a zero-area rectangle; the
	// point must still land inside the padded grid.
	b := &Bounds{LatMin: 40.44, LatMax: 40.44, LngMin: -79.99, LngMax: -79.99}
	v := FitViewport(b, 41, 21, 2)
	if v == nil {
		t.Fatal("expected viewport for zero-area bounds")
	}

	x, y := v.Project(40.44, -79.99)
	if x != 20 || y != 10 {
		t.Errorf("degenerate point should centre: got (%d, %d)", x, y)
	}
}

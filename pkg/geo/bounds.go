// Package geo computes geographic bounds and viewport fitting for
// road-network geometry.
package geo

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// Bounds is an axis-aligned lat/lng rectangle.
type Bounds struct {
	LatMin, LatMax float64
	LngMin, LngMax float64
}

// Width returns the longitude span of the rectangle.
func (b Bounds) Width() float64 { return b.LngMax - b.LngMin }

// Height returns the latitude span of the rectangle.
func (b Bounds) Height() float64 { return b.LatMax - b.LatMin }

// CollectionBounds returns the tightest rectangle containing every
// coordinate of every LineString and MultiLineString feature in fc.
// GeoJSON positions arrive as [lng, lat]; the result is lat-first.
// Features with other geometry types are skipped. Returns nil when fc
// is nil, empty, or holds no recognized geometry.
func CollectionBounds(fc *geojson.FeatureCollection) *Bounds {
	if fc == nil {
		return nil
	}

	var b *Bounds
	extend := func(p orb.Point) {
		lng, lat := p[0], p[1]
		if b == nil {
			b = &Bounds{LatMin: lat, LatMax: lat, LngMin: lng, LngMax: lng}
			return
		}
		if lat < b.LatMin {
			b.LatMin = lat
		}
		if lat > b.LatMax {
			b.LatMax = lat
		}
		if lng < b.LngMin {
			b.LngMin = lng
		}
		if lng > b.LngMax {
			b.LngMax = lng
		}
	}

	for _, feat := range fc.Features {
		if feat == nil {
			continue
		}
		switch g := feat.Geometry.(type) {
		case orb.LineString:
			for _, p := range g {
				extend(p)
			}
		case orb.MultiLineString:
			for _, line := range g {
				for _, p := range line {
					extend(p)
				}
			}
		}
	}

	return b
}

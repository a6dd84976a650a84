package geo

// Viewport maps geographic coordinates into an integer cell grid, such
// as a terminal pane or a pixel raster. The fit preserves the full
// bounds; it does not preserve aspect ratio, since terminal cells are
// not square anyway and each pane scales its axes independently.
type Viewport struct {
	bounds  Bounds
	width   int
	height  int
	padding int
}

// FitViewport fits b into a width x height grid, keeping padding cells
// clear on every side. The padding is a fixed margin, not a function of
// the rectangle size, so a zero-area bounds (single coordinate) still
// yields a usable view with the point centred. Returns nil when b is
// nil or the grid is too small to hold the padding.
func FitViewport(b *Bounds, width, height, padding int) *Viewport {
	if b == nil {
		return nil
	}
	if width-2*padding < 1 || height-2*padding < 1 {
		return nil
	}
	return &Viewport{bounds: *b, width: width, height: height, padding: padding}
}

// Project maps a (lat, lng) coordinate to grid cell coordinates.
// North maps up: LatMax lands on the top padded row. Coordinates on a
// degenerate axis (zero span) land on the centre of that axis.
func (v *Viewport) Project(lat, lng float64) (x, y int) {
	innerW := float64(v.width - 2*v.padding - 1)
	innerH := float64(v.height - 2*v.padding - 1)

	if span := v.bounds.Width(); span > 0 {
		x = v.padding + int(((lng-v.bounds.LngMin)/span)*innerW+0.5)
	} else {
		x = v.width / 2
	}
	if span := v.bounds.Height(); span > 0 {
		y = v.padding + int(((v.bounds.LatMax-lat)/span)*innerH+0.5)
	} else {
		y = v.height / 2
	}
	return x, y
}

// Native PNG rendering for before/after network snapshots.
// Mirrors the on-screen panes using Go's image packages.

package mapimg

import (
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/oisheenandy0505/urban-mobility/pkg/geo"
	"github.com/oisheenandy0505/urban-mobility/pkg/style"
)

// Options configures PNG rendering.
type Options struct {
	Width   int
	Height  int
	Padding int
	Title   string
}

// DefaultOptions returns sensible defaults for snapshot export.
func DefaultOptions() Options {
	return Options{
		Width:   900,
		Height:  900,
		Padding: 40,
		Title:   "",
	}
}

// ErrNoGeometry is returned when the baseline collection holds nothing
// drawable, so no viewport can be fitted.
var ErrNoGeometry = errors.New("no drawable geometry in collection")

// Palette: token to RGBA. Kept in sync with the terminal palette in
// cmd/shockview by the shared token names.
var palette = map[style.Token]color.RGBA{
	style.TokenRoad:        {201, 201, 201, 255}, // light gray, like the source plots
	style.TokenBridge:      {70, 130, 180, 255},  // steel blue
	style.TokenTunnel:      {112, 128, 144, 255}, // slate
	style.TokenBridgeAlert: {198, 40, 40, 255},
	style.TokenTunnelAlert: {123, 31, 162, 255}, // violet
	style.TokenFlood:       {239, 108, 0, 255},  // orange
	style.TokenTargeted:    {211, 47, 47, 255},  // strong red
	style.TokenRandom:      {33, 33, 33, 255},   // near-black
}

var colorWhite = color.RGBA{255, 255, 255, 255}
var colorTitle = color.RGBA{51, 51, 51, 255} // #333

// renderContext holds rendering parameters including supersample scale.
type renderContext struct {
	img   *image.RGBA
	scale float64
	face  font.Face
}

func newRenderContext(img *image.RGBA, scale int) *renderContext {
	fnt, err := opentype.Parse(goregular.TTF)
	if err != nil {
		panic(err) // embedded font
	}
	face, err := opentype.NewFace(fnt, &opentype.FaceOptions{
		Size:    float64(16 * scale),
		DPI:     72,
		Hinting: font.HintingNone, // supersampling smooths instead
	})
	if err != nil {
		panic(err)
	}
	return &renderContext{img: img, scale: float64(scale), face: face}
}

// RenderPNG draws the baseline network with the removed-edge overlay on
// top and writes the encoded PNG. removed may be nil or empty for a
// before-only snapshot. Uses 4x supersampling for smoother output.
func RenderPNG(w io.Writer, baseline, removed *geojson.FeatureCollection, scenario string, opts Options) error {
	bounds := geo.CollectionBounds(baseline)
	if bounds == nil {
		return ErrNoGeometry
	}

	scale := 4
	largeImg, err := renderInternal(baseline, removed, scenario, bounds, opts, scale)
	if err != nil {
		return err
	}

	finalImg := image.NewRGBA(image.Rect(0, 0, opts.Width, opts.Height))
	draw.CatmullRom.Scale(finalImg, finalImg.Bounds(), largeImg, largeImg.Bounds(), draw.Over, nil)

	return png.Encode(w, finalImg)
}

func renderInternal(baseline, removed *geojson.FeatureCollection, scenario string, bounds *geo.Bounds, opts Options, scale int) (*image.RGBA, error) {
	width := opts.Width * scale
	height := opts.Height * scale
	padding := opts.Padding * scale

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	ctx := newRenderContext(img, scale)

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, colorWhite)
		}
	}

	titleSpace := 0
	if opts.Title != "" {
		titleSpace = 40 * scale
	}

	vp := geo.FitViewport(bounds, width, height-titleSpace, padding)
	if vp == nil {
		return nil, ErrNoGeometry
	}

	for _, feat := range baseline.Features {
		drawFeature(ctx, vp, titleSpace, feat, style.Baseline(feat.Properties))
	}
	if removed != nil {
		for _, feat := range removed.Features {
			drawFeature(ctx, vp, titleSpace, feat, style.Removed(feat.Properties, scenario))
		}
	}

	if opts.Title != "" {
		drawTextCentered(ctx, width/2, titleSpace/2, opts.Title, colorTitle)
	}
	return img, nil
}

// drawFeature renders one LineString or MultiLineString feature; other
// geometry types are skipped, matching the bounds calculator.
func drawFeature(ctx *renderContext, vp *geo.Viewport, yOffset int, feat *geojson.Feature, desc style.Descriptor) {
	c, ok := palette[desc.Token]
	if !ok {
		c = palette[style.TokenRoad]
	}
	thickness := desc.Weight * ctx.scale

	switch g := feat.Geometry.(type) {
	case orb.LineString:
		drawPolyline(ctx, vp, yOffset, g, c, thickness, desc.Dashed)
	case orb.MultiLineString:
		for _, line := range g {
			drawPolyline(ctx, vp, yOffset, line, c, thickness, desc.Dashed)
		}
	}
}

func drawPolyline(ctx *renderContext, vp *geo.Viewport, yOffset int, line orb.LineString, c color.RGBA, thickness float64, dashed bool) {
	for i := 1; i < len(line); i++ {
		x1, y1 := vp.Project(line[i-1][1], line[i-1][0])
		x2, y2 := vp.Project(line[i][1], line[i][0])
		drawLine(ctx, float64(x1), float64(y1+yOffset), float64(x2), float64(y2+yOffset), c, thickness, dashed)
	}
}

// drawLine rasterizes a straight segment with the given thickness.
// Dashed lines alternate 6px on, 4px off along the segment.
func drawLine(ctx *renderContext, x1, y1, x2, y2 float64, c color.Color, thickness float64, dashed bool) {
	img := ctx.img

	dx := x2 - x1
	dy := y2 - y1
	steps := math.Max(math.Abs(dx), math.Abs(dy))
	if steps < 1 {
		steps = 1
	}

	halfThick := thickness / 2

	dist := math.Sqrt(dx*dx + dy*dy)
	if dist < 1 {
		for ty := -halfThick; ty <= halfThick; ty++ {
			for tx := -halfThick; tx <= halfThick; tx++ {
				img.Set(int(x1+tx), int(y1+ty), c)
			}
		}
		return
	}

	perpX := -dy / dist
	perpY := dx / dist

	dashPeriod := 10.0 * ctx.scale
	dashOn := 6.0 * ctx.scale

	for i := 0.0; i <= steps; i++ {
		t := i / steps
		if dashed {
			along := dist * t
			if math.Mod(along, dashPeriod) > dashOn {
				continue
			}
		}
		cx := x1 + dx*t
		cy := y1 + dy*t

		for offset := -halfThick; offset <= halfThick; offset += 0.5 {
			img.Set(int(cx+perpX*offset), int(cy+perpY*offset), c)
		}
	}
}

// drawTextCentered draws text centred at the given position using the
// embedded Go Regular font.
func drawTextCentered(ctx *renderContext, x, y int, text string, c color.Color) {
	width := font.MeasureString(ctx.face, text).Ceil()

	metrics := ctx.face.Metrics()
	ascent := metrics.Ascent.Ceil()
	baselineY := y + int(float64(ascent)*0.35)

	d := &font.Drawer{
		Dst:  ctx.img,
		Src:  image.NewUniform(c),
		Face: ctx.face,
		Dot: fixed.Point26_6{
			X: fixed.I(x - width/2),
			Y: fixed.I(baselineY),
		},
	}
	d.DrawString(text)
}

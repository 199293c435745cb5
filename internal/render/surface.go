package render

import (
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"math"

	"github.com/rotisserie/eris"
	xdraw "golang.org/x/image/draw"
)

// Surface is the canonical fixed-size pixel target for one render pass. It is
// owned by a single caller; concurrent sessions use independent surfaces.
type Surface struct {
	img    *image.RGBA
	width  int
	height int
}

// NewSurface allocates a blank surface of the given dimensions.
func NewSurface(width, height int) *Surface {
	return &Surface{
		img:    image.NewRGBA(image.Rect(0, 0, width, height)),
		width:  width,
		height: height,
	}
}

// Width returns the surface width in pixels.
func (s *Surface) Width() int { return s.width }

// Height returns the surface height in pixels.
func (s *Surface) Height() int { return s.height }

// RGBA exposes the underlying pixel buffer for direct display.
func (s *Surface) RGBA() *image.RGBA { return s.img }

// EncodePNG writes the surface as a PNG stream.
func (s *Surface) EncodePNG(w io.Writer) error {
	if err := png.Encode(w, s.img); err != nil {
		return eris.Wrap(err, "render: encode surface png")
	}
	return nil
}

// DrawImage stretches src to fill the whole surface at full opacity. Aspect
// ratio is not preserved; there is no letterboxing.
func (s *Surface) DrawImage(src image.Image) {
	xdraw.ApproxBiLinear.Scale(s.img, s.img.Bounds(), src, src.Bounds(), xdraw.Src, nil)
}

// DrawImageWithOpacity stretches src over the surface, blended at the given
// opacity in [0, 1]. Full opacity is restored implicitly: the alpha applies
// only to this draw, later draws are unaffected.
func (s *Surface) DrawImageWithOpacity(src image.Image, opacity float64) {
	if opacity <= 0 {
		return
	}
	if opacity > 1 {
		opacity = 1
	}
	scaled := image.NewRGBA(s.img.Bounds())
	xdraw.ApproxBiLinear.Scale(scaled, scaled.Bounds(), src, src.Bounds(), xdraw.Src, nil)
	mask := image.NewUniform(color.Alpha{A: uint8(math.Round(opacity * 255))})
	draw.DrawMask(s.img, s.img.Bounds(), scaled, image.Point{}, mask, image.Point{}, draw.Over)
}

// backdropBlock is one rectangle of the synthetic placeholder backdrop,
// positioned in relative [0,1] surface coordinates.
type backdropBlock struct {
	x, y, w, h float64
	c          color.RGBA
}

// backdropBlocks is the fixed block list drawn when no base image exists:
// generic building outlines and two road strips. The list is constant so the
// placeholder is deterministic and pixel-comparable in tests.
var backdropBlocks = []backdropBlock{
	{0.00, 0.46, 1.00, 0.06, color.RGBA{70, 74, 80, 255}}, // horizontal road
	{0.55, 0.00, 0.05, 1.00, color.RGBA{70, 74, 80, 255}}, // vertical road
	{0.08, 0.10, 0.14, 0.22, color.RGBA{108, 112, 120, 255}},
	{0.28, 0.16, 0.12, 0.18, color.RGBA{96, 100, 108, 255}},
	{0.66, 0.08, 0.18, 0.24, color.RGBA{118, 122, 130, 255}},
	{0.10, 0.62, 0.16, 0.24, color.RGBA{102, 106, 114, 255}},
	{0.34, 0.66, 0.12, 0.20, color.RGBA{112, 116, 124, 255}},
	{0.68, 0.60, 0.20, 0.28, color.RGBA{92, 96, 104, 255}},
}

// DrawBackdrop paints the deterministic placeholder: a flat vertical gradient
// with a fixed set of rectangles suggesting buildings and roads. Used
// whenever no base image is available so the surface is never blank.
func (s *Surface) DrawBackdrop() {
	top := color.RGBA{52, 58, 66, 255}
	bottom := color.RGBA{86, 92, 100, 255}
	for y := 0; y < s.height; y++ {
		t := float64(y) / float64(max(s.height-1, 1))
		row := lerpColor(top, bottom, t)
		for x := 0; x < s.width; x++ {
			s.img.SetRGBA(x, y, row)
		}
	}
	for _, b := range backdropBlocks {
		s.fillRect(
			int(b.x*float64(s.width)), int(b.y*float64(s.height)),
			int((b.x+b.w)*float64(s.width)), int((b.y+b.h)*float64(s.height)),
			b.c,
		)
	}
}

// heatSpot is one synthetic radial gradient spot in relative coordinates.
// Warm spots carry positive intensity, cool spots negative.
type heatSpot struct {
	x, y      float64
	radius    float64 // relative to surface width
	intensity float64 // -1 cool … +1 hot
}

// heatSpots is the fixed stand-in heat visualization used when neither a base
// image nor a heat raster is available. The list is constant — no randomness —
// so repeated renders are pixel-identical.
var heatSpots = []heatSpot{
	{0.30, 0.28, 0.16, 0.9},
	{0.72, 0.22, 0.12, 0.7},
	{0.62, 0.70, 0.14, 0.8},
	{0.16, 0.76, 0.12, -0.6},
	{0.88, 0.52, 0.10, -0.5},
}

// DrawHeatSpots paints the fixed hot/cool radial gradient spots.
func (s *Surface) DrawHeatSpots() {
	for _, spot := range heatSpots {
		s.drawRadialSpot(spot)
	}
}

func (s *Surface) drawRadialSpot(spot heatSpot) {
	cx := spot.x * float64(s.width)
	cy := spot.y * float64(s.height)
	r := spot.radius * float64(s.width)

	var tint color.RGBA
	if spot.intensity >= 0 {
		tint = color.RGBA{255, 64, 32, 0}
	} else {
		tint = color.RGBA{48, 128, 255, 0}
	}
	strength := math.Abs(spot.intensity)

	minX := max(int(cx-r), 0)
	maxX := min(int(cx+r)+1, s.width)
	minY := max(int(cy-r), 0)
	maxY := min(int(cy+r)+1, s.height)

	for y := minY; y < maxY; y++ {
		for x := minX; x < maxX; x++ {
			d := math.Hypot(float64(x)-cx, float64(y)-cy)
			if d >= r {
				continue
			}
			// Linear falloff from center to rim.
			alpha := strength * (1 - d/r) * 0.55
			s.blendPixel(x, y, tint, alpha)
		}
	}
}

// FillDisc paints a filled circle, clipped to the surface.
func (s *Surface) FillDisc(cx, cy float64, r float64, c color.RGBA) {
	minX := max(int(cx-r), 0)
	maxX := min(int(cx+r)+1, s.width)
	minY := max(int(cy-r), 0)
	maxY := min(int(cy+r)+1, s.height)
	for y := minY; y < maxY; y++ {
		for x := minX; x < maxX; x++ {
			if math.Hypot(float64(x)-cx, float64(y)-cy) <= r {
				s.img.SetRGBA(x, y, c)
			}
		}
	}
}

// StrokeDisc paints a circle outline of the given stroke width.
func (s *Surface) StrokeDisc(cx, cy float64, r, stroke float64, c color.RGBA) {
	minX := max(int(cx-r-stroke), 0)
	maxX := min(int(cx+r+stroke)+1, s.width)
	minY := max(int(cy-r-stroke), 0)
	maxY := min(int(cy+r+stroke)+1, s.height)
	for y := minY; y < maxY; y++ {
		for x := minX; x < maxX; x++ {
			d := math.Hypot(float64(x)-cx, float64(y)-cy)
			if d >= r && d <= r+stroke {
				s.img.SetRGBA(x, y, c)
			}
		}
	}
}

func (s *Surface) fillRect(x1, y1, x2, y2 int, c color.RGBA) {
	draw.Draw(s.img, image.Rect(x1, y1, x2, y2), &image.Uniform{C: c}, image.Point{}, draw.Src)
}

// blendPixel alpha-blends c over the existing pixel at (x, y).
func (s *Surface) blendPixel(x, y int, c color.RGBA, alpha float64) {
	base := s.img.RGBAAt(x, y)
	s.img.SetRGBA(x, y, color.RGBA{
		R: blendChannel(base.R, c.R, alpha),
		G: blendChannel(base.G, c.G, alpha),
		B: blendChannel(base.B, c.B, alpha),
		A: 255,
	})
}

func blendChannel(base, over uint8, alpha float64) uint8 {
	v := float64(base)*(1-alpha) + float64(over)*alpha
	return uint8(math.Round(math.Min(v, 255)))
}

func lerpColor(a, b color.RGBA, t float64) color.RGBA {
	return color.RGBA{
		R: uint8(float64(a.R) + (float64(b.R)-float64(a.R))*t),
		G: uint8(float64(a.G) + (float64(b.G)-float64(a.G))*t),
		B: uint8(float64(a.B) + (float64(b.B)-float64(a.B))*t),
		A: 255,
	}
}

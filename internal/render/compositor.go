package render

import (
	"context"
	"image"
	"sync"
	"sync/atomic"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// ImageSource loads a raster image from an opaque reference (URL or handle).
// Implementations own all network and decode concerns, including timeouts.
type ImageSource interface {
	Load(ctx context.Context, ref string) (image.Image, error)
}

// ErrSuperseded is returned when a render was cancelled because a newer
// render was requested on the same compositor before this one finished.
var ErrSuperseded = eris.New("render: superseded by a newer render")

// Default and allowed bounds for the heat layer opacity. The heat raster is
// always drawn translucent so the base imagery stays readable underneath.
const (
	DefaultHeatOpacity = 0.35
	minHeatOpacity     = 0.1
	maxHeatOpacity     = 0.4
)

// Compositor layers raster imagery onto canonical surfaces. Image loads run
// asynchronously and may complete out of order; the compositor guarantees the
// heat layer is drawn strictly after the base layer, and that a load
// belonging to a superseded render never touches a newer render's output.
type Compositor struct {
	width       int
	height      int
	heatOpacity float64
	source      ImageSource

	// generation increments on every Render call. Each in-flight render
	// captures its own generation and re-checks it before applying any
	// layer, so stale loads become no-ops instead of torn composites.
	generation atomic.Int64

	mu      sync.Mutex
	current *Surface
}

// NewCompositor creates a compositor for surfaces of the given dimensions.
// heatOpacity outside [0.1, 0.4] is clamped into range.
func NewCompositor(width, height int, heatOpacity float64, source ImageSource) *Compositor {
	if heatOpacity < minHeatOpacity {
		heatOpacity = minHeatOpacity
	}
	if heatOpacity > maxHeatOpacity {
		heatOpacity = maxHeatOpacity
	}
	return &Compositor{
		width:       width,
		height:      height,
		heatOpacity: heatOpacity,
		source:      source,
	}
}

// Current returns the most recently committed surface, or nil if no render
// has completed yet.
func (c *Compositor) Current() *Surface {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

type loadResult struct {
	img image.Image
	err error
}

// Render composites a new surface from the given image references, either of
// which may be empty. The layer order is fixed:
//
//  1. base imagery stretched to fill, or the synthetic backdrop when the base
//     is absent or fails to load;
//  2. the heat raster over it at the configured opacity, skipped silently on
//     load failure;
//  3. when neither layer could be drawn, the fixed synthetic heat spots.
//
// Calling Render again before a previous call finishes supersedes it: the
// older call returns ErrSuperseded and commits nothing. Load failures are
// never fatal — the surface always renders something displayable.
func (c *Compositor) Render(ctx context.Context, baseRef, heatRef string) (*Surface, error) {
	gen := c.generation.Add(1)

	// Both loads start immediately. Buffered channels hold an early heat
	// result until the base layer has been applied, so completion order
	// never reorders the layers.
	baseCh := c.startLoad(ctx, baseRef)
	heatCh := c.startLoad(ctx, heatRef)

	surface := NewSurface(c.width, c.height)

	drewBase := false
	if baseCh != nil {
		res, err := c.await(ctx, gen, baseCh)
		if err != nil {
			return nil, err
		}
		if res.err != nil {
			zap.L().Warn("render: base image load failed, using synthetic backdrop",
				zap.String("ref", baseRef),
				zap.Error(res.err),
			)
		} else {
			surface.DrawImage(res.img)
			drewBase = true
		}
	}
	if !drewBase {
		surface.DrawBackdrop()
	}

	drewHeat := false
	if heatCh != nil {
		res, err := c.await(ctx, gen, heatCh)
		if err != nil {
			return nil, err
		}
		if res.err != nil {
			// Heat layer is best-effort: skip and continue.
			zap.L().Debug("render: heat raster load failed, skipping layer",
				zap.String("ref", heatRef),
				zap.Error(res.err),
			)
		} else {
			surface.DrawImageWithOpacity(res.img, c.heatOpacity)
			drewHeat = true
		}
	}

	if !drewBase && !drewHeat {
		surface.DrawHeatSpots()
	}

	if c.generation.Load() != gen {
		return nil, ErrSuperseded
	}
	c.mu.Lock()
	c.current = surface
	c.mu.Unlock()
	return surface, nil
}

// startLoad begins an asynchronous image load. Returns nil for an empty ref.
func (c *Compositor) startLoad(ctx context.Context, ref string) <-chan loadResult {
	if ref == "" {
		return nil
	}
	ch := make(chan loadResult, 1)
	go func() {
		img, err := c.source.Load(ctx, ref)
		ch <- loadResult{img: img, err: err}
	}()
	return ch
}

// await blocks for a load result, then verifies this render is still the
// newest one before handing the result back for drawing.
func (c *Compositor) await(ctx context.Context, gen int64, ch <-chan loadResult) (loadResult, error) {
	select {
	case <-ctx.Done():
		return loadResult{}, eris.Wrap(ctx.Err(), "render: await image load")
	case res := <-ch:
		if c.generation.Load() != gen {
			return loadResult{}, ErrSuperseded
		}
		return res, nil
	}
}

package reel

import (
	"fmt"
	"image/color"
	"math"
)

// CoverRect is where a frame lands on the surface under a cover fit.
type CoverRect struct {
	X, Y          float64
	Width, Height float64
	Scale         float64
}

// CoverFit scales an asset to fill the whole surface, centred, cropping the
// overflowing axis. ok is false if either size is not positive.
func CoverFit(surfaceW, surfaceH, assetW, assetH float64) (CoverRect, bool) {
	if !(surfaceW > 0 && surfaceH > 0 && assetW > 0 && assetH > 0) {
		return CoverRect{}, false
	}
	scale := math.Max(surfaceW/assetW, surfaceH/assetH)
	w := assetW * scale
	h := assetH * scale
	return CoverRect{
		X:      (surfaceW - w) / 2,
		Y:      (surfaceH - h) / 2,
		Width:  w,
		Height: h,
		Scale:  scale,
	}, true
}

// EffectivePixelRatio caps dpr at maxRatio. A non-positive dpr counts as 1.
func EffectivePixelRatio(dpr, maxRatio float64) float64 {
	if !(dpr > 0) {
		dpr = 1
	}
	if maxRatio >= 1 {
		dpr = math.Min(dpr, maxRatio)
	}
	return dpr
}

// frameLookup is the read-only view of a FrameStore the renderer needs.
type frameLookup interface {
	Resolve(index int) (int, bool)
	Asset(index int) FrameAsset
}

// Renderer keeps a Surface matched to the device pixel grid and paints the
// nearest loaded frame into it with a cover fit.
type Renderer struct {
	surface    Surface
	frames     frameLookup
	background color.Color
	maxRatio   float64

	cssW, cssH float64
	ratio      float64

	painted int
	paints  int
}

// NewRenderer creates a renderer drawing frames from store onto surface.
func NewRenderer(surface Surface, store *FrameStore, background color.Color, maxRatio float64) *Renderer {
	return newRenderer(surface, store, background, maxRatio)
}

func newRenderer(surface Surface, frames frameLookup, background color.Color, maxRatio float64) *Renderer {
	if background == nil {
		background = color.Black
	}
	return &Renderer{
		surface:    surface,
		frames:     frames,
		background: background,
		maxRatio:   maxRatio,
		ratio:      1,
		painted:    -1,
	}
}

// Resize sets the backing buffer to round(css × min(dpr, maxRatio)) on each
// axis while the logical footprint stays cssW × cssH. The buffer is cleared
// to the background; callers repaint afterwards.
func (r *Renderer) Resize(cssW, cssH, dpr float64) error {
	if !(cssW > 0 && cssH > 0) {
		return fmt.Errorf("resize %vx%v: %w", cssW, cssH, ErrDegenerateViewport)
	}
	ratio := EffectivePixelRatio(dpr, r.maxRatio)
	w := int(math.Round(cssW * ratio))
	h := int(math.Round(cssH * ratio))
	if w < 1 || h < 1 {
		return fmt.Errorf("resize %dx%d px: %w", w, h, ErrDegenerateViewport)
	}
	r.cssW, r.cssH, r.ratio = cssW, cssH, ratio
	r.surface.Resize(w, h)
	r.surface.Fill(r.background)
	r.painted = -1
	return nil
}

// Paint draws the nearest drawable frame at or before index. When no such
// frame exists the surface is left as it was and ErrNoDrawableFrame is
// returned; neither error is fatal.
func (r *Renderer) Paint(index int) error {
	w, h := r.surface.Size()
	if w <= 0 || h <= 0 {
		return fmt.Errorf("paint %d: %w", index, ErrDegenerateViewport)
	}
	i, ok := r.frames.Resolve(index)
	if !ok {
		return fmt.Errorf("paint %d: %w", index, ErrNoDrawableFrame)
	}
	a := r.frames.Asset(i)
	fit, ok := CoverFit(float64(w), float64(h), float64(a.Width), float64(a.Height))
	if !ok {
		return fmt.Errorf("paint %d: asset %dx%d: %w", i, a.Width, a.Height, ErrDegenerateViewport)
	}

	r.surface.Fill(r.background)
	r.surface.DrawScaled(a.Image, fit.X, fit.Y, fit.Scale)
	r.painted = i
	r.paints++
	return nil
}

// Painted returns the frame index currently on the surface. ok is false if
// nothing has been painted since the last resize.
func (r *Renderer) Painted() (int, bool) {
	return r.painted, r.painted >= 0
}

// Paints returns the number of successful paints.
func (r *Renderer) Paints() int {
	return r.paints
}

// Surface returns the drawing surface.
func (r *Renderer) Surface() Surface {
	return r.surface
}

// BackingSize returns the buffer size in physical pixels.
func (r *Renderer) BackingSize() (int, int) {
	return r.surface.Size()
}

// CSSSize returns the on-screen footprint in logical pixels.
func (r *Renderer) CSSSize() (float64, float64) {
	return r.cssW, r.cssH
}

// PixelRatio returns the effective ratio used by the last Resize.
func (r *Renderer) PixelRatio() float64 {
	return r.ratio
}

package reel

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"math/rand"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

const (
	loaderFadeDuration = 1.8 // seconds
	loaderTrackWidth   = 180 // logical px

	vignetteRadiusX = 0.90 // ellipse radii as a fraction of the surface
	vignetteRadiusY = 0.85
	vignetteInner   = 0.30 // transparent up to this fraction of the radius
	vignetteAlpha   = 0.60

	letterboxEdge  = 0.08 // gradient height as a fraction of the surface
	letterboxAlpha = 0.45

	shadeDownsample   = 4 // the shade mask is built at 1/4 size and scaled up
	grainOpacity      = 0.03
	grainFadeDuration = 2.5 // seconds
	grainTileSize     = 200 // logical px
	grainSeed         = 72
)

// LoadingOverlay covers the surface with a load-percentage track until the
// ready signal, then fades out.
type LoadingOverlay struct {
	percent   int
	alpha     float64
	fade      *gween.Tween
	dismissed bool
}

// NewLoadingOverlay returns an opaque overlay at 0%.
func NewLoadingOverlay() *LoadingOverlay {
	return &LoadingOverlay{alpha: 1}
}

// SetPercent sets the displayed load percentage, clamped to [0, 100].
func (o *LoadingOverlay) SetPercent(pct int) {
	o.percent = min(max(pct, 0), 100)
}

// Percent returns the displayed load percentage.
func (o *LoadingOverlay) Percent() int {
	return o.percent
}

// Dismiss starts the fade-out. Later calls are ignored.
func (o *LoadingOverlay) Dismiss() {
	if o.dismissed {
		return
	}
	o.dismissed = true
	o.fade = gween.New(float32(o.alpha), 0, loaderFadeDuration, ease.OutExpo)
}

// Dismissed reports whether Dismiss has been called.
func (o *LoadingOverlay) Dismissed() bool {
	return o.dismissed
}

// Update advances the fade by dt seconds.
func (o *LoadingOverlay) Update(dt float32) {
	if o.fade == nil {
		return
	}
	val, done := o.fade.Update(dt)
	o.alpha = clamp01(float64(val))
	if done {
		o.fade = nil
		o.alpha = 0
	}
}

// Alpha returns the current opacity.
func (o *LoadingOverlay) Alpha() float64 {
	return o.alpha
}

// Visible reports whether the overlay still draws anything.
func (o *LoadingOverlay) Visible() bool {
	return o.alpha > 0
}

// Draw paints the overlay over dst. scale converts logical to physical
// pixels.
func (o *LoadingOverlay) Draw(dst *ebiten.Image, scale float64) {
	if !o.Visible() {
		return
	}
	b := dst.Bounds()
	w, h := float32(b.Dx()), float32(b.Dy())
	a := o.alpha

	vector.DrawFilledRect(dst, 0, 0, w, h, color.NRGBA{A: alpha8(a)}, false)

	trackW := float32(loaderTrackWidth * scale)
	trackH := float32(math.Max(scale, 1))
	x := (w - trackW) / 2
	y := h / 2
	vector.DrawFilledRect(dst, x, y, trackW, trackH, white(0.08*a), false)
	vector.DrawFilledRect(dst, x, y, trackW*float32(o.percent)/100, trackH, white(0.7*a), false)

	if !o.dismissed {
		label := fmt.Sprintf("%d %%", o.percent)
		ebitenutil.DebugPrintAt(dst, label, int(w/2)-len(label)*3, int(y+float32(12*scale)))
	}
}

// ProgressBar is the thin bar along the bottom edge whose fill tracks
// playback progress.
type ProgressBar struct {
	progress float64
}

// Set updates the fill fraction, clamped to [0, 1].
func (b *ProgressBar) Set(p float64) {
	b.progress = clamp01(p)
}

// Progress returns the fill fraction.
func (b *ProgressBar) Progress() float64 {
	return b.progress
}

// Draw paints the bar along the bottom of dst.
func (b *ProgressBar) Draw(dst *ebiten.Image, scale float64) {
	r := dst.Bounds()
	w, h := float32(r.Dx()), float32(r.Dy())
	barH := float32(math.Max(scale, 1))
	vector.DrawFilledRect(dst, 0, h-barH, w, barH, white(0.06), false)
	vector.DrawFilledRect(dst, 0, h-barH, w*float32(b.progress), barH, white(0.55), false)
}

func alpha8(a float64) uint8 {
	return uint8(math.Round(255 * clamp01(a)))
}

func white(a float64) color.NRGBA {
	return color.NRGBA{R: 255, G: 255, B: 255, A: alpha8(a)}
}

// CinematicOverlay darkens the frame with a radial vignette and top and
// bottom letterbox gradients, and lays a faint film grain over it once the
// sequence is ready.
type CinematicOverlay struct {
	Vignette  bool
	Letterbox bool
	Grain     bool

	shade          *ebiten.Image
	shadeW, shadeH int
	shadeLayers    [2]bool

	grain        *ebiten.Image
	grainAlpha   float64
	grainFade    *gween.Tween
	grainStarted bool
}

// NewCinematicOverlay returns an overlay with the given layers enabled. The
// grain stays invisible until StartGrain.
func NewCinematicOverlay(vignette, letterbox, grain bool) *CinematicOverlay {
	return &CinematicOverlay{Vignette: vignette, Letterbox: letterbox, Grain: grain}
}

// StartGrain fades the grain in to its resting opacity. Later calls are
// ignored.
func (o *CinematicOverlay) StartGrain() {
	if o.grainStarted {
		return
	}
	o.grainStarted = true
	o.grainFade = gween.New(0, grainOpacity, grainFadeDuration, ease.OutQuad)
}

// GrainAlpha returns the current grain opacity.
func (o *CinematicOverlay) GrainAlpha() float64 {
	return o.grainAlpha
}

// Update advances the grain fade by dt seconds.
func (o *CinematicOverlay) Update(dt float32) {
	if o.grainFade == nil {
		return
	}
	val, done := o.grainFade.Update(dt)
	o.grainAlpha = math.Max(0, math.Min(float64(val), grainOpacity))
	if done {
		o.grainFade = nil
		o.grainAlpha = grainOpacity
	}
}

// Draw composites the enabled layers over dst. scale is the device pixel
// ratio used to size the grain tiles.
func (o *CinematicOverlay) Draw(dst *ebiten.Image, scale float64) {
	b := dst.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= 0 || h <= 0 {
		return
	}

	if o.Vignette || o.Letterbox {
		o.ensureShade(w, h)
		var op ebiten.DrawImageOptions
		op.GeoM.Scale(float64(w)/float64(o.shade.Bounds().Dx()), float64(h)/float64(o.shade.Bounds().Dy()))
		op.Filter = ebiten.FilterLinear
		dst.DrawImage(o.shade, &op)
	}

	if o.Grain && o.grainAlpha > 0 {
		if o.grain == nil {
			o.grain = ebiten.NewImageFromImage(noiseTile(grainTileSize, grainSeed))
		}
		scale = math.Max(scale, 1)
		step := grainTileSize * scale
		var op ebiten.DrawImageOptions
		for y := 0.0; y < float64(h); y += step {
			for x := 0.0; x < float64(w); x += step {
				op.GeoM.Reset()
				op.GeoM.Scale(scale, scale)
				op.GeoM.Translate(x, y)
				op.ColorScale.Reset()
				op.ColorScale.ScaleAlpha(float32(o.grainAlpha))
				dst.DrawImage(o.grain, &op)
			}
		}
	}
}

// ensureShade rebuilds the vignette and letterbox mask when the surface
// size or the enabled layers change.
func (o *CinematicOverlay) ensureShade(w, h int) {
	layers := [2]bool{o.Vignette, o.Letterbox}
	if o.shade != nil && o.shadeW == w && o.shadeH == h && o.shadeLayers == layers {
		return
	}
	if o.shade != nil {
		o.shade.Deallocate()
	}
	mw := max(w/shadeDownsample, 1)
	mh := max(h/shadeDownsample, 1)
	o.shade = ebiten.NewImageFromImage(shadeMask(mw, mh, o.Vignette, o.Letterbox))
	o.shadeW, o.shadeH = w, h
	o.shadeLayers = layers
}

// vignetteShade returns the vignette opacity at (u, v), both in [0, 1].
func vignetteShade(u, v float64) float64 {
	d := math.Hypot((u-0.5)/vignetteRadiusX, (v-0.5)/vignetteRadiusY)
	return vignetteAlpha * clamp01((d-vignetteInner)/(1-vignetteInner))
}

// letterboxShade returns the letterbox opacity at height v in [0, 1].
func letterboxShade(v float64) float64 {
	switch {
	case v < letterboxEdge:
		return letterboxAlpha * clamp01(1-v/letterboxEdge)
	case v > 1-letterboxEdge:
		return letterboxAlpha * clamp01((v-(1-letterboxEdge))/letterboxEdge)
	}
	return 0
}

// shadeMask renders the enabled darkening layers as black with varying
// alpha, sampled at pixel centres.
func shadeMask(w, h int, vignette, letterbox bool) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		v := (float64(y) + 0.5) / float64(h)
		lb := 0.0
		if letterbox {
			lb = letterboxShade(v)
		}
		for x := 0; x < w; x++ {
			vg := 0.0
			if vignette {
				vg = vignetteShade((float64(x)+0.5)/float64(w), v)
			}
			// Two black layers stacked with source-over.
			a := 1 - (1-vg)*(1-lb)
			img.Pix[img.PixOffset(x, y)+3] = alpha8(a)
		}
	}
	return img
}

// noiseTile returns an opaque size x size tile of grey value noise.
func noiseTile(size int, seed int64) *image.NRGBA {
	rng := rand.New(rand.NewSource(seed))
	img := image.NewNRGBA(image.Rect(0, 0, size, size))
	for i := 0; i < len(img.Pix); i += 4 {
		g := uint8(rng.Intn(256))
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = g, g, g, 255
	}
	return img
}

package reel

import (
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// ScrollEvent is emitted whenever the scroll offset changes.
type ScrollEvent struct {
	ScrollY        float64
	ViewportHeight float64
	DocumentHeight float64
}

// ResizeEvent is emitted whenever the visible size or pixel ratio changes.
type ResizeEvent struct {
	// Width and Height are the visible size in logical pixels. Height is the
	// visual viewport height when one is set.
	Width, Height float64
	PixelRatio    float64
}

// keyScrollDuration is how long keyboard jumps take, in seconds.
const keyScrollDuration = 0.45

// Viewport models the scrolling window the sequence is pinned to: a layout
// viewport over a document ScrollHeightVH percent as tall, plus an optional
// smaller visual viewport (on-screen keyboard, collapsing browser chrome).
type Viewport struct {
	width, height  float64
	visualHeight   float64
	pixelRatio     float64
	scrollY        float64
	scrollHeightVH float64

	// WheelStep is the scroll distance of one wheel notch in logical pixels.
	WheelStep float64

	scrollTween *gween.Tween
	scrollEnd   float64

	onScroll handlerList[ScrollEvent]
	onResize handlerList[ResizeEvent]
}

// NewViewport creates a viewport of the given logical size and pixel ratio.
func NewViewport(width, height, pixelRatio, scrollHeightVH float64) *Viewport {
	return &Viewport{
		width:          width,
		height:         height,
		pixelRatio:     pixelRatio,
		scrollHeightVH: scrollHeightVH,
		WheelStep:      100,
	}
}

// ScrollY returns the current scroll offset.
func (v *Viewport) ScrollY() float64 {
	return v.scrollY
}

// Height returns the layout viewport height.
func (v *Viewport) Height() float64 {
	return v.height
}

// Width returns the viewport width.
func (v *Viewport) Width() float64 {
	return v.width
}

// PixelRatio returns the device pixel ratio.
func (v *Viewport) PixelRatio() float64 {
	return v.pixelRatio
}

// DocumentHeight returns the height of the scrollable document.
func (v *Viewport) DocumentHeight() float64 {
	return v.height * v.scrollHeightVH / 100
}

// MaxScroll returns the largest valid scroll offset, or 0 for a page too
// short to scroll.
func (v *Viewport) MaxScroll() float64 {
	return math.Max(v.DocumentHeight()-v.height, 0)
}

// VisibleSize returns the size the drawing surface should cover.
func (v *Viewport) VisibleSize() (float64, float64) {
	if v.visualHeight > 0 {
		return v.width, v.visualHeight
	}
	return v.width, v.height
}

// ScrollTo jumps to y, clamped to [0, MaxScroll]. Cancels any animated
// scroll.
func (v *Viewport) ScrollTo(y float64) {
	v.scrollTween = nil
	v.setScroll(y)
}

// ScrollBy scrolls by dy logical pixels.
func (v *Viewport) ScrollBy(dy float64) {
	v.ScrollTo(v.scrollY + dy)
}

// AnimateScrollTo scrolls to y over duration seconds using easeFn. The
// animation advances in Update.
func (v *Viewport) AnimateScrollTo(y float64, duration float32, easeFn ease.TweenFunc) {
	y = v.clampScroll(y)
	if duration <= 0 {
		v.ScrollTo(y)
		return
	}
	v.scrollTween = gween.New(float32(v.scrollY), float32(y), duration, easeFn)
	v.scrollEnd = y
}

// Scrolling reports whether an animated scroll is in progress.
func (v *Viewport) Scrolling() bool {
	return v.scrollTween != nil
}

// SetSize updates the layout size and pixel ratio. The scroll offset keeps
// the same fraction of the scrollable range so playback position is not
// disturbed. Resize listeners fire only when something changed.
func (v *Viewport) SetSize(width, height, pixelRatio float64) {
	if width == v.width && height == v.height && pixelRatio == v.pixelRatio {
		return
	}
	oldMax := v.MaxScroll()
	v.width, v.height, v.pixelRatio = width, height, pixelRatio
	if oldMax > 0 {
		v.scrollY = v.clampScroll(v.scrollY / oldMax * v.MaxScroll())
	} else {
		v.scrollY = v.clampScroll(v.scrollY)
	}
	v.emitResize()
}

// SetVisualHeight sets the visual viewport height, which can shrink below
// the layout height when browser chrome or a keyboard is shown. Zero clears
// it.
func (v *Viewport) SetVisualHeight(h float64) {
	if h == v.visualHeight {
		return
	}
	v.visualHeight = math.Max(h, 0)
	v.emitResize()
}

// OnScroll registers a scroll listener.
func (v *Viewport) OnScroll(fn func(ScrollEvent)) CallbackHandle {
	return v.onScroll.add(fn)
}

// OnResize registers a resize listener.
func (v *Viewport) OnResize(fn func(ResizeEvent)) CallbackHandle {
	return v.onResize.add(fn)
}

// Update advances an animated scroll by dt seconds.
func (v *Viewport) Update(dt float32) {
	if v.scrollTween == nil {
		return
	}
	val, done := v.scrollTween.Update(dt)
	y := float64(val)
	if done {
		v.scrollTween = nil
		y = v.scrollEnd
	}
	v.setScroll(y)
}

// HandleInput reads wheel and keyboard scrolling from ebiten. Must be called
// from the game's Update.
func (v *Viewport) HandleInput() {
	if _, dy := ebiten.Wheel(); dy != 0 {
		// Wheel up is positive in ebiten; scrolling down the page is positive here.
		v.ScrollBy(-dy * v.WheelStep)
	}

	page := v.height * 0.9
	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyArrowDown):
		v.AnimateScrollTo(v.scrollTarget()+v.WheelStep, keyScrollDuration, ease.OutCubic)
	case inpututil.IsKeyJustPressed(ebiten.KeyArrowUp):
		v.AnimateScrollTo(v.scrollTarget()-v.WheelStep, keyScrollDuration, ease.OutCubic)
	case inpututil.IsKeyJustPressed(ebiten.KeyPageDown), inpututil.IsKeyJustPressed(ebiten.KeySpace):
		v.AnimateScrollTo(v.scrollTarget()+page, keyScrollDuration, ease.OutCubic)
	case inpututil.IsKeyJustPressed(ebiten.KeyPageUp):
		v.AnimateScrollTo(v.scrollTarget()-page, keyScrollDuration, ease.OutCubic)
	case inpututil.IsKeyJustPressed(ebiten.KeyHome):
		v.AnimateScrollTo(0, keyScrollDuration*2, ease.InOutCubic)
	case inpututil.IsKeyJustPressed(ebiten.KeyEnd):
		v.AnimateScrollTo(v.MaxScroll(), keyScrollDuration*2, ease.InOutCubic)
	}
}

// scrollTarget is where the page is heading: the end of a running
// animation, or the current offset.
func (v *Viewport) scrollTarget() float64 {
	if v.scrollTween != nil {
		return v.scrollEnd
	}
	return v.scrollY
}

func (v *Viewport) setScroll(y float64) {
	y = v.clampScroll(y)
	if y == v.scrollY {
		return
	}
	v.scrollY = y
	v.onScroll.emit(ScrollEvent{
		ScrollY:        v.scrollY,
		ViewportHeight: v.height,
		DocumentHeight: v.DocumentHeight(),
	})
}

func (v *Viewport) clampScroll(y float64) float64 {
	if math.IsNaN(y) {
		return v.scrollY
	}
	return math.Max(0, math.Min(y, v.MaxScroll()))
}

func (v *Viewport) emitResize() {
	w, h := v.VisibleSize()
	v.onResize.emit(ResizeEvent{Width: w, Height: h, PixelRatio: v.pixelRatio})
}

package reel

import (
	"context"
	"errors"
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
)

// Player is the scroll-driven sequence player. It owns the frame store,
// viewport, scheduler and renderer, wires their events together between
// Start and Stop, and implements ebiten.Game so it can be run directly.
//
// Everything except frame decoding happens on the goroutine that calls
// Update, Draw and Layout.
type Player struct {
	cfg Config

	store     *FrameStore
	viewport  *Viewport
	mapper    InputMapper
	clock     *LoopClock
	scheduler *Scheduler
	renderer  *Renderer
	loader    *LoadingOverlay
	cinema    *CinematicOverlay
	bar       ProgressBar

	handles    []CallbackHandle
	onReady    handlerList[ReadyEvent]
	onProgress handlerList[ProgressEvent]
	onLoad     handlerList[LoadEvent]
	sink       EventSink

	progress    float64
	started     bool
	stopped     bool
	readInput   bool
	deviceScale func() float64
	surface     Surface
	blit        *ebiten.Image

	debug bool
	stats debugStats

	// ScreenshotDir is where Screenshot writes PNG files.
	ScreenshotDir   string
	screenshotQueue []string
	testRunner      *TestRunner
}

// PlayerOption customises a Player at construction.
type PlayerOption func(*Player)

var errNilSource = errors.New("nil frame source")

// WithSurface draws into s instead of a new EbitenSurface. Use a
// RasterSurface for headless rendering.
func WithSurface(s Surface) PlayerOption {
	return func(p *Player) {
		p.surface = s
	}
}

// WithViewport uses v instead of a default 640x480 viewport.
func WithViewport(v *Viewport) PlayerOption {
	return func(p *Player) {
		p.viewport = v
	}
}

// WithDeviceScale overrides how Layout reads the device pixel ratio.
func WithDeviceScale(fn func() float64) PlayerOption {
	return func(p *Player) {
		p.deviceScale = fn
	}
}

// NewPlayer validates cfg and builds a stopped Player reading frames from
// src. Call Start to begin loading.
func NewPlayer(cfg Config, src FrameSource, opts ...PlayerOption) (*Player, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if src == nil {
		return nil, fmt.Errorf("new player: %w: %w", errNilSource, ErrInvalidConfig)
	}

	p := &Player{
		cfg:           cfg,
		clock:         NewLoopClock(),
		loader:        NewLoadingOverlay(),
		cinema:        NewCinematicOverlay(cfg.ShowVignette, cfg.ShowLetterbox, cfg.ShowGrain),
		mapper:        InputMapper{TotalFrames: cfg.TotalFrames},
		deviceScale:   monitorScale,
		ScreenshotDir: "screenshots",
	}
	for _, opt := range opts {
		opt(p)
	}

	surface := p.surface
	if surface == nil {
		surface = NewEbitenSurface()
	}
	p.store = NewFrameStore(src, cfg.URIPattern, cfg.EagerFrames)
	if prep, ok := surface.(FramePreparer); ok {
		p.store.SetPreparer(prep)
	}
	p.renderer = NewRenderer(surface, p.store, cfg.Background, cfg.MaxPixelRatio)

	if p.viewport == nil {
		p.viewport = NewViewport(640, 480, 1, cfg.ScrollHeightVH)
	}
	p.viewport.WheelStep = cfg.WheelStep
	p.scheduler = NewScheduler(p.clock, cfg.TotalFrames, cfg.Smoothing, cfg.Epsilon)
	return p, nil
}

// Start issues every frame load, subscribes to viewport and store events and
// paints the first frame as soon as one is available. A Player can be
// started once.
func (p *Player) Start(ctx context.Context) error {
	if p.stopped {
		return ErrStopped
	}
	if p.started {
		return ErrAlreadyStarted
	}
	p.started = true

	p.scheduler.SetPainter(p.paint)
	p.scheduler.SetPublisher(p.publish)
	p.scheduler.SetTickObserver(p.observeTick)

	p.handles = append(p.handles,
		p.store.OnResolved(p.handleResolved),
		p.store.OnReady(p.handleReady),
		p.viewport.OnScroll(p.handleScroll),
		p.viewport.OnResize(p.handleResize),
	)

	if err := p.store.Initialize(ctx, p.cfg.TotalFrames); err != nil {
		p.Stop()
		return fmt.Errorf("start: %w", err)
	}

	p.resize()
	p.handleScroll(ScrollEvent{
		ScrollY:        p.viewport.ScrollY(),
		ViewportHeight: p.viewport.Height(),
		DocumentHeight: p.viewport.DocumentHeight(),
	})
	p.scheduler.Wake()
	return nil
}

// Stop withdraws the pending tick and removes every listener registered by
// Start. Frame loads still in flight finish but are never applied. Safe to
// call more than once.
func (p *Player) Stop() {
	if p.stopped {
		return
	}
	p.stopped = true
	p.scheduler.Stop()
	for _, h := range p.handles {
		h.Remove()
	}
	p.handles = nil
}

// Running reports whether the player has been started and not stopped.
func (p *Player) Running() bool {
	return p.started && !p.stopped
}

// --- ebiten.Game ---

// Update applies finished loads, reads input and runs at most one scheduler
// tick.
func (p *Player) Update() error {
	if !p.Running() {
		return nil
	}
	dt := float32(1.0 / float64(ebiten.TPS()))

	if p.testRunner != nil {
		p.testRunner.step(p)
	}
	p.store.Poll()
	if p.readInput {
		p.viewport.HandleInput()
	}
	p.viewport.Update(dt)
	p.clock.Advance()
	p.loader.Update(dt)
	p.cinema.Update(dt)
	p.flushScreenshots()
	return nil
}

// Draw copies the rendered frame to screen and draws the overlays.
func (p *Player) Draw(screen *ebiten.Image) {
	screen.Fill(p.cfg.Background)
	switch s := p.renderer.Surface().(type) {
	case *EbitenSurface:
		if img := s.Image(); img != nil {
			screen.DrawImage(img, nil)
		}
	case *RasterSurface:
		p.blitRaster(screen, s)
	}

	scale := p.renderer.PixelRatio()
	p.cinema.Draw(screen, scale)
	if p.cfg.ShowProgressBar {
		p.bar.Draw(screen, scale)
	}
	if p.cfg.ShowLoader {
		p.loader.Draw(screen, scale)
	}
}

// Layout implements ebiten.Game.
func (p *Player) Layout(outsideWidth, outsideHeight int) (int, int) {
	w, h := p.LayoutF(float64(outsideWidth), float64(outsideHeight))
	return int(w), int(h)
}

// LayoutF tracks the window size and returns the backing buffer size, so the
// screen is drawn at physical resolution up to MaxPixelRatio.
func (p *Player) LayoutF(outsideWidth, outsideHeight float64) (float64, float64) {
	p.viewport.SetSize(outsideWidth, outsideHeight, p.deviceScale())
	w, h := p.renderer.BackingSize()
	if w <= 0 || h <= 0 {
		return outsideWidth, outsideHeight
	}
	return float64(w), float64(h)
}

// Settle runs Update until the scheduler is idle and the viewport has
// stopped scrolling, or maxFrames is reached. Returns the frames run.
func (p *Player) Settle(maxFrames int) int {
	n := 0
	for n < maxFrames && p.Running() {
		if n > 0 && p.scheduler.Status() == SchedulerIdle && !p.viewport.Scrolling() {
			break
		}
		_ = p.Update()
		n++
	}
	return n
}

// --- Event wiring ---

func (p *Player) handleResolved(ev LoadEvent) {
	p.loader.SetPercent(ev.Percent)
	p.onLoad.emit(ev)
	if p.sink != nil {
		p.sink.EmitLoad(ev)
	}

	switch ev.State {
	case FrameErrored:
		p.debugf("frame %d: %v", ev.Index, p.store.Asset(ev.Index).Err)
		return
	case FrameLoaded:
	default:
		return
	}

	if ev.Index == 0 {
		p.resize()
	}
	// Repaint when the new frame is a closer match than what is showing.
	painted, ok := p.renderer.Painted()
	if !ok || (ev.Index > painted && ev.Index <= p.scheduler.FrameIndex()) {
		p.scheduler.Wake()
	}
}

func (p *Player) handleReady(ev ReadyEvent) {
	p.debugf("ready: %d/%d resolved, %d loaded", ev.Resolved, ev.Total, ev.Loaded)
	p.loader.Dismiss()
	p.cinema.StartGrain()
	p.onReady.emit(ev)
	if p.sink != nil {
		p.sink.EmitReady(ev)
	}
	p.scheduler.Wake()
}

func (p *Player) handleScroll(ev ScrollEvent) {
	_, target, ok := p.mapper.Map(ev.ScrollY, ev.ViewportHeight, ev.DocumentHeight)
	if !ok {
		p.debugf("scroll %.1f: %v", ev.ScrollY, ErrDegenerateViewport)
		return
	}
	p.scheduler.SetTarget(target)
	p.scheduler.Wake()
}

func (p *Player) handleResize(ResizeEvent) {
	p.resize()
	p.scheduler.Wake()
}

// resize matches the surface to the visible viewport and repaints the
// current frame. Playback state is untouched.
func (p *Player) resize() {
	w, h := p.viewport.VisibleSize()
	if err := p.renderer.Resize(w, h, p.viewport.PixelRatio()); err != nil {
		p.debugf("%v", err)
		return
	}
	_ = p.renderer.Paint(p.scheduler.FrameIndex())
}

func (p *Player) paint(index int) {
	t0 := p.debugStart()
	p.stats.paintErr = p.renderer.Paint(index)
	p.stats.paintTime = p.debugSince(t0)
}

func (p *Player) publish(progress float64) {
	t0 := p.debugStart()
	p.progress = progress
	p.bar.Set(progress)
	ev := ProgressEvent{Progress: progress, Frame: p.scheduler.FrameIndex()}
	p.onProgress.emit(ev)
	if p.sink != nil {
		p.sink.EmitProgress(ev)
	}
	p.stats.publishTime = p.debugSince(t0)
}

func (p *Player) blitRaster(screen *ebiten.Image, s *RasterSurface) {
	img := s.Image()
	w, h := img.Rect.Dx(), img.Rect.Dy()
	if w <= 0 || h <= 0 {
		return
	}
	if p.blit == nil || p.blit.Bounds().Dx() != w || p.blit.Bounds().Dy() != h {
		if p.blit != nil {
			p.blit.Deallocate()
		}
		p.blit = ebiten.NewImage(w, h)
	}
	p.blit.WritePixels(img.Pix)
	screen.DrawImage(p.blit, nil)
}

func monitorScale() float64 {
	if m := ebiten.Monitor(); m != nil {
		return m.DeviceScaleFactor()
	}
	return 1
}

// --- Accessors and collaborator hooks ---

// OnReady registers a callback fired once when enough frames have resolved
// for playback to begin.
func (p *Player) OnReady(fn func(ReadyEvent)) CallbackHandle {
	return p.onReady.add(fn)
}

// OnProgress registers a callback fired after every scheduler tick with the
// smoothed progress in [0, 1].
func (p *Player) OnProgress(fn func(ProgressEvent)) CallbackHandle {
	return p.onProgress.add(fn)
}

// OnLoadProgress registers a callback fired for every frame resolution.
func (p *Player) OnLoadProgress(fn func(LoadEvent)) CallbackHandle {
	return p.onLoad.add(fn)
}

// SetEventSink sets the optional ECS bridge.
func (p *Player) SetEventSink(sink EventSink) {
	p.sink = sink
}

// Progress returns the last published playback progress.
func (p *Player) Progress() float64 {
	return p.progress
}

// Ready reports whether the eager threshold has been reached.
func (p *Player) Ready() bool {
	return p.store.Ready()
}

// LoadPercent returns the load percentage shown by the loader.
func (p *Player) LoadPercent() int {
	return p.store.LoadPercent()
}

// Config returns the player's configuration.
func (p *Player) Config() Config {
	return p.cfg
}

// Store returns the frame store.
func (p *Player) Store() *FrameStore { return p.store }

// Viewport returns the viewport that drives playback.
func (p *Player) Viewport() *Viewport { return p.viewport }

// Scheduler returns the playback scheduler.
func (p *Player) Scheduler() *Scheduler { return p.scheduler }

// Renderer returns the surface renderer.
func (p *Player) Renderer() *Renderer { return p.renderer }

// Clock returns the frame clock pumped by Update.
func (p *Player) Clock() *LoopClock { return p.clock }

// Loader returns the loading overlay.
func (p *Player) Loader() *LoadingOverlay { return p.loader }

// Cinematic returns the vignette, letterbox and grain overlay.
func (p *Player) Cinematic() *CinematicOverlay { return p.cinema }

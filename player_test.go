package reel

import (
	"context"
	"errors"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func testConfig(total, eager int) Config {
	cfg := DefaultConfig()
	cfg.TotalFrames = total
	cfg.EagerFrames = eager
	return cfg
}

// frameSource returns a MapSource with total solid frames, skipping missing.
func frameSource(t *testing.T, total int, missing ...int) MapSource {
	t.Helper()
	skip := make(map[int]bool, len(missing))
	for _, i := range missing {
		skip[i] = true
	}
	src := MapSource{}
	data := encodePNG(t, 16, 9, color.White)
	for i := 0; i < total; i++ {
		if !skip[i] {
			src[FrameURI(DefaultURIPattern, i)] = data
		}
	}
	return src
}

func newTestPlayer(t *testing.T, cfg Config, src FrameSource) *Player {
	t.Helper()
	p, err := NewPlayer(cfg, src,
		WithSurface(NewRasterSurface()),
		WithViewport(NewViewport(800, 1000, 1, cfg.ScrollHeightVH)),
		WithDeviceScale(func() float64 { return 1 }),
	)
	if err != nil {
		t.Fatalf("NewPlayer: %v", err)
	}
	return p
}

// startLoaded starts p and applies every frame load.
func startLoaded(t *testing.T, p *Player) {
	t.Helper()
	if err := p.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(p.Stop)
	_ = p.Store().Wait()
	if err := p.Update(); err != nil {
		t.Fatal(err)
	}
}

func TestNewPlayer_Errors(t *testing.T) {
	if _, err := NewPlayer(testConfig(10, 3), nil); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("nil source: err = %v, want ErrInvalidConfig", err)
	}
	if _, err := NewPlayer(testConfig(10, 11), MapSource{}); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("bad eager: err = %v, want ErrInvalidConfig", err)
	}
}

func TestPlayer_StartStopLifecycle(t *testing.T) {
	p := newTestPlayer(t, testConfig(4, 2), frameSource(t, 4))
	if p.Running() {
		t.Fatal("player running before Start")
	}
	if err := p.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	if !p.Running() {
		t.Error("player should be running")
	}
	if err := p.Start(context.Background()); !errors.Is(err, ErrAlreadyStarted) {
		t.Errorf("second Start err = %v, want ErrAlreadyStarted", err)
	}

	p.Stop()
	p.Stop()
	if p.Running() {
		t.Error("player still running after Stop")
	}
	if err := p.Start(context.Background()); !errors.Is(err, ErrStopped) {
		t.Errorf("Start after Stop err = %v, want ErrStopped", err)
	}
	_ = p.Store().Wait()
}

func TestPlayer_LoadsAndPaintsFirstFrame(t *testing.T) {
	p := newTestPlayer(t, testConfig(10, 3), frameSource(t, 10))
	readies := 0
	p.OnReady(func(ReadyEvent) { readies++ })
	var loads []LoadEvent
	p.OnLoadProgress(func(e LoadEvent) { loads = append(loads, e) })

	startLoaded(t, p)

	if readies != 1 {
		t.Errorf("ready fired %d times, want 1", readies)
	}
	if len(loads) != 10 || loads[len(loads)-1].Percent != 100 {
		t.Errorf("load events = %d, last = %+v", len(loads), loads[len(loads)-1])
	}
	if !p.Ready() || p.LoadPercent() != 100 {
		t.Errorf("Ready = %v, LoadPercent = %d", p.Ready(), p.LoadPercent())
	}
	if i, ok := p.Renderer().Painted(); !ok || i != 0 {
		t.Errorf("Painted = %d, %v; want frame 0", i, ok)
	}
	if !p.Loader().Dismissed() {
		t.Error("loader should be dismissed once ready")
	}
	if w, h := p.Renderer().BackingSize(); w != 800 || h != 1000 {
		t.Errorf("backing = %dx%d, want 800x1000", w, h)
	}
	if got := p.Renderer().Surface().(*RasterSurface).Image().RGBAAt(400, 500); got != (color.RGBA{255, 255, 255, 255}) {
		t.Errorf("center pixel = %v, want white frame", got)
	}
}

func TestPlayer_ScrollDrivesPlayback(t *testing.T) {
	p := newTestPlayer(t, testConfig(10, 3), frameSource(t, 10))
	var last ProgressEvent
	published := 0
	p.OnProgress(func(e ProgressEvent) { last = e; published++ })
	startLoaded(t, p)
	p.Settle(100)

	v := p.Viewport()
	v.ScrollTo(v.MaxScroll())
	if p.Scheduler().State().TargetFrame != 9 {
		t.Fatalf("target = %v, want 9", p.Scheduler().State().TargetFrame)
	}
	if p.Scheduler().Status() != SchedulerRunning {
		t.Fatal("scroll should wake the scheduler")
	}

	n := p.Settle(maxSettleFrames)
	if p.Scheduler().Status() != SchedulerIdle {
		t.Fatalf("scheduler still running after %d frames", n)
	}
	if last.Progress != 1 || last.Frame != 9 || p.Progress() != 1 {
		t.Errorf("last progress = %+v, Progress() = %v", last, p.Progress())
	}
	if i, _ := p.Renderer().Painted(); i != 9 {
		t.Errorf("painted = %d, want 9", i)
	}

	before := published
	for i := 0; i < 10; i++ {
		_ = p.Update()
	}
	if published != before {
		t.Errorf("published %d times while idle", published-before)
	}
}

func TestPlayer_MissingFramesFallBack(t *testing.T) {
	p := newTestPlayer(t, testConfig(10, 3), frameSource(t, 10, 7, 8, 9))
	startLoaded(t, p)

	v := p.Viewport()
	v.ScrollTo(v.MaxScroll())
	p.Settle(maxSettleFrames)

	if i, _ := p.Renderer().Painted(); i != 6 {
		t.Errorf("painted = %d, want fallback to 6", i)
	}
	if p.Store().Progress().Errored != 3 {
		t.Errorf("errored = %d, want 3", p.Store().Progress().Errored)
	}
}

func TestPlayer_ResizeMidPlayback(t *testing.T) {
	p := newTestPlayer(t, testConfig(10, 3), frameSource(t, 10))
	startLoaded(t, p)

	v := p.Viewport()
	v.ScrollTo(v.MaxScroll())
	for i := 0; i < 5; i++ {
		_ = p.Update()
	}
	state := p.Scheduler().State()
	frac := v.ScrollY() / v.MaxScroll()

	v.SetSize(400, 500, 2)

	if p.Scheduler().State() != state {
		t.Errorf("resize changed playback state: %+v -> %+v", state, p.Scheduler().State())
	}
	if !approxEqual(v.ScrollY()/v.MaxScroll(), frac, 1e-9) {
		t.Errorf("scroll fraction changed to %v", v.ScrollY()/v.MaxScroll())
	}
	if w, h := p.Renderer().BackingSize(); w != 800 || h != 1000 {
		t.Errorf("backing = %dx%d, want 800x1000", w, h)
	}
	if _, ok := p.Renderer().Painted(); !ok {
		t.Error("resize should repaint the current frame")
	}

	p.Settle(maxSettleFrames)
	if p.Scheduler().State().CurrentFrame != 9 {
		t.Errorf("current = %v, want 9", p.Scheduler().State().CurrentFrame)
	}
}

func TestPlayer_LateFrameWakesScheduler(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	p := newTestPlayer(t, testConfig(10, 3), blockingSource{})
	if err := p.Start(ctx); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		p.Stop()
		cancel()
		_ = p.Store().Wait()
	})

	v := p.Viewport()
	v.ScrollTo(v.MaxScroll())
	p.Settle(maxSettleFrames)
	if p.Scheduler().Status() != SchedulerIdle {
		t.Fatal("scheduler should settle without frames")
	}
	if p.Renderer().Paints() != 0 {
		t.Errorf("paints = %d with nothing loaded", p.Renderer().Paints())
	}

	p.Store().apply(resolution{index: 5, img: image.NewRGBA(image.Rect(0, 0, 16, 9))})
	if p.Scheduler().Status() != SchedulerRunning {
		t.Fatal("a loaded frame at or before the current index should wake the scheduler")
	}
	p.Clock().Advance()
	if i, _ := p.Renderer().Painted(); i != 5 {
		t.Errorf("painted = %d, want 5", i)
	}

	p.Store().apply(resolution{index: 3, img: image.NewRGBA(image.Rect(0, 0, 16, 9))})
	if p.Scheduler().Status() != SchedulerIdle {
		t.Error("a frame behind the painted one should not wake the scheduler")
	}
}

func TestPlayer_StopRemovesListeners(t *testing.T) {
	p := newTestPlayer(t, testConfig(10, 3), frameSource(t, 10))
	startLoaded(t, p)
	p.Stop()

	if n := p.Viewport().onScroll.len(); n != 0 {
		t.Errorf("scroll listeners = %d after Stop", n)
	}
	if n := p.Viewport().onResize.len(); n != 0 {
		t.Errorf("resize listeners = %d after Stop", n)
	}
	if n := p.Store().onResolved.len(); n != 0 {
		t.Errorf("load listeners = %d after Stop", n)
	}

	target := p.Scheduler().State().TargetFrame
	v := p.Viewport()
	v.ScrollTo(v.MaxScroll())
	if p.Scheduler().State().TargetFrame != target {
		t.Error("scroll after Stop changed the target")
	}
	if p.Clock().Pending() != 0 {
		t.Errorf("pending frames = %d after Stop", p.Clock().Pending())
	}
}

// recordingSink collects every event it is handed.
type recordingSink struct {
	ready    []ReadyEvent
	loads    []LoadEvent
	progress []ProgressEvent
}

func (s *recordingSink) EmitReady(e ReadyEvent) { s.ready = append(s.ready, e) }
func (s *recordingSink) EmitLoad(e LoadEvent) { s.loads = append(s.loads, e) }
func (s *recordingSink) EmitProgress(e ProgressEvent) { s.progress = append(s.progress, e) }

func TestPlayer_EventSink(t *testing.T) {
	p := newTestPlayer(t, testConfig(6, 2), frameSource(t, 6))
	sink := &recordingSink{}
	p.SetEventSink(sink)
	startLoaded(t, p)
	p.Settle(100)

	if len(sink.ready) != 1 {
		t.Errorf("sink ready = %d, want 1", len(sink.ready))
	}
	if len(sink.loads) != 6 {
		t.Errorf("sink loads = %d, want 6", len(sink.loads))
	}
	if len(sink.progress) == 0 {
		t.Error("sink received no progress")
	}
}

func TestPlayer_LoaderFades(t *testing.T) {
	p := newTestPlayer(t, testConfig(4, 2), frameSource(t, 4))
	startLoaded(t, p)
	for i := 0; i < 300 && p.Loader().Visible(); i++ {
		_ = p.Update()
	}
	if p.Loader().Visible() {
		t.Errorf("loader alpha = %v, want faded out", p.Loader().Alpha())
	}
}

func TestPlayer_ScreenshotWritesPNG(t *testing.T) {
	p := newTestPlayer(t, testConfig(4, 2), frameSource(t, 4))
	p.ScreenshotDir = t.TempDir()
	startLoaded(t, p)

	p.Screenshot("first frame")
	_ = p.Update()

	entries, err := os.ReadDir(p.ScreenshotDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("files = %d, want 1", len(entries))
	}
	name := entries[0].Name()
	if !strings.HasSuffix(name, "_first_frame_f001.png") {
		t.Errorf("file name = %q", name)
	}
	if _, err := os.Stat(filepath.Join(p.ScreenshotDir, name)); err != nil {
		t.Error(err)
	}
	if len(p.screenshotQueue) != 0 {
		t.Errorf("queue len = %d after flush", len(p.screenshotQueue))
	}
}

func TestPlayer_VisualHeightResizes(t *testing.T) {
	p := newTestPlayer(t, testConfig(10, 3), frameSource(t, 10))
	startLoaded(t, p)

	v := p.Viewport()
	v.ScrollTo(v.MaxScroll() / 2)
	for i := 0; i < 5; i++ {
		_ = p.Update()
	}
	state := p.Scheduler().State()
	scroll := v.ScrollY()
	paints := p.Renderer().Paints()

	// Mobile browser chrome slides in and shrinks the visible area.
	v.SetVisualHeight(700)

	if w, h := p.Renderer().BackingSize(); w != 800 || h != 700 {
		t.Errorf("backing = %dx%d, want 800x700", w, h)
	}
	if w, h := p.Renderer().CSSSize(); w != 800 || h != 700 {
		t.Errorf("css = %vx%v, want 800x700", w, h)
	}
	if p.Renderer().Paints() <= paints {
		t.Error("visual resize should repaint")
	}
	if _, ok := p.Renderer().Painted(); !ok {
		t.Error("nothing painted after visual resize")
	}
	if p.Scheduler().State() != state {
		t.Errorf("playback state changed: %+v -> %+v", state, p.Scheduler().State())
	}
	if v.ScrollY() != scroll {
		t.Errorf("scroll moved from %v to %v", scroll, v.ScrollY())
	}
}

func TestPlayer_PixelRatioChangeResizes(t *testing.T) {
	p := newTestPlayer(t, testConfig(10, 3), frameSource(t, 10))
	startLoaded(t, p)

	v := p.Viewport()
	v.ScrollTo(v.MaxScroll() / 2)
	for i := 0; i < 5; i++ {
		_ = p.Update()
	}
	state := p.Scheduler().State()
	scroll := v.ScrollY()
	paints := p.Renderer().Paints()

	// Window dragged to a denser display; the ratio is capped at 2.
	v.SetSize(800, 1000, 3)

	if w, h := p.Renderer().BackingSize(); w != 1600 || h != 2000 {
		t.Errorf("backing = %dx%d, want 1600x2000", w, h)
	}
	if p.Renderer().PixelRatio() != 2 {
		t.Errorf("ratio = %v, want 2", p.Renderer().PixelRatio())
	}
	if p.Renderer().Paints() <= paints {
		t.Error("pixel ratio change should repaint")
	}
	if p.Scheduler().State() != state {
		t.Errorf("playback state changed: %+v -> %+v", state, p.Scheduler().State())
	}
	if v.ScrollY() != scroll {
		t.Errorf("scroll moved from %v to %v", scroll, v.ScrollY())
	}

	v.SetSize(800, 1000, 1.5)
	if w, h := p.Renderer().BackingSize(); w != 1200 || h != 1500 {
		t.Errorf("backing = %dx%d, want 1200x1500", w, h)
	}
}

func TestPlayer_ReadyStartsGrain(t *testing.T) {
	p := newTestPlayer(t, testConfig(4, 2), frameSource(t, 4))
	if p.Cinematic().GrainAlpha() != 0 {
		t.Fatal("grain visible before load")
	}
	startLoaded(t, p)
	for i := 0; i < 200; i++ {
		_ = p.Update()
	}
	if got := p.Cinematic().GrainAlpha(); got != 0.03 {
		t.Errorf("grain alpha = %v, want 0.03 after the fade", got)
	}
}

func TestPlayer_CinematicToggles(t *testing.T) {
	cfg := testConfig(4, 2)
	cfg.ShowVignette = false
	cfg.ShowGrain = false
	p := newTestPlayer(t, cfg, MapSource{})
	c := p.Cinematic()
	if c.Vignette || !c.Letterbox || c.Grain {
		t.Errorf("layers = vignette %v letterbox %v grain %v", c.Vignette, c.Letterbox, c.Grain)
	}
}

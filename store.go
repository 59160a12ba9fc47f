package reel

import (
	"context"
	"errors"
	"fmt"
	"image"
	"math"

	"golang.org/x/sync/errgroup"
)

// LoadProgress aggregates how many frames have resolved. Resolved never
// decreases and ReadySignaled flips to true at most once.
type LoadProgress struct {
	Total         int
	Resolved      int
	Loaded        int
	Errored       int
	ReadySignaled bool
}

// Percent returns resolved/total*100 rounded to the nearest integer.
func (p LoadProgress) Percent() int {
	if p.Total <= 0 {
		return 0
	}
	return int(math.Round(float64(p.Resolved) / float64(p.Total) * 100))
}

// Complete reports whether every frame has resolved.
func (p LoadProgress) Complete() bool {
	return p.Total > 0 && p.Resolved == p.Total
}

// resolution is the outcome of one frame load, handed from a loader
// goroutine to the playback loop.
type resolution struct {
	index int
	img   image.Image
	err   error
}

// FramePreparer converts a freshly decoded frame into the form a Surface
// draws fastest, e.g. a GPU texture. It runs on the playback loop.
type FramePreparer interface {
	PrepareFrame(img image.Image) image.Image
}

// FrameStore owns the frame sequence and its loading lifecycle.
//
// Loads run concurrently, one goroutine per frame, but their results are
// only applied by Poll. Call Poll from the same loop that paints so the
// asset table is never mutated while the renderer reads it.
type FrameStore struct {
	source   FrameSource
	pattern  string
	eager    int
	preparer FramePreparer

	assets   []FrameAsset
	progress LoadProgress
	results  chan resolution
	group    errgroup.Group

	onReady    handlerList[ReadyEvent]
	onResolved handlerList[LoadEvent]
}

// NewFrameStore creates a store that loads frames named by pattern from src
// and signals readiness once eager frames have resolved.
func NewFrameStore(src FrameSource, pattern string, eager int) *FrameStore {
	if pattern == "" {
		pattern = DefaultURIPattern
	}
	return &FrameStore{
		source:  src,
		pattern: pattern,
		eager:   eager,
	}
}

// SetPreparer installs a hook applied to every decoded frame before it
// becomes drawable. Must be called before Initialize.
func (s *FrameStore) SetPreparer(p FramePreparer) {
	s.preparer = p
}

// Initialize allocates total pending frames and issues every load at once.
// There is no throttling and no retry; a failed load marks that frame
// FrameErrored. Initialize may only be called once.
func (s *FrameStore) Initialize(ctx context.Context, total int) error {
	if s.assets != nil {
		return errors.New("frame store: already initialized")
	}
	if total < 1 {
		return fmt.Errorf("frame store: total %d: %w", total, ErrInvalidConfig)
	}
	if s.source == nil {
		return fmt.Errorf("frame store: nil source: %w", ErrInvalidConfig)
	}
	if s.eager < 1 || s.eager > total {
		s.eager = min(max(s.eager, 1), total)
	}

	s.assets = make([]FrameAsset, total)
	s.progress = LoadProgress{Total: total}
	// Buffered for every frame so loaders never block on a stalled loop.
	s.results = make(chan resolution, total)

	for i := range s.assets {
		s.assets[i] = FrameAsset{Index: i, URI: FrameURI(s.pattern, i)}
	}
	for i := range s.assets {
		uri := s.assets[i].URI
		s.group.Go(func() error {
			img, err := decodeFrame(ctx, s.source, uri)
			s.results <- resolution{index: i, img: img, err: err}
			if err != nil {
				return &LoadError{Index: i, URI: uri, Err: err}
			}
			return nil
		})
	}
	return nil
}

// Wait blocks until every load goroutine has finished and returns the first
// load failure, if any. Results still have to be applied with Poll.
func (s *FrameStore) Wait() error {
	return s.group.Wait()
}

// Poll applies every resolution that has arrived since the last call and
// fires the matching callbacks. It never blocks. Returns the number applied.
func (s *FrameStore) Poll() int {
	n := 0
	for {
		select {
		case r := <-s.results:
			if s.apply(r) {
				n++
			}
		default:
			return n
		}
	}
}

// apply records one resolution. A frame that already left FramePending is
// left untouched.
func (s *FrameStore) apply(r resolution) bool {
	if r.index < 0 || r.index >= len(s.assets) {
		return false
	}
	a := &s.assets[r.index]
	if a.State != FramePending {
		return false
	}

	if r.err == nil && r.img != nil {
		b := r.img.Bounds()
		if b.Dx() <= 0 || b.Dy() <= 0 {
			r.err = fmt.Errorf("empty image %dx%d", b.Dx(), b.Dy())
		}
	} else if r.err == nil {
		r.err = errors.New("no image")
	}

	if r.err != nil {
		a.State = FrameErrored
		a.Err = &LoadError{Index: a.Index, URI: a.URI, Err: r.err}
		s.progress.Errored++
	} else {
		img := r.img
		if s.preparer != nil {
			img = s.preparer.PrepareFrame(img)
		}
		b := img.Bounds()
		a.State = FrameLoaded
		a.Image = img
		a.Width, a.Height = b.Dx(), b.Dy()
		s.progress.Loaded++
	}
	s.progress.Resolved++

	s.onResolved.emit(LoadEvent{
		Index:    a.Index,
		State:    a.State,
		Resolved: s.progress.Resolved,
		Total:    s.progress.Total,
		Percent:  s.progress.Percent(),
	})

	if !s.progress.ReadySignaled && s.progress.Resolved >= s.eager {
		s.progress.ReadySignaled = true
		s.onReady.emit(ReadyEvent{
			Resolved: s.progress.Resolved,
			Loaded:   s.progress.Loaded,
			Total:    s.progress.Total,
		})
	}
	return true
}

// Resolve returns the nearest drawable frame at or before index. It never
// returns a frame ahead of index. ok is false when nothing at or before
// index has loaded yet.
func (s *FrameStore) Resolve(index int) (int, bool) {
	if len(s.assets) == 0 || index < 0 {
		return 0, false
	}
	if index >= len(s.assets) {
		index = len(s.assets) - 1
	}
	for i := index; i >= 0; i-- {
		if s.assets[i].Drawable() {
			return i, true
		}
	}
	return 0, false
}

// Asset returns a copy of the frame at index. The zero FrameAsset is
// returned for an index out of range.
func (s *FrameStore) Asset(index int) FrameAsset {
	if index < 0 || index >= len(s.assets) {
		return FrameAsset{}
	}
	return s.assets[index]
}

// Total returns the sequence length, or 0 before Initialize.
func (s *FrameStore) Total() int {
	return len(s.assets)
}

// EagerThreshold returns the resolved count that triggers readiness.
func (s *FrameStore) EagerThreshold() int {
	return s.eager
}

// Progress returns the current load counters.
func (s *FrameStore) Progress() LoadProgress {
	return s.progress
}

// LoadPercent returns resolved/total*100 as an integer.
func (s *FrameStore) LoadPercent() int {
	return s.progress.Percent()
}

// Ready reports whether the eager threshold has been reached.
func (s *FrameStore) Ready() bool {
	return s.progress.ReadySignaled
}

// OnReady registers a callback fired once when the eager threshold is first
// reached. Registering after the fact does not replay the event.
func (s *FrameStore) OnReady(fn func(ReadyEvent)) CallbackHandle {
	return s.onReady.add(fn)
}

// OnResolved registers a callback fired for every frame resolution.
func (s *FrameStore) OnResolved(fn func(LoadEvent)) CallbackHandle {
	return s.onResolved.add(fn)
}

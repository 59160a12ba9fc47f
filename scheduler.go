package reel

import "math"

// SchedulerState is the render loop's lifecycle state.
type SchedulerState uint8

const (
	SchedulerIdle    SchedulerState = iota // no tick scheduled
	SchedulerRunning                       // a tick is scheduled
)

// String returns "idle" or "running".
func (s SchedulerState) String() string {
	if s == SchedulerRunning {
		return "running"
	}
	return "idle"
}

// PlaybackState is the animation's temporal position. Both values stay in
// [0, total-1].
type PlaybackState struct {
	CurrentFrame float64
	TargetFrame  float64
}

// TickInfo describes one completed tick. Passed to the tick observer.
type TickInfo struct {
	PlaybackState
	// Frame is the index handed to the painter.
	Frame int
	// Progress is the value handed to the publisher.
	Progress float64
	// Converged is true for the final tick before the loop idles.
	Converged bool
}

// Scheduler smooths the current frame toward the target and drives repaints.
// It runs only while there is motion: every tick either schedules the next
// one or, once within epsilon of the target, snaps, paints once more and
// goes idle.
//
// PlaybackState is only written by SetTarget and tick, both of which must be
// called from the loop that pumps the FrameClock.
type Scheduler struct {
	clock   FrameClock
	total   int
	alpha   float64
	epsilon float64

	state   PlaybackState
	status  SchedulerState
	request FrameRequest
	stopped bool
	ticks   int

	paint   func(index int)
	publish func(progress float64)
	observe func(TickInfo)
}

// NewScheduler creates an idle scheduler for a sequence of total frames.
// alpha is the per-tick smoothing factor and epsilon the snap distance.
func NewScheduler(clock FrameClock, total int, alpha, epsilon float64) *Scheduler {
	return &Scheduler{
		clock:   clock,
		total:   max(total, 1),
		alpha:   alpha,
		epsilon: epsilon,
	}
}

// SetPainter sets the function asked to paint a frame index each tick.
func (s *Scheduler) SetPainter(fn func(index int)) {
	s.paint = fn
}

// SetPublisher sets the function that receives progress after each paint.
func (s *Scheduler) SetPublisher(fn func(progress float64)) {
	s.publish = fn
}

// SetTickObserver sets a function called at the end of every tick.
func (s *Scheduler) SetTickObserver(fn func(TickInfo)) {
	s.observe = fn
}

// SetTarget sets the frame to move toward, clamped to the sequence. It does
// not wake the loop.
func (s *Scheduler) SetTarget(frame float64) {
	s.state.TargetFrame = s.clampFrame(frame)
}

// Wake schedules a tick if the scheduler is idle. Waking a running or
// stopped scheduler is a no-op.
func (s *Scheduler) Wake() {
	if s.stopped || s.status == SchedulerRunning {
		return
	}
	s.status = SchedulerRunning
	s.request = s.clock.RequestFrame(s.tick)
}

// Stop withdraws any pending tick and makes every later Wake a no-op.
func (s *Scheduler) Stop() {
	s.stopped = true
	s.clock.CancelFrame(s.request)
	s.request = 0
	s.status = SchedulerIdle
}

// State returns the current and target frame.
func (s *Scheduler) State() PlaybackState {
	return s.state
}

// Status reports whether a tick is scheduled.
func (s *Scheduler) Status() SchedulerState {
	return s.status
}

// Ticks returns how many ticks have run.
func (s *Scheduler) Ticks() int {
	return s.ticks
}

// FrameIndex returns the integer frame nearest the current position.
func (s *Scheduler) FrameIndex() int {
	return s.frameIndex(s.state.CurrentFrame)
}

// Progress returns the current position as a fraction of the sequence.
func (s *Scheduler) Progress() float64 {
	if s.total <= 1 {
		return 0
	}
	return clamp01(s.state.CurrentFrame / float64(s.total-1))
}

// tick runs one smoothing step: smooth, paint, publish, then either
// reschedule or idle.
func (s *Scheduler) tick() {
	s.request = 0
	if s.stopped {
		return
	}
	s.ticks++

	diff := s.state.TargetFrame - s.state.CurrentFrame
	converged := math.Abs(diff) < s.epsilon
	if converged {
		s.state.CurrentFrame = s.state.TargetFrame
	} else {
		s.state.CurrentFrame += diff * s.alpha
	}

	idx := s.FrameIndex()
	if s.paint != nil {
		s.paint(idx)
	}
	progress := s.Progress()
	if s.publish != nil {
		s.publish(progress)
	}

	if s.stopped {
		// A callback stopped us mid-tick.
		return
	}
	if converged {
		s.status = SchedulerIdle
	} else {
		s.request = s.clock.RequestFrame(s.tick)
	}

	if s.observe != nil {
		s.observe(TickInfo{
			PlaybackState: s.state,
			Frame:         idx,
			Progress:      progress,
			Converged:     converged,
		})
	}
}

func (s *Scheduler) frameIndex(f float64) int {
	return min(max(int(math.Round(f)), 0), s.total-1)
}

func (s *Scheduler) clampFrame(f float64) float64 {
	if math.IsNaN(f) {
		return s.state.TargetFrame
	}
	return math.Max(0, math.Min(f, float64(s.total-1)))
}

package reel

// FrameRequest identifies a callback scheduled on a FrameClock. The zero
// value means "nothing scheduled".
type FrameRequest uint64

// FrameClock schedules single-shot callbacks for the next display frame,
// the way a browser's animation-frame queue does. A callback that wants to
// keep animating requests the following frame itself.
type FrameClock interface {
	RequestFrame(fn func()) FrameRequest
	CancelFrame(id FrameRequest)
}

type pendingFrame struct {
	id FrameRequest
	fn func()
}

// LoopClock is a FrameClock pumped by a game loop: callbacks requested
// before Advance run during it, callbacks requested while Advance is
// running wait for the next call. Player drives it from ebiten's Update;
// tests call Advance directly.
type LoopClock struct {
	pending []pendingFrame
	running []pendingFrame // batch being run by Advance
	spare   []pendingFrame
	nextID  FrameRequest
	frame   uint64
}

// NewLoopClock returns an empty clock.
func NewLoopClock() *LoopClock {
	return &LoopClock{}
}

// RequestFrame implements FrameClock.
func (c *LoopClock) RequestFrame(fn func()) FrameRequest {
	c.nextID++
	c.pending = append(c.pending, pendingFrame{id: c.nextID, fn: fn})
	return c.nextID
}

// CancelFrame implements FrameClock. Unknown or already-run ids are ignored.
// A callback cancelled by an earlier callback of the same Advance is skipped.
func (c *LoopClock) CancelFrame(id FrameRequest) {
	if id == 0 {
		return
	}
	for i := range c.pending {
		if c.pending[i].id == id {
			copy(c.pending[i:], c.pending[i+1:])
			c.pending[len(c.pending)-1] = pendingFrame{}
			c.pending = c.pending[:len(c.pending)-1]
			return
		}
	}
	for i := range c.running {
		if c.running[i].id == id {
			c.running[i].fn = nil
			return
		}
	}
}

// Advance runs one frame's worth of callbacks and returns how many ran.
func (c *LoopClock) Advance() int {
	c.frame++
	if len(c.pending) == 0 {
		return 0
	}
	// Swap buffers so requests made by the callbacks land in a fresh queue.
	run := c.pending
	c.pending = c.spare[:0]
	c.running = run
	n := 0
	for i := range run {
		fn := run[i].fn
		run[i] = pendingFrame{}
		if fn == nil {
			continue
		}
		fn()
		n++
	}
	c.running = nil
	c.spare = run[:0]
	return n
}

// Pending returns the number of callbacks waiting for the next Advance.
func (c *LoopClock) Pending() int {
	return len(c.pending)
}

// Frame returns how many times Advance has been called.
func (c *LoopClock) Frame() uint64 {
	return c.frame
}

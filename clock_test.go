package reel

import "testing"

func TestLoopClock_Advance(t *testing.T) {
	c := NewLoopClock()
	var order []int
	c.RequestFrame(func() { order = append(order, 1) })
	c.RequestFrame(func() { order = append(order, 2) })

	if c.Pending() != 2 {
		t.Fatalf("Pending = %d, want 2", c.Pending())
	}
	if n := c.Advance(); n != 2 {
		t.Errorf("Advance ran %d, want 2", n)
	}
	if len(order) != 2 || order[0] != 1 || order[1] != 2 {
		t.Errorf("order = %v, want [1 2]", order)
	}
	if c.Advance() != 0 {
		t.Error("callbacks must run once")
	}
	if c.Frame() != 2 {
		t.Errorf("Frame = %d, want 2", c.Frame())
	}
}

func TestLoopClock_RequestDuringAdvanceRunsNextFrame(t *testing.T) {
	c := NewLoopClock()
	runs := 0
	var step func()
	step = func() {
		runs++
		if runs < 3 {
			c.RequestFrame(step)
		}
	}
	c.RequestFrame(step)

	for i := 1; i <= 3; i++ {
		if n := c.Advance(); n != 1 {
			t.Fatalf("advance %d ran %d callbacks, want 1", i, n)
		}
		if runs != i {
			t.Fatalf("after advance %d runs = %d", i, runs)
		}
	}
	if c.Pending() != 0 {
		t.Errorf("Pending = %d, want 0", c.Pending())
	}
}

func TestLoopClock_Cancel(t *testing.T) {
	c := NewLoopClock()
	ran := false
	id := c.RequestFrame(func() { ran = true })
	c.CancelFrame(id)
	c.CancelFrame(0)
	c.CancelFrame(id)
	c.Advance()
	if ran {
		t.Error("cancelled callback ran")
	}
}

func TestLoopClock_CancelSiblingInSameAdvance(t *testing.T) {
	c := NewLoopClock()
	var second FrameRequest
	ran := false
	c.RequestFrame(func() { c.CancelFrame(second) })
	second = c.RequestFrame(func() { ran = true })

	if n := c.Advance(); n != 1 {
		t.Errorf("Advance ran %d callbacks, want 1", n)
	}
	if ran {
		t.Error("callback cancelled earlier in the same frame still ran")
	}
	if c.Advance() != 0 {
		t.Error("cancelled callback should not carry over")
	}
}

func TestLoopClock_ImplementsFrameClock(t *testing.T) {
	var _ FrameClock = NewLoopClock()
}

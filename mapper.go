package reel

import "math"

// minScrollRange guards the progress division.
const minScrollRange = 1e-6

// Progress maps a scroll offset to [0, 1]. ok is false when the scrollable
// range (documentHeight - viewportHeight) is not positive; callers must then
// leave their state alone.
func Progress(scrollY, viewportHeight, documentHeight float64) (p float64, ok bool) {
	scrollable := documentHeight - viewportHeight
	if !(scrollable > 0) || math.IsNaN(scrollY) {
		return 0, false
	}
	return clamp01(scrollY / math.Max(scrollable, minScrollRange)), true
}

// TargetFrame maps progress to a continuous frame position in
// [0, total-1].
func TargetFrame(p float64, total int) float64 {
	if total <= 1 {
		return 0
	}
	return clamp01(p) * float64(total-1)
}

// InputMapper turns raw scroll offsets into target frames for a sequence of
// fixed length.
type InputMapper struct {
	TotalFrames int
}

// Map returns the progress and target frame for a scroll offset. ok is
// false for a degenerate viewport.
func (m InputMapper) Map(scrollY, viewportHeight, documentHeight float64) (p, target float64, ok bool) {
	p, ok = Progress(scrollY, viewportHeight, documentHeight)
	if !ok {
		return 0, 0, false
	}
	return p, TargetFrame(p, m.TotalFrames), true
}

func clamp01(v float64) float64 {
	switch {
	case v < 0, math.IsNaN(v):
		return 0
	case v > 1:
		return 1
	}
	return v
}

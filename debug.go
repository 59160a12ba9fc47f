package reel

import (
	"errors"
	"fmt"
	"os"
	"time"
)

// debugStats holds per-tick timing. Only populated when debug mode is on.
type debugStats struct {
	paintTime   time.Duration
	publishTime time.Duration
	paintErr    error
	runTicks    int
}

// SetDebugMode enables or disables debug mode. When enabled, every
// scheduler tick, idle transition, load failure and the ready transition
// are logged to stderr.
func (p *Player) SetDebugMode(enabled bool) {
	p.debug = enabled
}

func (p *Player) debugStart() time.Time {
	if !p.debug {
		return time.Time{}
	}
	return time.Now()
}

func (p *Player) debugSince(t0 time.Time) time.Duration {
	if !p.debug {
		return 0
	}
	return time.Since(t0)
}

// debugf prints a prefixed line to stderr in debug mode.
func (p *Player) debugf(format string, args ...any) {
	if !p.debug {
		return
	}
	_, _ = fmt.Fprintf(os.Stderr, "[reel] "+format+"\n", args...)
}

// observeTick is the scheduler's tick observer.
func (p *Player) observeTick(info TickInfo) {
	p.stats.runTicks++
	if p.debug {
		painted := "painted"
		switch {
		case errors.Is(p.stats.paintErr, ErrNoDrawableFrame):
			painted = "no frame"
		case p.stats.paintErr != nil:
			painted = p.stats.paintErr.Error()
		}
		_, _ = fmt.Fprintf(os.Stderr,
			"[reel] tick: current %.3f | target %.3f | frame %d (%s) | paint: %v | publish: %v\n",
			info.CurrentFrame, info.TargetFrame, info.Frame, painted,
			p.stats.paintTime, p.stats.publishTime)
	}
	if info.Converged {
		p.debugf("idle after %d ticks at frame %d", p.stats.runTicks, info.Frame)
		p.stats.runTicks = 0
	}
}

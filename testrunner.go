package reel

import (
	"encoding/json"
	"fmt"
)

// maxSettleFrames bounds a "settle" step so a script cannot hang.
const maxSettleFrames = 3600

// testStep represents a single action in a test script.
type testStep struct {
	Action string  `json:"action"`
	Label  string  `json:"label,omitempty"`
	Y      float64 `json:"y,omitempty"`
	DY     float64 `json:"dy,omitempty"`
	Width  float64 `json:"width,omitempty"`
	Height float64 `json:"height,omitempty"`
	DPR    float64 `json:"dpr,omitempty"`
	Frames int     `json:"frames,omitempty"`
}

// testScript is the top-level JSON structure for a test script.
type testScript struct {
	Steps []testStep `json:"steps"`
}

// TestRunner sequences scrolls, resizes and screenshots across frames for
// automated visual testing. Attach to a Player via SetTestRunner.
//
// Actions: "scroll" (y), "scrollBy" (dy), "progress" (y as a fraction of the
// scrollable range), "resize" (width, height, dpr), "wait" (frames),
// "settle" and "screenshot" (label).
type TestRunner struct {
	steps       []testStep
	cursor      int
	waitCount   int
	settling    bool
	settleCount int
	done        bool
}

// LoadTestScript parses a JSON test script and returns a TestRunner ready
// to be attached to a Player via SetTestRunner.
func LoadTestScript(jsonData []byte) (*TestRunner, error) {
	var script testScript
	if err := json.Unmarshal(jsonData, &script); err != nil {
		return nil, fmt.Errorf("parse test script: %w", err)
	}
	if len(script.Steps) == 0 {
		return nil, fmt.Errorf("parse test script: no steps")
	}
	for i, st := range script.Steps {
		switch st.Action {
		case "scroll", "scrollBy", "progress", "resize", "wait", "settle", "screenshot":
		default:
			return nil, fmt.Errorf("parse test script: step %d: unknown action %q", i, st.Action)
		}
	}
	return &TestRunner{steps: script.Steps}, nil
}

// SetTestRunner attaches a TestRunner to the player. The runner's step
// method is called at the start of every Update.
func (p *Player) SetTestRunner(runner *TestRunner) {
	p.testRunner = runner
}

// Done reports whether all steps in the test script have been executed.
func (r *TestRunner) Done() bool {
	return r.done
}

// step advances the test runner by one frame. Called from Player.Update.
func (r *TestRunner) step(p *Player) {
	if r.done {
		return
	}
	if r.settling {
		r.settleCount++
		if p.scheduler.Status() == SchedulerRunning || p.viewport.Scrolling() {
			if r.settleCount < maxSettleFrames {
				return
			}
		}
		r.settling = false
	}
	// Count down wait frames.
	if r.waitCount > 0 {
		r.waitCount--
		return
	}
	if r.cursor >= len(r.steps) {
		r.done = true
		return
	}

	st := r.steps[r.cursor]
	r.cursor++

	v := p.viewport
	switch st.Action {
	case "screenshot":
		p.Screenshot(st.Label)
	case "scroll":
		v.ScrollTo(st.Y)
	case "scrollBy":
		v.ScrollBy(st.DY)
	case "progress":
		v.ScrollTo(clamp01(st.Y) * v.MaxScroll())
	case "resize":
		w, h, dpr := st.Width, st.Height, st.DPR
		if w <= 0 {
			w = v.Width()
		}
		if h <= 0 {
			h = v.Height()
		}
		if dpr <= 0 {
			dpr = v.PixelRatio()
		}
		v.SetSize(w, h, dpr)
	case "wait":
		if st.Frames > 0 {
			r.waitCount = st.Frames - 1 // this frame counts as one
		}
	case "settle":
		r.settling = true
		r.settleCount = 0
	}

	if r.cursor >= len(r.steps) && r.waitCount == 0 && !r.settling {
		r.done = true
	}
}

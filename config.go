package reel

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// HexColor is a colour that reads and writes as a "#rrggbb" string.
type HexColor struct {
	colorful.Color
}

// MustHexColor parses s and panics on failure. Intended for constants.
func MustHexColor(s string) HexColor {
	c, err := colorful.Hex(s)
	if err != nil {
		panic(fmt.Sprintf("reel: bad colour %q: %v", s, err))
	}
	return HexColor{c}
}

// UnmarshalJSON implements json.Unmarshaler.
func (c *HexColor) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("colour: %w", err)
	}
	parsed, err := colorful.Hex(s)
	if err != nil {
		return fmt.Errorf("colour %q: %w", s, err)
	}
	c.Color = parsed
	return nil
}

// MarshalJSON implements json.Marshaler.
func (c HexColor) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.Hex())
}

// Config holds the fixed playback parameters. Start from DefaultConfig and
// override what you need.
type Config struct {
	// TotalFrames is the length of the sequence.
	TotalFrames int `json:"totalFrames"`
	// EagerFrames is how many frames must resolve before the ready signal.
	// It must be below TotalFrames unless the sequence is a single frame.
	EagerFrames int `json:"eagerFrames"`
	// Smoothing is the lerp factor applied each tick, in (0, 1). Lower is
	// silkier and slower to catch up.
	Smoothing float64 `json:"smoothing"`
	// Epsilon is the frame distance below which the loop snaps and idles.
	Epsilon float64 `json:"epsilon"`
	// MaxPixelRatio caps the device pixel ratio used for the backing buffer.
	MaxPixelRatio float64 `json:"maxPixelRatio"`
	// ScrollHeightVH is the scrollable document height as a percentage of
	// the viewport height.
	ScrollHeightVH float64 `json:"scrollHeightVH"`
	// WheelStep is the scroll distance of one wheel notch in logical pixels.
	WheelStep float64 `json:"wheelStep"`
	// URIPattern names frame files; see FrameURI.
	URIPattern string `json:"uriPattern"`
	// Background fills the surface before every paint.
	Background HexColor `json:"background"`
	// ShowLoader draws the loading overlay until the ready signal.
	ShowLoader bool `json:"showLoader"`
	// ShowProgressBar draws the 1px scroll progress bar.
	ShowProgressBar bool `json:"showProgressBar"`
	// ShowVignette darkens the edges with a radial gradient.
	ShowVignette bool `json:"showVignette"`
	// ShowLetterbox darkens the top and bottom edges.
	ShowLetterbox bool `json:"showLetterbox"`
	// ShowGrain fades in a faint film grain after the ready signal.
	ShowGrain bool `json:"showGrain"`
}

// DefaultConfig returns the parameters of the shipped 192-frame sequence.
func DefaultConfig() Config {
	return Config{
		TotalFrames:     192,
		EagerFrames:     30,
		Smoothing:       0.072,
		Epsilon:         0.008,
		MaxPixelRatio:   2,
		ScrollHeightVH:  600,
		WheelStep:       100,
		URIPattern:      DefaultURIPattern,
		Background:      MustHexColor("#000000"),
		ShowLoader:      true,
		ShowProgressBar: true,
		ShowVignette:    true,
		ShowLetterbox:   true,
		ShowGrain:       true,
	}
}

// LoadConfig parses JSON on top of DefaultConfig and validates the result.
func LoadConfig(jsonData []byte) (Config, error) {
	cfg := DefaultConfig()
	if err := json.Unmarshal(jsonData, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports the first out-of-range field, wrapping ErrInvalidConfig.
func (c Config) Validate() error {
	switch {
	case c.TotalFrames < 1:
		return fmt.Errorf("totalFrames %d < 1: %w", c.TotalFrames, ErrInvalidConfig)
	case c.EagerFrames < 1 || c.EagerFrames > max(c.TotalFrames-1, 1):
		return fmt.Errorf("eagerFrames %d outside [1, %d]: %w", c.EagerFrames, max(c.TotalFrames-1, 1), ErrInvalidConfig)
	case !(c.Smoothing > 0 && c.Smoothing < 1):
		return fmt.Errorf("smoothing %v outside (0, 1): %w", c.Smoothing, ErrInvalidConfig)
	case !(c.Epsilon > 0):
		return fmt.Errorf("epsilon %v <= 0: %w", c.Epsilon, ErrInvalidConfig)
	case !(c.MaxPixelRatio >= 1):
		return fmt.Errorf("maxPixelRatio %v < 1: %w", c.MaxPixelRatio, ErrInvalidConfig)
	case !(c.ScrollHeightVH > 100):
		return fmt.Errorf("scrollHeightVH %v leaves nothing to scroll: %w", c.ScrollHeightVH, ErrInvalidConfig)
	case c.WheelStep < 0:
		return fmt.Errorf("wheelStep %v < 0: %w", c.WheelStep, ErrInvalidConfig)
	case c.URIPattern == "":
		return fmt.Errorf("empty uriPattern: %w", ErrInvalidConfig)
	case strings.Contains(fmt.Sprintf(c.URIPattern, 1), "%!"):
		return fmt.Errorf("uriPattern %q needs exactly one integer verb: %w", c.URIPattern, ErrInvalidConfig)
	}
	return nil
}

package reel

import (
	"fmt"
	"image"
)

// FrameState is the load state of a single FrameAsset.
type FrameState uint8

const (
	FramePending FrameState = iota // load issued, not yet resolved
	FrameLoaded                    // decoded and drawable
	FrameErrored                   // fetch or decode failed; never retried
)

// String returns a lowercase name for the state.
func (s FrameState) String() string {
	switch s {
	case FramePending:
		return "pending"
	case FrameLoaded:
		return "loaded"
	case FrameErrored:
		return "errored"
	default:
		return fmt.Sprintf("FrameState(%d)", uint8(s))
	}
}

// FrameAsset is one image in the sequence. Index and URI are fixed at
// initialization. State leaves FramePending exactly once; Width, Height and
// Image are only set when State is FrameLoaded.
type FrameAsset struct {
	Index  int
	URI    string
	State  FrameState
	Width  int
	Height int
	Image  image.Image
	Err    error
}

// Drawable reports whether the asset can be painted.
func (a FrameAsset) Drawable() bool {
	return a.State == FrameLoaded && a.Image != nil && a.Width > 0 && a.Height > 0
}

// DefaultURIPattern names frames the way the exported sequence does:
// index 0 is "ezgif-frame-001.jpg".
const DefaultURIPattern = "ezgif-frame-%03d.jpg"

// FrameID returns the 3-digit, 1-based identifier of a 0-based index.
// FrameID(0) is "001" and FrameID(191) is "192".
func FrameID(index int) string {
	return fmt.Sprintf("%03d", index+1)
}

// FrameURI expands pattern with the 1-based frame number of index. The
// pattern takes a single integer verb, e.g. "frames/%03d.webp".
func FrameURI(pattern string, index int) string {
	return fmt.Sprintf(pattern, index+1)
}

// LoadError records why a frame could not be loaded.
type LoadError struct {
	Index int
	URI   string
	Err   error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load frame %d (%s): %v", e.Index, e.URI, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

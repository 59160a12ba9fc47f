package reel

import (
	"errors"
	"image"
	"io/fs"
	"testing"
)

func TestFrameID(t *testing.T) {
	tests := []struct {
		index int
		want  string
	}{
		{0, "001"},
		{9, "010"},
		{98, "099"},
		{191, "192"},
		{999, "1000"},
	}
	for _, tt := range tests {
		if got := FrameID(tt.index); got != tt.want {
			t.Errorf("FrameID(%d) = %q, want %q", tt.index, got, tt.want)
		}
	}
}

func TestFrameURI(t *testing.T) {
	if got := FrameURI(DefaultURIPattern, 0); got != "ezgif-frame-001.jpg" {
		t.Errorf("FrameURI(default, 0) = %q", got)
	}
	if got := FrameURI(DefaultURIPattern, 191); got != "ezgif-frame-192.jpg" {
		t.Errorf("FrameURI(default, 191) = %q", got)
	}
	if got := FrameURI("seq/%04d.png", 4); got != "seq/0005.png" {
		t.Errorf("FrameURI(custom, 4) = %q", got)
	}
}

func TestFrameStateString(t *testing.T) {
	tests := []struct {
		s    FrameState
		want string
	}{
		{FramePending, "pending"},
		{FrameLoaded, "loaded"},
		{FrameErrored, "errored"},
		{FrameState(9), "FrameState(9)"},
	}
	for _, tt := range tests {
		if got := tt.s.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestFrameAssetDrawable(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 2))
	tests := []struct {
		name string
		a    FrameAsset
		want bool
	}{
		{"loaded", FrameAsset{State: FrameLoaded, Image: img, Width: 4, Height: 2}, true},
		{"pending", FrameAsset{State: FramePending, Image: img, Width: 4, Height: 2}, false},
		{"errored", FrameAsset{State: FrameErrored}, false},
		{"no image", FrameAsset{State: FrameLoaded, Width: 4, Height: 2}, false},
		{"zero width", FrameAsset{State: FrameLoaded, Image: img, Height: 2}, false},
	}
	for _, tt := range tests {
		if got := tt.a.Drawable(); got != tt.want {
			t.Errorf("%s: Drawable() = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestLoadErrorUnwrap(t *testing.T) {
	err := error(&LoadError{Index: 3, URI: "ezgif-frame-004.jpg", Err: fs.ErrNotExist})
	if !errors.Is(err, fs.ErrNotExist) {
		t.Error("LoadError should unwrap to its cause")
	}
	var le *LoadError
	if !errors.As(err, &le) || le.Index != 3 {
		t.Errorf("errors.As = %+v", le)
	}
}

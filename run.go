package reel

import (
	"context"

	"github.com/hajimehoshi/ebiten/v2"
)

// RunConfig holds window options for Run.
type RunConfig struct {
	// Title is the window title.
	Title string
	// Width and Height are the initial window size in logical pixels.
	Width, Height int
	// Fullscreen starts in fullscreen mode.
	Fullscreen bool
}

// Run opens a window and plays p until the window is closed. It starts p if
// needed, reads wheel and keyboard scrolling, and stops p on return.
func Run(p *Player, cfg RunConfig) error {
	if cfg.Title == "" {
		cfg.Title = "reel"
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		cfg.Width, cfg.Height = 1280, 720
	}
	ebiten.SetWindowTitle(cfg.Title)
	ebiten.SetWindowSize(cfg.Width, cfg.Height)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetFullscreen(cfg.Fullscreen)

	p.readInput = true
	p.viewport.SetSize(float64(cfg.Width), float64(cfg.Height), p.deviceScale())
	if !p.started {
		if err := p.Start(context.Background()); err != nil {
			return err
		}
	}
	defer p.Stop()
	return ebiten.RunGame(p)
}

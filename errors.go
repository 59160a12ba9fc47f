package reel

import "errors"

var (
	// ErrInvalidConfig is wrapped by every configuration validation failure.
	ErrInvalidConfig = errors.New("invalid config")
	// ErrDegenerateViewport reports a scroll range or surface size <= 0.
	// The update is skipped; nothing else changes.
	ErrDegenerateViewport = errors.New("degenerate viewport")
	// ErrNoDrawableFrame reports that neither the requested frame nor any
	// frame before it has loaded. The surface keeps its previous contents.
	ErrNoDrawableFrame = errors.New("no drawable frame")
	// ErrAlreadyStarted is returned by a second Player.Start.
	ErrAlreadyStarted = errors.New("player already started")
	// ErrStopped is returned when starting a Player that was stopped.
	ErrStopped = errors.New("player stopped")
)

// Package ecs provides ECS adapters for reel.
package ecs

import (
	"github.com/phanxgames/reel"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"
)

// ReadyEventType is the Donburi event type for the one-shot ready signal.
var ReadyEventType = events.NewEventType[reel.ReadyEvent]()

// LoadEventType is the Donburi event type for frame load progress.
var LoadEventType = events.NewEventType[reel.LoadEvent]()

// ProgressEventType is the Donburi event type for playback progress.
var ProgressEventType = events.NewEventType[reel.ProgressEvent]()

type donburiSink struct {
	world donburi.World
}

// NewDonburiSink creates an EventSink backed by a Donburi world. Events are
// queued on their event types and delivered by ProcessEvents or
// ProcessAllEvents.
func NewDonburiSink(world donburi.World) reel.EventSink {
	return &donburiSink{world: world}
}

func (s *donburiSink) EmitReady(e reel.ReadyEvent) {
	ReadyEventType.Publish(s.world, e)
}

func (s *donburiSink) EmitLoad(e reel.LoadEvent) {
	LoadEventType.Publish(s.world, e)
}

func (s *donburiSink) EmitProgress(e reel.ProgressEvent) {
	ProgressEventType.Publish(s.world, e)
}

// Package ecs provides ECS adapters for reel's playback signals.
//
// The primary adapter is [NewDonburiSink], which forwards the ready, load
// and progress events of a [reel.Player] into a [Donburi] world as typed
// events, so overlay choreography can live in ECS systems.
//
// Usage:
//
//	sink := ecs.NewDonburiSink(world)
//	player.SetEventSink(sink)
//
//	ecs.ProgressEventType.Subscribe(world, func(w donburi.World, e reel.ProgressEvent) {
//		// fade panels in and out by e.Progress
//	})
//
// [Donburi]: https://github.com/yohamta/donburi
package ecs

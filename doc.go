// Package reel plays a pre-rendered image sequence scrubbed by scroll
// position, on top of [Ebitengine].
//
// A sequence of stills is loaded concurrently, the scroll offset is mapped
// to a target frame, and a self-idling loop eases the displayed frame toward
// that target and paints it cover-fitted onto a surface sized to the device
// pixel grid. The loop only runs while something is moving.
//
// # Quick start
//
// The simplest way to get started is [Run], which creates a window and game
// loop for you:
//
//	cfg := reel.DefaultConfig()
//	player, err := reel.NewPlayer(cfg, reel.NewDirSource("frames"))
//	if err != nil {
//		log.Fatal(err)
//	}
//	player.OnReady(func(reel.ReadyEvent) { log.Println("ready") })
//	if err := reel.Run(player, reel.RunConfig{Title: "Reel"}); err != nil {
//		log.Fatal(err)
//	}
//
// [Player] implements [ebiten.Game], so it can also be embedded in a larger
// game that forwards Update, Draw and Layout.
//
// # Components
//
//   - [FrameStore] owns the frames and their load states. Every load is
//     issued at once; results are applied on the loop by [FrameStore.Poll].
//     [FrameStore.Resolve] only ever substitutes an earlier frame.
//   - [InputMapper], [Progress] and [TargetFrame] turn a scroll offset into
//     a continuous target frame. [Viewport] is the scroll source.
//   - [Scheduler] is the Idle/Running state machine driven by a
//     [FrameClock]. Each tick lerps toward the target; within epsilon it
//     snaps, paints once more and stops scheduling.
//   - [Renderer] resizes a [Surface] to round(css × min(dpr, 2)) and paints
//     the nearest loaded frame with [CoverFit].
//
// Two surfaces are provided: [EbitenSurface] for windows and
// [RasterSurface], a CPU surface built on golang.org/x/image/draw, for
// headless renders and tests.
//
// # Signals
//
// Collaborators outside the player see three things: a one-shot ready event
// once [Config.EagerFrames] frames have resolved ([Player.OnReady]), the
// smoothed scroll progress after every tick ([Player.OnProgress]) and the
// load percentage ([Player.OnLoadProgress]). The reel/ecs module forwards
// all three into a Donburi world.
//
// [Ebitengine]: https://ebitengine.org
package reel

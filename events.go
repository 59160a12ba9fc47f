package reel

// ReadyEvent is emitted once, when the number of resolved frames first
// reaches the eager threshold.
type ReadyEvent struct {
	Resolved int
	Loaded   int
	Total    int
}

// LoadEvent is emitted every time a frame resolves, loaded or errored.
type LoadEvent struct {
	Index    int
	State    FrameState
	Resolved int
	Total    int
	// Percent is resolved/total*100, rounded to the nearest integer.
	Percent int
}

// ProgressEvent is emitted after every scheduler tick.
type ProgressEvent struct {
	// Progress is the smoothed playback position in [0, 1].
	Progress float64
	// Frame is the frame index the tick asked the renderer to paint.
	Frame int
}

// EventSink is the interface for optional ECS integration. When set on a
// Player, ready, load and progress events are forwarded to it.
type EventSink interface {
	EmitReady(ReadyEvent)
	EmitLoad(LoadEvent)
	EmitProgress(ProgressEvent)
}

// --- Handler registry ---

type handlerEntry[T any] struct {
	id uint32
	fn func(T)
}

// handlerList holds callbacks for one event kind. Removal builds a new slice
// so an emit in progress keeps iterating its own snapshot.
type handlerList[T any] struct {
	entries []handlerEntry[T]
	nextID  uint32
}

func (l *handlerList[T]) add(fn func(T)) CallbackHandle {
	l.nextID++
	id := l.nextID
	l.entries = append(l.entries, handlerEntry[T]{id: id, fn: fn})
	return CallbackHandle{id: id, remove: l.remove}
}

func (l *handlerList[T]) remove(id uint32) {
	kept := make([]handlerEntry[T], 0, len(l.entries))
	for _, e := range l.entries {
		if e.id != id {
			kept = append(kept, e)
		}
	}
	l.entries = kept
}

func (l *handlerList[T]) emit(v T) {
	for _, e := range l.entries {
		e.fn(v)
	}
}

func (l *handlerList[T]) len() int {
	return len(l.entries)
}

// CallbackHandle allows removing a registered callback.
type CallbackHandle struct {
	id     uint32
	remove func(uint32)
}

// Remove unregisters this callback so it no longer fires. Calling Remove
// more than once, or on the zero handle, is a no-op.
func (h CallbackHandle) Remove() {
	if h.remove == nil {
		return
	}
	h.remove(h.id)
}

package events

import "time"

// ResizeEvent is fired when the global surface changes size.
// Width and Height are read from the surface, not from the raw event.
type ResizeEvent struct {
	Width  int
	Height int
}

// RenderEvent is fired once before each rendered frame.
type RenderEvent struct {
	// Frame counts frames since the chain started, from 1.
	Frame uint64

	// Time is the frame timestamp.
	Time time.Time
}

// UpdateEvent is fired on every tick of the repeating update timer.
type UpdateEvent struct {
	// Tick counts ticks since the timer started, from 1.
	Tick uint64
}

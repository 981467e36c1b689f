// Package mux bridges one platform event stream into per-category handlers.
//
// Each multiplexer owns the handlers for its category and arms exactly once.
// Source-driven multiplexers (Keyboard, Pointer, Clipboard, Resize) register
// one raw listener per event name with a source.Source. Self-driven
// multiplexers have no source event: Frames keeps a frame request chain
// alive and Ticker registers a single repeating interval.
//
//	src ──"keydown"──▶ Keyboard ──Fire──▶ Handler[KeyDownEvent] ──▶ listeners
//	req ──frame────────▶ Frames ──Fire──▶ Handler[RenderEvent]  ──▶ listeners
//	                      └── RequestFrame (next frame)
//
// Hub constructs all six and attaches them to a Surface in one step.
package mux

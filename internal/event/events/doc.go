// Package events defines the typed payloads delivered by the category
// handlers.
//
// Payloads are immutable value types produced fresh for each occurrence.
// They carry no identity beyond their single delivery. Clipboard payloads
// are the exception: copy and cut carry a shared *backend.ClipboardData that
// listeners write the clipboard text into.
//
//	Category   Raw event(s)              Payload
//	keyboard   keydown, keyup            KeyDownEvent, KeyUpEvent
//	pointer    click, mousemove, wheel   MouseClickEvent, MouseMoveEvent, WheelEvent
//	clipboard  copy, paste, cut          CopyEvent, PasteEvent, CutEvent
//	resize     resize                    ResizeEvent
//	frame      (frame request chain)     RenderEvent
//	timer      (repeating interval)      UpdateEvent
package events

package mux

import "errors"

var (
	// ErrAlreadyArmed is returned when a multiplexer is attached or started
	// a second time.
	ErrAlreadyArmed = errors.New("multiplexer already armed")

	// ErrDimensionQuery indicates the surface size could not be read.
	ErrDimensionQuery = errors.New("dimension query failed")

	// ErrFrameRequest indicates the next frame could not be requested.
	ErrFrameRequest = errors.New("frame request failed")

	// ErrInterval indicates the update interval could not be registered.
	ErrInterval = errors.New("interval registration failed")
)

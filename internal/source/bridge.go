package source

import (
	"github.com/dshills/fanout/internal/backend"
	"github.com/dshills/fanout/internal/event"
)

// Firer is the part of a handler a bridge needs.
type Firer[E any] interface {
	Fire(event E)
}

var _ Firer[struct{}] = (*event.Handler[struct{}])(nil)

// Bridge registers a callback on src that converts each raw event called
// name and fires the result on h. convert must be pure.
func Bridge[E any](src Source, name string, h Firer[E], convert func(backend.Event) E) error {
	if src == nil {
		return &RegistrationError{Event: name, Err: ErrNilSource}
	}
	err := src.AddListener(name, func(raw backend.Event) {
		h.Fire(convert(raw))
	})
	if err != nil {
		return &RegistrationError{Event: name, Err: err}
	}
	return nil
}

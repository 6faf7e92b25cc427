package audit

import (
	"context"
	"errors"
)

// Fanout emits every event to each emitter in order. One failing sink does
// not stop the others; their errors are joined.
type Fanout []Emitter

func (f Fanout) Emit(ctx context.Context, event Event) error {
	var errs []error
	for _, e := range f {
		if e == nil {
			continue
		}
		if err := e.Emit(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

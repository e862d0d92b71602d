package hotkeycapture

import (
	"context"
	"errors"

	"ai-anywhere/src/hotkey"
	"ai-anywhere/src/keyspec"
)

var (
	ErrCancelled    = errors.New("hotkeycapture: cancelled")
	ErrStreamClosed = errors.New("hotkeycapture: key stream closed")
)

// Record captures one hotkey from a raw key stream such as hotkey.RawKeys.
// It returns the committed string, or current together with an error when
// the capture is cancelled or ctx ends first.
func Record(ctx context.Context, events <-chan hotkey.KeyEvent, current string, opts ...Option) (string, error) {
	m := New(opts...)
	m.Focus(current)

	var held keyspec.Modifier
	for {
		select {
		case <-ctx.Done():
			m.Blur()
			return m.Value(), ctx.Err()
		case ev, ok := <-events:
			if !ok {
				m.Blur()
				return m.Value(), ErrStreamClosed
			}
			if mod, isMod := ev.Key.Modifier(); isMod {
				if ev.Down {
					held |= mod
				} else {
					held &^= mod
				}
			}
			if !ev.Down {
				continue
			}
			switch m.KeyDown(Event{Key: ev.Key, Mods: held, System: ev.System}) {
			case OutcomeCommitted:
				return m.Value(), nil
			case OutcomeCancelled:
				return m.Value(), ErrCancelled
			}
		}
	}
}

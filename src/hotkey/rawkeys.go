package hotkey

import (
	"context"
	"errors"
	"log"

	gohook "github.com/robotn/gohook"

	"ai-anywhere/src/keyspec"
)

// KeyEvent is one low-level key transition. Key is zero when the platform
// code has no entry in the key table; System marks codes such as AltGr that
// never take part in a chord.
type KeyEvent struct {
	Key    keyspec.Key
	Code   uint16
	Down   bool
	System bool
}

// RawKeys streams key-down and key-up events from a global low-level keyboard
// hook until ctx is cancelled. Only one hook can run per process.
func RawKeys(ctx context.Context) (<-chan KeyEvent, error) {
	evChan := gohook.Start()
	if evChan == nil {
		return nil, errors.New("hotkey: gohook.Start() returned nil channel")
	}

	out := make(chan KeyEvent, 16)
	go func() {
		defer close(out)
		defer gohook.End()
		defer func() {
			if r := recover(); r != nil {
				log.Printf("PANIC in raw key goroutine: %v", r)
			}
		}()

		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-evChan:
				if !ok {
					log.Printf("hotkey: raw event channel closed")
					return
				}
				ke, ok := toKeyEvent(ev)
				if !ok {
					continue
				}
				select {
				case out <- ke:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

func toKeyEvent(ev gohook.Event) (KeyEvent, bool) {
	var down bool
	switch ev.Kind {
	case gohook.KeyDown:
		down = true
	case gohook.KeyUp:
		down = false
	default:
		return KeyEvent{}, false
	}
	ke := KeyEvent{Code: ev.Rawcode, Down: down}
	if keyspec.IsSystemSentinel(ev.Rawcode) {
		ke.System = true
		return ke, true
	}
	if k, ok := keyspec.FromNative(ev.Rawcode); ok {
		ke.Key = k
	}
	return ke, true
}

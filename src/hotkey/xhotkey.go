//go:build windows || linux || darwin

package hotkey

import (
	"fmt"
	"sync"

	"golang.design/x/hotkey"

	"ai-anywhere/src/keyspec"
)

// xBackend wraps golang.design/x/hotkey. The hotkey.Hotkey is created lazily
// in Register so that constructing a backend never touches the OS.
type xBackend struct {
	mods      []hotkey.Modifier
	key       hotkey.Key
	hk        *hotkey.Hotkey
	keyCh     chan struct{}
	closeOnce sync.Once
}

func newXBackend(spec keyspec.KeySpec) (Backend, error) {
	code, ok := keyspec.Native(spec.Key())
	if !ok {
		return nil, fmt.Errorf("%w: key %s has no native code on this platform", ErrInvalidSpec, spec.Key())
	}
	var mods []hotkey.Modifier
	for _, m := range spec.Modifiers().List() {
		mods = append(mods, nativeModifier(m))
	}
	return &xBackend{mods: mods, key: hotkey.Key(code), keyCh: make(chan struct{}, 4)}, nil
}

// Register reports conflicts on Windows and macOS. On X11 the grab happens
// after Register returns, so a chord held by another client is not detected.
func (x *xBackend) Register() error {
	x.hk = hotkey.New(x.mods, x.key)
	if err := x.hk.Register(); err != nil {
		_ = x.hk.Unregister()
		x.hk = nil
		return fmt.Errorf("%w: %v", ErrAlreadyInUse, err)
	}
	src := x.hk.Keydown()
	go func() {
		for range src {
			select {
			case x.keyCh <- struct{}{}:
			default:
			}
		}
		x.closeOnce.Do(func() { close(x.keyCh) })
	}()
	return nil
}

func (x *xBackend) Unregister() error {
	if x.hk == nil {
		return nil
	}
	err := x.hk.Unregister()
	x.hk = nil
	return err
}

func (x *xBackend) Keydown() <-chan struct{} { return x.keyCh }

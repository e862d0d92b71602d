//go:build linux

package hotkey

import (
	"golang.design/x/hotkey"

	"ai-anywhere/src/keyspec"
)

// On X11 Alt is usually Mod1 and Super is Mod4.
func nativeModifier(m keyspec.Modifier) hotkey.Modifier {
	switch m {
	case keyspec.ModCtrl:
		return hotkey.ModCtrl
	case keyspec.ModAlt:
		return hotkey.Mod1
	case keyspec.ModShift:
		return hotkey.ModShift
	default:
		return hotkey.Mod4
	}
}

// Wayland compositors do not allow X11 key grabs, so the portal is used there.
func platformBackend(spec keyspec.KeySpec) (Backend, error) {
	if IsWayland() {
		return newPortalBackend(spec)
	}
	return newXBackend(spec)
}

//go:build windows

package hotkey

import (
	"golang.design/x/hotkey"

	"ai-anywhere/src/keyspec"
)

func nativeModifier(m keyspec.Modifier) hotkey.Modifier {
	switch m {
	case keyspec.ModCtrl:
		return hotkey.ModCtrl
	case keyspec.ModAlt:
		return hotkey.ModAlt
	case keyspec.ModShift:
		return hotkey.ModShift
	default:
		return hotkey.ModWin
	}
}

func platformBackend(spec keyspec.KeySpec) (Backend, error) { return newXBackend(spec) }

//go:build darwin

package hotkey

import (
	"golang.design/x/hotkey"

	"ai-anywhere/src/keyspec"
)

// Win maps to Command, Alt to Option.
func nativeModifier(m keyspec.Modifier) hotkey.Modifier {
	switch m {
	case keyspec.ModCtrl:
		return hotkey.ModCtrl
	case keyspec.ModAlt:
		return hotkey.ModOption
	case keyspec.ModShift:
		return hotkey.ModShift
	default:
		return hotkey.ModCmd
	}
}

func platformBackend(spec keyspec.KeySpec) (Backend, error) { return newXBackend(spec) }

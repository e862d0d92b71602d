//go:build !darwin

package input

import "ai-anywhere/src/keyspec"

// PlatformModifier is the modifier of the clipboard chords.
func PlatformModifier() keyspec.Modifier { return keyspec.ModCtrl }

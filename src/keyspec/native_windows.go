//go:build windows

package keyspec

// Native returns the platform key code for k. On Windows that is the
// virtual-key code used by RegisterHotKey and the low-level keyboard hook.
func Native(k Key) (uint16, bool) {
	if !k.Valid() {
		return 0, false
	}
	return k.VK(), true
}

// FromNative maps a platform key code back to a Key.
func FromNative(code uint16) (Key, bool) { return FromVK(code) }

// IsSystemSentinel reports codes that stand for "some key was eaten by the
// system", such as VK_PROCESSKEY while an IME composes.
func IsSystemSentinel(code uint16) bool { return code == 0xE5 }

//go:build !windows && !linux && !darwin

package keyspec

func Native(k Key) (uint16, bool) { return 0, false }

func FromNative(code uint16) (Key, bool) { return 0, false }

func IsSystemSentinel(code uint16) bool { return false }

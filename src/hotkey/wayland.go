package hotkey

import (
	"os"
	"strings"
)

// IsWayland reports whether the session runs under Wayland.
func IsWayland() bool {
	if t, ok := os.LookupEnv("XDG_SESSION_TYPE"); ok {
		return strings.EqualFold(t, "wayland")
	}
	return os.Getenv("WAYLAND_DISPLAY") != ""
}

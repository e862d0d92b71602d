// Package window identifies the foreground window at trigger time and brings
// it back later.
package window

import (
	"strings"

	"github.com/shirou/gopsutil/v4/process"
)

// Handle is an opaque window id: an HWND on Windows, the owning process id
// elsewhere. Zero means no window.
type Handle uintptr

func (h Handle) Valid() bool { return h != 0 }

// processName resolves pid to an executable name without extension.
func processName(pid int32) string {
	if pid <= 0 {
		return ""
	}
	p, err := process.NewProcess(pid)
	if err != nil {
		return ""
	}
	name, err := p.Name()
	if err != nil {
		return ""
	}
	return strings.TrimSuffix(name, ".exe")
}

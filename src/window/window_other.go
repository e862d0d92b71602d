//go:build !windows

package window

import (
	"log"

	"github.com/go-vgo/robotgo"
	"github.com/shirou/gopsutil/v4/process"
)

// Foreground returns the process owning the active window.
func Foreground() Handle {
	pid := robotgo.GetPid()
	if pid <= 0 {
		return 0
	}
	return Handle(pid)
}

func Alive(h Handle) bool {
	if !h.Valid() {
		return false
	}
	ok, err := process.PidExists(int32(h))
	return err == nil && ok
}

// Restore activates the main window of the process behind h.
func Restore(h Handle) bool {
	if !Alive(h) {
		return false
	}
	if int(h) == robotgo.GetPid() {
		return true
	}
	if err := robotgo.ActivePid(int(h)); err != nil {
		log.Printf("window: activate pid %d failed: %v", int(h), err)
		return false
	}
	return true
}

func ProcessName(h Handle) string {
	return processName(int32(h))
}

func Title(h Handle) string {
	if !h.Valid() {
		return ""
	}
	return robotgo.GetTitle(int(h))
}

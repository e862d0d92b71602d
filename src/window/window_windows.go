//go:build windows

package window

import (
	"log"
	"runtime"
	"syscall"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	user32                   = windows.NewLazySystemDLL("user32.dll")
	procAttachThreadInput    = user32.NewProc("AttachThreadInput")
	procSetForegroundWindow  = user32.NewProc("SetForegroundWindow")
	procBringWindowToTop     = user32.NewProc("BringWindowToTop")
	procIsIconic             = user32.NewProc("IsIconic")
	procShowWindow           = user32.NewProc("ShowWindow")
	procGetWindowTextW       = user32.NewProc("GetWindowTextW")
	procGetWindowTextLengthW = user32.NewProc("GetWindowTextLengthW")
)

const swRestore = 9

// Foreground returns the window that currently has focus.
func Foreground() Handle {
	return Handle(windows.GetForegroundWindow())
}

func Alive(h Handle) bool {
	return h.Valid() && windows.IsWindow(windows.HWND(h))
}

// Restore makes h the foreground window. Windows only lets the foreground
// thread hand focus away, so the calling thread briefly shares input state
// with the current foreground thread.
func Restore(h Handle) bool {
	if !Alive(h) {
		return false
	}
	hwnd := windows.HWND(h)
	fg := windows.GetForegroundWindow()
	if fg == hwnd {
		return true
	}

	if iconic, _, _ := procIsIconic.Call(uintptr(hwnd)); iconic != 0 {
		procShowWindow.Call(uintptr(hwnd), swRestore)
	}

	fgThread, _ := windows.GetWindowThreadProcessId(fg, nil)
	withInputOf(fgThread, attachThreadInput, func() {
		procBringWindowToTop.Call(uintptr(hwnd))
		if ok, _, err := procSetForegroundWindow.Call(uintptr(hwnd)); ok == 0 {
			log.Printf("window: SetForegroundWindow(0x%X) failed: %v", uintptr(hwnd), err)
		}
	})
	return windows.GetForegroundWindow() == hwnd
}

func attachThreadInput(from, to uint32, attach bool) {
	var flag uintptr
	if attach {
		flag = 1
	}
	procAttachThreadInput.Call(uintptr(from), uintptr(to), flag)
}

// withInputOf runs fn on one locked OS thread that shares input state with
// thread target for the duration of fn. Attach and detach name that same
// thread.
func withInputOf(target uint32, attach func(from, to uint32, on bool), fn func()) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	cur := windows.GetCurrentThreadId()
	if target != 0 && target != cur {
		attach(cur, target, true)
		defer attach(cur, target, false)
	}
	fn()
}

func ProcessName(h Handle) string {
	if !h.Valid() {
		return ""
	}
	var pid uint32
	if _, err := windows.GetWindowThreadProcessId(windows.HWND(h), &pid); err != nil {
		return ""
	}
	return processName(int32(pid))
}

func Title(h Handle) string {
	if !h.Valid() {
		return ""
	}
	n, _, _ := procGetWindowTextLengthW.Call(uintptr(h))
	if n == 0 {
		return ""
	}
	buf := make([]uint16, n+1)
	procGetWindowTextW.Call(uintptr(h), uintptr(unsafe.Pointer(&buf[0])), uintptr(len(buf)))
	return syscall.UTF16ToString(buf)
}

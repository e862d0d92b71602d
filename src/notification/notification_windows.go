//go:build windows

package notification

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/windows"
)

const (
	mbOK              = 0x00000000
	mbOKCancel        = 0x00000001
	mbIconError       = 0x00000010
	mbIconQuestion    = 0x00000020
	mbIconInformation = 0x00000040
	mbSetForeground   = 0x00010000
	mbTopmost         = 0x00040000

	idOK = 1
)

var (
	user32          = windows.NewLazySystemDLL("user32.dll")
	procMessageBoxW = user32.NewProc("MessageBoxW")
)

func messageBox(title, message string, flags uintptr) (uintptr, error) {
	titlePtr, err := windows.UTF16PtrFromString(title)
	if err != nil {
		return 0, err
	}
	messagePtr, err := windows.UTF16PtrFromString(message)
	if err != nil {
		return 0, err
	}
	ret, _, callErr := procMessageBoxW.Call(
		0, // hwnd (no parent window)
		uintptr(unsafe.Pointer(messagePtr)),
		uintptr(unsafe.Pointer(titlePtr)),
		flags|mbTopmost,
	)
	if ret == 0 {
		return 0, fmt.Errorf("MessageBoxW: %v", callErr)
	}
	return ret, nil
}

func show(title, text string) error {
	_, err := messageBox(title, text, mbOK|mbIconInformation)
	return err
}

func showBlocking(title, message string) error {
	_, err := messageBox(title, message, mbOK|mbIconError)
	return err
}

func confirm(title, text string) (bool, error) {
	ret, err := messageBox(title, text, mbOKCancel|mbIconQuestion|mbSetForeground)
	if err != nil {
		return false, err
	}
	return ret == idOK, nil
}

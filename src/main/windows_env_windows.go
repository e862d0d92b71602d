//go:build windows

package main

import (
	"log"
	"syscall"
)

// enableDPIAwareness attempts to set per-monitor DPI awareness on Windows to fix scaling issues.
func enableDPIAwareness() {
	shcore := syscall.NewLazyDLL("Shcore.dll")
	setProcessDpiAwareness := shcore.NewProc("SetProcessDpiAwareness")
	const processPerMonitorDPIAware = 2
	if err := setProcessDpiAwareness.Find(); err == nil {
		ret, _, _ := setProcessDpiAwareness.Call(uintptr(processPerMonitorDPIAware))
		if ret == 0 {
			log.Printf("DPI: Successfully set per-monitor DPI awareness")
		} else {
			log.Printf("DPI: Failed to set per-monitor DPI awareness, error code: %d", ret)
		}
		return
	}

	log.Printf("DPI: Shcore.SetProcessDpiAwareness not available, trying fallback")
	user32 := syscall.NewLazyDLL("user32.dll")
	setProcessDPIAware := user32.NewProc("SetProcessDPIAware")
	if err := setProcessDPIAware.Find(); err == nil {
		ret, _, _ := setProcessDPIAware.Call()
		if ret != 0 {
			log.Printf("DPI: Successfully set system DPI awareness (fallback)")
		} else {
			log.Printf("DPI: Failed to set system DPI awareness (fallback)")
		}
	} else {
		log.Printf("DPI: SetProcessDPIAware not available, no DPI awareness set")
	}
}

package window

import (
	"os"
	"testing"
)

func TestZeroHandle(t *testing.T) {
	var h Handle
	if h.Valid() {
		t.Error("zero handle must be invalid")
	}
	if Alive(h) {
		t.Error("Alive(0) = true, expected false")
	}
	if Restore(h) {
		t.Error("Restore(0) = true, expected false")
	}
	if got := ProcessName(h); got != "" {
		t.Errorf("ProcessName(0) = %q, expected empty", got)
	}
	if got := Title(h); got != "" {
		t.Errorf("Title(0) = %q, expected empty", got)
	}
}

func TestProcessNameOfSelf(t *testing.T) {
	name := processName(int32(os.Getpid()))
	if name == "" {
		t.Skipf("process table not readable here")
	}
	if len(name) > 4 && name[len(name)-4:] == ".exe" {
		t.Errorf("processName kept the .exe suffix: %q", name)
	}
}

//go:build windows

package clipboard

import "golang.org/x/sys/windows"

var procGetClipboardSequenceNumber = windows.NewLazySystemDLL("user32.dll").NewProc("GetClipboardSequenceNumber")

// sequencedBoard adds the Win32 clipboard sequence number, which lets a
// simulated copy be detected the moment the target application writes.
type sequencedBoard struct{ systemBoard }

func newSystemBoard() Board { return sequencedBoard{} }

func (sequencedBoard) Sequence() uint32 {
	n, _, _ := procGetClipboardSequenceNumber.Call()
	return uint32(n)
}

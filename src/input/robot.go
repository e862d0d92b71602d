package input

import (
	"fmt"
	"strings"

	"github.com/go-vgo/robotgo"

	"ai-anywhere/src/keyspec"
)

var robotNames = map[keyspec.Key]string{
	keyspec.KeySpace:        "space",
	keyspec.KeyEnter:        "enter",
	keyspec.KeyEsc:          "esc",
	keyspec.KeyTab:          "tab",
	keyspec.KeyBackspace:    "backspace",
	keyspec.KeyDelete:       "delete",
	keyspec.KeyInsert:       "insert",
	keyspec.KeyHome:         "home",
	keyspec.KeyEnd:          "end",
	keyspec.KeyPageUp:       "pageup",
	keyspec.KeyPageDown:     "pagedown",
	keyspec.KeyLeft:         "left",
	keyspec.KeyUp:           "up",
	keyspec.KeyRight:        "right",
	keyspec.KeyDown:         "down",
	keyspec.KeyCtrl:         "ctrl",
	keyspec.KeyAlt:          "alt",
	keyspec.KeyShift:        "shift",
	keyspec.KeyWin:          "cmd",
	keyspec.KeyOEMPlus:      "=",
	keyspec.KeyNumMultiply:  "num*",
	keyspec.KeyNumAdd:       "num+",
	keyspec.KeyNumSubtract:  "num-",
	keyspec.KeyNumDecimal:   "num.",
	keyspec.KeyNumDivide:    "num/",
	keyspec.KeyOEMBackslash: "\\",
}

type robot struct{}

// Robot returns the system keyboard.
func Robot() Keyboard { return robot{} }

func (robot) Down(k keyspec.Key) error { return toggle(k, "down") }
func (robot) Up(k keyspec.Key) error   { return toggle(k, "up") }

func toggle(k keyspec.Key, dir string) error {
	name, ok := robotName(k)
	if !ok {
		return fmt.Errorf("input: no keyboard mapping for %s", k)
	}
	return robotgo.KeyToggle(name, dir)
}

func robotName(k keyspec.Key) (string, bool) {
	if name, ok := robotNames[k]; ok {
		return name, true
	}
	name := k.Name()
	switch {
	case name == "":
		return "", false
	case k >= keyspec.KeyNum0 && k <= keyspec.Numpad(9):
		return "num" + strings.TrimPrefix(name, "Num"), true
	default:
		// Letters, digits, F-keys and the remaining punctuation.
		return strings.ToLower(name), true
	}
}

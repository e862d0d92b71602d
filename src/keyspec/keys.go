package keyspec

import (
	"fmt"
	"strings"
)

// Key identifies a physical key by its Windows virtual-key code. Other
// platforms translate through Native and FromNative.
type Key uint16

// Keys that need a name in code. Letters, digits and function keys are
// reachable through Letter, Digit and Function.
const (
	KeyBackspace Key = 0x08 // VK_BACK
	KeyTab       Key = 0x09 // VK_TAB
	KeyEnter     Key = 0x0D // VK_RETURN
	KeyShift     Key = 0x10 // VK_SHIFT
	KeyCtrl      Key = 0x11 // VK_CONTROL
	KeyAlt       Key = 0x12 // VK_MENU
	KeyEsc       Key = 0x1B // VK_ESCAPE
	KeySpace     Key = 0x20 // VK_SPACE
	KeyPageUp    Key = 0x21 // VK_PRIOR
	KeyPageDown  Key = 0x22 // VK_NEXT
	KeyEnd       Key = 0x23 // VK_END
	KeyHome      Key = 0x24 // VK_HOME
	KeyLeft      Key = 0x25 // VK_LEFT
	KeyUp        Key = 0x26 // VK_UP
	KeyRight     Key = 0x27 // VK_RIGHT
	KeyDown      Key = 0x28 // VK_DOWN
	KeyInsert    Key = 0x2D // VK_INSERT
	KeyDelete    Key = 0x2E // VK_DELETE
	KeyWin       Key = 0x5B // VK_LWIN

	KeyNum0        Key = 0x60 // VK_NUMPAD0
	KeyNumMultiply Key = 0x6A
	KeyNumAdd      Key = 0x6B
	KeyNumSubtract Key = 0x6D
	KeyNumDecimal  Key = 0x6E
	KeyNumDivide   Key = 0x6F

	KeyF1  Key = 0x70 // VK_F1
	KeyF24 Key = 0x87 // VK_F24

	KeyOEMSemicolon Key = 0xBA // VK_OEM_1
	KeyOEMPlus      Key = 0xBB
	KeyOEMComma     Key = 0xBC
	KeyOEMMinus     Key = 0xBD
	KeyOEMPeriod    Key = 0xBE
	KeyOEMSlash     Key = 0xBF // VK_OEM_2
	KeyOEMBacktick  Key = 0xC0 // VK_OEM_3
	KeyOEMLBracket  Key = 0xDB // VK_OEM_4
	KeyOEMBackslash Key = 0xDC // VK_OEM_5
	KeyOEMRBracket  Key = 0xDD // VK_OEM_6
	KeyOEMQuote     Key = 0xDE // VK_OEM_7
)

// Letter returns the key for 'A'..'Z' (case-insensitive).
func Letter(r rune) Key {
	if r >= 'a' && r <= 'z' {
		r -= 'a' - 'A'
	}
	if r < 'A' || r > 'Z' {
		return 0
	}
	return Key(r)
}

// Digit returns the key for the top-row digit d.
func Digit(d int) Key {
	if d < 0 || d > 9 {
		return 0
	}
	return Key('0' + d)
}

// Function returns F1..F24.
func Function(n int) Key {
	if n < 1 || n > 24 {
		return 0
	}
	return KeyF1 + Key(n-1)
}

// Numpad returns the keypad digit d.
func Numpad(d int) Key {
	if d < 0 || d > 9 {
		return 0
	}
	return KeyNum0 + Key(d)
}

type keyEntry struct {
	key     Key
	name    string
	aliases []string
}

var (
	keyTable []keyEntry
	byName   = map[string]Key{}
	nameOf   = map[Key]string{}
)

func init() {
	for r := 'A'; r <= 'Z'; r++ {
		keyTable = append(keyTable, keyEntry{key: Key(r), name: string(r)})
	}
	for d := 0; d <= 9; d++ {
		keyTable = append(keyTable, keyEntry{key: Digit(d), name: fmt.Sprint(d)})
	}
	for n := 1; n <= 24; n++ {
		keyTable = append(keyTable, keyEntry{key: Function(n), name: fmt.Sprintf("F%d", n)})
	}
	for d := 0; d <= 9; d++ {
		keyTable = append(keyTable, keyEntry{
			key:     Numpad(d),
			name:    fmt.Sprintf("Num%d", d),
			aliases: []string{fmt.Sprintf("Numpad%d", d), fmt.Sprintf("NumPad%d", d), fmt.Sprintf("KP%d", d)},
		})
	}

	keyTable = append(keyTable,
		keyEntry{KeySpace, "Space", nil},
		keyEntry{KeyEnter, "Enter", []string{"Return"}},
		keyEntry{KeyEsc, "Esc", []string{"Escape"}},
		keyEntry{KeyTab, "Tab", nil},
		keyEntry{KeyBackspace, "Backspace", []string{"Back"}},
		keyEntry{KeyDelete, "Delete", []string{"Del"}},
		keyEntry{KeyInsert, "Insert", []string{"Ins"}},
		keyEntry{KeyHome, "Home", nil},
		keyEntry{KeyEnd, "End", nil},
		keyEntry{KeyPageUp, "PageUp", []string{"PgUp", "Prior"}},
		keyEntry{KeyPageDown, "PageDown", []string{"PgDn", "Next"}},
		keyEntry{KeyLeft, "Left", []string{"ArrowLeft"}},
		keyEntry{KeyUp, "Up", []string{"ArrowUp"}},
		keyEntry{KeyRight, "Right", []string{"ArrowRight"}},
		keyEntry{KeyDown, "Down", []string{"ArrowDown"}},

		keyEntry{KeyOEMPlus, "+", []string{"Plus", "OemPlus", "=", "Equal"}},
		keyEntry{KeyOEMMinus, "-", []string{"Minus", "OemMinus"}},
		keyEntry{KeyOEMComma, ",", []string{"Comma", "OemComma"}},
		keyEntry{KeyOEMPeriod, ".", []string{"Period", "OemPeriod"}},
		keyEntry{KeyOEMSlash, "/", []string{"Slash", "OemQuestion"}},
		keyEntry{KeyOEMSemicolon, ";", []string{"Semicolon", "OemSemicolon"}},
		keyEntry{KeyOEMQuote, "'", []string{"Quote", "OemQuotes"}},
		keyEntry{KeyOEMLBracket, "[", []string{"BracketLeft", "OemOpenBrackets"}},
		keyEntry{KeyOEMRBracket, "]", []string{"BracketRight", "OemCloseBrackets"}},
		keyEntry{KeyOEMBackslash, `\`, []string{"Backslash", "OemPipe"}},
		keyEntry{KeyOEMBacktick, "`", []string{"Backquote", "Grave", "OemTilde"}},

		keyEntry{KeyNumMultiply, "NumMultiply", []string{"Multiply"}},
		keyEntry{KeyNumAdd, "NumAdd", []string{"Add"}},
		keyEntry{KeyNumSubtract, "NumSubtract", []string{"Subtract"}},
		keyEntry{KeyNumDecimal, "NumDecimal", []string{"Decimal"}},
		keyEntry{KeyNumDivide, "NumDivide", []string{"Divide"}},

		// Bare modifiers: valid keys for events and synthesis, never a primary key.
		keyEntry{KeyCtrl, "Ctrl", nil},
		keyEntry{KeyAlt, "Alt", nil},
		keyEntry{KeyShift, "Shift", nil},
		keyEntry{KeyWin, "Win", nil},
	)

	for _, e := range keyTable {
		nameOf[e.key] = e.name
		byName[strings.ToLower(e.name)] = e.key
		for _, a := range e.aliases {
			byName[strings.ToLower(a)] = e.key
		}
	}
}

// Lookup resolves a key name or alias, case-insensitively.
func Lookup(name string) (Key, bool) {
	k, ok := byName[strings.ToLower(strings.TrimSpace(name))]
	return k, ok
}

// All returns every known key, modifiers included, in table order.
func All() []Key {
	out := make([]Key, 0, len(keyTable))
	for _, e := range keyTable {
		out = append(out, e.key)
	}
	return out
}

// Valid reports whether k is in the key table.
func (k Key) Valid() bool {
	_, ok := nameOf[k]
	return ok
}

// Name returns the canonical name, or "" for unknown keys.
func (k Key) Name() string { return nameOf[k] }

func (k Key) String() string {
	if n := nameOf[k]; n != "" {
		return n
	}
	return fmt.Sprintf("Key(0x%02X)", uint16(k))
}

// VK returns the Windows virtual-key code.
func (k Key) VK() uint16 { return uint16(k) }

func (k Key) IsFunction() bool { return k >= KeyF1 && k <= KeyF24 }

func (k Key) IsModifier() bool {
	switch k {
	case KeyCtrl, KeyAlt, KeyShift, KeyWin:
		return true
	}
	return false
}

// Modifier returns the modifier bit for a bare modifier key.
func (k Key) Modifier() (Modifier, bool) {
	switch k {
	case KeyCtrl:
		return ModCtrl, true
	case KeyAlt:
		return ModAlt, true
	case KeyShift:
		return ModShift, true
	case KeyWin:
		return ModWin, true
	}
	return ModNone, false
}

// ModifierKey is the inverse of Key.Modifier for a single modifier bit.
func ModifierKey(m Modifier) Key {
	switch m {
	case ModCtrl:
		return KeyCtrl
	case ModAlt:
		return KeyAlt
	case ModShift:
		return KeyShift
	case ModWin:
		return KeyWin
	}
	return 0
}

// FromVK maps a Windows virtual-key code to a Key. Left/right modifier
// variants collapse onto the generic modifier keys.
func FromVK(vk uint16) (Key, bool) {
	switch vk {
	case 0xA0, 0xA1: // VK_LSHIFT, VK_RSHIFT
		return KeyShift, true
	case 0xA2, 0xA3: // VK_LCONTROL, VK_RCONTROL
		return KeyCtrl, true
	case 0xA4, 0xA5: // VK_LMENU, VK_RMENU
		return KeyAlt, true
	case 0x5C: // VK_RWIN
		return KeyWin, true
	}
	k := Key(vk)
	return k, k.Valid()
}

package hotkey

import (
	"strings"

	"ai-anywhere/src/keyspec"
)

var portalKeyNames = map[keyspec.Key]string{
	keyspec.KeySpace:        "space",
	keyspec.KeyEnter:        "Return",
	keyspec.KeyEsc:          "Escape",
	keyspec.KeyTab:          "Tab",
	keyspec.KeyBackspace:    "BackSpace",
	keyspec.KeyDelete:       "Delete",
	keyspec.KeyInsert:       "Insert",
	keyspec.KeyHome:         "Home",
	keyspec.KeyEnd:          "End",
	keyspec.KeyPageUp:       "Page_Up",
	keyspec.KeyPageDown:     "Page_Down",
	keyspec.KeyLeft:         "Left",
	keyspec.KeyUp:           "Up",
	keyspec.KeyRight:        "Right",
	keyspec.KeyDown:         "Down",
	keyspec.KeyOEMPlus:      "equal",
	keyspec.KeyOEMMinus:     "minus",
	keyspec.KeyOEMComma:     "comma",
	keyspec.KeyOEMPeriod:    "period",
	keyspec.KeyOEMSlash:     "slash",
	keyspec.KeyOEMSemicolon: "semicolon",
	keyspec.KeyOEMQuote:     "apostrophe",
	keyspec.KeyOEMLBracket:  "bracketleft",
	keyspec.KeyOEMRBracket:  "bracketright",
	keyspec.KeyOEMBackslash: "backslash",
	keyspec.KeyOEMBacktick:  "grave",
	keyspec.KeyNumMultiply:  "KP_Multiply",
	keyspec.KeyNumAdd:       "KP_Add",
	keyspec.KeyNumSubtract:  "KP_Subtract",
	keyspec.KeyNumDecimal:   "KP_Decimal",
	keyspec.KeyNumDivide:    "KP_Divide",
}

var portalModifierNames = map[keyspec.Modifier]string{
	keyspec.ModCtrl:  "CTRL",
	keyspec.ModAlt:   "ALT",
	keyspec.ModShift: "SHIFT",
	keyspec.ModWin:   "LOGO",
}

// portalTrigger renders spec in the XDG shortcuts format used for the
// GlobalShortcuts "preferred_trigger", e.g. "CTRL+ALT+k".
func portalTrigger(spec keyspec.KeySpec) string {
	parts := make([]string, 0, 5)
	for _, m := range spec.Modifiers().List() {
		parts = append(parts, portalModifierNames[m])
	}

	k := spec.Key()
	name, ok := portalKeyNames[k]
	switch {
	case ok:
	case k >= keyspec.KeyNum0 && k <= keyspec.Numpad(9):
		name = "KP_" + strings.TrimPrefix(k.Name(), "Num")
	case len(k.Name()) == 1:
		name = strings.ToLower(k.Name())
	default:
		name = k.Name()
	}
	return strings.Join(append(parts, name), "+")
}

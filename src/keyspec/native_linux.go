//go:build linux

package keyspec

// X11 keysyms. golang.design/x/hotkey registers keysyms and the gohook X11
// backend reports the keysym as the event rawcode.
var keysyms = map[Key]uint16{
	KeyBackspace: 0xff08,
	KeyTab:       0xff09,
	KeyEnter:     0xff0d,
	KeyEsc:       0xff1b,
	KeySpace:     0x0020,
	KeyPageUp:    0xff55,
	KeyPageDown:  0xff56,
	KeyEnd:       0xff57,
	KeyHome:      0xff50,
	KeyLeft:      0xff51,
	KeyUp:        0xff52,
	KeyRight:     0xff53,
	KeyDown:      0xff54,
	KeyInsert:    0xff63,
	KeyDelete:    0xffff,

	KeyShift: 0xffe1,
	KeyCtrl:  0xffe3,
	KeyAlt:   0xffe9,
	KeyWin:   0xffeb,

	KeyNumMultiply: 0xffaa,
	KeyNumAdd:      0xffab,
	KeyNumSubtract: 0xffad,
	KeyNumDecimal:  0xffae,
	KeyNumDivide:   0xffaf,

	KeyOEMSemicolon: 0x003b,
	KeyOEMPlus:      0x003d, // the "=+" key
	KeyOEMComma:     0x002c,
	KeyOEMMinus:     0x002d,
	KeyOEMPeriod:    0x002e,
	KeyOEMSlash:     0x002f,
	KeyOEMBacktick:  0x0060,
	KeyOEMLBracket:  0x005b,
	KeyOEMBackslash: 0x005c,
	KeyOEMRBracket:  0x005d,
	KeyOEMQuote:     0x0027,
}

var fromKeysym = map[uint16]Key{
	0xffe2: KeyShift, // Shift_R
	0xffe4: KeyCtrl,  // Control_R
	0xffea: KeyAlt,   // Alt_R
	0xffe7: KeyWin,   // Meta_L
	0xffe8: KeyWin,   // Meta_R
	0xffec: KeyWin,   // Super_R

	// Shifted symbols on a US layout: with Shift held the X server reports
	// the symbol keysym, not the key's base keysym.
	0x0021: Key('1'), // exclam
	0x0040: Key('2'), // at
	0x0023: Key('3'), // numbersign
	0x0024: Key('4'), // dollar
	0x0025: Key('5'), // percent
	0x005e: Key('6'), // asciicircum
	0x0026: Key('7'), // ampersand
	0x002a: Key('8'), // asterisk
	0x0028: Key('9'), // parenleft
	0x0029: Key('0'), // parenright
	0x002b: KeyOEMPlus,
	0x003a: KeyOEMSemicolon,
	0x003c: KeyOEMComma,
	0x005f: KeyOEMMinus,
	0x003e: KeyOEMPeriod,
	0x003f: KeyOEMSlash,
	0x007e: KeyOEMBacktick,
	0x007b: KeyOEMLBracket,
	0x007c: KeyOEMBackslash,
	0x007d: KeyOEMRBracket,
	0x0022: KeyOEMQuote,
}

func init() {
	for r := 'A'; r <= 'Z'; r++ {
		keysyms[Key(r)] = uint16(r - 'A' + 'a')
		fromKeysym[uint16(r)] = Key(r) // shifted letters report upper-case keysyms
	}
	for d := 0; d <= 9; d++ {
		keysyms[Digit(d)] = uint16('0' + d)
		keysyms[Numpad(d)] = uint16(0xffb0 + d)
	}
	for n := 1; n <= 24; n++ {
		keysyms[Function(n)] = uint16(0xffbe + n - 1)
	}
	for k, sym := range keysyms {
		fromKeysym[sym] = k
	}
}

// Native returns the X11 keysym for k.
func Native(k Key) (uint16, bool) {
	sym, ok := keysyms[k]
	return sym, ok
}

// FromNative maps an X11 keysym back to a Key.
func FromNative(code uint16) (Key, bool) {
	k, ok := fromKeysym[code]
	return k, ok
}

// IsSystemSentinel reports ISO_Level3_Shift (AltGr) and Mode_switch.
func IsSystemSentinel(code uint16) bool { return code == 0xfe03 || code == 0xff7e }

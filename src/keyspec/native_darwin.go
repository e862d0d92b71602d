//go:build darwin

package keyspec

// macOS virtual key codes (kVK_*), shared by Carbon hotkeys and the gohook
// event tap.
var kvk = map[Key]uint16{
	Letter('A'): 0x00, Letter('S'): 0x01, Letter('D'): 0x02, Letter('F'): 0x03,
	Letter('H'): 0x04, Letter('G'): 0x05, Letter('Z'): 0x06, Letter('X'): 0x07,
	Letter('C'): 0x08, Letter('V'): 0x09, Letter('B'): 0x0B, Letter('Q'): 0x0C,
	Letter('W'): 0x0D, Letter('E'): 0x0E, Letter('R'): 0x0F, Letter('Y'): 0x10,
	Letter('T'): 0x11, Letter('O'): 0x1F, Letter('U'): 0x20, Letter('I'): 0x22,
	Letter('P'): 0x23, Letter('L'): 0x25, Letter('J'): 0x26, Letter('K'): 0x28,
	Letter('N'): 0x2D, Letter('M'): 0x2E,

	Digit(1): 0x12, Digit(2): 0x13, Digit(3): 0x14, Digit(4): 0x15, Digit(6): 0x16,
	Digit(5): 0x17, Digit(9): 0x19, Digit(7): 0x1A, Digit(8): 0x1C, Digit(0): 0x1D,

	KeyOEMPlus: 0x18, KeyOEMMinus: 0x1B, KeyOEMRBracket: 0x1E, KeyOEMLBracket: 0x21,
	KeyOEMQuote: 0x27, KeyOEMSemicolon: 0x29, KeyOEMBackslash: 0x2A, KeyOEMComma: 0x2B,
	KeyOEMSlash: 0x2C, KeyOEMPeriod: 0x2F, KeyOEMBacktick: 0x32,

	KeyEnter: 0x24, KeyTab: 0x30, KeySpace: 0x31, KeyBackspace: 0x33, KeyEsc: 0x35,
	KeyInsert: 0x72, KeyHome: 0x73, KeyPageUp: 0x74, KeyDelete: 0x75, KeyEnd: 0x77,
	KeyPageDown: 0x79, KeyLeft: 0x7B, KeyRight: 0x7C, KeyDown: 0x7D, KeyUp: 0x7E,

	Function(1): 0x7A, Function(2): 0x78, Function(3): 0x63, Function(4): 0x76,
	Function(5): 0x60, Function(6): 0x61, Function(7): 0x62, Function(8): 0x64,
	Function(9): 0x65, Function(10): 0x6D, Function(11): 0x67, Function(12): 0x6F,
	Function(13): 0x69, Function(14): 0x6B, Function(15): 0x71, Function(16): 0x6A,
	Function(17): 0x40, Function(18): 0x4F, Function(19): 0x50, Function(20): 0x5A,

	Numpad(0): 0x52, Numpad(1): 0x53, Numpad(2): 0x54, Numpad(3): 0x55, Numpad(4): 0x56,
	Numpad(5): 0x57, Numpad(6): 0x58, Numpad(7): 0x59, Numpad(8): 0x5B, Numpad(9): 0x5C,
	KeyNumDecimal: 0x41, KeyNumMultiply: 0x43, KeyNumAdd: 0x45, KeyNumDivide: 0x4B,
	KeyNumSubtract: 0x4E,

	KeyWin: 0x37, KeyShift: 0x38, KeyAlt: 0x3A, KeyCtrl: 0x3B,
}

var fromKVK = map[uint16]Key{
	0x36: KeyWin,   // right command
	0x3C: KeyShift, // right shift
	0x3D: KeyAlt,   // right option
	0x3E: KeyCtrl,  // right control
}

func init() {
	for k, code := range kvk {
		fromKVK[code] = k
	}
}

// Native returns the kVK code for k. F21-F24 have no macOS key code.
func Native(k Key) (uint16, bool) {
	code, ok := kvk[k]
	return code, ok
}

// FromNative maps a kVK code back to a Key.
func FromNative(code uint16) (Key, bool) {
	k, ok := fromKVK[code]
	return k, ok
}

// IsSystemSentinel reports kVK_Function (the fn key), which never forms a chord.
func IsSystemSentinel(code uint16) bool { return code == 0x3F }

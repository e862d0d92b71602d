// Package keyspec is the single codec between human-readable hotkey strings
// ("Ctrl+Alt+K") and the structured modifier+key form used for registration,
// interactive capture and keystroke synthesis.
package keyspec

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrEmpty             = errors.New("keyspec: empty hotkey")
	ErrMalformed         = errors.New("keyspec: malformed hotkey")
	ErrUnknownKey        = errors.New("keyspec: unknown key")
	ErrDuplicateModifier = errors.New("keyspec: modifier repeated")
	ErrMultipleKeys      = errors.New("keyspec: more than one non-modifier key")
	ErrNoKey             = errors.New("keyspec: hotkey has no primary key")
	ErrNoModifier        = errors.New("keyspec: at least one modifier is required unless the key is F1-F24")
)

// Modifier is a bit set. Bit values match the Win32 MOD_* flags.
type Modifier uint8

const (
	ModAlt Modifier = 1 << iota
	ModCtrl
	ModShift
	ModWin

	ModNone Modifier = 0
)

// modifierOrder is the canonical order used by Format.
var modifierOrder = []Modifier{ModCtrl, ModAlt, ModShift, ModWin}

var modifierNames = map[Modifier]string{
	ModCtrl:  "Ctrl",
	ModAlt:   "Alt",
	ModShift: "Shift",
	ModWin:   "Win",
}

var modifierAliases = map[string]Modifier{
	"ctrl":    ModCtrl,
	"control": ModCtrl,
	"ctl":     ModCtrl,
	"alt":     ModAlt,
	"option":  ModAlt,
	"opt":     ModAlt,
	"shift":   ModShift,
	"win":     ModWin,
	"windows": ModWin,
	"super":   ModWin,
	"meta":    ModWin,
	"cmd":     ModWin,
	"command": ModWin,
}

// List returns the individual modifiers of m in canonical order.
func (m Modifier) List() []Modifier {
	var out []Modifier
	for _, mod := range modifierOrder {
		if m&mod != 0 {
			out = append(out, mod)
		}
	}
	return out
}

func (m Modifier) String() string {
	names := make([]string, 0, 4)
	for _, mod := range m.List() {
		names = append(names, modifierNames[mod])
	}
	return strings.Join(names, "+")
}

// KeySpec is a validated chord. The zero value is not a valid hotkey; build one
// with Parse, New or MustParse.
type KeySpec struct {
	mods Modifier
	key  Key
}

// New validates the chord rule and returns the KeySpec.
func New(mods Modifier, key Key) (KeySpec, error) {
	mods &= ModCtrl | ModAlt | ModShift | ModWin
	if !key.Valid() || key.IsModifier() {
		return KeySpec{}, fmt.Errorf("%w: %v", ErrUnknownKey, key)
	}
	if !ValidChord(mods, key) {
		return KeySpec{}, ErrNoModifier
	}
	return KeySpec{mods: mods, key: key}, nil
}

// MustParse is Parse for compile-time constants; it panics on error.
func MustParse(s string) KeySpec {
	k, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return k
}

func (k KeySpec) Modifiers() Modifier  { return k.mods }
func (k KeySpec) Key() Key             { return k.key }
func (k KeySpec) Has(m Modifier) bool  { return k.mods&m == m }
func (k KeySpec) IsZero() bool         { return k.key == 0 }
func (k KeySpec) String() string       { return Format(k) }
func (k KeySpec) Equal(o KeySpec) bool { return k.mods == o.mods && k.key == o.key }

// ValidChord reports whether mods+key may be used as a hotkey: the key must be a
// known non-modifier key, and a chord without modifiers is only allowed for the
// function keys F1-F24.
func ValidChord(mods Modifier, key Key) bool {
	if !key.Valid() || key.IsModifier() {
		return false
	}
	if mods&(ModCtrl|ModAlt|ModShift|ModWin) != 0 {
		return true
	}
	return key.IsFunction()
}

// Parse converts a hotkey string into a KeySpec. Matching is case-insensitive
// and accepts common aliases (Control, Super, Cmd, Return, Escape, PgUp, ...).
// A literal "+" key is written last, e.g. "Ctrl++".
func Parse(s string) (KeySpec, error) {
	toks, err := tokenize(s)
	if err != nil {
		return KeySpec{}, err
	}

	var mods Modifier
	var key Key
	for _, tok := range toks {
		if m, ok := modifierAliases[strings.ToLower(tok)]; ok {
			if mods&m != 0 {
				return KeySpec{}, fmt.Errorf("%w: %q", ErrDuplicateModifier, tok)
			}
			mods |= m
			continue
		}
		k, ok := Lookup(tok)
		if !ok || k.IsModifier() {
			return KeySpec{}, fmt.Errorf("%w: %q", ErrUnknownKey, tok)
		}
		if key != 0 {
			return KeySpec{}, fmt.Errorf("%w: %q", ErrMultipleKeys, s)
		}
		key = k
	}

	if key == 0 {
		return KeySpec{}, fmt.Errorf("%w: %q", ErrNoKey, s)
	}
	if !ValidChord(mods, key) {
		return KeySpec{}, fmt.Errorf("%w: %q", ErrNoModifier, s)
	}
	return KeySpec{mods: mods, key: key}, nil
}

func tokenize(s string) ([]string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, ErrEmpty
	}
	if s == "+" {
		return []string{"+"}, nil
	}

	plusKey := false
	if strings.HasSuffix(s, "++") {
		plusKey = true
		s = strings.TrimSpace(s[:len(s)-2])
	}

	var toks []string
	if s != "" {
		for _, part := range strings.Split(s, "+") {
			part = strings.TrimSpace(part)
			if part == "" {
				return nil, fmt.Errorf("%w: empty segment", ErrMalformed)
			}
			toks = append(toks, part)
		}
	}
	if plusKey {
		toks = append(toks, "+")
	}
	return toks, nil
}

// Format renders the canonical string: modifiers in the order Ctrl, Alt, Shift,
// Win, followed by the key name.
func Format(k KeySpec) string {
	if k.IsZero() {
		return ""
	}
	parts := make([]string, 0, 5)
	for _, mod := range k.mods.List() {
		parts = append(parts, modifierNames[mod])
	}
	parts = append(parts, k.key.Name())
	return strings.Join(parts, "+")
}

var reserved []KeySpec

func init() {
	for _, s := range []string{
		"Alt+Space", "Alt+F4", "Ctrl+Alt+Delete", "Alt+Tab", "Alt+Esc",
		"Ctrl+Esc", "Alt+Enter", "Win+D", "Win+E", "Win+L", "Win+R", "Win+Tab",
	} {
		reserved = append(reserved, MustParse(s))
	}
}

// IsReserved reports chords the OS keeps for itself. Registering them either
// fails or breaks expected system behaviour.
func IsReserved(k KeySpec) bool {
	for _, r := range reserved {
		if r.Equal(k) {
			return true
		}
	}
	return false
}

// Package input synthesizes keystrokes into whatever window has focus.
package input

import (
	"fmt"
	"log"
	"time"

	"ai-anywhere/src/keyspec"
)

// DefaultStep is the pause between two key transitions.
const DefaultStep = 10 * time.Millisecond

// Keyboard presses and releases single keys.
type Keyboard interface {
	Down(k keyspec.Key) error
	Up(k keyspec.Key) error
}

// Synth turns chords into ordered key transitions on a Keyboard.
type Synth struct {
	kb    Keyboard
	Step  time.Duration
	sleep func(time.Duration)
}

func NewSynth(kb Keyboard) *Synth {
	return &Synth{kb: kb, Step: DefaultStep, sleep: time.Sleep}
}

// Chord presses the modifiers in canonical order, then the key, and releases
// them in reverse.
func (s *Synth) Chord(spec keyspec.KeySpec) error {
	return s.press(spec.Modifiers(), spec.Key())
}

// Tap presses and releases a single key with no modifiers.
func (s *Synth) Tap(k keyspec.Key) error {
	return s.press(keyspec.ModNone, k)
}

// Copy sends the platform copy chord (Ctrl+C, Cmd+C on macOS).
func (s *Synth) Copy() error {
	return s.press(PlatformModifier(), keyspec.Letter('C'))
}

// Paste sends the platform paste chord.
func (s *Synth) Paste() error {
	return s.press(PlatformModifier(), keyspec.Letter('V'))
}

// DeleteSelection removes the current selection in the focused control.
func (s *Synth) DeleteSelection() error {
	return s.Tap(keyspec.KeyDelete)
}

// press never leaves a key held down: whatever was pressed is released even
// when a later transition fails.
func (s *Synth) press(mods keyspec.Modifier, key keyspec.Key) error {
	if !key.Valid() {
		return fmt.Errorf("input: unknown key %v", key)
	}

	var held []keyspec.Key
	release := func() {
		for i := len(held) - 1; i >= 0; i-- {
			if err := s.kb.Up(held[i]); err != nil {
				log.Printf("input: release %s: %v", held[i], err)
			}
			s.pause()
		}
	}

	for _, m := range mods.List() {
		mk := keyspec.ModifierKey(m)
		if err := s.kb.Down(mk); err != nil {
			release()
			return fmt.Errorf("input: press %s: %w", mk, err)
		}
		held = append(held, mk)
		s.pause()
	}

	if err := s.kb.Down(key); err != nil {
		release()
		return fmt.Errorf("input: press %s: %w", key, err)
	}
	s.pause()
	held = append(held, key)
	release()
	return nil
}

func (s *Synth) pause() {
	if s.Step > 0 {
		s.sleep(s.Step)
	}
}

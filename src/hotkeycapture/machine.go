// Package hotkeycapture turns key presses in a settings field into a
// canonical hotkey string.
package hotkeycapture

import (
	"fmt"
	"log"

	"ai-anywhere/src/keyspec"
)

type State int

const (
	Idle State = iota
	Capturing
	Committed
	Cancelled
)

func (s State) String() string {
	switch s {
	case Idle:
		return "Idle"
	case Capturing:
		return "Capturing"
	case Committed:
		return "Committed"
	case Cancelled:
		return "Cancelled"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Outcome is what a single key-down did to the machine.
type Outcome int

const (
	// OutcomeIgnored: not capturing, a bare modifier, or the system sentinel.
	OutcomeIgnored Outcome = iota
	// OutcomeRejected: not a valid chord, e.g. a letter without modifiers.
	OutcomeRejected
	// OutcomeBlocked: a chord the OS reserves for itself.
	OutcomeBlocked
	// OutcomeUnavailable: the availability check refused the chord.
	OutcomeUnavailable
	OutcomeCommitted
	OutcomeCancelled
)

func (o Outcome) String() string {
	switch o {
	case OutcomeIgnored:
		return "ignored"
	case OutcomeRejected:
		return "rejected"
	case OutcomeBlocked:
		return "blocked"
	case OutcomeUnavailable:
		return "unavailable"
	case OutcomeCommitted:
		return "committed"
	case OutcomeCancelled:
		return "cancelled"
	}
	return fmt.Sprintf("Outcome(%d)", int(o))
}

// Event is a key-down together with the modifiers held at that moment.
type Event struct {
	Key    keyspec.Key
	Mods   keyspec.Modifier
	System bool
}

type Option func(*Machine)

// WithReservedCheck refuses chords the OS reserves (Alt+F4, Win+L, ...).
// Capture continues after a refusal.
func WithReservedCheck() Option {
	return func(m *Machine) { m.checkReserved = true }
}

// WithAvailability refuses chords for which check returns an error, usually
// a registration probe.
func WithAvailability(check func(keyspec.KeySpec) error) Option {
	return func(m *Machine) { m.available = check }
}

func OnCommit(fn func(string)) Option {
	return func(m *Machine) { m.onCommit = fn }
}

func OnBlocked(fn func(keyspec.KeySpec)) Option {
	return func(m *Machine) { m.onBlocked = fn }
}

func OnUnavailable(fn func(keyspec.KeySpec, error)) Option {
	return func(m *Machine) { m.onUnavailable = fn }
}

// OnRelease is called when the field should give up focus, after a commit
// or a cancel.
func OnRelease(fn func()) Option {
	return func(m *Machine) { m.onRelease = fn }
}

// Machine holds the state of one hotkey field. It is not safe for
// concurrent use; drive it from the goroutine that owns the field.
type Machine struct {
	state State
	value string
	prior string

	checkReserved bool
	available     func(keyspec.KeySpec) error
	onCommit      func(string)
	onBlocked     func(keyspec.KeySpec)
	onUnavailable func(keyspec.KeySpec, error)
	onRelease     func()
}

func New(opts ...Option) *Machine {
	m := &Machine{}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Machine) State() State  { return m.state }
func (m *Machine) Value() string { return m.value }

// Focus starts a capture over the field's current value.
func (m *Machine) Focus(current string) {
	m.value = current
	m.prior = current
	m.state = Capturing
}

func (m *Machine) KeyDown(ev Event) Outcome {
	if m.state != Capturing {
		return OutcomeIgnored
	}
	if ev.System || !ev.Key.Valid() || ev.Key.IsModifier() {
		return OutcomeIgnored
	}
	if ev.Key == keyspec.KeyEsc {
		m.value = m.prior
		m.state = Cancelled
		m.release()
		return OutcomeCancelled
	}

	spec, err := keyspec.New(ev.Mods, ev.Key)
	if err != nil {
		return OutcomeRejected
	}
	if m.checkReserved && keyspec.IsReserved(spec) {
		log.Printf("hotkeycapture: %s is reserved by the system", spec)
		if m.onBlocked != nil {
			m.onBlocked(spec)
		}
		return OutcomeBlocked
	}
	if m.available != nil {
		if err := m.available(spec); err != nil {
			log.Printf("hotkeycapture: %s unavailable: %v", spec, err)
			if m.onUnavailable != nil {
				m.onUnavailable(spec, err)
			}
			return OutcomeUnavailable
		}
	}

	m.value = keyspec.Format(spec)
	m.state = Committed
	if m.onCommit != nil {
		m.onCommit(m.value)
	}
	m.release()
	return OutcomeCommitted
}

// Blur ends the capture. Leaving without a commit restores the value the
// field had on Focus.
func (m *Machine) Blur() {
	if m.state == Capturing {
		m.value = m.prior
	}
	m.state = Idle
}

func (m *Machine) release() {
	if m.onRelease != nil {
		m.onRelease()
	}
}

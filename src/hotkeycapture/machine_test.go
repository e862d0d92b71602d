package hotkeycapture

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ai-anywhere/src/hotkey"
	"ai-anywhere/src/keyspec"
)

func down(key keyspec.Key, mods keyspec.Modifier) Event { return Event{Key: key, Mods: mods} }

func TestCommit(t *testing.T) {
	var committed string
	released := 0
	m := New(OnCommit(func(s string) { committed = s }), OnRelease(func() { released++ }))
	m.Focus("Ctrl+Space")
	require.Equal(t, Capturing, m.State())

	assert.Equal(t, OutcomeIgnored, m.KeyDown(down(keyspec.KeyCtrl, keyspec.ModCtrl)))
	assert.Equal(t, OutcomeIgnored, m.KeyDown(down(keyspec.KeyAlt, keyspec.ModCtrl|keyspec.ModAlt)))
	assert.Equal(t, OutcomeCommitted, m.KeyDown(down(keyspec.Letter('K'), keyspec.ModCtrl|keyspec.ModAlt)))

	assert.Equal(t, "Ctrl+Alt+K", m.Value())
	assert.Equal(t, "Ctrl+Alt+K", committed)
	assert.Equal(t, Committed, m.State())
	assert.Equal(t, 1, released)

	m.Blur()
	assert.Equal(t, Idle, m.State())
	assert.Equal(t, "Ctrl+Alt+K", m.Value(), "blur after commit keeps the new value")
}

func TestEscapeCancels(t *testing.T) {
	m := New()
	m.Focus("Ctrl+Space")

	assert.Equal(t, OutcomeCancelled, m.KeyDown(down(keyspec.KeyEsc, keyspec.ModNone)))
	assert.Equal(t, Cancelled, m.State())
	assert.Equal(t, "Ctrl+Space", m.Value())
}

func TestBlurWithoutCommitRestores(t *testing.T) {
	m := New()
	m.Focus("Ctrl+Space")
	assert.Equal(t, OutcomeRejected, m.KeyDown(down(keyspec.Letter('A'), keyspec.ModNone)))
	m.Blur()

	assert.Equal(t, Idle, m.State())
	assert.Equal(t, "Ctrl+Space", m.Value())
}

func TestIgnoredKeys(t *testing.T) {
	m := New()
	assert.Equal(t, OutcomeIgnored, m.KeyDown(down(keyspec.Letter('K'), keyspec.ModCtrl)), "not capturing")

	m.Focus("")
	for _, ev := range []Event{
		{Key: keyspec.KeyShift, Mods: keyspec.ModShift},
		{Key: keyspec.KeyWin, Mods: keyspec.ModWin},
		{System: true, Mods: keyspec.ModCtrl | keyspec.ModAlt},
		{Key: keyspec.Key(0xFF), Mods: keyspec.ModCtrl},
	} {
		assert.Equal(t, OutcomeIgnored, m.KeyDown(ev), "event %+v", ev)
	}
	assert.Equal(t, Capturing, m.State())
}

func TestFunctionKeyWithoutModifier(t *testing.T) {
	m := New()
	m.Focus("")
	assert.Equal(t, OutcomeCommitted, m.KeyDown(down(keyspec.Function(9), keyspec.ModNone)))
	assert.Equal(t, "F9", m.Value())
}

func TestReservedBlocked(t *testing.T) {
	var blocked []string
	m := New(WithReservedCheck(), OnBlocked(func(k keyspec.KeySpec) { blocked = append(blocked, k.String()) }))
	m.Focus("Ctrl+Space")

	assert.Equal(t, OutcomeBlocked, m.KeyDown(down(keyspec.Function(4), keyspec.ModAlt)))
	assert.Equal(t, Capturing, m.State(), "capture continues after a reserved chord")
	assert.Equal(t, []string{"Alt+F4"}, blocked)

	assert.Equal(t, OutcomeCommitted, m.KeyDown(down(keyspec.Function(5), keyspec.ModAlt)))
	assert.Equal(t, "Alt+F5", m.Value())
}

func TestReservedAllowedWithoutCheck(t *testing.T) {
	m := New()
	m.Focus("")
	assert.Equal(t, OutcomeCommitted, m.KeyDown(down(keyspec.Function(4), keyspec.ModAlt)))
}

func TestUnavailable(t *testing.T) {
	taken := errors.New("already in use")
	var refused keyspec.KeySpec
	m := New(
		WithAvailability(func(k keyspec.KeySpec) error {
			if k.String() == "Ctrl+Shift+S" {
				return taken
			}
			return nil
		}),
		OnUnavailable(func(k keyspec.KeySpec, err error) {
			refused = k
			assert.ErrorIs(t, err, taken)
		}),
	)
	m.Focus("Ctrl+Space")

	assert.Equal(t, OutcomeUnavailable, m.KeyDown(down(keyspec.Letter('S'), keyspec.ModCtrl|keyspec.ModShift)))
	assert.Equal(t, "Ctrl+Shift+S", refused.String())
	assert.Equal(t, "Ctrl+Space", m.Value())
	assert.Equal(t, Capturing, m.State())
}

func keyEvents(evs ...hotkey.KeyEvent) <-chan hotkey.KeyEvent {
	ch := make(chan hotkey.KeyEvent, len(evs))
	for _, ev := range evs {
		ch <- ev
	}
	return ch
}

func TestRecordTracksModifiers(t *testing.T) {
	events := keyEvents(
		hotkey.KeyEvent{Key: keyspec.KeyShift, Down: true},
		hotkey.KeyEvent{Key: keyspec.KeyShift, Down: false},
		hotkey.KeyEvent{Key: keyspec.KeyCtrl, Down: true},
		hotkey.KeyEvent{System: true, Down: true},
		hotkey.KeyEvent{Key: keyspec.KeyAlt, Down: true},
		hotkey.KeyEvent{Key: keyspec.Letter('J'), Down: true},
	)

	got, err := Record(context.Background(), events, "Ctrl+Space")
	require.NoError(t, err)
	assert.Equal(t, "Ctrl+Alt+J", got)
}

func TestRecordCancel(t *testing.T) {
	events := keyEvents(hotkey.KeyEvent{Key: keyspec.KeyEsc, Down: true})

	got, err := Record(context.Background(), events, "Ctrl+Space")
	assert.ErrorIs(t, err, ErrCancelled)
	assert.Equal(t, "Ctrl+Space", got)
}

func TestRecordContextEnds(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	got, err := Record(ctx, make(chan hotkey.KeyEvent), "Ctrl+Space")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, "Ctrl+Space", got)
}

func TestRecordStreamClosed(t *testing.T) {
	ch := make(chan hotkey.KeyEvent)
	close(ch)

	got, err := Record(context.Background(), ch, "F8")
	assert.ErrorIs(t, err, ErrStreamClosed)
	assert.Equal(t, "F8", got)
}

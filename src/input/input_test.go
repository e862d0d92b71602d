package input

import (
	"errors"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ai-anywhere/src/keyspec"
)

func newTestSynth(kb Keyboard) (*Synth, *[]time.Duration) {
	var slept []time.Duration
	s := NewSynth(kb)
	s.sleep = func(d time.Duration) { slept = append(slept, d) }
	return s, &slept
}

func TestChordOrder(t *testing.T) {
	rec := &Recorder{}
	s, slept := newTestSynth(rec)

	require.NoError(t, s.Chord(keyspec.MustParse("Shift+Ctrl+Alt+K")))

	assert.Equal(t, []string{
		"down Ctrl", "down Alt", "down Shift", "down K",
		"up K", "up Shift", "up Alt", "up Ctrl",
	}, rec.Events())
	assert.Len(t, *slept, 8, "one step after every transition")
	for _, d := range *slept {
		assert.Equal(t, DefaultStep, d)
	}
}

func TestTapAndDelete(t *testing.T) {
	rec := &Recorder{}
	s, _ := newTestSynth(rec)

	require.NoError(t, s.DeleteSelection())
	assert.Equal(t, []string{"down Delete", "up Delete"}, rec.Events())
}

func TestCopyPasteUsePlatformModifier(t *testing.T) {
	rec := &Recorder{}
	s, _ := newTestSynth(rec)

	require.NoError(t, s.Copy())
	require.NoError(t, s.Paste())

	mod := "Ctrl"
	if runtime.GOOS == "darwin" {
		mod = "Win"
	}
	assert.Equal(t, []string{
		"down " + mod, "down C", "up C", "up " + mod,
		"down " + mod, "down V", "up V", "up " + mod,
	}, rec.Events())
}

type failingKeyboard struct {
	Recorder
	failOn keyspec.Key
}

func (f *failingKeyboard) Down(k keyspec.Key) error {
	if k == f.failOn {
		return errors.New("injection blocked")
	}
	return f.Recorder.Down(k)
}

func TestFailedPressReleasesHeldModifiers(t *testing.T) {
	kb := &failingKeyboard{failOn: keyspec.Letter('V')}
	s, _ := newTestSynth(kb)

	err := s.Chord(keyspec.MustParse("Ctrl+Shift+V"))
	require.Error(t, err)
	assert.Equal(t, []string{"down Ctrl", "down Shift", "up Shift", "up Ctrl"}, kb.Events())
}

func TestUnknownKey(t *testing.T) {
	s, _ := newTestSynth(&Recorder{})
	assert.Error(t, s.Tap(keyspec.Key(0xFF)))
}

func TestRobotName(t *testing.T) {
	tests := []struct {
		key      keyspec.Key
		expected string
	}{
		{keyspec.Letter('C'), "c"},
		{keyspec.Digit(7), "7"},
		{keyspec.Function(12), "f12"},
		{keyspec.Numpad(4), "num4"},
		{keyspec.KeyEsc, "esc"},
		{keyspec.KeyPageDown, "pagedown"},
		{keyspec.KeyCtrl, "ctrl"},
		{keyspec.KeyWin, "cmd"},
		{keyspec.KeyOEMComma, ","},
		{keyspec.KeyOEMPlus, "="},
	}

	for _, tt := range tests {
		got, ok := robotName(tt.key)
		if !ok || got != tt.expected {
			t.Errorf("robotName(%v) = %q, %v, expected %q", tt.key, got, ok, tt.expected)
		}
	}
	if _, ok := robotName(keyspec.Key(0xFF)); ok {
		t.Error("robotName of an unknown key must fail")
	}
}

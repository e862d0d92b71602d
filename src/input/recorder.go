package input

import (
	"sync"

	"ai-anywhere/src/keyspec"
)

// Recorder is a Keyboard that logs transitions instead of sending them.
// OnDown, when set, runs after each key-down, which lets a fake application
// react to a chord.
type Recorder struct {
	mu     sync.Mutex
	events []string
	OnDown func(k keyspec.Key)
}

func (r *Recorder) Down(k keyspec.Key) error {
	r.record("down " + k.String())
	if r.OnDown != nil {
		r.OnDown(k)
	}
	return nil
}

func (r *Recorder) Up(k keyspec.Key) error {
	r.record("up " + k.String())
	return nil
}

func (r *Recorder) record(s string) {
	r.mu.Lock()
	r.events = append(r.events, s)
	r.mu.Unlock()
}

// Events returns the transitions so far, e.g. "down Ctrl".
func (r *Recorder) Events() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...)
}

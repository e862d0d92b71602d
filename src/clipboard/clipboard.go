// Package clipboard wraps every clipboard mutation in a Guard that snapshots
// the prior content and puts it back on release.
package clipboard

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"
)

// Format is a clipboard payload type.
type Format int

const (
	FmtText Format = iota
	FmtImage
)

func (f Format) String() string {
	switch f {
	case FmtText:
		return "text"
	case FmtImage:
		return "image"
	}
	return fmt.Sprintf("Format(%d)", int(f))
}

// Board is a clipboard. Image payloads are PNG bytes.
type Board interface {
	Read(f Format) []byte
	Write(f Format, data []byte) error
}

// Sequencer is implemented by boards that expose a change counter. The
// counter moves on every clipboard write by any process.
type Sequencer interface {
	Sequence() uint32
}

// Kind classifies a Snapshot.
type Kind int

const (
	KindEmpty Kind = iota
	KindText
	KindImage
	KindUnreadable
)

func (k Kind) String() string {
	switch k {
	case KindEmpty:
		return "empty"
	case KindText:
		return "text"
	case KindImage:
		return "image"
	case KindUnreadable:
		return "unreadable"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Snapshot is the clipboard content at Acquire time.
type Snapshot struct {
	Kind    Kind
	Payload []byte
}

const pollInterval = 10 * time.Millisecond

// guardMu serializes guards within the process so two sequences never
// interleave their snapshots.
var guardMu sync.Mutex

// Guard owns the clipboard between Acquire and Release (or Keep).
type Guard struct {
	board Board
	snap  Snapshot
	once  sync.Once
}

// Acquire takes the process-wide clipboard lock and snapshots the board.
// The caller must call Release or Keep.
func Acquire(b Board) *Guard {
	guardMu.Lock()
	g := &Guard{board: b, snap: take(b)}
	log.Printf("clipboard: acquired, snapshot kind=%s (%d bytes)", g.snap.Kind, len(g.snap.Payload))
	return g
}

func take(b Board) (s Snapshot) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("clipboard: snapshot failed: %v", r)
			s = Snapshot{Kind: KindUnreadable}
		}
	}()
	if text := b.Read(FmtText); len(text) > 0 {
		return Snapshot{Kind: KindText, Payload: text}
	}
	if img := b.Read(FmtImage); len(img) > 0 {
		return Snapshot{Kind: KindImage, Payload: img}
	}
	return Snapshot{Kind: KindEmpty}
}

func (g *Guard) Snapshot() Snapshot { return g.snap }

// Clear empties the clipboard.
func (g *Guard) Clear() error { return g.write(FmtText, nil) }

func (g *Guard) WriteText(s string) error { return g.write(FmtText, []byte(s)) }

// WriteImage puts PNG bytes on the clipboard.
func (g *Guard) WriteImage(png []byte) error { return g.write(FmtImage, png) }

// ReadText returns the current clipboard text, or "" when it cannot be read.
func (g *Guard) ReadText() (s string) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("clipboard: read failed: %v", r)
			s = ""
		}
	}()
	return string(g.board.Read(FmtText))
}

// Sequence returns the board's change counter, if it has one.
func (g *Guard) Sequence() (uint32, bool) {
	seq, ok := g.board.(Sequencer)
	if !ok {
		return 0, false
	}
	return seq.Sequence(), true
}

// WaitChange blocks until the change counter moves away from since, max
// elapses, or ctx ends, and reports whether a change was seen. Boards without
// a counter always wait the full max.
func (g *Guard) WaitChange(ctx context.Context, since uint32, max time.Duration) bool {
	timer := time.NewTimer(max)
	defer timer.Stop()

	seq, ok := g.board.(Sequencer)
	if !ok {
		select {
		case <-ctx.Done():
		case <-timer.C:
		}
		return false
	}

	tick := time.NewTicker(pollInterval)
	defer tick.Stop()
	for {
		if seq.Sequence() != since {
			return true
		}
		select {
		case <-ctx.Done():
			return false
		case <-timer.C:
			return seq.Sequence() != since
		case <-tick.C:
		}
	}
}

// Keep releases the guard and leaves the current content in place.
func (g *Guard) Keep() {
	g.once.Do(func() {
		log.Printf("clipboard: released, keeping new content")
		guardMu.Unlock()
	})
}

// Release restores the snapshot. It is safe to call more than once; restore
// failures are logged and swallowed. An unreadable snapshot is never
// restored, since writing anything would destroy the unknown content.
func (g *Guard) Release() {
	g.once.Do(func() {
		defer guardMu.Unlock()
		var err error
		switch g.snap.Kind {
		case KindText:
			err = g.write(FmtText, g.snap.Payload)
		case KindImage:
			err = g.write(FmtImage, g.snap.Payload)
		case KindEmpty:
			err = g.write(FmtText, nil)
		case KindUnreadable:
			log.Printf("clipboard: snapshot unreadable, leaving clipboard as is")
			return
		}
		if err != nil {
			log.Printf("clipboard: restore %s failed: %v", g.snap.Kind, err)
			return
		}
		log.Printf("clipboard: restored %s", g.snap.Kind)
	})
}

func (g *Guard) write(f Format, data []byte) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("clipboard: write %s: %v", f, r)
		}
	}()
	return g.board.Write(f, data)
}

// With runs fn under a guard on b and always releases it. fn may call Keep
// to leave its writes in place.
func With(b Board, fn func(*Guard) error) error {
	g := Acquire(b)
	defer g.Release()
	return fn(g)
}

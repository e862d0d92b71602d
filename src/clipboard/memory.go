package clipboard

import (
	"errors"
	"sync"
)

// ErrWriteFailed is returned by a Memory board with FailWrites set.
var ErrWriteFailed = errors.New("clipboard: write failed")

// Memory is an in-process Board with a change counter. Like the OS
// clipboards it holds one payload at a time.
type Memory struct {
	mu         sync.Mutex
	format     Format
	data       []byte
	seq        uint32
	writes     int
	FailWrites bool
	PanicReads bool
}

func NewMemory() *Memory { return &Memory{} }

func (m *Memory) Read(f Format) []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.PanicReads {
		panic("clipboard owned by another process")
	}
	if f != m.format || len(m.data) == 0 {
		return nil
	}
	return append([]byte(nil), m.data...)
}

func (m *Memory) Write(f Format, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes++
	if m.FailWrites {
		return ErrWriteFailed
	}
	m.format = f
	m.data = append([]byte(nil), data...)
	m.seq++
	return nil
}

func (m *Memory) Sequence() uint32 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.seq
}

// Writes counts Write calls, failed ones included.
func (m *Memory) Writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}

// Text returns the current text payload without going through Read.
func (m *Memory) Text() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.format != FmtText {
		return ""
	}
	return string(m.data)
}

// Unsequenced hides the change counter, which makes waits fall back to a
// fixed delay.
func (m *Memory) Unsequenced() Board { return unsequenced{m} }

type unsequenced struct{ m *Memory }

func (u unsequenced) Read(f Format) []byte             { return u.m.Read(f) }
func (u unsequenced) Write(f Format, data []byte) error { return u.m.Write(f, data) }

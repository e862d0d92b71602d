// Package hotkey owns the system-wide hotkey registration. A Registry hands
// out one Handle per successful Register; the caller keeps it and passes it
// back to Unregister.
package hotkey

import (
	"errors"
	"fmt"
	"log"
	"sync"

	"ai-anywhere/src/keyspec"
)

var (
	// ErrInvalidSpec means the chord cannot be expressed on this platform.
	ErrInvalidSpec = errors.New("hotkey: invalid key combination")
	// ErrAlreadyInUse means the OS refused the chord, usually because another
	// application owns it.
	ErrAlreadyInUse = errors.New("hotkey: key combination already registered by another application")
	// ErrUnsupported means no hotkey backend exists for this platform or session.
	ErrUnsupported = errors.New("hotkey: global hotkeys are not supported here")
)

// Backend is one OS-level registration of a single chord.
type Backend interface {
	Register() error
	Unregister() error
	Keydown() <-chan struct{}
}

// BackendFactory builds an unregistered Backend for spec.
type BackendFactory func(spec keyspec.KeySpec) (Backend, error)

// Option configures a Registry.
type Option func(*Registry)

// WithBackendFactory replaces the platform backend, mainly for tests.
func WithBackendFactory(f BackendFactory) Option {
	return func(r *Registry) { r.factory = f }
}

// OnRegistered is called after every successful registration.
func OnRegistered(fn func(keyspec.KeySpec)) Option {
	return func(r *Registry) { r.onRegistered = fn }
}

// OnChanged is called when a registration replaces one with a different chord.
func OnChanged(fn func(old, new keyspec.KeySpec)) Option {
	return func(r *Registry) { r.onChanged = fn }
}

// Registry keeps at most one active registration.
type Registry struct {
	mu           sync.Mutex
	factory      BackendFactory
	active       *Handle
	onRegistered func(keyspec.KeySpec)
	onChanged    func(old, new keyspec.KeySpec)
}

func NewRegistry(opts ...Option) *Registry {
	r := &Registry{factory: platformBackend}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Handle is an owned registration. Fired delivers one value per press and is
// closed once the handle is unregistered.
type Handle struct {
	spec    keyspec.KeySpec
	backend Backend
	reg     *Registry
	fired   chan struct{}
	stop    chan struct{}
	done    chan struct{}
	once    sync.Once
	err     error
}

func (h *Handle) Spec() keyspec.KeySpec  { return h.spec }
func (h *Handle) Fired() <-chan struct{} { return h.fired }
func (h *Handle) Close() error           { return h.reg.Unregister(h) }
func (h *Handle) String() string         { return h.spec.String() }

// Register binds spec system-wide. Any active handle is unregistered first.
// Errors wrap ErrInvalidSpec or ErrAlreadyInUse.
func (r *Registry) Register(spec keyspec.KeySpec) (*Handle, error) {
	if spec.IsZero() {
		return nil, fmt.Errorf("%w: empty spec", ErrInvalidSpec)
	}

	r.mu.Lock()
	old := r.active
	r.active = nil
	if old != nil {
		if err := old.release(); err != nil {
			log.Printf("hotkey: unregister %s before re-register: %v", old.spec, err)
		}
	}

	b, err := r.factory(spec)
	if err != nil {
		r.mu.Unlock()
		return nil, classify(spec, err, ErrInvalidSpec)
	}
	if err := b.Register(); err != nil {
		_ = b.Unregister()
		r.mu.Unlock()
		return nil, classify(spec, err, ErrAlreadyInUse)
	}

	h := &Handle{
		spec:    spec,
		backend: b,
		reg:     r,
		fired:   make(chan struct{}, 4),
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	go h.relay(b.Keydown())
	r.active = h
	onRegistered, onChanged := r.onRegistered, r.onChanged
	r.mu.Unlock()

	log.Printf("hotkey: %s registered", spec)
	if onRegistered != nil {
		onRegistered(spec)
	}
	if onChanged != nil && old != nil && !old.spec.Equal(spec) {
		onChanged(old.spec, spec)
	}
	return h, nil
}

// Unregister releases h. Calling it more than once, or with a handle that was
// already replaced by a newer registration, is a no-op.
func (r *Registry) Unregister(h *Handle) error {
	if h == nil {
		return nil
	}
	r.mu.Lock()
	if r.active == h {
		r.active = nil
	}
	r.mu.Unlock()
	return h.release()
}

// Active returns the currently registered chord.
func (r *Registry) Active() (keyspec.KeySpec, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.active == nil {
		return keyspec.KeySpec{}, false
	}
	return r.active.spec, true
}

// Check probes whether spec could be registered right now by registering and
// immediately releasing it. The active chord counts as available.
func (r *Registry) Check(spec keyspec.KeySpec) error {
	if spec.IsZero() {
		return fmt.Errorf("%w: empty spec", ErrInvalidSpec)
	}
	if cur, ok := r.Active(); ok && cur.Equal(spec) {
		return nil
	}
	b, err := r.factory(spec)
	if err != nil {
		return classify(spec, err, ErrInvalidSpec)
	}
	err = b.Register()
	_ = b.Unregister()
	if err != nil {
		return classify(spec, err, ErrAlreadyInUse)
	}
	return nil
}

// Close unregisters the active handle, if any.
func (r *Registry) Close() error {
	r.mu.Lock()
	h := r.active
	r.active = nil
	r.mu.Unlock()
	if h == nil {
		return nil
	}
	return h.release()
}

func (h *Handle) release() error {
	h.once.Do(func() {
		close(h.stop)
		h.err = h.backend.Unregister()
		<-h.done
		log.Printf("hotkey: %s unregistered", h.spec)
	})
	return h.err
}

func (h *Handle) relay(src <-chan struct{}) {
	defer close(h.done)
	defer close(h.fired)
	defer func() {
		if r := recover(); r != nil {
			log.Printf("PANIC in hotkey relay for %s: %v", h.spec, r)
		}
	}()
	for {
		select {
		case <-h.stop:
			return
		case _, ok := <-src:
			if !ok {
				return
			}
			log.Printf("hotkey: %s triggered", h.spec)
			select {
			case h.fired <- struct{}{}:
			default:
				log.Printf("hotkey: %s press dropped, consumer is behind", h.spec)
			}
		}
	}
}

// classify keeps an already classified error and wraps everything else with
// fallback.
func classify(spec keyspec.KeySpec, err, fallback error) error {
	for _, known := range []error{ErrInvalidSpec, ErrAlreadyInUse, ErrUnsupported} {
		if errors.Is(err, known) {
			return err
		}
	}
	return fmt.Errorf("%w: %s: %v", fallback, spec, err)
}

package eventloop

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"ai-anywhere/src/config"
	"ai-anywhere/src/hotkey"
	"ai-anywhere/src/inject"
	"ai-anywhere/src/keyspec"
	"ai-anywhere/src/notification"
	"ai-anywhere/src/popup"
	"ai-anywhere/src/processor"
	"ai-anywhere/src/selection"
	"ai-anywhere/src/session"
	"ai-anywhere/src/singleinstance"
	"ai-anywhere/src/window"
	"ai-anywhere/src/worker"
)

// ErrBusy is returned to a run-once client while a cycle is in flight.
var ErrBusy = errors.New("Busy, please retry")

// PreCaptureDelay lets the user release the hotkey chord before the copy
// chord is synthesized.
const PreCaptureDelay = 50 * time.Millisecond

// Loop is the single-threaded coordinator for hotkey and run-once flows.
type Loop struct {
	pool     *worker.Pool
	srv      singleinstance.Server
	busy     bool
	results  chan result
	hotkeyCh chan struct{}
	cfgCh    chan *config.Config

	settings       settings
	defaultTooltip string
	preCapture     time.Duration

	registry *hotkey.Registry

	foreground  func() window.Handle
	newCapture  func(*config.Config) session.CaptureFunc
	newProcess  func(*config.Config) session.ProcessFunc
	injector    session.Injector
	popup       session.PopupController
	notify      func(title, text string)
	onListening func(port int)
	onHotkey    func(spec keyspec.KeySpec)
}

// settings is the slice of config read at the start of each cycle. A cycle
// keeps the copy it started with.
type settings struct {
	deadline         time.Duration
	behavior         inject.Behavior
	disableSelection bool
	capture          session.CaptureFunc
	process          session.ProcessFunc
}

type result struct {
	res    session.Result
	err    error
	cancel context.CancelFunc
	done   func()
}

// New creates a new event loop with defaults based on config.
// If cfg is nil or cfg.ProcessDeadlineSec <= 0, a 30s deadline is used.
func New(cfg *config.Config) *Loop {
	if cfg == nil {
		cfg = &config.Config{}
	}
	injector := inject.New(inject.Options{
		Reviewer: inject.ReviewerFunc(func(ctx context.Context, c inject.Content) (bool, error) {
			return notification.Confirm("AI Anywhere", "Paste the result into the original window?\n\n"+c.Text), nil
		}),
	})

	l := &Loop{
		pool:           worker.New(1),
		results:        make(chan result, 1),
		hotkeyCh:       make(chan struct{}, 4),
		cfgCh:          make(chan *config.Config, 1),
		defaultTooltip: "AI Anywhere",
		preCapture:     PreCaptureDelay,
		foreground:     window.Foreground,
		newCapture:     captureFor,
		newProcess:     processFor,
		injector:       injector,
		notify:         notification.Show,
	}
	l.settings = l.settingsFrom(cfg)
	return l
}

func captureFor(cfg *config.Config) session.CaptureFunc {
	return selection.NewCapturer(selection.Options{
		Denylist:         cfg.AccessibilityDenylist,
		SelectionTimeout: cfg.SelectionTimeout,
		CopyDelay:        cfg.CopyDelay,
	}).Capture
}

func processFor(cfg *config.Config) session.ProcessFunc {
	return processor.Command{Cmd: cfg.ProcessorCmd}.Process
}

func (l *Loop) settingsFrom(cfg *config.Config) settings {
	behavior, err := inject.ParseBehavior(cfg.PasteBehavior)
	if err != nil {
		behavior = inject.ReviewThenPaste
	}
	deadline := cfg.ProcessDeadline()
	if deadline <= 0 {
		deadline = session.DefaultDeadline
	}
	return settings{
		deadline:         deadline,
		behavior:         behavior,
		disableSelection: cfg.DisableTextSelection,
		capture:          l.newCapture(cfg),
		process:          l.newProcess(cfg),
	}
}

// SetDefaultTooltip optionally sets the tray tooltip base text.
func (l *Loop) SetDefaultTooltip(tt string) { l.defaultTooltip = tt }

// OnListening is called once the resident server is bound.
func (l *Loop) OnListening(fn func(port int)) { l.onListening = fn }

// OnHotkeyChanged is called on the loop after a reconfiguration moved the
// trigger to a new chord.
func (l *Loop) OnHotkeyChanged(fn func(spec keyspec.KeySpec)) { l.onHotkey = fn }

func (l *Loop) setBusy(b bool) {
	l.busy = b
	if b {
		popup.Status(l.defaultTooltip + ": working...")
	} else {
		popup.Status(l.defaultTooltip)
	}
}

// StartHotkey forwards presses of h into the loop until h is closed.
// The registry keeps one active handle; re-registering closes the previous one.
func (l *Loop) StartHotkey(reg *hotkey.Registry, h *hotkey.Handle) {
	l.registry = reg
	l.forward(h)
}

func (l *Loop) forward(h *hotkey.Handle) {
	if h == nil {
		return
	}
	go func() {
		for range h.Fired() {
			select {
			case l.hotkeyCh <- struct{}{}:
			default:
			}
		}
	}()
}

// Reconfigure hands a reloaded config to the loop. Safe from any goroutine;
// only the latest pending config is kept.
func (l *Loop) Reconfigure(cfg *config.Config) {
	for {
		select {
		case l.cfgCh <- cfg:
			return
		default:
		}
		select {
		case <-l.cfgCh:
		default:
		}
	}
}

// Run starts the singleinstance server and processes client requests.
// It blocks until ctx is cancelled.
func (l *Loop) Run(ctx context.Context) error {
	if l.srv == nil {
		l.srv = singleinstance.NewServer()
	}
	if err := l.srv.Start(ctx); err != nil {
		return err
	}
	if p := l.srv.Port(); p > 0 {
		log.Printf("Resident listening on 127.0.0.1:%d", p)
		if l.onListening != nil {
			l.onListening(p)
		}
	}
	defer l.pool.Close()

	// Accept loop in background to avoid blocking result handling
	reqCh := make(chan singleinstance.Conn, 4)
	go func() {
		for {
			conn, err := l.srv.Next(ctx)
			if err != nil {
				close(reqCh)
				return
			}
			reqCh <- conn
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.hotkeyCh:
			l.handleHotkey(ctx)
		case conn, ok := <-reqCh:
			if !ok {
				return nil
			}
			l.handleConn(ctx, conn)
		case res := <-l.results:
			l.handleResult(res)
		case cfg := <-l.cfgCh:
			l.handleConfig(cfg)
		}
	}
}

func (l *Loop) handleConn(ctx context.Context, conn singleinstance.Conn) {
	target := session.DelegatedTarget{
		Conn:           conn,
		OutputToStdout: conn.Request().OutputToStdout,
		Injector:       l.injector,
		Behavior:       l.settings.behavior,
	}
	// Run-once is bound to a compositor shortcut, so the user's window still
	// has focus when the request arrives.
	w := l.foreground()
	if !l.startRequest(ctx, w, target, func() { _ = conn.Close() }) {
		_ = target.OnFailure(ErrBusy)
		_ = conn.Close()
	}
}

func (l *Loop) handleHotkey(ctx context.Context) {
	w := l.foreground()
	log.Printf("handleHotkey: foreground window 0x%X", uintptr(w))
	target := hotkeyTarget{
		InjectTarget: session.InjectTarget{Injector: l.injector, Behavior: l.settings.behavior},
		notify:       l.notify,
	}
	if !l.startRequest(ctx, w, target, nil) {
		log.Printf("handleHotkey: busy, skipping")
		l.notify("AI Anywhere", ErrBusy.Error())
	}
}

// startRequest submits one cycle. It returns false when a cycle is already
// in flight.
func (l *Loop) startRequest(ctx context.Context, w window.Handle, target session.ResultTarget, closeFn func()) bool {
	if l.busy {
		return false
	}

	s := l.settings
	// Capture and injection are outside the processing deadline.
	jobCtx, cancel := context.WithCancel(ctx)
	l.setBusy(true)
	submitted := l.pool.Submit(jobCtx, l.cycle(w, target, s), func(res session.Result, err error) {
		select {
		case l.results <- result{res: res, err: err, cancel: cancel, done: closeFn}:
		case <-ctx.Done():
			// Run has returned; nobody will drain results.
			cancel()
			if closeFn != nil {
				closeFn()
			}
		}
	})
	if !submitted {
		cancel()
		l.setBusy(false)
		return false
	}
	return true
}

func (l *Loop) cycle(w window.Handle, target session.ResultTarget, s settings) worker.Job {
	return func(ctx context.Context) (session.Result, error) {
		if l.preCapture > 0 {
			t := time.NewTimer(l.preCapture)
			select {
			case <-ctx.Done():
				t.Stop()
				return session.Result{}, ctx.Err()
			case <-t.C:
			}
		}
		return session.Execute(ctx, session.Options{
			Deadline:         s.deadline,
			Window:           w,
			DisableSelection: s.disableSelection,
			Capture:          s.capture,
			Process:          s.process,
			Target:           target,
			Popup:            l.popup,
			OnStage: func(st session.Stage) {
				log.Printf("cycle: %s", st)
			},
		})
	}
}

func (l *Loop) handleResult(res result) {
	log.Printf("handleResult: content=%s, err=%v", res.res.Content, res.err)
	defer func() {
		l.setBusy(false)
		if res.cancel != nil {
			res.cancel()
		}
		if res.done != nil {
			res.done()
		}
	}()
	if res.err != nil {
		log.Printf("handleResult: cycle failed: %v", res.err)
	}
}

// handleConfig applies a reloaded config. A hotkey that cannot be bound
// leaves the previous one active.
func (l *Loop) handleConfig(cfg *config.Config) {
	if cfg == nil {
		return
	}
	l.settings = l.settingsFrom(cfg)
	log.Printf("handleConfig: behavior=%s selection=%v deadline=%s", l.settings.behavior, !l.settings.disableSelection, l.settings.deadline)

	if l.registry == nil {
		return
	}
	next, err := keyspec.Parse(cfg.Hotkey)
	if err != nil {
		log.Printf("handleConfig: bad HOTKEY %q: %v", cfg.Hotkey, err)
		l.notify("AI Anywhere", fmt.Sprintf("Invalid hotkey %q: %v", cfg.Hotkey, err))
		return
	}
	prev, ok := l.registry.Active()
	if ok && prev.Equal(next) {
		return
	}

	h, err := l.registry.Register(next)
	if err != nil {
		log.Printf("handleConfig: cannot register %s: %v", next, err)
		msg := fmt.Sprintf("Could not use %s: %v", next, err)
		if ok {
			if h, rerr := l.registry.Register(prev); rerr == nil {
				l.forward(h)
				msg += fmt.Sprintf(". Keeping %s.", prev)
			} else {
				log.Printf("handleConfig: restoring %s failed: %v", prev, rerr)
				msg += ". No hotkey is active."
			}
		}
		l.notify("AI Anywhere", msg)
		return
	}
	l.forward(h)
	l.notify("AI Anywhere", fmt.Sprintf("Hotkey changed to %s", next))
	if l.onHotkey != nil {
		l.onHotkey(next)
	}
}

// Deadline returns the configured processing deadline for this loop.
func (l *Loop) Deadline() time.Duration { return l.settings.deadline }

// hotkeyTarget reports failures to the user; nobody else is waiting for them.
type hotkeyTarget struct {
	session.InjectTarget
	notify func(title, text string)
}

func (t hotkeyTarget) OnFailure(err error) error {
	if err == nil || t.notify == nil {
		return nil
	}
	t.notify("AI Anywhere", "Failed: "+err.Error())
	return nil
}

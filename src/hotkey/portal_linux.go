//go:build linux

package hotkey

import (
	"fmt"
	"log"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/godbus/dbus/v5"

	"ai-anywhere/src/keyspec"
)

const (
	portalDest     = "org.freedesktop.portal.Desktop"
	portalPath     = dbus.ObjectPath("/org/freedesktop/portal/desktop")
	shortcutsIface = "org.freedesktop.portal.GlobalShortcuts"
	requestIface   = "org.freedesktop.portal.Request"
	sessionIface   = "org.freedesktop.portal.Session"

	portalShortcutID = "ai-anywhere-trigger"
	portalTimeout    = 30 * time.Second
)

// portalShortcut is marshalled as the (sa{sv}) struct BindShortcuts expects.
type portalShortcut struct {
	ID      string
	Options map[string]dbus.Variant
}

// portalBackend binds the chord through xdg-desktop-portal GlobalShortcuts.
// The compositor may show a confirmation dialog and may bind a different
// trigger than the preferred one.
type portalBackend struct {
	spec      keyspec.KeySpec
	conn      *dbus.Conn
	session   dbus.ObjectPath
	signals   chan *dbus.Signal
	keyCh     chan struct{}
	stop      chan struct{}
	closeOnce sync.Once
}

func newPortalBackend(spec keyspec.KeySpec) (Backend, error) {
	return &portalBackend{
		spec:  spec,
		keyCh: make(chan struct{}, 4),
		stop:  make(chan struct{}),
	}, nil
}

func (p *portalBackend) Register() error {
	conn, err := dbus.SessionBus()
	if err != nil {
		return fmt.Errorf("%w: session bus: %v", ErrUnsupported, err)
	}
	p.conn = conn
	p.signals = make(chan *dbus.Signal, 16)
	conn.Signal(p.signals)

	if err := conn.AddMatchSignal(dbus.WithMatchInterface(requestIface), dbus.WithMatchMember("Response")); err != nil {
		return fmt.Errorf("%w: match Response: %v", ErrUnsupported, err)
	}
	if err := conn.AddMatchSignal(dbus.WithMatchInterface(shortcutsIface), dbus.WithMatchMember("Activated")); err != nil {
		return fmt.Errorf("%w: match Activated: %v", ErrUnsupported, err)
	}

	obj := conn.Object(portalDest, portalPath)
	token := fmt.Sprintf("aianywhere%d", rand.Uint32())

	var reqPath dbus.ObjectPath
	opts := map[string]dbus.Variant{
		"handle_token":         dbus.MakeVariant(token),
		"session_handle_token": dbus.MakeVariant(token + "s"),
	}
	if err := obj.Call(shortcutsIface+".CreateSession", 0, opts).Store(&reqPath); err != nil {
		return fmt.Errorf("%w: CreateSession: %v", ErrUnsupported, err)
	}
	code, results, err := p.awaitResponse(reqPath)
	if err != nil {
		return err
	}
	if code != 0 {
		return fmt.Errorf("%w: CreateSession response %d", ErrAlreadyInUse, code)
	}
	sessionHandle, ok := results["session_handle"].Value().(string)
	if !ok {
		return fmt.Errorf("%w: CreateSession returned no session handle", ErrUnsupported)
	}
	p.session = dbus.ObjectPath(sessionHandle)

	shortcuts := []portalShortcut{{
		ID: portalShortcutID,
		Options: map[string]dbus.Variant{
			"description":       dbus.MakeVariant("Capture selection and run AI Anywhere"),
			"preferred_trigger": dbus.MakeVariant(portalTrigger(p.spec)),
		},
	}}
	bindOpts := map[string]dbus.Variant{"handle_token": dbus.MakeVariant(token + "b")}
	if err := obj.Call(shortcutsIface+".BindShortcuts", 0, p.session, shortcuts, "", bindOpts).Store(&reqPath); err != nil {
		return fmt.Errorf("%w: BindShortcuts: %v", ErrAlreadyInUse, err)
	}
	code, _, err = p.awaitResponse(reqPath)
	if err != nil {
		return err
	}
	if code != 0 {
		// 1: user cancelled, 2: the portal refused (usually a conflict).
		return fmt.Errorf("%w: BindShortcuts response %d", ErrAlreadyInUse, code)
	}

	log.Printf("hotkey: portal bound %s as %q", p.spec, portalTrigger(p.spec))
	go p.listen()
	return nil
}

func (p *portalBackend) awaitResponse(path dbus.ObjectPath) (uint32, map[string]dbus.Variant, error) {
	timer := time.NewTimer(portalTimeout)
	defer timer.Stop()
	for {
		select {
		case sig, ok := <-p.signals:
			if !ok {
				return 0, nil, fmt.Errorf("%w: session bus closed", ErrUnsupported)
			}
			if sig.Path != path || sig.Name != requestIface+".Response" || len(sig.Body) < 2 {
				continue
			}
			code, _ := sig.Body[0].(uint32)
			results, _ := sig.Body[1].(map[string]dbus.Variant)
			return code, results, nil
		case <-timer.C:
			return 0, nil, fmt.Errorf("%w: portal did not answer within %s", ErrAlreadyInUse, portalTimeout)
		}
	}
}

func (p *portalBackend) listen() {
	defer p.closeOnce.Do(func() { close(p.keyCh) })
	for {
		select {
		case <-p.stop:
			return
		case sig, ok := <-p.signals:
			if !ok {
				return
			}
			if sig.Name != shortcutsIface+".Activated" || len(sig.Body) < 2 {
				continue
			}
			session, _ := sig.Body[0].(dbus.ObjectPath)
			id, _ := sig.Body[1].(string)
			if session != p.session || id != portalShortcutID {
				continue
			}
			select {
			case p.keyCh <- struct{}{}:
			default:
			}
		}
	}
}

func (p *portalBackend) Unregister() error {
	if p.conn == nil {
		return nil
	}
	select {
	case <-p.stop:
		return nil
	default:
		close(p.stop)
	}
	var err error
	if p.session != "" {
		err = p.conn.Object(portalDest, p.session).Call(sessionIface+".Close", 0).Err
	}
	p.conn.RemoveSignal(p.signals)
	return err
}

func (p *portalBackend) Keydown() <-chan struct{} { return p.keyCh }

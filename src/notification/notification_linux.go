//go:build linux

package notification

import (
	"fmt"
	"time"

	"github.com/godbus/dbus/v5"
)

const (
	notifyDest  = "org.freedesktop.Notifications"
	notifyPath  = dbus.ObjectPath("/org/freedesktop/Notifications")
	notifyIface = "org.freedesktop.Notifications"
	appName     = "AI Anywhere"

	showTimeoutMs = int32(5000)
	actionAccept  = "accept"
)

func notify(conn *dbus.Conn, title, text string, actions []string, hints map[string]dbus.Variant, timeoutMs int32) (uint32, error) {
	var id uint32
	obj := conn.Object(notifyDest, notifyPath)
	call := obj.Call(notifyIface+".Notify", 0, appName, uint32(0), "", title, text, actions, hints, timeoutMs)
	if err := call.Store(&id); err != nil {
		return 0, fmt.Errorf("Notify: %w", err)
	}
	return id, nil
}

func show(title, text string) error {
	conn, err := dbus.SessionBus()
	if err != nil {
		return fmt.Errorf("session bus: %w", err)
	}
	_, err = notify(conn, title, text, []string{}, map[string]dbus.Variant{}, showTimeoutMs)
	return err
}

func showBlocking(title, message string) error {
	conn, err := dbus.SessionBus()
	if err != nil {
		return fmt.Errorf("session bus: %w", err)
	}
	hints := map[string]dbus.Variant{"urgency": dbus.MakeVariant(byte(2))}
	_, err = notify(conn, title, message, []string{}, hints, 0)
	return err
}

// confirm posts a notification with an accept action and waits for the user
// to click it. Dismissal or timeout answers no.
func confirm(title, text string) (bool, error) {
	// A private connection keeps these signals away from other listeners.
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return false, fmt.Errorf("session bus: %w", err)
	}
	defer conn.Close()

	if err := conn.AddMatchSignal(dbus.WithMatchInterface(notifyIface)); err != nil {
		return false, fmt.Errorf("match %s: %w", notifyIface, err)
	}
	signals := make(chan *dbus.Signal, 8)
	conn.Signal(signals)
	defer conn.RemoveSignal(signals)

	hints := map[string]dbus.Variant{"urgency": dbus.MakeVariant(byte(1))}
	actions := []string{actionAccept, "Paste", "default", "Paste"}
	id, err := notify(conn, title, text, actions, hints, int32(confirmTimeout/time.Millisecond))
	if err != nil {
		return false, err
	}

	timer := time.NewTimer(confirmTimeout)
	defer timer.Stop()
	for {
		select {
		case sig, ok := <-signals:
			if !ok {
				return false, fmt.Errorf("session bus closed")
			}
			if len(sig.Body) < 2 {
				continue
			}
			if sigID, _ := sig.Body[0].(uint32); sigID != id {
				continue
			}
			switch sig.Name {
			case notifyIface + ".ActionInvoked":
				action, _ := sig.Body[1].(string)
				return action == actionAccept || action == "default", nil
			case notifyIface + ".NotificationClosed":
				return false, nil
			}
		case <-timer.C:
			_ = conn.Object(notifyDest, notifyPath).Call(notifyIface+".CloseNotification", 0, id).Err
			return false, nil
		}
	}
}

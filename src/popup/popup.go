// Package popup reports the progress of a cycle: a countdown while the
// processor runs, then a short result notice. Progress goes to a status sink
// (the tray tooltip); results go to notifications.
package popup

import (
	"fmt"
	"log"
	"sync"
	"time"

	"ai-anywhere/src/logutil"
	"ai-anywhere/src/notification"
)

const title = "AI Anywhere"

var (
	mu        sync.Mutex
	sink      func(string)
	notify    = notification.Show
	idleText  = title
	countdown chan struct{}

	showResults bool
)

// SetStatusSink routes status lines, usually to the tray tooltip.
func SetStatusSink(fn func(string)) {
	mu.Lock()
	sink = fn
	mu.Unlock()
}

// SetIdleText is the status shown between cycles.
func SetIdleText(text string) {
	mu.Lock()
	idleText = text
	mu.Unlock()
}

// SetShowResults enables a notification with the result of each cycle.
func SetShowResults(on bool) {
	mu.Lock()
	showResults = on
	mu.Unlock()
}

// Status publishes one status line.
func Status(text string) {
	mu.Lock()
	fn := sink
	mu.Unlock()
	if fn != nil {
		fn(text)
	}
}

// Show displays a notification and returns immediately.
func Show(text string) error {
	log.Printf("Popup.Show called with %s", logutil.SafeText(text))
	notify(title, text)
	return nil
}

// StartCountdown publishes the remaining processing time once a second until
// UpdateText or Close.
func StartCountdown(timeoutSeconds int) error {
	log.Printf("Popup.StartCountdown called with %d seconds", timeoutSeconds)
	stop := make(chan struct{})
	mu.Lock()
	if countdown != nil {
		close(countdown)
	}
	countdown = stop
	mu.Unlock()

	Status(fmt.Sprintf("%s: processing (%ds)", title, timeoutSeconds))
	go func() {
		tick := time.NewTicker(time.Second)
		defer tick.Stop()
		for left := timeoutSeconds - 1; left > 0; left-- {
			select {
			case <-stop:
				return
			case <-tick.C:
				Status(fmt.Sprintf("%s: processing (%ds)", title, left))
			}
		}
	}()
	return nil
}

// UpdateText ends the countdown with the cycle's result.
func UpdateText(text string) error {
	log.Printf("Popup.UpdateText called with %s", logutil.SafeText(text))
	mu.Lock()
	show := showResults
	mu.Unlock()
	stopCountdown()
	if show && text != "" {
		notify(title, text)
	}
	return nil
}

// Close ends the countdown without a result.
func Close() error {
	log.Printf("Popup.Close called")
	stopCountdown()
	return nil
}

func stopCountdown() {
	mu.Lock()
	if countdown != nil {
		close(countdown)
		countdown = nil
	}
	idle := idleText
	mu.Unlock()
	Status(idle)
}

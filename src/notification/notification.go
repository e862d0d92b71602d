// Package notification shows short messages to the user outside any window
// the app owns.
package notification

import (
	"log"
	"time"
	"unicode/utf8"
)

const (
	maxBodyRunes = 200
	// confirmTimeout bounds how long Confirm waits for an answer.
	confirmTimeout = 30 * time.Second
)

// Show displays a non-blocking notification.
func Show(title, text string) {
	body := truncate(text, maxBodyRunes)
	log.Printf("notification: %s: %q", title, body)
	go func() {
		if err := show(title, body); err != nil {
			log.Printf("Failed to show notification: %v", err)
		}
	}()
}

// ShowBlockingError displays an error and returns once the user dismissed it,
// where the platform supports that.
func ShowBlockingError(title, message string) {
	log.Printf("%s: %s", title, message)
	if err := showBlocking(title, message); err != nil {
		log.Printf("Failed to show error: %v", err)
	}
}

// Confirm asks a yes/no question and reports whether the user accepted.
// Platforms without an interactive surface answer no.
func Confirm(title, text string) bool {
	ok, err := confirm(title, truncate(text, maxBodyRunes))
	if err != nil {
		log.Printf("notification: confirm unavailable: %v", err)
		return false
	}
	log.Printf("notification: confirm %q -> %v", title, ok)
	return ok
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n]) + "..."
}

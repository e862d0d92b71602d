//go:build !windows && !linux

package notification

import (
	"errors"
	"log"
)

func show(title, text string) error {
	log.Printf("%s: %s", title, text)
	return nil
}

func showBlocking(title, message string) error { return nil }

func confirm(title, text string) (bool, error) {
	return false, errors.New("no interactive notifications on this platform")
}

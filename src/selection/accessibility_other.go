//go:build !windows

package selection

import (
	"context"

	"ai-anywhere/src/window"
)

type noAccessibility struct{}

// Platform returns the accessibility backend. Outside Windows there is none
// and every capture goes through the simulated copy.
func Platform() Accessibility { return noAccessibility{} }

func (noAccessibility) SelectedText(context.Context, window.Handle) (string, error) {
	return "", nil
}

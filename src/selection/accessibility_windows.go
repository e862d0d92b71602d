//go:build windows

package selection

import (
	"context"
	"errors"
	"fmt"
	"log"
	"runtime"
	"strings"

	ole "github.com/go-ole/go-ole"

	"ai-anywhere/src/window"
)

type uiAutomation struct{}

// Platform returns the UI Automation backend.
func Platform() Accessibility { return uiAutomation{} }

// SelectedText looks at the focused element first, then the target window
// and its descendants. ctx is checked between elements; a single COM call
// that hangs is bounded by the caller abandoning this goroutine.
func (uiAutomation) SelectedText(ctx context.Context, w window.Handle) (string, error) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	if err := ole.CoInitializeEx(0, ole.COINIT_MULTITHREADED); err != nil {
		var oleErr *ole.OleError
		// S_FALSE: already initialized on this thread, still needs the matching uninitialize.
		if !errors.As(err, &oleErr) || oleErr.Code() != 1 {
			return "", fmt.Errorf("uia: CoInitializeEx: %w", err)
		}
	}
	defer ole.CoUninitialize()

	automation, err := newAutomation()
	if err != nil {
		return "", err
	}
	defer automation.release()

	if focused, err := automation.out(slotAutomationGetFocusedElement); err == nil {
		text := selectionText(focused)
		focused.release()
		if strings.TrimSpace(text) != "" {
			log.Printf("selection: uia found selection on focused element")
			return text, nil
		}
	}
	if ctx.Err() != nil || !w.Valid() {
		return "", ctx.Err()
	}

	root, err := automation.out(slotAutomationElementFromHandle, uintptr(w))
	if err != nil {
		return "", fmt.Errorf("uia: element from window: %w", err)
	}
	defer root.release()
	if text := selectionText(root); strings.TrimSpace(text) != "" {
		return text, nil
	}

	return searchDescendants(ctx, automation, root)
}

func searchDescendants(ctx context.Context, automation, root comObject) (string, error) {
	cond, err := automation.out(slotAutomationCreateTrueCondition)
	if err != nil {
		return "", fmt.Errorf("uia: true condition: %w", err)
	}
	defer cond.release()

	all, err := root.out(slotElementFindAll, uintptr(treeScopeDescendants), uintptr(cond))
	if err != nil {
		return "", fmt.Errorf("uia: find descendants: %w", err)
	}
	defer all.release()

	n := all.arrayLength()
	if n > maxDescendantsVisited {
		log.Printf("selection: uia tree has %d elements, visiting the first %d", n, maxDescendantsVisited)
		n = maxDescendantsVisited
	}
	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		el, err := all.arrayElement(i)
		if err != nil {
			continue
		}
		text := selectionText(el)
		el.release()
		if strings.TrimSpace(text) != "" {
			log.Printf("selection: uia found selection on descendant %d of %d", i, n)
			return text, nil
		}
	}
	return "", nil
}

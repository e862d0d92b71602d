// Package inject delivers a processed result back into the window the
// selection came from.
package inject

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"ai-anywhere/src/clipboard"
	"ai-anywhere/src/input"
	"ai-anywhere/src/logutil"
	"ai-anywhere/src/textproc"
	"ai-anywhere/src/window"
)

var (
	// ErrReviewDeclined is logged when the user rejects a result under
	// ReviewThenPaste. The result still lands on the clipboard.
	ErrReviewDeclined = errors.New("inject: review declined")
	// ErrNothingToInject means the content was empty after formatting.
	ErrNothingToInject = errors.New("inject: nothing to inject")
)

// Behavior selects how a result is delivered.
type Behavior int

const (
	AutoPaste Behavior = iota
	ClipboardOnly
	ReviewThenPaste
)

func (b Behavior) String() string {
	switch b {
	case AutoPaste:
		return "auto"
	case ClipboardOnly:
		return "clipboard"
	case ReviewThenPaste:
		return "review"
	}
	return fmt.Sprintf("Behavior(%d)", int(b))
}

// ParseBehavior accepts the config spellings auto, clipboard and review.
func ParseBehavior(s string) (Behavior, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "auto", "autopaste", "paste":
		return AutoPaste, nil
	case "clipboard", "clipboardonly", "copy":
		return ClipboardOnly, nil
	case "review", "reviewthenpaste":
		return ReviewThenPaste, nil
	}
	return AutoPaste, fmt.Errorf("inject: unknown paste behavior %q", s)
}

// Request is one injection.
type Request struct {
	Content              Content
	Target               window.Handle
	Behavior             Behavior
	HadOriginalSelection bool
}

// Reviewer shows a result and reports whether the user accepted it.
type Reviewer interface {
	Review(ctx context.Context, c Content) (bool, error)
}

// ReviewerFunc adapts a function to Reviewer.
type ReviewerFunc func(ctx context.Context, c Content) (bool, error)

func (f ReviewerFunc) Review(ctx context.Context, c Content) (bool, error) { return f(ctx, c) }

// Focuser checks and restores the target window.
type Focuser interface {
	Alive(h window.Handle) bool
	Restore(h window.Handle) bool
}

type systemFocuser struct{}

func (systemFocuser) Alive(h window.Handle) bool   { return window.Alive(h) }
func (systemFocuser) Restore(h window.Handle) bool { return window.Restore(h) }

const (
	DefaultHideDelay    = 200 * time.Millisecond
	DefaultFocusDelay   = 100 * time.Millisecond
	DefaultFetchTimeout = 15 * time.Second
)

type Options struct {
	Board    clipboard.Board
	Keyboard input.Keyboard
	Focuser  Focuser
	// Reviewer handles ReviewThenPaste. Without one every review is declined.
	Reviewer   Reviewer
	HTTPClient *http.Client

	// HideDelay lets our own UI get out of the way before the target is
	// focused again.
	HideDelay    time.Duration
	FocusDelay   time.Duration
	FetchTimeout time.Duration
	KeyStep      time.Duration
}

type Injector struct {
	opts  Options
	synth *input.Synth
	sleep func(time.Duration)
}

func New(opts Options) *Injector {
	if opts.Board == nil {
		opts.Board = clipboard.System()
	}
	if opts.Keyboard == nil {
		opts.Keyboard = input.Robot()
	}
	if opts.Focuser == nil {
		opts.Focuser = systemFocuser{}
	}
	if opts.Reviewer == nil {
		opts.Reviewer = ReviewerFunc(func(context.Context, Content) (bool, error) { return false, nil })
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.HideDelay <= 0 {
		opts.HideDelay = DefaultHideDelay
	}
	if opts.FocusDelay <= 0 {
		opts.FocusDelay = DefaultFocusDelay
	}
	if opts.FetchTimeout <= 0 {
		opts.FetchTimeout = DefaultFetchTimeout
	}
	synth := input.NewSynth(opts.Keyboard)
	if opts.KeyStep > 0 {
		synth.Step = opts.KeyStep
	}
	return &Injector{opts: opts, synth: synth, sleep: time.Sleep}
}

// Inject delivers req.Content. Whether the target application accepted the
// paste cannot be observed; a nil error means the content reached the
// clipboard and, for AutoPaste, the paste chord was sent.
func (i *Injector) Inject(ctx context.Context, req Request) error {
	behavior := req.Behavior
	if behavior == ReviewThenPaste {
		behavior = i.review(ctx, req.Content)
	}

	alive := i.opts.Focuser.Alive(req.Target)
	if !alive && behavior == AutoPaste {
		log.Printf("inject: target window 0x%X is gone, leaving result on the clipboard", uintptr(req.Target))
		behavior = ClipboardOnly
	}

	if behavior == AutoPaste {
		i.sleep(i.opts.HideDelay)
	}
	if err := i.write(ctx, req.Content); err != nil {
		return err
	}

	focused := alive && i.opts.Focuser.Restore(req.Target)
	if behavior != AutoPaste {
		log.Printf("inject: %s left on the clipboard (%s)", req.Content, behavior)
		return nil
	}
	if !focused {
		log.Printf("inject: could not focus window 0x%X, leaving result on the clipboard", uintptr(req.Target))
		return nil
	}

	i.sleep(i.opts.FocusDelay)
	if req.HadOriginalSelection {
		if err := i.synth.DeleteSelection(); err != nil {
			return fmt.Errorf("inject: delete selection: %w", err)
		}
	}
	if err := i.synth.Paste(); err != nil {
		return fmt.Errorf("inject: paste: %w", err)
	}
	log.Printf("inject: pasted %s into 0x%X (replace=%v)", req.Content, uintptr(req.Target), req.HadOriginalSelection)
	return nil
}

func (i *Injector) review(ctx context.Context, c Content) Behavior {
	ok, err := i.opts.Reviewer.Review(ctx, c)
	switch {
	case err != nil:
		log.Printf("inject: review failed, falling back to clipboard: %v", err)
		return ClipboardOnly
	case !ok:
		log.Printf("inject: %v", ErrReviewDeclined)
		return ClipboardOnly
	}
	return AutoPaste
}

// write puts the content on the clipboard and keeps it there. A failed write
// restores the previous clipboard.
func (i *Injector) write(ctx context.Context, c Content) error {
	return clipboard.With(i.opts.Board, func(g *clipboard.Guard) error {
		if err := i.put(ctx, g, c); err != nil {
			return err
		}
		g.Keep()
		return nil
	})
}

func (i *Injector) put(ctx context.Context, g *clipboard.Guard, c Content) error {
	if c.IsImage() {
		data, err := i.imagePNG(ctx, c)
		if err == nil {
			if err = g.WriteImage(data); err == nil {
				return nil
			}
		}
		if c.ImageURL == "" || strings.HasPrefix(c.ImageURL, "data:") {
			return fmt.Errorf("inject: image: %w", err)
		}
		log.Printf("inject: image unusable (%v), pasting its url instead", err)
		return g.WriteText(c.ImageURL)
	}

	text := textproc.FormatForPaste(c.Text)
	if text == "" {
		return ErrNothingToInject
	}
	log.Printf("inject: writing text %s", logutil.SafeText(text))
	return g.WriteText(text)
}

// Package selection reads the text selected in another application's
// window, first through the accessibility API and then by simulating a copy.
package selection

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"ai-anywhere/src/clipboard"
	"ai-anywhere/src/input"
	"ai-anywhere/src/logutil"
	"ai-anywhere/src/window"
)

// Source tells which strategy produced a Result.
type Source int

const (
	SourceNone Source = iota
	SourceUIAutomation
	SourceKeyboardSimulation
)

func (s Source) String() string {
	switch s {
	case SourceNone:
		return "None"
	case SourceUIAutomation:
		return "UIAutomation"
	case SourceKeyboardSimulation:
		return "KeyboardSimulation"
	}
	return fmt.Sprintf("Source(%d)", int(s))
}

// Result is the outcome of one Capture. An empty Text always comes with
// SourceNone.
type Result struct {
	Text    string
	Source  Source
	Elapsed time.Duration
}

// Accessibility asks the platform accessibility API for the selection in w.
// Implementations should return promptly once ctx is done.
type Accessibility interface {
	SelectedText(ctx context.Context, w window.Handle) (string, error)
}

const (
	DefaultSelectionTimeout = 2 * time.Second
	DefaultClearDelay       = 100 * time.Millisecond
	DefaultCopyDelay        = 250 * time.Millisecond
)

// DefaultDenylist holds processes whose accessibility trees are too large or
// too slow to search.
var DefaultDenylist = []string{"Code", "Code - Insiders"}

type Options struct {
	Accessibility Accessibility
	Board         clipboard.Board
	Keyboard      input.Keyboard
	ProcessName   func(window.Handle) string

	Denylist         []string
	SelectionTimeout time.Duration
	ClearDelay       time.Duration
	// CopyDelay bounds the wait for the target to answer the copy chord.
	// With a clipboard change counter the wait ends early.
	CopyDelay time.Duration
	KeyStep   time.Duration
}

// Capturer runs the two capture strategies. It holds no state between calls.
type Capturer struct {
	opts  Options
	synth *input.Synth
	sleep func(context.Context, time.Duration)
}

// NewCapturer fills unset options with the platform implementations and
// default timings.
func NewCapturer(opts Options) *Capturer {
	if opts.Accessibility == nil {
		opts.Accessibility = Platform()
	}
	if opts.Board == nil {
		opts.Board = clipboard.System()
	}
	if opts.Keyboard == nil {
		opts.Keyboard = input.Robot()
	}
	if opts.ProcessName == nil {
		opts.ProcessName = window.ProcessName
	}
	if opts.Denylist == nil {
		opts.Denylist = DefaultDenylist
	}
	if opts.SelectionTimeout <= 0 {
		opts.SelectionTimeout = DefaultSelectionTimeout
	}
	if opts.ClearDelay <= 0 {
		opts.ClearDelay = DefaultClearDelay
	}
	if opts.CopyDelay <= 0 {
		opts.CopyDelay = DefaultCopyDelay
	}
	synth := input.NewSynth(opts.Keyboard)
	if opts.KeyStep > 0 {
		synth.Step = opts.KeyStep
	}
	return &Capturer{opts: opts, synth: synth, sleep: sleepCtx}
}

// Capture returns the text selected in w. It never fails: every error and
// panic degrades to an empty result, and the clipboard is left as it was.
func (c *Capturer) Capture(ctx context.Context, w window.Handle) (res Result) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			log.Printf("PANIC in selection capture: %v", r)
			res = Result{Source: SourceNone}
		}
		res.Elapsed = time.Since(start)
		log.Printf("selection: source=%s text=%s elapsed=%s", res.Source, logutil.SafeText(res.Text), res.Elapsed)
	}()

	if text := c.accessible(ctx, w); text != "" {
		return Result{Text: text, Source: SourceUIAutomation}
	}
	if ctx.Err() != nil {
		return Result{Source: SourceNone}
	}
	if text := c.simulateCopy(ctx); text != "" {
		return Result{Text: text, Source: SourceKeyboardSimulation}
	}
	return Result{Source: SourceNone}
}

// accessible runs the accessibility query under SelectionTimeout. A query
// that outlives the timeout is abandoned.
func (c *Capturer) accessible(ctx context.Context, w window.Handle) string {
	if name := c.opts.ProcessName(w); c.denied(name) {
		log.Printf("selection: skipping accessibility for denylisted process %q", name)
		return ""
	}

	ctx, cancel := context.WithTimeout(ctx, c.opts.SelectionTimeout)
	defer cancel()

	type answer struct {
		text string
		err  error
	}
	ch := make(chan answer, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- answer{err: fmt.Errorf("accessibility panic: %v", r)}
			}
		}()
		text, err := c.opts.Accessibility.SelectedText(ctx, w)
		ch <- answer{text: text, err: err}
	}()

	select {
	case a := <-ch:
		if a.err != nil {
			log.Printf("selection: accessibility query failed: %v", a.err)
			return ""
		}
		if strings.TrimSpace(a.text) == "" {
			return ""
		}
		return a.text
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			log.Printf("selection: accessibility query timed out after %s", c.opts.SelectionTimeout)
		}
		return ""
	}
}

func (c *Capturer) denied(name string) bool {
	if name == "" {
		return false
	}
	for _, d := range c.opts.Denylist {
		if strings.EqualFold(strings.TrimSpace(d), name) {
			return true
		}
	}
	return false
}

// simulateCopy clears the clipboard, sends the copy chord and reads what
// the target put there. Text equal to the prior clipboard content counts as
// no selection, because the two cannot be told apart.
func (c *Capturer) simulateCopy(ctx context.Context) string {
	g := clipboard.Acquire(c.opts.Board)
	defer g.Release()

	prior := g.Snapshot()
	if err := g.Clear(); err != nil {
		log.Printf("selection: clear clipboard: %v", err)
	}
	since, _ := g.Sequence()
	c.sleep(ctx, c.opts.ClearDelay)

	if err := c.synth.Copy(); err != nil {
		log.Printf("selection: copy chord: %v", err)
		return ""
	}
	if g.WaitChange(ctx, since, c.opts.CopyDelay) {
		log.Printf("selection: clipboard changed after copy chord")
	}

	text := g.ReadText()
	if text == "" {
		return ""
	}
	if prior.Kind == clipboard.KindText && text == string(prior.Payload) {
		log.Printf("selection: copied text equals prior clipboard, treating as no selection")
		return ""
	}
	return text
}

func sleepCtx(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"time"

	"ai-anywhere/src/inject"
	"ai-anywhere/src/logutil"
	"ai-anywhere/src/popup"
	"ai-anywhere/src/selection"
	"ai-anywhere/src/singleinstance"
	"ai-anywhere/src/window"
)

var ErrNoProcessor = errors.New("session: no processor configured")

const DefaultDeadline = 30 * time.Second

// Stage is where a cycle currently is.
type Stage int

const (
	StageIdle Stage = iota
	StageCapturing
	StageDispatched
	StageInjecting
)

func (s Stage) String() string {
	switch s {
	case StageIdle:
		return "idle"
	case StageCapturing:
		return "capturing"
	case StageDispatched:
		return "dispatched"
	case StageInjecting:
		return "injecting"
	}
	return fmt.Sprintf("Stage(%d)", int(s))
}

// Params describes the capture for the processing collaborator.
type Params struct {
	Source      selection.Source
	Window      window.Handle
	WindowTitle string
	ProcessName string
}

type CaptureFunc func(ctx context.Context, w window.Handle) selection.Result

type ProcessFunc func(ctx context.Context, text string, p Params) (inject.Content, error)

// DescribeFunc returns the title and process name of w.
type DescribeFunc func(w window.Handle) (title, process string)

type ResultTarget interface {
	OnSuccess(ctx context.Context, res Result) error
	OnFailure(err error) error
}

type PopupController interface {
	StartCountdown(timeoutSeconds int) error
	UpdateText(text string) error
	Close() error
}

type Options struct {
	Deadline time.Duration
	// Window is the foreground window captured when the cycle was triggered.
	Window                 window.Handle
	DisableSelection       bool
	Capture                CaptureFunc
	Process                ProcessFunc
	Describe               DescribeFunc
	Target                 ResultTarget
	Popup                  PopupController
	SuccessVisibleDuration time.Duration
	OnStage                func(Stage)
}

type Result struct {
	Capture selection.Result
	Content inject.Content
	Window  window.Handle
}

// Execute runs one capture, process, inject cycle. An empty capture is not an
// error: the processor still runs and decides what to produce.
func Execute(ctx context.Context, opts Options) (Result, error) {
	if opts.Target == nil {
		return Result{}, errors.New("Target is required")
	}
	stage := func(s Stage) {
		if opts.OnStage != nil {
			opts.OnStage(s)
		}
	}
	defer stage(StageIdle)

	if opts.Process == nil {
		_ = opts.Target.OnFailure(ErrNoProcessor)
		return Result{}, ErrNoProcessor
	}

	res := Result{Window: opts.Window}
	stage(StageCapturing)
	if !opts.DisableSelection && opts.Capture != nil {
		res.Capture = opts.Capture(ctx, opts.Window)
	}
	log.Printf("session: captured %s via %s in %s", logutil.SafeText(res.Capture.Text), res.Capture.Source, res.Capture.Elapsed)

	params := Params{Source: res.Capture.Source, Window: opts.Window}
	if opts.Window.Valid() {
		describe := opts.Describe
		if describe == nil {
			describe = describeWindow
		}
		params.WindowTitle, params.ProcessName = describe(opts.Window)
	}

	deadline := opts.Deadline
	if deadline <= 0 {
		deadline = DefaultDeadline
	}

	p := opts.Popup
	if p == nil {
		p = defaultPopupController{}
	}

	countdownSeconds := int(math.Ceil(deadline.Seconds()))
	if countdownSeconds < 1 {
		countdownSeconds = 1
	}
	stage(StageDispatched)
	_ = p.StartCountdown(countdownSeconds)

	jobCtx, cancel := context.WithTimeout(ctx, deadline)
	defer cancel()

	content, err := opts.Process(jobCtx, res.Capture.Text, params)
	if err != nil {
		_ = p.Close()
		_ = opts.Target.OnFailure(err)
		return Result{}, err
	}
	res.Content = content

	stage(StageInjecting)
	if err := opts.Target.OnSuccess(ctx, res); err != nil {
		_ = p.Close()
		_ = opts.Target.OnFailure(err)
		return Result{}, err
	}

	_ = p.UpdateText(summary(content))

	if opts.SuccessVisibleDuration > 0 {
		time.Sleep(opts.SuccessVisibleDuration)
	}

	return res, nil
}

func describeWindow(w window.Handle) (string, string) {
	return window.Title(w), window.ProcessName(w)
}

func summary(c inject.Content) string {
	if c.IsImage() {
		return "Image ready"
	}
	return c.Text
}

type defaultPopupController struct{}

func (defaultPopupController) StartCountdown(timeoutSeconds int) error {
	return popup.StartCountdown(timeoutSeconds)
}

func (defaultPopupController) UpdateText(text string) error {
	return popup.UpdateText(text)
}

func (defaultPopupController) Close() error {
	return popup.Close()
}

// Injector delivers content into a window.
type Injector interface {
	Inject(ctx context.Context, req inject.Request) error
}

// InjectTarget pastes the result back into the window the cycle started in,
// replacing the selection when there was one.
type InjectTarget struct {
	Injector Injector
	Behavior inject.Behavior
}

func (t InjectTarget) OnSuccess(ctx context.Context, res Result) error {
	if t.Injector == nil {
		return errors.New("inject target missing injector")
	}
	return t.Injector.Inject(ctx, request(res, t.Behavior))
}

func (InjectTarget) OnFailure(err error) error {
	return nil
}

func request(res Result, b inject.Behavior) inject.Request {
	return inject.Request{
		Content:              res.Content,
		Target:               res.Window,
		Behavior:             b,
		HadOriginalSelection: res.Capture.Text != "",
	}
}

type StdoutTarget struct {
	Writer io.Writer
}

func (t StdoutTarget) OnSuccess(ctx context.Context, res Result) error {
	w := t.Writer
	if w == nil {
		w = os.Stdout
	}
	_, err := fmt.Fprint(w, plain(res.Content))
	return err
}

func (t StdoutTarget) OnFailure(err error) error {
	return nil
}

func plain(c inject.Content) string {
	if c.IsImage() && c.ImageURL != "" {
		return c.ImageURL
	}
	return c.Text
}

// DelegatedTarget answers a run-once client: stdout mode sends the result
// back over the connection, inject mode pastes it here and replies empty.
type DelegatedTarget struct {
	Conn           singleinstance.Conn
	OutputToStdout bool
	Injector       Injector
	Behavior       inject.Behavior
}

func (t DelegatedTarget) OnSuccess(ctx context.Context, res Result) error {
	if t.Conn == nil {
		return errors.New("delegated target missing connection")
	}
	if t.OutputToStdout {
		return t.Conn.RespondSuccess(plain(res.Content))
	}
	if t.Injector == nil {
		return errors.New("delegated target missing injector")
	}
	if err := t.Injector.Inject(ctx, request(res, t.Behavior)); err != nil {
		return fmt.Errorf("inject error: %w", err)
	}
	return t.Conn.RespondSuccess("")
}

func (t DelegatedTarget) OnFailure(err error) error {
	if t.Conn == nil {
		return nil
	}
	if err == nil {
		return t.Conn.RespondError("unknown session error")
	}
	return t.Conn.RespondError(err.Error())
}

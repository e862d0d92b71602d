package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.design/x/hotkey/mainthread"

	"ai-anywhere/src/config"
	"ai-anywhere/src/eventloop"
	"ai-anywhere/src/hotkey"
	"ai-anywhere/src/inject"
	"ai-anywhere/src/keyspec"
	"ai-anywhere/src/logutil"
	"ai-anywhere/src/notification"
	"ai-anywhere/src/popup"
	"ai-anywhere/src/processor"
	"ai-anywhere/src/runtimeinit"
	"ai-anywhere/src/selection"
	"ai-anywhere/src/session"
	"ai-anywhere/src/singleinstance"
	"ai-anywhere/src/tray"
	"ai-anywhere/src/window"
)

const (
	runOnceInject = "inject"
	runOnceStdout = "std"
)

type mainOptions struct {
	runOnce       string
	envPath       string
	hotkey        string
	pasteBehavior string
}

func (o mainOptions) loadOptions() config.LoadOptions {
	return config.LoadOptions{
		HotkeyOverride:        o.hotkey,
		PasteBehaviorOverride: o.pasteBehavior,
		EnvPathOverride:       o.envPath,
	}
}

func main() {
	// x/hotkey needs the main thread on macOS.
	mainthread.Init(func() {
		if err := newRootCmd(&mainOptions{}).Execute(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	})
}

func newRootCmd(opts *mainOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "ai-anywhere",
		Short:         "Process the selected text in any application with a hotkey",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			enableDPIAwareness()
			if opts.runOnce != "" {
				return runOnce(*opts)
			}
			return runResident(*opts)
		},
	}
	cmd.SetArgs(normalizeLegacyArgs(os.Args)[1:])

	cmd.Flags().StringVar(&opts.runOnce, "run-once", "", "Run one cycle and exit; --run-once=std prints the result instead of pasting it")
	cmd.Flags().Lookup("run-once").NoOptDefVal = runOnceInject
	cmd.Flags().StringVar(&opts.envPath, "env-path", "", "Path to the .env file (highest precedence)")
	cmd.Flags().StringVar(&opts.hotkey, "hotkey", "", "Hotkey override, e.g. Ctrl+Alt+K")
	cmd.Flags().StringVar(&opts.pasteBehavior, "paste-behavior", "", "Paste behavior override: auto, clipboard or review")

	return cmd
}

// normalizeLegacyArgs maps single-dash long flags (-run-once) to the
// double-dash form cobra expects.
func normalizeLegacyArgs(args []string) []string {
	if len(args) == 0 {
		return args
	}

	normalized := make([]string, len(args))
	copy(normalized, args)

	for i := 1; i < len(normalized); i++ {
		arg := normalized[i]
		for _, name := range []string{"run-once", "run-once-std", "env-path", "hotkey", "paste-behavior"} {
			switch {
			case arg == "-"+name:
				normalized[i] = "-" + arg
			case strings.HasPrefix(arg, "-"+name+"="):
				normalized[i] = "-" + arg
			}
		}
		// The old spelling of stdout mode.
		if normalized[i] == "--run-once-std" {
			normalized[i] = "--run-once=" + runOnceStdout
		}
	}

	return normalized
}

type runOnceClient interface {
	TryRunOnce(ctx context.Context, outputToStdout bool) (bool, string, error)
}

// handleRunOnceWithDelegation hands the cycle to a resident when one answers
// and runs fallback otherwise. A resident that answers with an error is not
// retried locally.
func handleRunOnceWithDelegation(mode string, client runOnceClient, fallback func() error) error {
	stdout := mode == runOnceStdout
	delegated, text, err := client.TryRunOnce(context.Background(), stdout)
	switch {
	case delegated && err != nil:
		log.Printf("Resident refused run-once: %v", err)
		return fmt.Errorf("resident: %w", err)
	case err != nil:
		log.Printf("Delegation error: %v; falling back to standalone", err)
	case delegated:
		log.Printf("Delegated to resident")
		if stdout {
			fmt.Print(text)
		}
		return nil
	default:
		log.Printf("No resident detected (not delegated), running standalone")
	}
	return fallback()
}

func runOnce(opts mainOptions) error {
	// Load .env early so SINGLEINSTANCE_PORT_* are applied before delegation scan
	_, _ = config.LoadWithOptions(opts.loadOptions())

	return handleRunOnceWithDelegation(opts.runOnce, singleinstance.NewClient(), func() error {
		return runStandalone(opts)
	})
}

// runStandalone performs one cycle in this process when no resident exists.
func runStandalone(opts mainOptions) error {
	cfg, err := runtimeinit.Bootstrap(runtimeinit.Options{
		LoadOptions:      opts.loadOptions(),
		SetupLogging:     logutil.Setup,
		RequireProcessor: true,
	})
	if err != nil {
		return err
	}

	w := window.Foreground()
	var target session.ResultTarget = session.StdoutTarget{}
	if opts.runOnce != runOnceStdout {
		target = session.InjectTarget{Injector: newInjector(), Behavior: behaviorOf(cfg)}
	}

	log.Printf("Running one cycle (run-once mode) with deadline %s", cfg.ProcessDeadline())
	_, err = session.Execute(context.Background(), session.Options{
		Deadline:               cfg.ProcessDeadline(),
		Window:                 w,
		DisableSelection:       cfg.DisableTextSelection,
		Capture:                newCapturer(cfg).Capture,
		Process:                processor.Command{Cmd: cfg.ProcessorCmd}.Process,
		Target:                 target,
		SuccessVisibleDuration: time.Second,
	})
	return err
}

func runResident(opts mainOptions) error {
	// Load .env early so SINGLEINSTANCE_PORT_* are available for pre-flight
	_, _ = config.LoadWithOptions(opts.loadOptions())
	preflightCtx, cancelPreflight := context.WithTimeout(context.Background(), time.Second)
	err := singleinstance.Preflight(preflightCtx)
	cancelPreflight()
	if err != nil {
		log.Printf("Pre-flight on %s failed: %v", singleinstance.Ports(), err)
		if errors.Is(err, singleinstance.ErrPortInUse) {
			notification.ShowBlockingError("AI Anywhere", err.Error())
		}
		return err
	}

	cfg, err := runtimeinit.Bootstrap(runtimeinit.Options{
		LoadOptions:        opts.loadOptions(),
		SetupLogging:       logutil.Setup,
		ShowBlockingErrors: true,
	})
	if err != nil {
		return err
	}
	if cfg.ProcessorCmd == "" {
		notification.Show("AI Anywhere", "PROCESSOR_CMD is not set; the hotkey will report an error until it is.")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tooltip := fmt.Sprintf("AI Anywhere - Press %s", cfg.Hotkey)
	trayIcon := tray.New(tray.Config{
		Title:   "AI Anywhere",
		Tooltip: tooltip,
		OnExit:  cancel,
	})
	go trayIcon.Run()
	defer trayIcon.Destroy()
	popup.SetStatusSink(tray.UpdateTooltip)
	popup.SetIdleText(tooltip)

	registry := hotkey.NewRegistry(hotkey.OnRegistered(func(spec keyspec.KeySpec) {
		tray.SetAboutHotkey(spec.String())
	}))
	defer registry.Close()

	loop := eventloop.New(cfg)
	loop.SetDefaultTooltip(tooltip)
	loop.OnListening(func(port int) {
		tray.SetAboutExtra(fmt.Sprintf("Resident TCP port: %d", port))
	})
	loop.OnHotkeyChanged(func(spec keyspec.KeySpec) {
		tip := fmt.Sprintf("AI Anywhere - Press %s", spec)
		loop.SetDefaultTooltip(tip)
		popup.SetIdleText(tip)
		tray.UpdateTooltip(tip)
	})

	spec, _ := keyspec.Parse(cfg.Hotkey)
	h, err := registry.Register(spec)
	if err != nil {
		log.Printf("Hotkey %s unavailable: %v", spec, err)
		notification.Show("AI Anywhere", fmt.Sprintf("Could not register %s: %v\nChange HOTKEY in %s.", spec, err, cfg.EnvPath))
	}
	loop.StartHotkey(registry, h)

	if w, err := config.Watch(cfg, opts.loadOptions()); err != nil {
		log.Printf("Config watch disabled: %v", err)
	} else {
		defer w.Close()
		w.OnChange(loop.Reconfigure)
	}

	// Handle SIGINT/SIGTERM
	go func() {
		ch := make(chan os.Signal, 1)
		signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
		<-ch
		cancel()
	}()

	if err := loop.Run(ctx); err != nil && ctx.Err() == nil {
		return fmt.Errorf("event loop stopped: %w", err)
	}
	return nil
}

func newCapturer(cfg *config.Config) *selection.Capturer {
	return selection.NewCapturer(selection.Options{
		Denylist:         cfg.AccessibilityDenylist,
		SelectionTimeout: cfg.SelectionTimeout,
		CopyDelay:        cfg.CopyDelay,
	})
}

func newInjector() *inject.Injector {
	return inject.New(inject.Options{
		Reviewer: inject.ReviewerFunc(func(ctx context.Context, c inject.Content) (bool, error) {
			return notification.Confirm("AI Anywhere", "Paste the result into the original window?\n\n"+c.Text), nil
		}),
	})
}

func behaviorOf(cfg *config.Config) inject.Behavior {
	b, err := inject.ParseBehavior(cfg.PasteBehavior)
	if err != nil {
		return inject.ReviewThenPaste
	}
	return b
}

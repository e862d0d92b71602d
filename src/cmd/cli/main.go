package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"ai-anywhere/src/clipboard"
	"ai-anywhere/src/config"
	"ai-anywhere/src/hotkey"
	"ai-anywhere/src/hotkeycapture"
	"ai-anywhere/src/inject"
	"ai-anywhere/src/keyspec"
	"ai-anywhere/src/processor"
	"ai-anywhere/src/selection"
	"ai-anywhere/src/session"
	"ai-anywhere/src/window"
)

const maxInputSize = 1 << 20

type cliOptions struct {
	verbose bool
	envPath string
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	return runWithArgs(normalizeLegacyArgs(os.Args))
}

func runWithArgs(args []string) error {
	if len(args) == 0 {
		args = []string{"ai-tool"}
	}

	cmd := newRootCmd(&cliOptions{})
	cmd.SetArgs(args[1:])
	return cmd.Execute()
}

func newRootCmd(opts *cliOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "ai-tool",
		Short:         "Inspect and exercise the hotkey, selection and paste plumbing",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Configure logging BEFORE any other operations.
			if opts.verbose {
				log.SetOutput(os.Stderr)
			} else {
				log.SetOutput(io.Discard)
			}
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Verbose output to stderr")
	cmd.PersistentFlags().StringVar(&opts.envPath, "env-path", "", "Path to the .env file (highest precedence)")

	cmd.AddCommand(
		newKeyspecCmd(),
		newCheckHotkeyCmd(),
		newRecordHotkeyCmd(opts),
		newCaptureCmd(opts),
		newInjectCmd(opts),
		newProcessCmd(opts),
	)
	return cmd
}

func normalizeLegacyArgs(args []string) []string {
	if len(args) == 0 {
		return args
	}

	normalized := make([]string, len(args))
	copy(normalized, args)

	for i := 1; i < len(normalized); i++ {
		arg := normalized[i]
		for _, name := range []string{"json", "verbose", "env-path", "current", "timeout", "delay", "text", "behavior", "had-selection", "cmd"} {
			if arg == "-"+name || strings.HasPrefix(arg, "-"+name+"=") {
				normalized[i] = "-" + arg
				break
			}
		}
	}

	return normalized
}

// KeySpecInfo is the --json form of the keyspec command.
type KeySpecInfo struct {
	Input     string   `json:"input"`
	Canonical string   `json:"canonical"`
	Modifiers []string `json:"modifiers"`
	Key       string   `json:"key"`
	VK        uint16   `json:"vk"`
	Reserved  bool     `json:"reserved"`
}

func describeKeySpec(input string, k keyspec.KeySpec) KeySpecInfo {
	info := KeySpecInfo{
		Input:     input,
		Canonical: k.String(),
		Modifiers: []string{},
		Key:       k.Key().Name(),
		VK:        k.Key().VK(),
		Reserved:  keyspec.IsReserved(k),
	}
	for _, m := range k.Modifiers().List() {
		info.Modifiers = append(info.Modifiers, m.String())
	}
	return info
}

func newKeyspecCmd() *cobra.Command {
	var jsonOutput bool
	cmd := &cobra.Command{
		Use:   "keyspec <hotkey>",
		Short: "Parse a hotkey and print its canonical form",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			k, err := keyspec.Parse(args[0])
			if err != nil {
				return err
			}
			info := describeKeySpec(args[0], k)
			if jsonOutput {
				return writeJSON(cmd.OutOrStdout(), info)
			}
			fmt.Fprintln(cmd.OutOrStdout(), info.Canonical)
			if info.Reserved {
				fmt.Fprintln(cmd.ErrOrStderr(), "warning: reserved by the operating system")
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output results as JSON")
	return cmd
}

func newCheckHotkeyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check-hotkey <hotkey>",
		Short: "Report whether a hotkey can be registered right now",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			k, err := keyspec.Parse(args[0])
			if err != nil {
				return err
			}
			if keyspec.IsReserved(k) {
				return fmt.Errorf("%s is reserved by the operating system", k)
			}
			reg := hotkey.NewRegistry()
			defer reg.Close()
			if err := reg.Check(k); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s is available\n", k)
			return nil
		},
	}
}

func newRecordHotkeyCmd(opts *cliOptions) *cobra.Command {
	var (
		current string
		timeout time.Duration
	)
	cmd := &cobra.Command{
		Use:   "record-hotkey",
		Short: "Press a chord to record it; Escape cancels",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer cancel()
			if timeout > 0 {
				ctx, cancel = context.WithTimeout(ctx, timeout)
				defer cancel()
			}

			events, err := hotkey.RawKeys(ctx)
			if err != nil {
				return err
			}
			reg := hotkey.NewRegistry()
			defer reg.Close()

			fmt.Fprintln(cmd.ErrOrStderr(), "Press the new hotkey (Escape to cancel)...")
			value, err := hotkeycapture.Record(ctx, events, current,
				hotkeycapture.WithReservedCheck(),
				hotkeycapture.WithAvailability(reg.Check),
				hotkeycapture.OnBlocked(func(k keyspec.KeySpec) {
					fmt.Fprintf(cmd.ErrOrStderr(), "%s is reserved, try another\n", k)
				}),
				hotkeycapture.OnUnavailable(func(k keyspec.KeySpec, err error) {
					fmt.Fprintf(cmd.ErrOrStderr(), "%s is unavailable: %v\n", k, err)
				}),
			)
			if err != nil {
				if errors.Is(err, hotkeycapture.ErrCancelled) && current != "" {
					fmt.Fprintln(cmd.OutOrStdout(), current)
				}
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), value)
			return nil
		},
	}
	cmd.Flags().StringVar(&current, "current", "", "Hotkey shown before recording and restored on cancel")
	cmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "Give up after this long (0 waits forever)")
	return cmd
}

// CaptureOutput is the --json form of the capture command.
type CaptureOutput struct {
	Text      string  `json:"text"`
	Source    string  `json:"source"`
	Process   string  `json:"process"`
	Title     string  `json:"title"`
	Duration  float64 `json:"duration_seconds"`
	CharCount int     `json:"character_count"`
}

func newCaptureCmd(opts *cliOptions) *cobra.Command {
	var (
		delay      time.Duration
		jsonOutput bool
	)
	cmd := &cobra.Command{
		Use:   "capture",
		Short: "Capture the selection in the foreground window after a delay",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			if err := clipboard.Init(); err != nil {
				return fmt.Errorf("failed to initialize clipboard: %w", err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Capturing in %s, switch to the target window...\n", delay)
			time.Sleep(delay)

			w := window.Foreground()
			c := selection.NewCapturer(selection.Options{
				Denylist:         cfg.AccessibilityDenylist,
				SelectionTimeout: cfg.SelectionTimeout,
				CopyDelay:        cfg.CopyDelay,
			})
			res := c.Capture(cmd.Context(), w)

			if jsonOutput {
				return writeJSON(cmd.OutOrStdout(), CaptureOutput{
					Text:      res.Text,
					Source:    res.Source.String(),
					Process:   window.ProcessName(w),
					Title:     window.Title(w),
					Duration:  res.Elapsed.Seconds(),
					CharCount: len([]rune(res.Text)),
				})
			}
			if opts.verbose {
				fmt.Fprintf(os.Stderr, "[verbose] source=%s in %v\n", res.Source, res.Elapsed)
			}
			fmt.Fprint(cmd.OutOrStdout(), res.Text)
			return nil
		},
	}
	cmd.Flags().DurationVar(&delay, "delay", 3*time.Second, "Wait before capturing")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output results as JSON")
	return cmd
}

func newInjectCmd(opts *cliOptions) *cobra.Command {
	var (
		text         string
		behavior     string
		hadSelection bool
		delay        time.Duration
	)
	cmd := &cobra.Command{
		Use:   "inject",
		Short: "Paste text into the foreground window after a delay",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := inject.ParseBehavior(behavior)
			if err != nil {
				return err
			}
			if text == "" {
				text, err = readInput(cmd.InOrStdin())
				if err != nil {
					return err
				}
			}
			if err := clipboard.Init(); err != nil {
				return fmt.Errorf("failed to initialize clipboard: %w", err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Pasting in %s, switch to the target window...\n", delay)
			time.Sleep(delay)

			in := inject.New(inject.Options{})
			return in.Inject(cmd.Context(), inject.Request{
				Content:              inject.Text(text),
				Target:               window.Foreground(),
				Behavior:             b,
				HadOriginalSelection: hadSelection,
			})
		},
	}
	cmd.Flags().StringVar(&text, "text", "", "Text to paste (default: read stdin)")
	cmd.Flags().StringVar(&behavior, "behavior", config.PasteBehaviorAuto, "auto, clipboard or review")
	cmd.Flags().BoolVar(&hadSelection, "had-selection", true, "Treat the target as having had a selection")
	cmd.Flags().DurationVar(&delay, "delay", 3*time.Second, "Wait before pasting")
	return cmd
}

func newProcessCmd(opts *cliOptions) *cobra.Command {
	var command string
	cmd := &cobra.Command{
		Use:   "process",
		Short: "Run the configured processor on stdin and print its result",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if command == "" {
				cfg, err := loadConfig(opts)
				if err != nil {
					return err
				}
				command = cfg.ProcessorCmd
			}
			text, err := readInput(cmd.InOrStdin())
			if err != nil {
				return err
			}

			start := time.Now()
			ctx, cancel := context.WithTimeout(cmd.Context(), session.DefaultDeadline)
			defer cancel()
			out, err := processor.Command{Cmd: command}.Process(ctx, text, session.Params{Source: selection.SourceNone})
			if err != nil {
				return err
			}
			if opts.verbose {
				fmt.Fprintf(os.Stderr, "[verbose] processed in %v\n", time.Since(start))
			}
			if out.IsImage() {
				fmt.Fprintln(cmd.OutOrStdout(), processor.ImagePrefix+out.ImageURL)
				return nil
			}
			fmt.Fprint(cmd.OutOrStdout(), out.Text)
			return nil
		},
	}
	cmd.Flags().StringVar(&command, "cmd", "", "Processor command (default: PROCESSOR_CMD)")
	return cmd
}

func loadConfig(opts *cliOptions) (*config.Config, error) {
	cfg, err := config.LoadWithOptions(config.LoadOptions{EnvPathOverride: opts.envPath})
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if opts.verbose {
		fmt.Fprintf(os.Stderr, "[verbose] Config loaded from %s\n", cfg.EnvPath)
	}
	return cfg, nil
}

func readInput(r io.Reader) (string, error) {
	b, err := io.ReadAll(io.LimitReader(r, maxInputSize+1))
	if err != nil {
		return "", fmt.Errorf("failed to read from stdin: %w", err)
	}
	if len(b) > maxInputSize {
		return "", fmt.Errorf("input exceeds maximum size of %d bytes", maxInputSize)
	}
	return string(b), nil
}

func writeJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(v); err != nil {
		return fmt.Errorf("failed to encode JSON output: %w", err)
	}
	return nil
}

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"ai-anywhere/src/singleinstance"
)

type stressOptions struct {
	n        int
	mode     string
	deadline time.Duration
}

type outcome int

const (
	outcomeOK outcome = iota
	outcomeBusy
	outcomeNoResident
	outcomeError
)

type tally struct {
	mu     sync.Mutex
	counts [4]int
}

func (t *tally) add(o outcome) {
	t.mu.Lock()
	t.counts[o]++
	t.mu.Unlock()
}

func (t *tally) String() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return fmt.Sprintf("ok=%d busy=%d none=%d err=%d",
		t.counts[outcomeOK], t.counts[outcomeBusy], t.counts[outcomeNoResident], t.counts[outcomeError])
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	opts := &stressOptions{}
	cmd := newRootCmd(opts)
	return cmd.Execute()
}

func newRootCmd(opts *stressOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "stress-runonce",
		Short:         "Stress test run-once delegation against a resident",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.mode != "std" && opts.mode != "inject" {
				return fmt.Errorf("unknown mode %q (want std or inject)", opts.mode)
			}
			client := singleinstance.NewClient()
			return runWithOptions(*opts, client, cmd.OutOrStdout())
		},
	}

	cmd.Flags().IntVar(&opts.n, "n", 50, "number of clients to launch")
	cmd.Flags().StringVar(&opts.mode, "mode", "std", "std|inject: --run-once=std (stdout) or --run-once (paste in place)")
	cmd.Flags().DurationVar(&opts.deadline, "deadline", 5*time.Second, "per-client timeout")

	return cmd
}

func classify(delegated bool, err error) outcome {
	switch {
	case err != nil && strings.Contains(strings.ToLower(err.Error()), "busy"):
		return outcomeBusy
	case err != nil:
		return outcomeError
	case delegated:
		return outcomeOK
	}
	return outcomeNoResident
}

func runWithOptions(opts stressOptions, client singleinstance.Client, out io.Writer) error {
	var wg sync.WaitGroup
	var counts tally

	stdout := opts.mode == "std"
	start := time.Now()
	for i := 0; i < opts.n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ctx, cancel := context.WithTimeout(context.Background(), opts.deadline)
			defer cancel()
			delegated, _, err := client.TryRunOnce(ctx, stdout)
			counts.add(classify(delegated, err))
		}()
	}
	wg.Wait()
	fmt.Fprintf(out, "launched=%d %s elapsed=%s\n", opts.n, &counts, time.Since(start))
	return nil
}

package main

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func TestNewRootCmdDefaults(t *testing.T) {
	opts := &stressOptions{}
	cmd := newRootCmd(opts)
	if err := cmd.ParseFlags([]string{}); err != nil {
		t.Fatalf("ParseFlags failed: %v", err)
	}
	if opts.n != 50 {
		t.Fatalf("Expected default n=50, got %d", opts.n)
	}
	if opts.mode != "std" {
		t.Fatalf("Expected default mode=std, got %q", opts.mode)
	}
	if opts.deadline != 5*time.Second {
		t.Fatalf("Expected default deadline=5s, got %v", opts.deadline)
	}
}

func TestNewRootCmdCustomFlags(t *testing.T) {
	opts := &stressOptions{}
	cmd := newRootCmd(opts)
	if err := cmd.ParseFlags([]string{"--n", "3", "--mode", "inject", "--deadline", "7s"}); err != nil {
		t.Fatalf("ParseFlags failed: %v", err)
	}
	if opts.n != 3 {
		t.Fatalf("Expected n=3, got %d", opts.n)
	}
	if opts.mode != "inject" {
		t.Fatalf("Expected mode=inject, got %q", opts.mode)
	}
	if opts.deadline != 7*time.Second {
		t.Fatalf("Expected deadline=7s, got %v", opts.deadline)
	}
}

func TestRejectsUnknownMode(t *testing.T) {
	cmd := newRootCmd(&stressOptions{})
	cmd.SetArgs([]string{"--mode", "clip", "--n", "0"})
	if err := cmd.Execute(); err == nil {
		t.Fatal("Expected an error for mode=clip")
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		delegated bool
		err       error
		expected  outcome
	}{
		{true, nil, outcomeOK},
		{true, errors.New("Busy, please retry"), outcomeBusy},
		{true, errors.New("processor: exit status 1"), outcomeError},
		{false, errors.New("connection refused"), outcomeError},
		{false, nil, outcomeNoResident},
	}
	for _, tt := range tests {
		if got := classify(tt.delegated, tt.err); got != tt.expected {
			t.Errorf("classify(%v, %v) = %d, expected %d", tt.delegated, tt.err, got, tt.expected)
		}
	}
}

type countingClient struct {
	calls  atomic.Int32
	stdout atomic.Bool
}

func (c *countingClient) TryRunOnce(ctx context.Context, outputToStdout bool) (bool, string, error) {
	c.stdout.Store(outputToStdout)
	if c.calls.Add(1) == 1 {
		return true, "ok", nil
	}
	return true, "", errors.New("Busy, please retry")
}

func TestRunWithOptionsTallies(t *testing.T) {
	client := &countingClient{}
	var out bytes.Buffer
	if err := runWithOptions(stressOptions{n: 4, mode: "inject", deadline: time.Second}, client, &out); err != nil {
		t.Fatalf("runWithOptions failed: %v", err)
	}
	if client.stdout.Load() {
		t.Error("inject mode should not request stdout output")
	}
	if !strings.Contains(out.String(), "launched=4 ok=1 busy=3 none=0 err=0") {
		t.Errorf("summary = %q", out.String())
	}
}

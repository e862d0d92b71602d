package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"runtime"
	"strings"
	"testing"

	"ai-anywhere/src/keyspec"
)

func execute(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCmd(&cliOptions{})
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestNormalizeLegacyArgs(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		out  []string
	}{
		{
			name: "Normalizes long single dash flags",
			in:   []string{"ai-tool", "keyspec", "-json", "Ctrl+K"},
			out:  []string{"ai-tool", "keyspec", "--json", "Ctrl+K"},
		},
		{
			name: "Normalizes equals form",
			in:   []string{"ai-tool", "inject", "-text=hi", "-behavior=clipboard"},
			out:  []string{"ai-tool", "inject", "--text=hi", "--behavior=clipboard"},
		},
		{
			name: "Leaves short and unknown flags unchanged",
			in:   []string{"ai-tool", "-v", "--json", "-jsonx"},
			out:  []string{"ai-tool", "-v", "--json", "-jsonx"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := normalizeLegacyArgs(tt.in)
			if len(got) != len(tt.out) {
				t.Fatalf("Expected len=%d, got %d", len(tt.out), len(got))
			}
			for i := range got {
				if got[i] != tt.out[i] {
					t.Fatalf("Expected arg[%d]=%q, got %q", i, tt.out[i], got[i])
				}
			}
		})
	}
}

func TestKeyspecCommand(t *testing.T) {
	tests := []struct {
		in       string
		expected string
	}{
		{"ctrl+shift+k", "Ctrl+Shift+K\n"},
		{" Shift + Ctrl + K ", "Ctrl+Shift+K\n"},
		{"F9", "F9\n"},
	}
	for _, tt := range tests {
		out, _, err := execute(t, "", "keyspec", tt.in)
		if err != nil {
			t.Errorf("keyspec %q failed: %v", tt.in, err)
			continue
		}
		if out != tt.expected {
			t.Errorf("keyspec %q = %q, expected %q", tt.in, out, tt.expected)
		}
	}
}

func TestKeyspecCommandJSON(t *testing.T) {
	out, _, err := execute(t, "", "keyspec", "--json", "alt+space")
	if err != nil {
		t.Fatalf("keyspec --json failed: %v", err)
	}
	var info KeySpecInfo
	if err := json.Unmarshal([]byte(out), &info); err != nil {
		t.Fatalf("Failed to parse JSON: %v\n%s", err, out)
	}
	if info.Canonical != "Alt+Space" || info.Key != "Space" || info.VK != uint16(keyspec.KeySpace) {
		t.Errorf("unexpected info %+v", info)
	}
	if len(info.Modifiers) != 1 || info.Modifiers[0] != "Alt" {
		t.Errorf("modifiers = %v, expected [Alt]", info.Modifiers)
	}
	if !info.Reserved {
		t.Error("Alt+Space should be reported as reserved")
	}
}

func TestKeyspecCommandRejectsInvalid(t *testing.T) {
	tests := []struct {
		in  string
		err error
	}{
		{"K", keyspec.ErrNoModifier},
		{"Ctrl+Ctrl+K", keyspec.ErrDuplicateModifier},
		{"Ctrl+Banana", keyspec.ErrUnknownKey},
	}
	for _, tt := range tests {
		_, _, err := execute(t, "", "keyspec", tt.in)
		if !errors.Is(err, tt.err) {
			t.Errorf("keyspec %q error = %v, expected %v", tt.in, err, tt.err)
		}
	}
}

func TestCheckHotkeyRejectsReserved(t *testing.T) {
	_, _, err := execute(t, "", "check-hotkey", "Alt+F4")
	if err == nil || !strings.Contains(err.Error(), "reserved") {
		t.Fatalf("expected a reserved error, got %v", err)
	}
}

func TestInjectRejectsUnknownBehavior(t *testing.T) {
	_, _, err := execute(t, "", "inject", "--text", "hi", "--behavior", "shout", "--delay", "0")
	if err == nil || !strings.Contains(err.Error(), "unknown paste behavior") {
		t.Fatalf("expected a behavior error, got %v", err)
	}
}

func TestProcessCommand(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses a POSIX shell")
	}
	out, _, err := execute(t, "hello world", "process", "--cmd", "tr a-z A-Z")
	if err != nil {
		t.Fatalf("process failed: %v", err)
	}
	if out != "HELLO WORLD" {
		t.Errorf("process output = %q, expected %q", out, "HELLO WORLD")
	}
}

func TestProcessCommandImage(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses a POSIX shell")
	}
	out, _, err := execute(t, "", "process", "--cmd", "echo image:https://example.com/a.png")
	if err != nil {
		t.Fatalf("process failed: %v", err)
	}
	if out != "image:https://example.com/a.png\n" {
		t.Errorf("process output = %q", out)
	}
}

func TestReadInputLimit(t *testing.T) {
	if _, err := readInput(strings.NewReader(strings.Repeat("x", maxInputSize+1))); err == nil {
		t.Fatal("expected oversized input to be rejected")
	}
	got, err := readInput(strings.NewReader("ok"))
	if err != nil || got != "ok" {
		t.Fatalf("readInput = %q, %v", got, err)
	}
}

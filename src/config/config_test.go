package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

var configKeys = []string{
	"HOTKEY", "PASTE_BEHAVIOR", "DISABLE_TEXT_SELECTION", "COPY_DELAY_MS",
	"SELECTION_TIMEOUT_MS", "ACCESSIBILITY_DENYLIST", "PROCESSOR_CMD",
	"PROCESS_DEADLINE_SEC", "ENABLE_FILE_LOGGING", EnvPathEnvVar,
}

// clearEnv unsets the config keys for the duration of the test. godotenv
// treats a variable set to "" as present, so t.Setenv alone is not enough.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range configKeys {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func writeEnv(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadWithOptions(LoadOptions{EnvPathOverride: filepath.Join(t.TempDir(), "missing.env")})
	if err != nil {
		t.Fatalf("Failed to load configuration: %v", err)
	}

	if cfg.Hotkey != "Ctrl+Space" {
		t.Errorf("Expected Hotkey to be 'Ctrl+Space', got '%s'", cfg.Hotkey)
	}
	if cfg.PasteBehavior != PasteBehaviorReview {
		t.Errorf("Expected PasteBehavior to be 'review', got '%s'", cfg.PasteBehavior)
	}
	if cfg.DisableTextSelection || cfg.EnableFileLogging {
		t.Errorf("Expected boolean switches off, got %+v", cfg)
	}
	if cfg.CopyDelay != 250*time.Millisecond {
		t.Errorf("Expected CopyDelay 250ms, got %s", cfg.CopyDelay)
	}
	if cfg.SelectionTimeout != 2*time.Second {
		t.Errorf("Expected SelectionTimeout 2s, got %s", cfg.SelectionTimeout)
	}
	if !reflect.DeepEqual(cfg.AccessibilityDenylist, []string{"Code", "Code - Insiders"}) {
		t.Errorf("Unexpected default denylist %q", cfg.AccessibilityDenylist)
	}
	if cfg.ProcessDeadline() != 30*time.Second {
		t.Errorf("Expected ProcessDeadline 30s, got %s", cfg.ProcessDeadline())
	}
}

func TestLoadFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("HOTKEY", "Ctrl+Shift+T")
	t.Setenv("PASTE_BEHAVIOR", "AUTO")
	t.Setenv("DISABLE_TEXT_SELECTION", "true")
	t.Setenv("COPY_DELAY_MS", "400")
	t.Setenv("SELECTION_TIMEOUT_MS", "-5")
	t.Setenv("ACCESSIBILITY_DENYLIST", " Code , slack ,, ")
	t.Setenv("PROCESSOR_CMD", "  llm -m gpt  ")
	t.Setenv("PROCESS_DEADLINE_SEC", "abc")
	t.Setenv("ENABLE_FILE_LOGGING", "1")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Failed to load configuration: %v", err)
	}

	if cfg.Hotkey != "Ctrl+Shift+T" {
		t.Errorf("Expected Hotkey to be 'Ctrl+Shift+T', got '%s'", cfg.Hotkey)
	}
	if cfg.PasteBehavior != PasteBehaviorAuto {
		t.Errorf("Expected PasteBehavior 'auto', got '%s'", cfg.PasteBehavior)
	}
	if !cfg.DisableTextSelection || !cfg.EnableFileLogging {
		t.Errorf("Expected boolean switches on, got %+v", cfg)
	}
	if cfg.CopyDelay != 400*time.Millisecond {
		t.Errorf("Expected CopyDelay 400ms, got %s", cfg.CopyDelay)
	}
	if cfg.SelectionTimeout != 2*time.Second {
		t.Errorf("Expected invalid SELECTION_TIMEOUT_MS to fall back to 2s, got %s", cfg.SelectionTimeout)
	}
	if !reflect.DeepEqual(cfg.AccessibilityDenylist, []string{"Code", "slack"}) {
		t.Errorf("Unexpected denylist %q", cfg.AccessibilityDenylist)
	}
	if cfg.ProcessorCmd != "llm -m gpt" {
		t.Errorf("Expected ProcessorCmd 'llm -m gpt', got %q", cfg.ProcessorCmd)
	}
	if cfg.ProcessDeadlineSec != 30 {
		t.Errorf("Expected invalid PROCESS_DEADLINE_SEC to fall back to 30, got %d", cfg.ProcessDeadlineSec)
	}
}

func TestEmptyDenylist(t *testing.T) {
	clearEnv(t)
	t.Setenv("ACCESSIBILITY_DENYLIST", "")

	cfg, _ := Load()
	if len(cfg.AccessibilityDenylist) != 0 {
		t.Errorf("Expected an empty denylist, got %q", cfg.AccessibilityDenylist)
	}
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t)
	envPath := filepath.Join(t.TempDir(), ".env")
	writeEnv(t, envPath, "HOTKEY=Ctrl+Alt+K\nPASTE_BEHAVIOR=clipboard\n")

	cfg, err := LoadWithOptions(LoadOptions{
		EnvPathOverride:       envPath,
		PasteBehaviorOverride: "auto",
	})
	if err != nil {
		t.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.EnvPath != envPath {
		t.Errorf("EnvPath = %q, expected %q", cfg.EnvPath, envPath)
	}
	if cfg.Hotkey != "Ctrl+Alt+K" {
		t.Errorf("Expected Hotkey from .env, got %q", cfg.Hotkey)
	}
	if cfg.PasteBehavior != PasteBehaviorAuto {
		t.Errorf("Expected CLI override to win, got %q", cfg.PasteBehavior)
	}

	cfg, _ = LoadWithOptions(LoadOptions{EnvPathOverride: envPath, HotkeyOverride: "F9"})
	if cfg.Hotkey != "F9" {
		t.Errorf("Expected hotkey override F9, got %q", cfg.Hotkey)
	}
}

func TestLoadFromEnvPathVariable(t *testing.T) {
	clearEnv(t)
	envPath := filepath.Join(t.TempDir(), "custom.env")
	writeEnv(t, envPath, "PROCESSOR_CMD=cat\n")
	t.Setenv(EnvPathEnvVar, envPath)

	cfg, _ := Load()
	if cfg.ProcessorCmd != "cat" {
		t.Errorf("Expected ProcessorCmd from %s, got %q", EnvPathEnvVar, cfg.ProcessorCmd)
	}
}

func TestResolvePasteBehavior(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"auto", PasteBehaviorAuto},
		{"Paste", PasteBehaviorAuto},
		{"clipboard", PasteBehaviorCopy},
		{"copy", PasteBehaviorCopy},
		{"review", PasteBehaviorReview},
		{"", PasteBehaviorReview},
		{"bogus", PasteBehaviorReview},
	}
	for _, tt := range tests {
		if got := resolvePasteBehavior(tt.input); got != tt.expected {
			t.Errorf("resolvePasteBehavior(%q) = %q, expected %q", tt.input, got, tt.expected)
		}
	}
}

func TestWatcherReloads(t *testing.T) {
	clearEnv(t)
	envPath := filepath.Join(t.TempDir(), ".env")
	writeEnv(t, envPath, "HOTKEY=Ctrl+Space\n")

	cfg, err := LoadWithOptions(LoadOptions{EnvPathOverride: envPath})
	if err != nil {
		t.Fatalf("Failed to load configuration: %v", err)
	}
	w, err := Watch(cfg, LoadOptions{})
	if err != nil {
		t.Skipf("file watching unavailable: %v", err)
	}
	defer w.Close()

	changed := make(chan *Config, 4)
	w.OnChange(func(c *Config) { changed <- c })

	writeEnv(t, envPath, "HOTKEY=Ctrl+Alt+K\n")

	deadline := time.After(3 * time.Second)
	for {
		select {
		case c := <-changed:
			if c.Hotkey == "Ctrl+Alt+K" {
				if w.Config().Hotkey != "Ctrl+Alt+K" {
					t.Errorf("Config() = %q after reload", w.Config().Hotkey)
				}
				return
			}
		case <-deadline:
			t.Fatal("watcher did not report the new hotkey")
		}
	}
}

func TestWatchWithoutFile(t *testing.T) {
	if _, err := Watch(&Config{}, LoadOptions{}); err == nil {
		t.Error("Watch without an env path should fail")
	}
}

package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	EnvPathEnvVar = "AI_ANYWHERE"

	DefaultHotkey        = "Ctrl+Space"
	PasteBehaviorAuto    = "auto"
	PasteBehaviorCopy    = "clipboard"
	PasteBehaviorReview  = "review"
	DefaultPasteBehavior = PasteBehaviorReview
)

// DefaultDenylist names processes whose accessibility trees hang or take
// too long to search.
var DefaultDenylist = []string{"Code", "Code - Insiders"}

type LoadOptions struct {
	HotkeyOverride        string
	PasteBehaviorOverride string
	EnvPathOverride       string
	// Reload lets values from the .env file replace ones already in the
	// process environment. Without it a changed file would never be seen
	// after the first Load.
	Reload bool
}

type Config struct {
	EnvPath               string
	Hotkey                string
	PasteBehavior         string
	DisableTextSelection  bool
	CopyDelay             time.Duration
	SelectionTimeout      time.Duration
	AccessibilityDenylist []string
	ProcessorCmd          string
	ProcessDeadlineSec    int
	EnableFileLogging     bool
}

func Load() (*Config, error) {
	return LoadWithOptions(LoadOptions{})
}

func LoadWithOptions(opts LoadOptions) (*Config, error) {
	// Load configuration from sources in priority order:
	// 1) an explicit path from the command line
	// 2) .env in the application (executable) directory
	// 3) If not found, use AI_ANYWHERE env var as a path to a config file
	envPath := resolveEnvPath(opts)
	if envPath != "" {
		if opts.Reload {
			_ = godotenv.Overload(envPath)
		} else {
			_ = godotenv.Load(envPath)
		}
	}

	cfg := &Config{
		EnvPath:               envPath,
		Hotkey:                resolveHotkey(opts),
		PasteBehavior:         resolvePasteBehaviorValue(opts),
		DisableTextSelection:  getEnvBool("DISABLE_TEXT_SELECTION"),
		CopyDelay:             getEnvMillis("COPY_DELAY_MS", 250*time.Millisecond),
		SelectionTimeout:      getEnvMillis("SELECTION_TIMEOUT_MS", 2*time.Second),
		AccessibilityDenylist: getEnvList("ACCESSIBILITY_DENYLIST", DefaultDenylist),
		ProcessorCmd:          strings.TrimSpace(os.Getenv("PROCESSOR_CMD")),
		ProcessDeadlineSec:    getEnvPositiveInt("PROCESS_DEADLINE_SEC", 30),
		EnableFileLogging:     getEnvBool("ENABLE_FILE_LOGGING"),
	}

	return cfg, nil
}

// ProcessDeadline is the time the processing collaborator gets per cycle.
func (c *Config) ProcessDeadline() time.Duration {
	return time.Duration(c.ProcessDeadlineSec) * time.Second
}

func resolveEnvPath(opts LoadOptions) string {
	if p := strings.TrimSpace(opts.EnvPathOverride); p != "" {
		return p
	}

	execPath, err := os.Executable()
	if err != nil {
		return ""
	}

	execDir := filepath.Dir(execPath)
	exeEnv := filepath.Join(execDir, ".env")
	if _, err := os.Stat(exeEnv); err == nil {
		return exeEnv
	}

	if alt := os.Getenv(EnvPathEnvVar); alt != "" {
		if _, err := os.Stat(alt); err == nil {
			return alt
		}
	}

	return ""
}

func resolveHotkey(opts LoadOptions) string {
	if override := strings.TrimSpace(opts.HotkeyOverride); override != "" {
		return override
	}
	return getEnvWithDefault("HOTKEY", DefaultHotkey)
}

func resolvePasteBehavior(value string) string {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "auto", "autopaste", "paste":
		return PasteBehaviorAuto
	case "clipboard", "clipboardonly", "copy":
		return PasteBehaviorCopy
	case "review", "reviewthenpaste":
		return PasteBehaviorReview
	default:
		return DefaultPasteBehavior
	}
}

func resolvePasteBehaviorValue(opts LoadOptions) string {
	if override := strings.TrimSpace(opts.PasteBehaviorOverride); override != "" {
		return resolvePasteBehavior(override)
	}
	return resolvePasteBehavior(os.Getenv("PASTE_BEHAVIOR"))
}

func getEnvWithDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string) bool {
	v, err := strconv.ParseBool(strings.TrimSpace(os.Getenv(key)))
	return err == nil && v
}

func getEnvPositiveInt(key string, defaultValue int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && n > 0 {
			return n
		}
	}
	return defaultValue
}

func getEnvMillis(key string, defaultValue time.Duration) time.Duration {
	return time.Duration(getEnvPositiveInt(key, int(defaultValue/time.Millisecond))) * time.Millisecond
}

// getEnvList splits a comma-separated value. An unset variable yields the
// default; a variable set to blanks yields an empty list.
func getEnvList(key string, defaultValue []string) []string {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return append([]string(nil), defaultValue...)
	}
	list := []string{}
	for _, item := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			list = append(list, trimmed)
		}
	}
	return list
}

package runtimeinit

import (
	"fmt"
	"log"

	"ai-anywhere/src/clipboard"
	"ai-anywhere/src/config"
	"ai-anywhere/src/keyspec"
	"ai-anywhere/src/notification"
	"ai-anywhere/src/session"
)

type Options struct {
	LoadOptions  config.LoadOptions
	SetupLogging func(bool)
	// RequireProcessor fails startup when PROCESSOR_CMD is empty.
	RequireProcessor bool
	// ShowBlockingErrors puts startup failures in a dialog as well.
	ShowBlockingErrors bool
	// InitClipboard defaults to clipboard.Init.
	InitClipboard func() error
}

func Bootstrap(opts Options) (*config.Config, error) {
	cfg, err := config.LoadWithOptions(opts.LoadOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if opts.SetupLogging != nil {
		opts.SetupLogging(cfg.EnableFileLogging)
	}

	fail := func(title string, err error) (*config.Config, error) {
		if opts.ShowBlockingErrors {
			notification.ShowBlockingError(title, err.Error())
		}
		return nil, err
	}

	if _, err := keyspec.Parse(cfg.Hotkey); err != nil {
		return fail("Invalid hotkey", fmt.Errorf("HOTKEY %q: %w", cfg.Hotkey, err))
	}
	if opts.RequireProcessor && cfg.ProcessorCmd == "" {
		return fail("No processor", fmt.Errorf("PROCESSOR_CMD is required. Please set it in %s: %w", envDescription(cfg), session.ErrNoProcessor))
	}

	initClipboard := opts.InitClipboard
	if initClipboard == nil {
		initClipboard = clipboard.Init
	}
	if err := initClipboard(); err != nil {
		return fail("Clipboard unavailable", fmt.Errorf("failed to initialize clipboard: %w", err))
	}

	log.Printf("AI Anywhere initialized: hotkey=%s paste=%s selection=%v deadline=%s",
		cfg.Hotkey, cfg.PasteBehavior, !cfg.DisableTextSelection, cfg.ProcessDeadline())
	return cfg, nil
}

func envDescription(cfg *config.Config) string {
	if cfg.EnvPath == "" {
		return "your .env file"
	}
	return cfg.EnvPath
}

// Package tray shows the resident's system tray icon.
package tray

import (
	"log"
	"strings"
	"sync"

	"github.com/getlantern/systray"

	"ai-anywhere/src/notification"
)

// Config describes the tray icon.
type Config struct {
	Title   string
	Tooltip string
	// OnExit runs after Quit was chosen and the tray has gone.
	OnExit func()
}

// Tray owns the systray main loop.
type Tray struct {
	cfg Config
}

var (
	mu          sync.Mutex
	ready       bool
	tooltip     string
	aboutHotkey string
	aboutExtra  string
)

func New(cfg Config) *Tray {
	if cfg.Title == "" {
		cfg.Title = "AI Anywhere"
	}
	if cfg.Tooltip == "" {
		cfg.Tooltip = cfg.Title
	}
	mu.Lock()
	tooltip = cfg.Tooltip
	mu.Unlock()
	return &Tray{cfg: cfg}
}

// Run blocks until the tray exits.
func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

// Destroy removes the icon and ends Run.
func (t *Tray) Destroy() {
	systray.Quit()
}

func (t *Tray) onReady() {
	systray.SetIcon(Icon())
	systray.SetTitle(t.cfg.Title)

	mu.Lock()
	ready = true
	tip := tooltip
	mu.Unlock()
	systray.SetTooltip(tip)

	mAbout := systray.AddMenuItem("About", "About AI Anywhere")
	systray.AddSeparator()
	mQuit := systray.AddMenuItem("Quit", "Quit the application")

	go func() {
		for {
			select {
			case <-mAbout.ClickedCh:
				notification.Show("About AI Anywhere", aboutText())
			case <-mQuit.ClickedCh:
				log.Printf("tray: quit requested")
				systray.Quit()
				return
			}
		}
	}()
}

func (t *Tray) onExit() {
	mu.Lock()
	ready = false
	mu.Unlock()
	if t.cfg.OnExit != nil {
		t.cfg.OnExit()
	}
}

// UpdateTooltip sets the tooltip, now or once the tray is ready.
func UpdateTooltip(text string) {
	mu.Lock()
	tooltip = text
	show := ready
	mu.Unlock()
	if show {
		systray.SetTooltip(text)
	}
}

// SetAboutHotkey records the active hotkey for the About box.
func SetAboutHotkey(spec string) {
	mu.Lock()
	aboutHotkey = spec
	mu.Unlock()
}

// SetAboutExtra adds a line to the About box.
func SetAboutExtra(text string) {
	mu.Lock()
	aboutExtra = text
	mu.Unlock()
}

func aboutText() string {
	mu.Lock()
	defer mu.Unlock()
	lines := []string{"Select text anywhere and press the hotkey to process it."}
	if aboutHotkey != "" {
		lines = append(lines, "Hotkey: "+aboutHotkey)
	}
	if aboutExtra != "" {
		lines = append(lines, aboutExtra)
	}
	return strings.Join(lines, "\n")
}

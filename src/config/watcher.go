package config

import (
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const watchDebounce = 100 * time.Millisecond

// Watcher reloads the configuration when its .env file changes.
type Watcher struct {
	opts LoadOptions
	path string

	mu       sync.RWMutex
	current  *Config
	onChange []func(*Config)

	fs        *fsnotify.Watcher
	done      chan struct{}
	closeOnce sync.Once
}

// Watch starts watching the .env file cfg was loaded from. The directory is
// watched rather than the file so editors that replace the file on save
// are still seen.
func Watch(cfg *Config, opts LoadOptions) (*Watcher, error) {
	if cfg == nil || cfg.EnvPath == "" {
		return nil, errors.New("config: no .env file to watch")
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fw.Add(filepath.Dir(cfg.EnvPath)); err != nil {
		fw.Close()
		return nil, fmt.Errorf("watch directory: %w", err)
	}

	opts.EnvPathOverride = cfg.EnvPath
	opts.Reload = true
	w := &Watcher{
		opts:    opts,
		path:    cfg.EnvPath,
		current: cfg,
		fs:      fw,
		done:    make(chan struct{}),
	}
	go w.loop()
	return w, nil
}

// OnChange registers fn to run with every reloaded configuration.
func (w *Watcher) OnChange(fn func(*Config)) {
	w.mu.Lock()
	w.onChange = append(w.onChange, fn)
	w.mu.Unlock()
}

// Config returns the most recently loaded configuration.
func (w *Watcher) Config() *Config {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.current
}

func (w *Watcher) Close() error {
	var err error
	w.closeOnce.Do(func() {
		close(w.done)
		err = w.fs.Close()
	})
	return err
}

func (w *Watcher) loop() {
	var debounce *time.Timer
	defer func() {
		if debounce != nil {
			debounce.Stop()
		}
	}()

	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != filepath.Base(w.path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(watchDebounce, w.reload)
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			log.Printf("config: watcher error: %v", err)
		}
	}
}

func (w *Watcher) reload() {
	select {
	case <-w.done:
		return
	default:
	}

	cfg, err := LoadWithOptions(w.opts)
	if err != nil {
		log.Printf("config: reload %s failed: %v", w.path, err)
		return
	}

	w.mu.Lock()
	w.current = cfg
	callbacks := append([]func(*Config){}, w.onChange...)
	w.mu.Unlock()

	log.Printf("config: reloaded %s (hotkey=%s, paste=%s)", w.path, cfg.Hotkey, cfg.PasteBehavior)
	for _, fn := range callbacks {
		fn(cfg)
	}
}

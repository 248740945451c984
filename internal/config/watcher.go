package config

import (
	"context"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"scanforge/internal/errs"
)

// ChangeCallback is invoked after a successful hot-reload, old and new
// config both fully validated.
type ChangeCallback func(old, new *Config) error

// Watcher reloads the config file on write/create events, debounced so a
// burst of writes from one save doesn't trigger repeated reloads.
type Watcher struct {
	loader      *Loader
	fsw         *fsnotify.Watcher
	mu          sync.RWMutex
	cfg         *Config
	callbacks   []ChangeCallback
	reloadDelay time.Duration
	lastReload  time.Time
	cancel      context.CancelFunc
}

// NewWatcher loads the initial config from dir and arms a filesystem
// watcher on the resolved config file path.
func NewWatcher(dir string) (*Watcher, error) {
	loader := NewLoader(dir)
	cfg, err := loader.Load()
	if err != nil {
		return nil, err
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errs.Wrap(errs.Io, "create config file watcher", err)
	}

	if path := loader.ConfigFilePath(); path != "" {
		if err := fsw.Add(path); err != nil {
			fsw.Close()
			return nil, errs.Wrap(errs.Io, "watch config file", err)
		}
	}

	return &Watcher{
		loader:      loader,
		fsw:         fsw,
		cfg:         cfg,
		reloadDelay: time.Second,
	}, nil
}

// Config returns the currently active, validated config.
func (w *Watcher) Config() *Config {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.cfg
}

// OnChange registers a callback run after each successful reload.
func (w *Watcher) OnChange(cb ChangeCallback) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.callbacks = append(w.callbacks, cb)
}

// Start begins watching for file events in the background. Cancel via
// Stop.
func (w *Watcher) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	w.cancel = cancel
	go w.loop(ctx)
}

// Stop ends the watch loop and releases the underlying fsnotify handle.
func (w *Watcher) Stop() error {
	if w.cancel != nil {
		w.cancel()
	}
	return w.fsw.Close()
}

func (w *Watcher) loop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			now := time.Now()
			if now.Sub(w.lastReload) < w.reloadDelay {
				continue
			}
			w.lastReload = now
			time.AfterFunc(w.reloadDelay, w.reload)
		case _, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
		}
	}
}

func (w *Watcher) reload() {
	newCfg, err := w.loader.Load()
	if err != nil {
		// A config edit that fails validation is left in place; the
		// watcher keeps serving the last good config rather than
		// tearing down a running scan over a typo.
		return
	}

	w.mu.RLock()
	old := w.cfg
	cbs := append([]ChangeCallback(nil), w.callbacks...)
	w.mu.RUnlock()

	for _, cb := range cbs {
		if err := cb(old, newCfg); err != nil {
			return
		}
	}

	w.mu.Lock()
	w.cfg = newCfg
	w.mu.Unlock()
}

package substrate

import (
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
	"time"
)

// ConfigHandle holds a Config snapshot behind an atomic pointer, the same
// atomically-swapped-handle shape as MetadataHandle, so a reload never
// races a concurrent Load.
type ConfigHandle struct {
	p atomic.Pointer[Config]
}

// NewConfigHandle wraps an initial Config snapshot.
func NewConfigHandle(c *Config) *ConfigHandle {
	h := &ConfigHandle{}
	h.p.Store(c)
	return h
}

// Load returns the current Config snapshot.
func (h *ConfigHandle) Load() *Config {
	return h.p.Load()
}

// Store atomically replaces the Config snapshot.
func (h *ConfigHandle) Store(c *Config) {
	h.p.Store(c)
}

// ConfigWatcher polls a TOML config file's modification time and reloads
// ConfigHandle in place when it changes. It does not diff old and new
// config field by field — a reload fully replaces the snapshot, the same
// all-or-nothing semantics MetadataHandle.Store uses.
type ConfigWatcher struct {
	path     string
	interval time.Duration
	logger   *slog.Logger
	handle   *ConfigHandle

	stop chan struct{}
	once sync.Once

	lastMod time.Time
}

// NewConfigWatcher creates a watcher that polls path every interval,
// reloading handle whenever the file's mtime advances.
func NewConfigWatcher(path string, interval time.Duration, logger *slog.Logger, handle *ConfigHandle) *ConfigWatcher {
	return &ConfigWatcher{path: path, interval: interval, logger: logger, handle: handle, stop: make(chan struct{})}
}

// Start begins polling in a goroutine.
func (w *ConfigWatcher) Start() {
	if info, err := os.Stat(w.path); err == nil {
		w.lastMod = info.ModTime()
	}
	go w.poll()
	w.logger.Info("substrate: config watcher started", "path", w.path, "interval", w.interval)
}

// Stop ends the polling goroutine. Safe to call more than once.
func (w *ConfigWatcher) Stop() {
	w.once.Do(func() {
		close(w.stop)
		w.logger.Info("substrate: config watcher stopped")
	})
}

func (w *ConfigWatcher) poll() {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-w.stop:
			return
		case <-ticker.C:
			w.check()
		}
	}
}

func (w *ConfigWatcher) check() {
	info, err := os.Stat(w.path)
	if err != nil {
		w.logger.Warn("substrate: config watcher: cannot stat file", "path", w.path, "error", err)
		return
	}
	if !info.ModTime().After(w.lastMod) {
		return
	}
	w.lastMod = info.ModTime()

	cfg, err := LoadConfig(w.path)
	if err != nil {
		w.logger.Error("substrate: config reload failed", "path", w.path, "error", err)
		return
	}
	w.handle.Store(cfg)
	w.logger.Info("substrate: config reloaded", "path", w.path)
}

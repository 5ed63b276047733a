package config

import (
	"context"
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// ReloadFunc receives a freshly loaded configuration.
type ReloadFunc func(cfg *Config)

// Watcher reloads the config file whenever it changes on disk.
type Watcher struct {
	watcher  *fsnotify.Watcher
	filePath string
	onReload ReloadFunc
	logger   *slog.Logger
}

// NewWatcher creates a watcher for the config file at path.
// An empty path uses the default config path.
func NewWatcher(path string, onReload ReloadFunc, logger *slog.Logger) (*Watcher, error) {
	if path == "" {
		path = ConfigPath()
	}
	if logger == nil {
		logger = slog.Default()
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &Watcher{
		watcher:  watcher,
		filePath: path,
		onReload: onReload,
		logger:   logger,
	}, nil
}

// Path returns the watched file.
func (w *Watcher) Path() string {
	return w.filePath
}

// Run watches until ctx is cancelled. Invalid files are logged and skipped;
// the previous configuration stays in effect.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.watcher.Close()

	// Watch the directory containing the file (editors replace files on save)
	dir := filepath.Dir(w.filePath)
	if err := w.watcher.Add(dir); err != nil {
		return err
	}
	filename := filepath.Base(w.filePath)

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}

			if filepath.Base(event.Name) != filename {
				continue
			}

			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				w.reload()
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("config watcher error", "error", err)

		case <-ctx.Done():
			return nil
		}
	}
}

func (w *Watcher) reload() {
	cfg, err := LoadConfig(w.filePath)
	if err != nil {
		w.logger.Warn("failed to reload config", "file", w.filePath, "error", err)
		return
	}

	w.logger.Debug("config reloaded", "file", w.filePath)
	if w.onReload != nil {
		w.onReload(cfg)
	}
}

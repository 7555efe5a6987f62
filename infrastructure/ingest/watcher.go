package ingest

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const defaultDebounce = 500 * time.Millisecond

// SourceWatcher reruns a callback whenever a record source changes on disk.
// The parent directory is watched so that editors replacing the file by
// rename are still seen.
type SourceWatcher struct {
	path     string
	debounce time.Duration
	logger   *zap.Logger
	watcher  *fsnotify.Watcher
}

// NewSourceWatcher starts watching path
func NewSourceWatcher(path string, logger *zap.Logger) (*SourceWatcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", path, err)
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	if err := fsWatcher.Add(filepath.Dir(abs)); err != nil {
		fsWatcher.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", path, err)
	}

	return &SourceWatcher{
		path:     abs,
		debounce: defaultDebounce,
		logger:   logger,
		watcher:  fsWatcher,
	}, nil
}

// WithDebounce sets how long the file must stay quiet before the callback runs
func (w *SourceWatcher) WithDebounce(d time.Duration) *SourceWatcher {
	w.debounce = d
	return w
}

// Watch blocks until ctx is done, calling onChange once per burst of writes.
// Callbacks run on the calling goroutine, one at a time.
func (w *SourceWatcher) Watch(ctx context.Context, onChange func(ctx context.Context)) error {
	defer w.watcher.Close()

	debounceTimer := time.NewTimer(time.Hour)
	debounceTimer.Stop()
	defer debounceTimer.Stop()

	w.logger.Info("Watching record source", zap.String("path", w.path))

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}

			w.logger.Debug("Record source changed",
				zap.String("file", event.Name),
				zap.String("operation", event.Op.String()),
			)
			debounceTimer.Reset(w.debounce)

		case <-debounceTimer.C:
			w.logger.Info("Reloading record source", zap.String("path", w.path))
			onChange(ctx)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("File watcher error", zap.Error(err))

		case <-ctx.Done():
			w.logger.Info("Stopping record source watcher")
			return nil
		}
	}
}

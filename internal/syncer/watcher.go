package syncer

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/devsoland/socialsync/internal/checksum"
)

const watchDebounce = 500 * time.Millisecond

// WatchSource watches the contact-source file and calls trigger whenever its
// content actually changes, until ctx is cancelled.
//
// The parent directory is watched rather than the file itself so that
// replace-by-rename (how most exporters rewrite a .vcf) keeps working. Bursts
// of events are debounced, and a content checksum filters out touch-without-
// change writes so a re-save of identical data does not trigger a sync pass.
func WatchSource(ctx context.Context, path string, logger *slog.Logger, trigger func()) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	dir := filepath.Dir(path)
	if err := w.Add(dir); err != nil {
		return err
	}

	lastSum := ""
	if data, err := os.ReadFile(path); err == nil {
		lastSum = checksum.Sum(data)
	}

	logger.Info("watcher: started", slog.String("path", path))

	var debounce *time.Timer
	var debounceCh <-chan time.Time

	schedule := func() {
		if debounce == nil {
			debounce = time.NewTimer(watchDebounce)
			debounceCh = debounce.C
		} else {
			debounce.Reset(watchDebounce)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if debounce != nil {
				debounce.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-debounceCh:
			data, err := os.ReadFile(path)
			if err != nil {
				logger.Warn("watcher: read failed", slog.String("error", err.Error()))
				continue
			}
			sum := checksum.Sum(data)
			if sum == lastSum {
				logger.Debug("watcher: content unchanged, skipping")
				continue
			}
			lastSum = sum
			logger.Debug("watcher: source changed, triggering sync")
			trigger()

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != filepath.Clean(path) {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				schedule()
			}

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watcher: error", slog.String("error", err.Error()))
		}
	}
}

// internal/server/watch.go
package server

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/jsandlin/vigil/internal/logging"
)

// watchDebounce coalesces bursts of writes (the harness appends line by
// line) into one invalidation.
const watchDebounce = 500 * time.Millisecond

// WatchLogs invalidates fn's target whenever a .jsonl file in dir
// changes. It blocks until ctx is canceled or the watcher fails.
func WatchLogs(ctx context.Context, dir string, invalidate func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(dir); err != nil {
		return err
	}

	var timer *time.Timer
	fire := make(chan struct{}, 1)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Ext(event.Name) != ".jsonl" {
				continue
			}
			if timer == nil {
				timer = time.AfterFunc(watchDebounce, func() { fire <- struct{}{} })
			} else {
				timer.Reset(watchDebounce)
			}
		case <-fire:
			timer = nil
			logging.LogEvent("[WATCH] logs directory changed, invalidating cached results")
			invalidate()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logging.LogEvent("[WATCH] watcher error: %v", err)
		}
	}
}

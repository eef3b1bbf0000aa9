// Package watch turns file changes into recomputation triggers.
package watch

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/hashicorp/go-hclog"
)

// DefaultDebounce coalesces bursts of writes (editors often write a file in
// several steps) into one trigger.
const DefaultDebounce = 100 * time.Millisecond

// Files watches paths and sends on the returned channel after each burst of
// changes. The channel is closed when ctx is done or the watcher fails.
//
// Parent directories are watched rather than the files themselves so that
// files replaced by rename keep being tracked.
func Files(ctx context.Context, logger hclog.Logger, debounce time.Duration, paths ...string) (<-chan struct{}, error) {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	wanted := make(map[string]bool, len(paths))
	dirs := make(map[string]bool)
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			watcher.Close()
			return nil, err
		}
		wanted[abs] = true
		dirs[filepath.Dir(abs)] = true
	}
	for dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			watcher.Close()
			return nil, err
		}
	}

	triggers := make(chan struct{}, 1)
	fired := make(chan struct{}, 1)

	go func() {
		defer watcher.Close()
		defer close(triggers)

		var debounceTimer *time.Timer
		defer func() {
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
		}()

		for {
			select {
			case <-ctx.Done():
				return

			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				name, err := filepath.Abs(event.Name)
				if err != nil || !wanted[name] {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
					continue
				}
				logger.Trace("file changed", "path", name, "op", event.Op.String())

				if debounceTimer != nil {
					debounceTimer.Stop()
				}
				debounceTimer = time.AfterFunc(debounce, func() {
					select {
					case fired <- struct{}{}:
					default:
					}
				})

			case <-fired:
				select {
				case triggers <- struct{}{}:
				default:
					// a trigger is already pending
				}

			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warn("watch error", "error", err)
			}
		}
	}()

	return triggers, nil
}

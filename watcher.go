// watcher.go - host-side media hot-reload: watches mounted tape and disk
// files with fsnotify and reports changed paths so the frontend can run
// the same reload path as the F6 hotkey. The watcher goroutine never
// touches Machine state; it only forwards paths over a channel consumed
// between frames.

package main

import (
	"context"
	"log/slog"

	"github.com/fsnotify/fsnotify"
)

// MediaWatcher wraps an fsnotify watcher over the mounted media files.
type MediaWatcher struct {
	w       *fsnotify.Watcher
	changed chan string
	log     *slog.Logger
}

// NewMediaWatcher starts watching the given paths. Paths that cannot be
// watched are logged and skipped rather than failing startup.
func NewMediaWatcher(paths []string, log *slog.Logger) (*MediaWatcher, error) {
	if log == nil {
		log = slog.Default()
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	for _, p := range paths {
		if p == "" {
			continue
		}
		if err := w.Add(p); err != nil {
			log.Warn("cannot watch media file", "path", p, "err", err)
		}
	}
	return &MediaWatcher{w: w, changed: make(chan string, 4), log: log}, nil
}

// Changed delivers paths whose contents were modified on the host.
func (mw *MediaWatcher) Changed() <-chan string { return mw.changed }

// Run pumps fsnotify events until ctx is cancelled.
func (mw *MediaWatcher) Run(ctx context.Context) error {
	defer mw.w.Close()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-mw.w.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				mw.log.Info("media file changed, scheduling remount", "path", ev.Name)
				select {
				case mw.changed <- ev.Name:
				default:
				}
			}
		case err, ok := <-mw.w.Errors:
			if !ok {
				return nil
			}
			mw.log.Warn("media watcher error", "err", err)
		}
	}
}

package proclife

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
)

// MarkerWatcher watches a pid marker file for external modification, which
// is how a host finds out that its marker was removed or overwritten behind
// its Guard's back.
type MarkerWatcher struct {
	Events chan EventMarkerChanged

	w    *fsnotify.Watcher
	j    Journaler
	path string
}

// TryWatchMarker attempts to watch the given marker file asynchronously, but
// it will log into the journaler if, for some reason, it fails to set the
// watch up.
func TryWatchMarker(ctx context.Context, path string, j Journaler) *MarkerWatcher {
	w := newMarkerWatcher(path, j)

	go func() {
		if err := w.init(); err != nil {
			j.Write(&EventWarning{
				Component: "markerwatcher",
				Error:     fmt.Sprintf("not watching marker because: %v", err),
			})
			return
		}

		w.watch(ctx)
	}()

	return w
}

// WatchMarker watches the given marker file and reports external changes on
// Events as well as into the journaler. The watcher is stopped once the
// given context is canceled.
func WatchMarker(ctx context.Context, path string, j Journaler) (*MarkerWatcher, error) {
	w := newMarkerWatcher(path, j)
	if err := w.init(); err != nil {
		return nil, err
	}

	go w.watch(ctx)
	return w, nil
}

func newMarkerWatcher(path string, j Journaler) *MarkerWatcher {
	return &MarkerWatcher{
		Events: make(chan EventMarkerChanged),
		w:      nil,
		j:      j,
		path:   path,
	}
}

func (w *MarkerWatcher) init() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "failed to create watcher")
	}

	// Watch the directory, not the file: watching the file itself loses the
	// watch as soon as the file is removed or renamed over.
	if err := watcher.Add(filepath.Dir(w.path)); err != nil {
		return errors.Wrap(err, "failed to watch marker directory")
	}

	w.w = watcher
	return nil
}

func (w *MarkerWatcher) watch(ctx context.Context) {
	defer w.w.Close()

	for {
		select {
		case <-ctx.Done():
			return

		case err := <-w.w.Errors:
			w.j.Write(&EventWarning{
				Component: "markerwatcher",
				Error:     "inotify error: " + err.Error(),
			})

		case evt := <-w.w.Events:
			event, ok := translateMarkerEvt(evt, w.path)
			if !ok {
				continue
			}

			w.j.Write(&event)

			select {
			case w.Events <- event:
			case <-ctx.Done():
				return
			}
		}
	}
}

// translateMarkerEvt translates an fsnotify event into an
// EventMarkerChanged, dropping events for other files in the directory.
func translateMarkerEvt(evt fsnotify.Event, path string) (EventMarkerChanged, bool) {
	if filepath.Base(evt.Name) != filepath.Base(path) {
		return EventMarkerChanged{}, false
	}

	switch {
	case evt.Op&(fsnotify.Write|fsnotify.Create) != 0:
		return EventMarkerChanged{Op: MarkerReplaced, Path: path}, true
	case evt.Op&fsnotify.Rename != 0:
		// Treat a rename as a remove; fsnotify does not report renames
		// properly, so it's apparently treated like a remove.
		// See: https://github.com/fsnotify/fsnotify/issues/26
		fallthrough
	case evt.Op&fsnotify.Remove != 0:
		return EventMarkerChanged{Op: MarkerRemoved, Path: path}, true
	}

	return EventMarkerChanged{}, false
}

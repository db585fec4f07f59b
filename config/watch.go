package config

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// WatchDebounce is how long Watch waits after the last change before
// reloading, so editors that write in several steps trigger one reload.
var WatchDebounce = 250 * time.Millisecond

// Watch reloads path whenever it changes and passes the result to fn.
// Parse errors go to fn as well; the caller decides whether to keep the
// previous configuration. fn runs on the calling goroutine and never after
// Watch returns. Watch blocks until ctx is done.
func Watch(ctx context.Context, path string, fn func(Config, error)) error {
	dir := filepath.Dir(path)
	file := filepath.Base(path)
	debounce := WatchDebounce

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	// Watch the directory: editors often replace the file via rename.
	if err := w.Add(dir); err != nil {
		return err
	}

	var (
		timer  *time.Timer
		reload <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-reload:
			reload = nil
			if ctx.Err() != nil {
				return nil
			}
			fn(Load(path))
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Base(ev.Name) != file {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(debounce)
			} else {
				timer.Reset(debounce)
			}
			reload = timer.C
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			if err != nil {
				fn(Config{}, err)
			}
		}
	}
}

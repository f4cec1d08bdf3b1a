package config

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// settle is the quiet period after the last change before the
// file is read again. Editors tend to write in several steps.
const settle = 100 * time.Millisecond

// Watcher reloads a configuration file when it changes.
type Watcher struct {
	w    *fsnotify.Watcher
	done chan struct{}
}

// Watch calls fn with the new configuration whenever the file at
// path changes, or with an error if the new contents are invalid.
// fn runs on the watcher goroutine.
func Watch(path string, fn func(*Config, error)) (*Watcher, error) {
	path = filepath.Clean(path)
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("config: watch: %w", err)
	}
	// Watch the directory so that files replaced by rename are
	// still seen.
	if err := fw.Add(filepath.Dir(path)); err != nil {
		fw.Close()
		return nil, fmt.Errorf("config: watch: %w", err)
	}
	w := &Watcher{w: fw, done: make(chan struct{})}
	go w.run(path, fn)
	return w, nil
}

func (w *Watcher) run(path string, fn func(*Config, error)) {
	defer close(w.done)
	var reload <-chan time.Time
	for {
		select {
		case ev, ok := <-w.w.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != path || ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			reload = time.After(settle)
		case err, ok := <-w.w.Errors:
			if !ok {
				return
			}
			fn(nil, fmt.Errorf("config: watch: %w", err))
		case <-reload:
			reload = nil
			fn(decode(path))
		}
	}
}

// Close stops the watcher and waits for its goroutine to exit.
func (w *Watcher) Close() error {
	err := w.w.Close()
	<-w.done
	return err
}

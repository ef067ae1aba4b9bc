// Package watch reports edits to shape files and feeds them back into a
// loader.
package watch

import (
	"context"
	"errors"
	"os"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/milk9111/shapecache/source"
	"go.uber.org/zap"
)

const debounce = 100 * time.Millisecond

type Watcher struct {
	watcher *fsnotify.Watcher
	Events  chan string
	Errors  chan error
	closeCh chan struct{}
	done    chan struct{}
	once    sync.Once
}

// New watches dirs for changes to files source can decode.
func New(dirs ...string) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	for _, dir := range dirs {
		if err := w.Add(dir); err != nil {
			_ = w.Close()
			return nil, err
		}
	}

	watcher := &Watcher{
		watcher: w,
		Events:  make(chan string, 16),
		Errors:  make(chan error, 1),
		closeCh: make(chan struct{}),
		done:    make(chan struct{}),
	}
	go watcher.run()
	return watcher, nil
}

func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.closeCh)
		err = w.watcher.Close()
		<-w.done
		close(w.Events)
		close(w.Errors)
	})
	return err
}

// run forwards shape file events once a path has been quiet for the
// debounce interval, so the last write of a burst is always reported.
func (w *Watcher) run() {
	defer close(w.done)
	pending := make(map[string]*time.Timer)
	fire := make(chan string)
	defer func() {
		for _, t := range pending {
			t.Stop()
		}
	}()
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			if !source.Supported(event.Name) {
				continue
			}
			if t, ok := pending[event.Name]; ok {
				t.Reset(debounce)
				continue
			}
			name := event.Name
			pending[name] = time.AfterFunc(debounce, func() {
				select {
				case fire <- name:
				case <-w.closeCh:
				}
			})
		case name := <-fire:
			delete(pending, name)
			select {
			case w.Events <- name:
			case <-w.closeCh:
				return
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			select {
			case w.Errors <- err:
			default:
			}
		case <-w.closeCh:
			return
		}
	}
}

// Reloader is the part of a loader Run drives.
type Reloader interface {
	Reload(path string) (bool, error)
	Unload(path string) error
}

// Run applies w's events to r until ctx is done or w is closed. Reload
// failures are logged and the previous contents stay in place. A file that
// disappears is unloaded.
func Run(ctx context.Context, w *Watcher, r Reloader, log *zap.Logger) error {
	if log == nil {
		log = zap.NewNop()
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case path, ok := <-w.Events:
			if !ok {
				return nil
			}
			handle(path, r, log)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Warn("shape watcher error", zap.Error(err))
		}
	}
}

func handle(path string, r Reloader, log *zap.Logger) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := r.Unload(path); err != nil {
			log.Debug("removed shape file was not loaded", zap.String("file", path), zap.Error(err))
		}
		return
	}
	changed, err := r.Reload(path)
	if err != nil {
		log.Warn("shape reload failed", zap.String("file", path), zap.Error(err))
		return
	}
	if changed {
		log.Info("shape file changed", zap.String("file", path))
	}
}

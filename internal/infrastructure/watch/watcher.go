package watch

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ChangeType is the kind of filesystem change.
type ChangeType string

const (
	ChangeCreate ChangeType = "create"
	ChangeWrite  ChangeType = "write"
	ChangeRemove ChangeType = "remove"
	ChangeRename ChangeType = "rename"
)

// ChangeEvent is the last change seen in a debounce window.
type ChangeEvent struct {
	Path       string
	ChangeType ChangeType
}

const defaultDebounce = 300 * time.Millisecond

// FSWatcher watches individual directories and reports matching file changes.
// Editors and the state store write in bursts, so events are debounced.
type FSWatcher struct {
	watcher  *fsnotify.Watcher
	debounce time.Duration
	filter   NameFilter
	onChange func(ChangeEvent)
}

// NewFSWatcher creates a watcher. A zero debounce uses 300ms.
func NewFSWatcher(debounce time.Duration, filter NameFilter, onChange func(ChangeEvent)) (*FSWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}
	if debounce == 0 {
		debounce = defaultDebounce
	}
	return &FSWatcher{
		watcher:  w,
		debounce: debounce,
		filter:   filter,
		onChange: onChange,
	}, nil
}

// Add watches dir (not recursively).
func (w *FSWatcher) Add(dirs ...string) error {
	for _, dir := range dirs {
		if err := w.watcher.Add(dir); err != nil {
			return fmt.Errorf("watch %s: %w", dir, err)
		}
	}
	return nil
}

// Close releases the watcher without running it.
func (w *FSWatcher) Close() error {
	return w.watcher.Close()
}

// Run delivers debounced changes until ctx is cancelled. It closes the watcher on return.
func (w *FSWatcher) Run(ctx context.Context) error {
	defer w.watcher.Close()

	var (
		mu   sync.Mutex
		last ChangeEvent
	)
	debouncer := NewDebouncer(w.debounce, func() {
		mu.Lock()
		ev := last
		mu.Unlock()
		if w.onChange != nil {
			w.onChange(ev)
		}
	})
	defer debouncer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			changeType := opToChangeType(event.Op)
			if changeType == "" || !w.filter.Matches(event.Name) {
				continue
			}
			mu.Lock()
			last = ChangeEvent{Path: event.Name, ChangeType: changeType}
			mu.Unlock()
			debouncer.Trigger()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("watcher error: %w", err)
		}
	}
}

func opToChangeType(op fsnotify.Op) ChangeType {
	switch {
	case op.Has(fsnotify.Create):
		return ChangeCreate
	case op.Has(fsnotify.Write):
		return ChangeWrite
	case op.Has(fsnotify.Remove):
		return ChangeRemove
	case op.Has(fsnotify.Rename):
		return ChangeRename
	default:
		return ""
	}
}

package filewatch

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// ErrChanged is the cause of contexts canceled by UntilChanged.
var ErrChanged = errors.New("watched file is changed")

// UntilChanged returns a context that is canceled
// when one of files is written, created, removed or renamed.
//
// Directories containing the files are watched, not the files themselves,
// so replacing a file by rename (as editors and ConfigMap volumes do) is detected too.
// Changes of other files in the directories are ignored. So are mode changes.
//
// # Returns
//
// - context.Context: context.Cause of it wraps ErrChanged when a file is changed.
//
// - func(): cancel function.
//
// - error: error caused when it fails to start watching files.
// If error is not nil, both of the the context and the cancel function are nil.
func UntilChanged(ctx context.Context, files ...string) (context.Context, func(), error) {
	targets := map[string]struct{}{}
	dirs := map[string]struct{}{}
	for _, f := range files {
		abs, err := filepath.Abs(f)
		if err != nil {
			return nil, nil, err
		}
		targets[abs] = struct{}{}
		dirs[filepath.Dir(abs)] = struct{}{}
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, nil, err
	}
	for d := range dirs {
		if err := w.Add(d); err != nil {
			w.Close()
			return nil, nil, err
		}
	}

	cctx, cancel := context.WithCancelCause(ctx)
	go func() {
		defer w.Close()
		for {
			select {
			case <-cctx.Done():
				return
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				cancel(fmt.Errorf("watching files is broken: %w", err))
				return
			case event, ok := <-w.Events:
				if !ok {
					return
				}
				if _, ok := targets[filepath.Clean(event.Name)]; !ok {
					continue
				}
				if event.Op == fsnotify.Chmod {
					continue
				}
				cancel(fmt.Errorf("%w: %s (%s)", ErrChanged, event.Name, event.Op))
				return
			}
		}
	}()

	return cctx, func() { cancel(nil) }, nil
}

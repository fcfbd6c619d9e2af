// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package ingest

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DropHandler is called with a debounced batch of dropped file paths.
type DropHandler func(paths []string)

// DropWatcher watches a drop folder for new trend exports.
//
// # Description
//
// Watches a single directory (non-recursive) for files being created or
// written, and batches them using a debounce window. Building automation
// systems often export a trend file in several write bursts; debouncing
// waits for the writes to settle before the batch is handed off.
//
// # Thread Safety
//
// Safe for concurrent use. The handler is called from a single goroutine.
type DropWatcher struct {
	dir        string
	watcher    *fsnotify.Watcher
	handler    DropHandler
	debounce   time.Duration
	extensions []string

	changes  chan string
	done     chan struct{}
	stopOnce sync.Once

	mu       sync.RWMutex
	watching bool
}

// DropWatcherOptions configures the DropWatcher.
type DropWatcherOptions struct {
	// DebounceWindow is how long to wait for more writes before triggering.
	// Default: 500ms
	DebounceWindow time.Duration

	// Extensions are the file extensions to react to (lowercase, with dot).
	// Default: [".csv"]
	Extensions []string

	// BufferSize is the size of the change buffer channel.
	// Default: 256
	BufferSize int
}

// DefaultDropWatcherOptions returns sensible defaults.
func DefaultDropWatcherOptions() DropWatcherOptions {
	return DropWatcherOptions{
		DebounceWindow: 500 * time.Millisecond,
		Extensions:     []string{".csv"},
		BufferSize:     256,
	}
}

// NewDropWatcher creates a watcher for the given drop directory.
//
// # Inputs
//
//   - dir: Path to the directory to watch. Must exist before Start.
//   - handler: Function called with batched file paths after debounce.
//   - opts: Optional configuration. Nil or zero fields use the defaults.
//
// # Outputs
//
//   - *DropWatcher: Ready-to-use watcher (call Start to begin watching).
//   - error: Non-nil if the watcher could not be created.
func NewDropWatcher(dir string, handler DropHandler, opts *DropWatcherOptions) (*DropWatcher, error) {
	o := DefaultDropWatcherOptions()
	if opts != nil {
		if opts.DebounceWindow > 0 {
			o.DebounceWindow = opts.DebounceWindow
		}
		if len(opts.Extensions) > 0 {
			o.Extensions = opts.Extensions
		}
		if opts.BufferSize > 0 {
			o.BufferSize = opts.BufferSize
		}
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &DropWatcher{
		dir:        dir,
		watcher:    watcher,
		handler:    handler,
		debounce:   o.DebounceWindow,
		extensions: o.Extensions,
		changes:    make(chan string, o.BufferSize),
		done:       make(chan struct{}),
	}, nil
}

// Start begins watching the drop directory.
//
// Spawns two goroutines: an event processor that filters fsnotify events
// down to relevant files, and a debouncer that batches paths and calls the
// handler. Both exit when Stop() is called or the context is canceled.
func (w *DropWatcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.watching {
		w.mu.Unlock()
		return nil // Already watching
	}
	w.watching = true
	w.mu.Unlock()

	if err := w.watcher.Add(w.dir); err != nil {
		return err
	}

	go w.processEvents(ctx)
	go w.debounceLoop(ctx)

	return nil
}

// Stop stops the watcher.
func (w *DropWatcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.done)
		w.watcher.Close()

		w.mu.Lock()
		w.watching = false
		w.mu.Unlock()
	})
}

// IsWatching returns true if the watcher is currently active.
func (w *DropWatcher) IsWatching() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.watching
}

// relevant reports whether the path carries one of the watched extensions.
func (w *DropWatcher) relevant(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, want := range w.extensions {
		if ext == want {
			return true
		}
	}
	return false
}

// processEvents filters fsnotify events and forwards paths to the debouncer.
func (w *DropWatcher) processEvents(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}

			// Only creations and writes matter for a drop folder.
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}
			if !w.relevant(event.Name) {
				continue
			}

			// Send to debounce channel (non-blocking)
			select {
			case w.changes <- event.Name:
			default:
				// Buffer full; the debouncer should keep up in practice
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			_ = err
		}
	}
}

// debounceLoop batches paths and calls the handler after the debounce window.
func (w *DropWatcher) debounceLoop(ctx context.Context) {
	var batch []string
	var timer *time.Timer
	var timerC <-chan time.Time

	flush := func() {
		if len(batch) > 0 {
			deduped := dedupePaths(batch)
			if len(deduped) > 0 && w.handler != nil {
				w.handler(deduped)
			}
			batch = batch[:0]
		}
		if timer != nil {
			timer.Stop()
			timer = nil
			timerC = nil
		}
	}

	for {
		select {
		case <-ctx.Done():
			flush()
			return
		case <-w.done:
			flush()
			return
		case path := <-w.changes:
			batch = append(batch, path)

			if timer == nil {
				timer = time.NewTimer(w.debounce)
				timerC = timer.C
			} else {
				timer.Reset(w.debounce)
			}

		case <-timerC:
			flush()
		}
	}
}

// dedupePaths drops repeated paths, keeping first-seen order. A file written
// in several bursts shows up once per batch.
func dedupePaths(paths []string) []string {
	seen := make(map[string]struct{}, len(paths))
	result := make([]string, 0, len(paths))
	for _, p := range paths {
		if _, exists := seen[p]; exists {
			continue
		}
		seen[p] = struct{}{}
		result = append(result, p)
	}
	return result
}

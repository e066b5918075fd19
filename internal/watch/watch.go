// Package watch rebuilds the site when its source files change.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultDebounce is how long the watcher waits after the last change before rebuilding.
const DefaultDebounce = 250 * time.Millisecond

// RebuildFunc rebuilds the site. Errors are logged and watching continues.
type RebuildFunc func(ctx context.Context) error

// Stats counts watcher activity.
type Stats struct {
	Events        int       `json:"events"`
	Rebuilds      int       `json:"rebuilds"`
	Errors        int       `json:"errors"`
	LastEventPath string    `json:"last_event_path,omitempty"`
	LastRebuild   time.Time `json:"last_rebuild"`
}

// Watcher watches a fixed set of files. It watches their directories rather than
// the files themselves so that editors replacing a file by rename are still seen.
type Watcher struct {
	watcher  *fsnotify.Watcher
	files    map[string]bool
	dirs     []string
	rebuild  RebuildFunc
	debounce time.Duration
	logger   *zap.Logger

	mu    sync.Mutex
	stats Stats
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets the quiet period before a rebuild.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(w *Watcher) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// New creates a watcher for files that calls rebuild after they change.
func New(files []string, rebuild RebuildFunc, opts ...Option) (*Watcher, error) {
	if len(files) == 0 {
		return nil, fmt.Errorf("no files to watch")
	}

	w := &Watcher{
		files:    make(map[string]bool, len(files)),
		rebuild:  rebuild,
		debounce: DefaultDebounce,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(w)
	}

	seen := make(map[string]bool)
	for _, f := range files {
		abs, err := filepath.Abs(f)
		if err != nil {
			return nil, fmt.Errorf("resolving %s: %w", f, err)
		}
		w.files[abs] = true
		dir := filepath.Dir(abs)
		if !seen[dir] {
			seen[dir] = true
			w.dirs = append(w.dirs, dir)
		}
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating file watcher: %w", err)
	}
	for _, dir := range w.dirs {
		if err := fw.Add(dir); err != nil {
			fw.Close()
			return nil, fmt.Errorf("watching %s: %w", dir, err)
		}
	}
	w.watcher = fw
	return w, nil
}

// Run processes file events until ctx is canceled, then closes the watcher.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.watcher.Close()

	var (
		timer  *time.Timer
		timerC <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	w.logger.Info("watching for changes", zap.Strings("dirs", w.dirs), zap.Duration("debounce", w.debounce))

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			w.logger.Debug("file changed", zap.String("path", event.Name), zap.String("op", event.Op.String()))
			w.mu.Lock()
			w.stats.Events++
			w.stats.LastEventPath = event.Name
			w.mu.Unlock()

			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.debounce)
			}
			timerC = timer.C

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watcher error", zap.Error(err))
			w.mu.Lock()
			w.stats.Errors++
			w.mu.Unlock()

		case <-timerC:
			timerC = nil
			w.runRebuild(ctx)
		}
	}
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
		return false // Ignore chmod
	}
	abs, err := filepath.Abs(event.Name)
	if err != nil {
		return false
	}
	return w.files[abs]
}

func (w *Watcher) runRebuild(ctx context.Context) {
	start := time.Now()
	err := w.rebuild(ctx)

	w.mu.Lock()
	w.stats.Rebuilds++
	w.stats.LastRebuild = start
	if err != nil {
		w.stats.Errors++
	}
	w.mu.Unlock()

	if err != nil {
		w.logger.Error("rebuild failed", zap.Error(err))
		return
	}
	w.logger.Info("rebuilt site", zap.Duration("elapsed", time.Since(start)))
}

// Stats returns a snapshot of watcher activity.
func (w *Watcher) Stats() Stats {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.stats
}

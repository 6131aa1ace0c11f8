package batch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// WatcherConfig configures a FileWatcher.
type WatcherConfig struct {
	// Dir is the scenario directory to watch. Subdirectories are ignored.
	Dir string

	// DebounceInterval is the quiet period after the last change before
	// the changed files are handed over (default: 250ms).
	DebounceInterval time.Duration

	// SkipHidden ignores dot files.
	SkipHidden bool
}

// DefaultWatcherConfig returns the default watcher configuration for dir.
func DefaultWatcherConfig(dir string) WatcherConfig {
	return WatcherConfig{
		Dir:              dir,
		DebounceInterval: 250 * time.Millisecond,
		SkipHidden:       true,
	}
}

// FileWatcher reports scenario files that were written in a directory.
// Bursts of events are coalesced into one callback per quiet period.
type FileWatcher struct {
	watcher  *fsnotify.Watcher
	logger   *slog.Logger
	config   WatcherConfig
	debounce *Debouncer

	mu      sync.Mutex
	pending map[string]struct{}
	started bool

	stopOnce sync.Once
	stopCh   chan struct{}
	doneCh   chan struct{}
}

// NewFileWatcher creates a watcher. It does not start watching until Watch.
func NewFileWatcher(config WatcherConfig, logger *slog.Logger) (*FileWatcher, error) {
	if config.DebounceInterval <= 0 {
		config.DebounceInterval = DefaultWatcherConfig(config.Dir).DebounceInterval
	}
	if logger == nil {
		logger = slog.Default()
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	return &FileWatcher{
		watcher:  watcher,
		logger:   logger,
		config:   config,
		debounce: NewDebouncer(config.DebounceInterval),
		pending:  make(map[string]struct{}),
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}, nil
}

// Watch blocks until ctx is cancelled or Stop is called, invoking onChange
// with the sorted paths of scenario files changed since the last call.
// Callback errors are logged and watching continues.
func (fw *FileWatcher) Watch(ctx context.Context, onChange func(paths []string) error) error {
	fw.mu.Lock()
	if fw.started {
		fw.mu.Unlock()
		return errors.New("watcher already running")
	}
	fw.started = true
	fw.mu.Unlock()
	defer close(fw.doneCh)

	if err := fw.watcher.Add(fw.config.Dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", fw.config.Dir, err)
	}

	fw.logger.Info("File watcher started",
		"path", fw.config.Dir,
		"debounce_ms", fw.config.DebounceInterval.Milliseconds(),
	)

	for {
		select {
		case <-ctx.Done():
			fw.logger.Info("File watcher stopped (context cancelled)")
			return nil

		case <-fw.stopCh:
			fw.logger.Info("File watcher stopped")
			return nil

		case event, ok := <-fw.watcher.Events:
			if !ok {
				return errors.New("watcher events channel closed")
			}
			if !fw.shouldProcessEvent(event) {
				continue
			}

			fw.logger.Debug("File event detected", "path", event.Name, "op", event.Op.String())

			fw.mu.Lock()
			fw.pending[event.Name] = struct{}{}
			fw.mu.Unlock()

			fw.debounce.Trigger(func() {
				paths := fw.drain()
				if len(paths) == 0 {
					return
				}
				fw.logger.Info("Re-solving changed scenarios", "files", len(paths))
				if err := onChange(paths); err != nil {
					fw.logger.Error("Re-solve failed", "error", err)
				}
			})

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return errors.New("watcher errors channel closed")
			}
			fw.logger.Error("File watcher error", "error", err)
		}
	}
}

// Stop ends Watch, cancels a pending callback and releases the watcher.
// It is safe to call more than once.
func (fw *FileWatcher) Stop() error {
	var err error
	fw.stopOnce.Do(func() {
		close(fw.stopCh)

		fw.mu.Lock()
		started := fw.started
		fw.mu.Unlock()
		if started {
			<-fw.doneCh
		}

		fw.debounce.Stop()
		if cerr := fw.watcher.Close(); cerr != nil {
			err = fmt.Errorf("failed to close watcher: %w", cerr)
		}
	})
	return err
}

// drain returns and clears the pending paths that still exist.
func (fw *FileWatcher) drain() []string {
	fw.mu.Lock()
	defer fw.mu.Unlock()

	paths := make([]string, 0, len(fw.pending))
	for p := range fw.pending {
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			paths = append(paths, p)
		}
	}
	fw.pending = make(map[string]struct{})
	sort.Strings(paths)
	return paths
}

// shouldProcessEvent keeps writes and creates of scenario files. Result
// files are excluded so solving never re-triggers itself.
func (fw *FileWatcher) shouldProcessEvent(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return false
	}
	name := filepath.Base(event.Name)
	if fw.config.SkipHidden && strings.HasPrefix(name, ".") {
		return false
	}
	return isScenarioName(name)
}

// Debouncer runs the most recently triggered callback once no new trigger
// has arrived for the interval.
type Debouncer struct {
	interval time.Duration
	timer    *time.Timer
	mu       sync.Mutex
	callback func()
	stopOnce sync.Once
	stopCh   chan struct{}
}

func NewDebouncer(interval time.Duration) *Debouncer {
	return &Debouncer{
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Trigger replaces the pending callback and restarts the quiet period.
func (d *Debouncer) Trigger(callback func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.callback = callback
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.interval, func() {
		select {
		case <-d.stopCh:
			return
		default:
		}
		d.mu.Lock()
		cb := d.callback
		d.callback = nil
		d.mu.Unlock()
		if cb != nil {
			cb()
		}
	})
}

// Stop cancels any pending callback. Later triggers never fire.
func (d *Debouncer) Stop() {
	d.stopOnce.Do(func() { close(d.stopCh) })

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.callback = nil
}

// Watch solves every scenario in dir once, then re-solves files as they
// change until ctx is cancelled.
func (r *Runner) Watch(ctx context.Context, dir string) error {
	if _, err := r.RunDir(ctx, dir); err != nil {
		return err
	}

	fw, err := NewFileWatcher(DefaultWatcherConfig(dir), r.logger())
	if err != nil {
		return err
	}
	defer fw.Stop()

	return fw.Watch(ctx, func(paths []string) error {
		var failed int
		for _, p := range paths {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if fr := r.RunFile(ctx, p); fr.Error != "" {
				failed++
			}
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d scenarios failed", failed, len(paths))
		}
		return nil
	})
}

package watch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"git.home.luguber.info/inful/plantbuild/internal/logfields"
)

// DefaultDebounce is the quiet window applied to filesystem events.
const DefaultDebounce = 500 * time.Millisecond

// SourceWatcher monitors source directories and extra files and emits one
// trigger per burst of changes.
type SourceWatcher struct {
	watcher  *fsnotify.Watcher
	debounce time.Duration
	skipDir  func(path string) bool

	mu    sync.Mutex
	dirs  map[string]struct{}
	files map[string]struct{}

	changes  chan string
	triggers chan string
	stopOnce sync.Once
	stopChan chan struct{}
}

// NewSourceWatcher creates a watcher with the given debounce window.
// skipDir reports whether a newly created directory must not be watched.
func NewSourceWatcher(debounce time.Duration, skipDir func(path string) bool) (*SourceWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if skipDir == nil {
		skipDir = func(string) bool { return false }
	}
	return &SourceWatcher{
		watcher:  w,
		debounce: debounce,
		skipDir:  skipDir,
		dirs:     make(map[string]struct{}),
		files:    make(map[string]struct{}),
		changes:  make(chan string, 64),
		triggers: make(chan string, 1),
		stopChan: make(chan struct{}),
	}, nil
}

// AddDir watches every event inside dir.
func (sw *SourceWatcher) AddDir(dir string) error {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", dir, err)
	}
	if err := sw.watcher.Add(abs); err != nil {
		return fmt.Errorf("failed to watch directory %s: %w", abs, err)
	}
	sw.mu.Lock()
	sw.dirs[abs] = struct{}{}
	sw.mu.Unlock()
	return nil
}

// AddFile watches a single file through its parent directory, which is more
// reliable than watching the file itself across editor rename-on-save.
func (sw *SourceWatcher) AddFile(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", path, err)
	}
	if err := sw.watcher.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("failed to watch directory of %s: %w", abs, err)
	}
	sw.mu.Lock()
	sw.files[abs] = struct{}{}
	sw.mu.Unlock()
	return nil
}

// Triggers delivers the path of the last change of each debounced burst.
func (sw *SourceWatcher) Triggers() <-chan string { return sw.triggers }

// Start begins event processing until ctx is done or Stop is called.
func (sw *SourceWatcher) Start(ctx context.Context) {
	go sw.watchLoop(ctx)
	go sw.debounceLoop(ctx)
}

// Stop closes the underlying watcher.
func (sw *SourceWatcher) Stop() error {
	var err error
	sw.stopOnce.Do(func() {
		close(sw.stopChan)
		err = sw.watcher.Close()
	})
	return err
}

// relevant reports whether an event path belongs to a watched directory or
// a watched file.
func (sw *SourceWatcher) relevant(path string) bool {
	sw.mu.Lock()
	defer sw.mu.Unlock()
	if _, ok := sw.files[path]; ok {
		return true
	}
	_, ok := sw.dirs[filepath.Dir(path)]
	return ok
}

func (sw *SourceWatcher) watchLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-sw.stopChan:
			return
		case event, ok := <-sw.watcher.Events:
			if !ok {
				return
			}
			sw.handle(event)
		case err, ok := <-sw.watcher.Errors:
			if !ok {
				return
			}
			slog.Error("Source watcher error", logfields.Error(err))
		}
	}
}

func (sw *SourceWatcher) handle(event fsnotify.Event) {
	if event.Op == fsnotify.Chmod || !sw.relevant(event.Name) {
		return
	}
	if event.Op&fsnotify.Create == fsnotify.Create {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() && !sw.skipDir(event.Name) {
			if err := sw.AddDir(event.Name); err != nil {
				slog.Warn("Failed to watch new directory", logfields.Path(event.Name), logfields.Error(err))
			}
		}
	}
	if event.Op&fsnotify.Remove == fsnotify.Remove {
		sw.mu.Lock()
		delete(sw.dirs, event.Name)
		sw.mu.Unlock()
	}
	slog.Debug("Source change detected", logfields.Path(event.Name), slog.String("op", event.Op.String()))
	select {
	case sw.changes <- event.Name:
	default:
	}
}

// debounceLoop emits a trigger once no change arrived for the debounce window.
func (sw *SourceWatcher) debounceLoop(ctx context.Context) {
	var (
		timer *time.Timer
		fire  <-chan time.Time
		last  string
	)
	stop := func() {
		if timer != nil {
			timer.Stop()
		}
	}
	for {
		select {
		case <-ctx.Done():
			stop()
			return
		case <-sw.stopChan:
			stop()
			return
		case path := <-sw.changes:
			last = path
			stop()
			timer = time.NewTimer(sw.debounce)
			fire = timer.C
		case <-fire:
			fire = nil
			select {
			case sw.triggers <- last:
			default:
			}
		}
	}
}

package fs

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime/debug"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/aretw0/lifecycle"
	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the quiet period that closes a batch of changes.
const DefaultDebounce = 500 * time.Millisecond

// Change is a debounced batch of changed paths.
type Change struct {
	Paths []string
	At    time.Time
}

// WatchConfig configures a Watcher.
type WatchConfig struct {
	Dirs     []string
	Pattern  string // doublestar pattern relative to each dir; empty matches all
	Debounce time.Duration
	Logger   *slog.Logger
	// ErrorHandler receives fsnotify errors and loop panics.
	ErrorHandler func(error)
}

// Watcher reports changes in export directories.
type Watcher struct {
	config WatchConfig

	mu      sync.Mutex
	dirs    []string
	active  bool
	batches int
}

// NewWatcher creates a Watcher.
func NewWatcher(config WatchConfig) *Watcher {
	if config.Debounce <= 0 {
		config.Debounce = DefaultDebounce
	}
	if config.Logger == nil {
		config.Logger = slog.New(slog.DiscardHandler)
	}
	return &Watcher{config: config}
}

// Watch starts watching and returns the change channel, which is closed
// when ctx is done.
func (w *Watcher) Watch(ctx context.Context) (<-chan Change, error) {
	if len(w.config.Dirs) == 0 {
		return nil, fmt.Errorf("nothing to watch")
	}
	if w.config.Pattern != "" && !doublestar.ValidatePattern(w.config.Pattern) {
		return nil, fmt.Errorf("invalid watch pattern %q", w.config.Pattern)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	var roots []string
	for _, dir := range w.config.Dirs {
		abs, err := filepath.Abs(dir)
		if err != nil {
			_ = watcher.Close()
			return nil, err
		}
		if err := recursiveAdd(watcher, abs); err != nil {
			_ = watcher.Close()
			return nil, err
		}
		roots = append(roots, abs)
	}

	w.mu.Lock()
	w.dirs = roots
	w.active = true
	w.mu.Unlock()

	out := make(chan Change)
	lifecycle.Go(ctx, func(ctx context.Context) error {
		defer close(out)
		defer w.setActive(false)
		defer watcher.Close()
		return w.run(ctx, watcher, out)
	}, lifecycle.WithErrorHandler(func(err error) {
		w.handleError(fmt.Errorf("watcher: %w", err))
	}))
	return out, nil
}

func (w *Watcher) run(ctx context.Context, watcher *fsnotify.Watcher, out chan<- Change) (err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			err = fmt.Errorf("watcher panic: %v", recovered)
			if w.config.Logger.Enabled(ctx, slog.LevelDebug) {
				w.config.Logger.Error("watcher panic", "error", err, "stack", string(debug.Stack()))
			} else {
				w.config.Logger.Error("watcher panic", "error", err)
			}
		}
	}()

	timer := time.NewTimer(w.config.Debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	pending := map[string]bool{}
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			w.config.Logger.Debug("event received", "name", event.Name, "op", event.Op.String())
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() && !hidden(event.Name) {
					_ = recursiveAdd(watcher, event.Name)
				}
			}
			if !w.relevant(event) {
				continue
			}
			pending[event.Name] = true
			timer.Reset(w.config.Debounce)

		case <-timer.C:
			if len(pending) == 0 {
				continue
			}
			paths := make([]string, 0, len(pending))
			for p := range pending {
				paths = append(paths, p)
			}
			slices.Sort(paths)
			clear(pending)

			w.mu.Lock()
			w.batches++
			w.mu.Unlock()

			select {
			case out <- Change{Paths: paths, At: time.Now()}:
			case <-ctx.Done():
				return nil
			}

		case werr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.config.Logger.Error("fsnotify error", "error", werr)
			w.handleError(werr)
		}
	}
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if event.Op == fsnotify.Chmod {
		return false
	}
	base := filepath.Base(event.Name)
	if strings.HasPrefix(base, TempFilePrefix) || hidden(event.Name) {
		return false
	}
	if w.config.Pattern == "" {
		return true
	}
	for _, root := range w.roots() {
		rel, err := filepath.Rel(root, event.Name)
		if err != nil || strings.HasPrefix(rel, "..") {
			continue
		}
		if ok, _ := doublestar.Match(w.config.Pattern, filepath.ToSlash(rel)); ok {
			return true
		}
	}
	return false
}

func (w *Watcher) roots() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.dirs
}

func (w *Watcher) setActive(active bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.active = active
}

func (w *Watcher) handleError(err error) {
	if w.config.ErrorHandler != nil {
		w.config.ErrorHandler(err)
	}
}

// hidden reports dot files and dot directories, such as .notesync.
func hidden(path string) bool {
	return strings.HasPrefix(filepath.Base(path), ".")
}

// recursiveAdd watches root and every non-hidden directory below it.
func recursiveAdd(watcher *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && hidden(path) {
			return filepath.SkipDir
		}
		if err := watcher.Add(path); err != nil {
			return fmt.Errorf("failed to watch %s: %w", path, err)
		}
		return nil
	})
}

package dev

import (
	"context"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/vango-dev/reactive/internal/errors"
)

// WatcherConfig configures the file watcher.
type WatcherConfig struct {
	// Paths are the directories (or files) to watch. A file is watched
	// through its directory so that atomic saves are seen.
	Paths []string

	// Ignore patterns to skip (names, path segments or globs).
	Ignore []string

	// Filter, when set, keeps only the paths it accepts.
	Filter func(path string) bool

	// Debounce is the quiet period after the last event before the
	// callback fires.
	Debounce time.Duration

	// Logger receives watcher errors.
	Logger *slog.Logger
}

// DefaultIgnore contains default patterns to ignore.
var DefaultIgnore = []string{
	".git",
	"node_modules",
	"*.tmp",
	"*.swp",
	"*~",
}

// Watcher monitors paths for changes.
type Watcher struct {
	config   WatcherConfig
	onChange func([]string)
	mu       sync.Mutex
	running  bool
	stopCh   chan struct{}

	ready     chan struct{}
	readyOnce sync.Once
}

// NewWatcher creates a new file watcher.
func NewWatcher(config WatcherConfig) *Watcher {
	if config.Debounce == 0 {
		config.Debounce = 100 * time.Millisecond
	}
	if config.Ignore == nil {
		config.Ignore = DefaultIgnore
	}
	if config.Logger == nil {
		config.Logger = slog.Default().With("component", "watcher")
	}

	return &Watcher{
		config: config,
		ready:  make(chan struct{}),
	}
}

// OnChange sets the callback receiving the sorted changed paths.
func (w *Watcher) OnChange(fn func([]string)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onChange = fn
}

// Ready is closed once every path is being watched by the first Start.
func (w *Watcher) Ready() <-chan struct{} {
	return w.ready
}

// Start watches until ctx is cancelled or Stop is called. It returns an R403
// error when the watch cannot be set up.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.stopCh = make(chan struct{})
	stopCh := w.stopCh
	w.mu.Unlock()

	defer func() {
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
	}()

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.New("R403").Wrap(err)
	}
	defer fsw.Close()

	for _, dir := range watchDirs(w.config.Paths) {
		if err := fsw.Add(dir); err != nil {
			return errors.New("R403").WithDetailf("cannot watch %s", dir).Wrap(err)
		}
	}
	w.readyOnce.Do(func() { close(w.ready) })

	pending := make(map[string]struct{})
	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case <-stopCh:
			return nil

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			pending[filepath.Clean(event.Name)] = struct{}{}
			if timer == nil {
				timer = time.NewTimer(w.config.Debounce)
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.config.Debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			w.emit(pending)
			pending = make(map[string]struct{})

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.config.Logger.Error("watcher error", "error", err)
		}
	}
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
		!event.Has(fsnotify.Rename) && !event.Has(fsnotify.Remove) {
		return false
	}
	if w.shouldIgnore(event.Name) {
		return false
	}
	if w.config.Filter != nil && !w.config.Filter(event.Name) {
		return false
	}
	return true
}

func (w *Watcher) emit(pending map[string]struct{}) {
	if len(pending) == 0 {
		return
	}
	paths := make([]string, 0, len(pending))
	for p := range pending {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	w.mu.Lock()
	callback := w.onChange
	w.mu.Unlock()

	if callback != nil {
		callback(paths)
	}
}

// Stop stops the watcher.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		close(w.stopCh)
		w.running = false
	}
}

// IsRunning returns whether the watcher is running.
func (w *Watcher) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

// watchDirs maps each path to the directory to register: directories as
// they are, files through their parent. Missing paths are skipped.
func watchDirs(paths []string) []string {
	seen := make(map[string]struct{}, len(paths))
	var dirs []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			continue
		}
		dir := filepath.Clean(p)
		if !info.IsDir() {
			dir = filepath.Dir(dir)
		}
		if _, ok := seen[dir]; ok {
			continue
		}
		seen[dir] = struct{}{}
		dirs = append(dirs, dir)
	}
	return dirs
}

// shouldIgnore checks if a path should be ignored.
func (w *Watcher) shouldIgnore(fullPath string) bool {
	name := filepath.Base(fullPath)
	normalized := filepath.ToSlash(fullPath)

	for _, pattern := range w.config.Ignore {
		pattern = strings.TrimSpace(pattern)
		if pattern == "" {
			continue
		}
		if name == pattern {
			return true
		}

		hasPathSep := strings.ContainsAny(pattern, "/\\")
		if strings.ContainsAny(pattern, "*?[") {
			if hasPathSep {
				if matched, _ := path.Match(filepath.ToSlash(pattern), normalized); matched {
					return true
				}
			} else if matched, _ := filepath.Match(pattern, name); matched {
				return true
			}
			continue
		}

		if hasPathSep {
			if pathMatchesSegments(normalized, filepath.ToSlash(pattern)) {
				return true
			}
			continue
		}
		if pathHasSegment(normalized, pattern) {
			return true
		}
	}

	return false
}

func pathHasSegment(path, segment string) bool {
	for _, part := range splitPathSegments(path) {
		if part == segment {
			return true
		}
	}
	return false
}

func pathMatchesSegments(path, pattern string) bool {
	pathParts := splitPathSegments(path)
	patternParts := splitPathSegments(pattern)
	if len(patternParts) == 0 || len(patternParts) > len(pathParts) {
		return false
	}

	for i := 0; i <= len(pathParts)-len(patternParts); i++ {
		match := true
		for j := range patternParts {
			if pathParts[i+j] != patternParts[j] {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}

func splitPathSegments(path string) []string {
	if path == "" {
		return nil
	}
	parts := strings.Split(path, "/")
	result := parts[:0]
	for _, part := range parts {
		if part != "" && part != "." {
			result = append(result, part)
		}
	}
	return result
}

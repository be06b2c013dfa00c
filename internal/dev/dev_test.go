package dev

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/vango-dev/reactive/internal/config"
)

func startWatcher(t *testing.T, cfg WatcherConfig) (*Watcher, chan []string) {
	t.Helper()
	cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	w := NewWatcher(cfg)

	changes := make(chan []string, 8)
	w.OnChange(func(paths []string) { changes <- paths })

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Start(ctx) }()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	select {
	case <-w.Ready():
	case err := <-done:
		t.Fatalf("Start() returned early: %v", err)
	case <-time.After(2 * time.Second):
		t.Fatal("watcher not ready")
	}
	return w, changes
}

func TestWatcher_DebouncesWrites(t *testing.T) {
	dir := t.TempDir()
	_, changes := startWatcher(t, WatcherConfig{
		Paths:    []string{dir},
		Filter:   config.IsScenarioFile,
		Debounce: 50 * time.Millisecond,
	})

	file := filepath.Join(dir, "a.yaml")
	for i := 0; i < 3; i++ {
		if err := os.WriteFile(file, []byte("name: a\n"), 0644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	select {
	case paths := <-changes:
		if len(paths) != 1 || paths[0] != file {
			t.Errorf("changed paths = %v, want [%s]", paths, file)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("no change reported")
	}

	select {
	case paths := <-changes:
		t.Errorf("unexpected second callback: %v", paths)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestWatcher_FileWatchedThroughDirectory(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "b.yml")
	if err := os.WriteFile(file, []byte("name: b\n"), 0644); err != nil {
		t.Fatal(err)
	}

	_, changes := startWatcher(t, WatcherConfig{
		Paths:    []string{file},
		Debounce: 20 * time.Millisecond,
	})

	// Atomic save: write elsewhere, then rename over the watched file.
	tmp := filepath.Join(dir, "b.yml.new")
	if err := os.WriteFile(tmp, []byte("name: b2\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.Rename(tmp, file); err != nil {
		t.Fatal(err)
	}

	select {
	case paths := <-changes:
		found := false
		for _, p := range paths {
			if p == file {
				found = true
			}
		}
		if !found {
			t.Errorf("changed paths = %v, want %s among them", paths, file)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("no change reported")
	}
}

func TestWatcher_Ignore(t *testing.T) {
	w := NewWatcher(WatcherConfig{})

	tests := []struct {
		path string
		want bool
	}{
		{"/project/scenarios/a.yaml", false},
		{"/project/.git/HEAD", true},
		{"/project/node_modules/x/a.yaml", true},
		{"/project/scenarios/a.yaml.swp", true},
		{"/project/scenarios/a.yaml~", true},
	}
	for _, tt := range tests {
		if got := w.shouldIgnore(tt.path); got != tt.want {
			t.Errorf("shouldIgnore(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestWatcher_IgnoreSegments(t *testing.T) {
	w := NewWatcher(WatcherConfig{Ignore: []string{"testdata/golden", "drafts/*.yaml"}})

	if !w.shouldIgnore("/p/testdata/golden/a.yaml") {
		t.Error("segment pattern should match nested path")
	}
	if w.shouldIgnore("/p/testdata/goldenfile.yaml") {
		t.Error("segment pattern should not match a partial segment")
	}
	if !w.shouldIgnore("drafts/wip.yaml") {
		t.Error("glob with separator should match relative path")
	}
}

func TestWatcher_IsRunningAndStop(t *testing.T) {
	w := NewWatcher(WatcherConfig{Paths: []string{t.TempDir()}})
	if w.IsRunning() {
		t.Error("new watcher should not be running")
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		w.Start(context.Background())
	}()
	<-w.Ready()
	if !w.IsRunning() {
		t.Error("watcher should be running after Ready")
	}

	w.Stop()
	wg.Wait()
	if w.IsRunning() {
		t.Error("watcher should stop")
	}
}

func TestWatchDirsSkipsMissing(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "a.yaml")
	if err := os.WriteFile(file, nil, 0644); err != nil {
		t.Fatal(err)
	}

	got := watchDirs([]string{dir, file, filepath.Join(dir, "missing")})
	if len(got) != 1 || got[0] != dir {
		t.Errorf("watchDirs = %v, want [%s]", got, dir)
	}
}

func TestCollectWatchPaths(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, config.ConfigFileName),
		[]byte(`{"scenarios": ["scenarios", "more/*/x.yaml"]}`), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := config.Load(dir)
	if err != nil {
		t.Fatal(err)
	}

	got := CollectWatchPaths(cfg, nil)
	want := []string{dir, filepath.Join(dir, "scenarios"), filepath.Join(dir, "more")}
	if len(got) != len(want) {
		t.Fatalf("CollectWatchPaths = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("path[%d] = %q, want %q", i, got[i], want[i])
		}
	}

	files := []string{filepath.Join(dir, "x", "a.yaml"), filepath.Join(dir, "x", "b.yaml")}
	got = CollectWatchPaths(cfg, files)
	if len(got) != 2 || got[1] != filepath.Join(dir, "x") {
		t.Errorf("CollectWatchPaths(files) = %v", got)
	}
}

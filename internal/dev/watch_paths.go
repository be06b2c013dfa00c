package dev

import (
	"path/filepath"
	"strings"

	"github.com/vango-dev/reactive/internal/config"
)

// CollectWatchPaths returns the directories to watch for a run: the
// directory of each explicit file, or, without files, every configured
// scenario entry (globs contribute the directory part before the first
// wildcard). The config directory is always included so that reactive.json
// edits are seen.
func CollectWatchPaths(cfg *config.Config, files []string) []string {
	var paths []string
	if dir := cfg.Dir(); dir != "" {
		paths = append(paths, dir)
	}

	if len(files) > 0 {
		for _, f := range files {
			paths = append(paths, filepath.Dir(f))
		}
	} else {
		for _, entry := range cfg.Scenarios {
			paths = append(paths, resolvePath(cfg.Dir(), staticPrefix(entry)))
		}
	}

	unique := make([]string, 0, len(paths))
	seen := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		if p == "" {
			continue
		}
		clean := filepath.Clean(p)
		if _, ok := seen[clean]; ok {
			continue
		}
		seen[clean] = struct{}{}
		unique = append(unique, clean)
	}
	return unique
}

// staticPrefix trims a glob down to the directory before its first
// wildcard segment.
func staticPrefix(pattern string) string {
	if !strings.ContainsAny(pattern, "*?[") {
		return pattern
	}
	parts := strings.Split(filepath.ToSlash(pattern), "/")
	var kept []string
	for _, part := range parts {
		if strings.ContainsAny(part, "*?[") {
			break
		}
		kept = append(kept, part)
	}
	if len(kept) == 0 {
		return "."
	}
	return filepath.FromSlash(strings.Join(kept, "/"))
}

func resolvePath(projectDir, path string) string {
	if path == "" {
		return ""
	}
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(projectDir, path)
}

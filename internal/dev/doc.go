// Package dev re-runs scenarios while they are being edited.
//
// Watcher wraps fsnotify: it watches directories, drops events for ignored
// or filtered-out paths, and debounces bursts (editors often write a file
// several times per save) into one callback carrying every changed path.
//
// # Usage
//
//	w := dev.NewWatcher(dev.WatcherConfig{
//	    Paths:  dev.CollectWatchPaths(cfg, files),
//	    Filter: config.IsScenarioFile,
//	})
//	w.OnChange(func(paths []string) {
//	    runner.RunFiles(ctx, files)
//	})
//	if err := w.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
package dev

package reactive

import "github.com/vango-dev/reactive/pkg/proxy"

// Watch runs fn on the default runtime. See Runtime.Watch.
func Watch(fn func(), opts ...WatchOption) Unwatch {
	return Default().Watch(fn, opts...)
}

// Track runs fn on the default runtime. See Runtime.Track.
func Track(fn func(), opts ...WatchOption) *Watcher {
	return Default().Track(fn, opts...)
}

// Batch defers re-runs on the default runtime until fn returns.
// See Runtime.Batch.
func Batch(fn func()) {
	Default().Batch(fn)
}

// Effect watches fn on the default runtime. See Runtime.Effect.
func Effect(fn func(), cleanup func()) Unwatch {
	return Default().Effect(fn, cleanup)
}

// Computed derives an Object on the default runtime. See Runtime.Computed.
func Computed(spec map[string]func() any) *proxy.Object {
	return Default().Computed(spec)
}

package reactive

import (
	"sort"

	"github.com/vango-dev/reactive/pkg/proxy"
)

// Computed returns a fresh Object whose keys hold the results of spec's
// functions. Each key is kept up to date by its own watch, so a key
// recomputes only when something its function read changes.
//
// Example:
//
//	derived := rt.Computed(map[string]func() any{
//	    "double": func() any { return state.Get("m").(int) * 2 },
//	    "next":   func() any { return state.Get("n").(int) + 1 },
//	})
//	derived.Get("double")
func (rt *Runtime) Computed(spec map[string]func() any) *proxy.Object {
	out, _ := rt.Derive(spec)
	return out
}

// Derive is Computed that also returns a function stopping every per-key
// watch. Keys are first computed in sorted order.
func (rt *Runtime) Derive(spec map[string]func() any) (*proxy.Object, Unwatch) {
	out := rt.realm.NewObject(nil)

	keys := make([]string, 0, len(spec))
	for k := range spec {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	unwatches := make([]Unwatch, 0, len(keys))
	for _, key := range keys {
		key, compute := key, spec[key]
		unwatches = append(unwatches, rt.Watch(func() {
			out.Set(key, compute())
		}, WithName("computed."+key)))
	}

	return out, func() {
		for _, unwatch := range unwatches {
			unwatch()
		}
	}
}

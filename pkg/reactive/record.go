package reactive

import (
	"sort"
	"sync"

	"github.com/vango-dev/reactive/pkg/proxy"
)

// observation is the value a property held when it was read. When that value
// was itself a container, shape holds its key set at the same moment.
type observation struct {
	value any
	shape map[string]struct{}
}

// record is the dependency record of one watch: touched container, then
// property, then observation. It is rebuilt from scratch on every run.
type record struct {
	mu      sync.Mutex
	entries map[proxy.Proxy]map[string]observation

	// order keeps containers in first-touch order.
	order []proxy.Proxy
}

func newRecord() *record {
	return &record{entries: make(map[proxy.Proxy]map[string]observation)}
}

func (r *record) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = make(map[proxy.Proxy]map[string]observation)
	r.order = nil
}

// trap records one announced read. It is installed on the runtime's
// interceptor for the duration of a run.
func (r *record) trap(_ any, key string, receiver proxy.Proxy) {
	if receiver == nil || !proxy.IsProxy(receiver) {
		return
	}

	v, _ := receiver.Peek(key)
	obs := observation{value: v}
	if child, ok := v.(proxy.Proxy); ok {
		obs.shape = keySet(child.Keys())
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	props, ok := r.entries[receiver]
	if !ok {
		props = make(map[string]observation)
		r.entries[receiver] = props
		r.order = append(r.order, receiver)
	}
	props[key] = obs
}

func (r *record) size() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.order)
}

// deps returns the recorded property names per container, sorted.
func (r *record) deps() map[proxy.Proxy][]string {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make(map[proxy.Proxy][]string, len(r.entries))
	for c, props := range r.entries {
		keys := make([]string, 0, len(props))
		for k := range props {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		out[c] = keys
	}
	return out
}

func keySet(keys []string) map[string]struct{} {
	set := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		set[k] = struct{}{}
	}
	return set
}

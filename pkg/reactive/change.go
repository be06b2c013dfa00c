package reactive

import "github.com/vango-dev/reactive/pkg/proxy"

// changed reports whether anything recorded is stale: a recorded property
// now holds a different value, or a container observed as a property value
// gained or lost keys.
func (r *record) changed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	seen := make(map[proxy.Proxy]struct{}, len(r.order))
	for _, c := range r.order {
		if r.valuesChanged(c, seen) {
			return true
		}
	}
	return r.shapeChanged()
}

// valuesChanged compares c's recorded properties with their current values.
// A property that now holds a container with its own record entry is checked
// by recursing into that container instead of by identity. seen guards
// against cycles; a container already visited reports no change.
func (r *record) valuesChanged(c proxy.Proxy, seen map[proxy.Proxy]struct{}) bool {
	if _, ok := seen[c]; ok {
		return false
	}
	seen[c] = struct{}{}

	for key, prev := range r.entries[c] {
		current, _ := c.Peek(key)
		if child, ok := current.(proxy.Proxy); ok {
			if _, tracked := r.entries[child]; tracked {
				if r.valuesChanged(child, seen) {
					return true
				}
				continue
			}
		}
		if !proxy.Is(current, prev.value) {
			return true
		}
	}
	return false
}

// shapeChanged compares every key-set snapshot with the current key set of
// the container it was taken from.
func (r *record) shapeChanged() bool {
	for _, c := range r.order {
		for _, obs := range r.entries[c] {
			if obs.shape == nil {
				continue
			}
			child := obs.value.(proxy.Proxy)
			if !sameKeys(obs.shape, child.Keys()) {
				return true
			}
		}
	}
	return false
}

func sameKeys(snapshot map[string]struct{}, current []string) bool {
	if len(snapshot) != len(current) {
		return false
	}
	for _, k := range current {
		if _, ok := snapshot[k]; !ok {
			return false
		}
	}
	return true
}

package reactive

import "github.com/vango-dev/reactive/pkg/proxy"

// roots returns, in first-touch order, the touched containers that are not
// the recorded value of a property of another touched container.
//
// This is a one-level test, not reachability: a container reached only
// through an intermediate value that was never read through is still a root,
// even though the deep subscription on an outer root would already deliver
// its changes.
//
// A cycle read all the way through has no such container, because each
// member is the recorded value of another. For every cycle that no root
// reaches, the first member touched becomes a root as well, so every
// touched container is reachable from some subscription.
func (r *record) roots() []proxy.Proxy {
	r.mu.Lock()
	defer r.mu.Unlock()

	children := make(map[proxy.Proxy][]proxy.Proxy)
	reached := make(map[proxy.Proxy]struct{})
	for _, owner := range r.order {
		for _, obs := range r.entries[owner] {
			child, ok := obs.value.(proxy.Proxy)
			if !ok || child == owner {
				continue
			}
			if _, touched := r.entries[child]; touched {
				children[owner] = append(children[owner], child)
				reached[child] = struct{}{}
			}
		}
	}

	covered := make(map[proxy.Proxy]struct{}, len(r.order))
	var cover func(c proxy.Proxy)
	cover = func(c proxy.Proxy) {
		if _, ok := covered[c]; ok {
			return
		}
		covered[c] = struct{}{}
		for _, child := range children[c] {
			cover(child)
		}
	}

	roots := make([]proxy.Proxy, 0, len(r.order))
	for _, c := range r.order {
		if _, ok := reached[c]; !ok {
			roots = append(roots, c)
			cover(c)
		}
	}
	for _, c := range r.order {
		if _, ok := covered[c]; !ok {
			roots = append(roots, c)
			cover(c)
		}
	}
	return roots
}

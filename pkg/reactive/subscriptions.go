package reactive

import "github.com/vango-dev/reactive/pkg/proxy"

// reconcile makes the watch's subscriptions match the current root set:
// containers that stopped being roots are unsubscribed, new roots get a deep
// subscription. A disposed watch keeps no subscriptions.
func (w *Watcher) reconcile() {
	roots := w.rec.roots()
	keep := make(map[proxy.Proxy]struct{}, len(roots))
	for _, c := range roots {
		keep[c] = struct{}{}
	}

	w.mu.Lock()
	if w.disposed {
		w.mu.Unlock()
		return
	}

	var dropped []proxy.Proxy
	var unsubs []func()
	for c, unsub := range w.subs {
		if _, ok := keep[c]; !ok {
			dropped = append(dropped, c)
			unsubs = append(unsubs, unsub)
			delete(w.subs, c)
		}
	}

	var added []proxy.Proxy
	for _, c := range roots {
		if _, ok := w.subs[c]; ok {
			continue
		}
		w.subs[c] = c.Subscribe(w.notified, true)
		added = append(added, c)
	}
	w.mu.Unlock()

	for _, unsub := range unsubs {
		unsub()
	}

	w.rt.metrics.subscriptionsChanged(len(added) - len(dropped))
	for _, c := range dropped {
		w.rt.emit(Event{Kind: EventUnsubscribe, WatchID: w.id, Watch: w.name, Container: c.ID()})
	}
	for _, c := range added {
		w.rt.emit(Event{Kind: EventSubscribe, WatchID: w.id, Watch: w.name, Container: c.ID()})
	}
	if len(added) > 0 || len(dropped) > 0 {
		w.rt.logger.Debug("subscriptions reconciled",
			"watch", w.id,
			"added", len(added),
			"dropped", len(dropped),
			"roots", len(roots),
		)
	}
}

// notified is the subscription callback. Every subscription of a watch
// routes through the same Listener, so a batch collapses them into one entry.
func (w *Watcher) notified(proxy.Op) {
	w.rt.sched.register(w)
}

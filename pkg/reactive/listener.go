package reactive

// Listener is anything the batch scheduler can defer and deduplicate.
// *Watcher implements it.
type Listener interface {
	// MarkDirty notifies the listener that one of its dependencies may have
	// changed. For watches this evaluates staleness and re-runs if needed.
	MarkDirty()

	// ID returns a stable identifier. Repeated registrations with the same
	// ID inside one batch collapse to a single pending entry.
	ID() uint64
}

// Unwatch stops a watch. Calling it more than once is a no-op.
type Unwatch func()

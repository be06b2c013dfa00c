package proxy

import "sync/atomic"

var idCounter uint64

// nextID returns a process-unique container or hook identifier.
func nextID() uint64 {
	return atomic.AddUint64(&idCounter, 1)
}

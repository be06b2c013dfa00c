package reactive

import "sync/atomic"

// globalIDCounter provides unique IDs for watches and traps.
var globalIDCounter uint64

// nextID returns a unique ID.
func nextID() uint64 {
	return atomic.AddUint64(&globalIDCounter, 1)
}

package reactive

import "runtime"

// getGoroutineID returns a unique identifier for the current goroutine.
// Batch frames are keyed by it so that a mutation only sees batches opened
// on its own goroutine.
func getGoroutineID() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)

	// The stack starts with "goroutine <id> "
	var id uint64
	for i := 10; i < n; i++ {
		if buf[i] == ' ' {
			break
		}
		id = id*10 + uint64(buf[i]-'0')
	}
	return id
}

// Package reactive re-runs functions when the container values they read
// change, without asking callers to declare dependencies.
//
// Watch runs fn once and records every property it reads through a
// proxy container. When any of those containers (or a container nested
// under them) is mutated, the recorded values are compared against the
// current ones and fn runs again only if something it actually read differs:
//
//	state := proxy.NewObject(map[string]any{"count": 0})
//	unwatch := reactive.Watch(func() {
//	    fmt.Println("count is", state.Get("count"))
//	})
//	state.Set("count", 1) // prints "count is 1"
//	unwatch()
//
// # Batching
//
// Batch defers re-runs until fn returns. Each watch re-runs at most once per
// batch, observing the final state:
//
//	reactive.Batch(func() {
//	    state.Set("count", 2)
//	    state.Set("count", 3)
//	}) // the watch runs once and sees 3
//
// Nested batches flush independently when they exit.
//
// # Change detection
//
// A notification re-runs a watch when a recorded property now holds a
// different value (compared with proxy.Is), or when a container observed as
// a property value gained or lost keys. Containers reached as the recorded
// value of another touched container are not subscribed to directly; the
// deep subscription on the outer container already delivers their changes.
// The test is one level deep: a container reached only through an untouched
// intermediate value is subscribed to as well. A cycle that no other root
// reaches gets one subscription on its first touched member.
//
// Track returns the *Watcher handle instead of an Unwatch, for callers that
// want the run count, the roots or the recorded dependencies.
//
// # Runtimes
//
// A Runtime owns the trap registry installed on a proxy.Realm and the batch
// frames. The package-level functions use Default(). Separate runtimes over
// separate realms never observe each other.
//
// # Concurrency
//
// Notification delivery is synchronous on the goroutine that mutates a
// container. Batch frames are tracked per goroutine. A watch function that
// writes to state it has read while it is running is not re-entered; the
// write is only seen by later notifications.
package reactive

// Package scenario loads YAML scenario files and runs them against the
// reactive engine.
//
// A scenario declares an initial state, a set of watches that read paths of
// that state, computed keys that sum paths, and an ordered list of steps that
// mutate the state and check what the watches observed:
//
//	name: nested object
//	state:
//	  count: 0
//	  nested: {count: 0}
//	watches:
//	  - name: inner
//	    read: [nested.count]
//	computed:
//	  total: [count, nested.count]
//	steps:
//	  - set: {path: nested.count, value: 1}
//	  - expect: {watch: inner, runs: 2, last: [1]}
//	  - expect: {computed: total, value: 1}
//
// Paths are dot-separated. Segments address object keys or list indexes;
// the segment "length" of a list reads its length.
//
// Running a scenario produces a Report holding the ordered trace of watch
// runs, skipped notifications, batch flushes and applied steps. Failed
// expectations are R2xx errors in Report.Failures; Run itself only fails when
// its context is cancelled.
package scenario

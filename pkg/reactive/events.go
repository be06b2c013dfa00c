package reactive

import "time"

// Trigger says why a watch function ran.
type Trigger string

const (
	// TriggerInitial is the synchronous first run inside Watch.
	TriggerInitial Trigger = "initial"

	// TriggerChange is a re-run after a notification found stale
	// dependencies.
	TriggerChange Trigger = "change"
)

// EventKind identifies an engine Event.
type EventKind string

const (
	EventRun         EventKind = "run"
	EventSkip        EventKind = "skip"
	EventSubscribe   EventKind = "subscribe"
	EventUnsubscribe EventKind = "unsubscribe"
	EventFlush       EventKind = "flush"
	EventUnwatch     EventKind = "unwatch"
)

// Event describes one engine step for tooling.
type Event struct {
	Kind EventKind `json:"kind"`

	// WatchID and Watch identify the watch, when the event concerns one.
	WatchID uint64 `json:"watchId,omitempty"`
	Watch   string `json:"watch,omitempty"`

	// Trigger is set on EventRun.
	Trigger Trigger `json:"trigger,omitempty"`

	// Container is the subscribed container on (un)subscribe events.
	Container uint64 `json:"container,omitempty"`

	// Deps is the number of touched containers after a run.
	Deps int `json:"deps,omitempty"`

	// Pending is the number of listeners flushed on EventFlush.
	Pending int `json:"pending,omitempty"`

	// Duration is the run time on EventRun.
	Duration time.Duration `json:"duration,omitempty"`

	// Panicked is set on EventRun when the watch function panicked.
	Panicked bool `json:"panicked,omitempty"`
}

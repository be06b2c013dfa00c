// Package proxy provides the reactive containers observed by package reactive.
//
// A container is an identity-bearing wrapper over mutable state. Reads made
// through Get (and List.Len) are announced to every hook installed on the
// container's Realm, and every mutation is delivered synchronously to the
// container's subscribers.
//
// # Containers
//
// Object is dictionary-like, List is array-like:
//
//	state := proxy.NewObject(map[string]any{
//	    "count":  0,
//	    "nested": map[string]any{"count": 0},
//	})
//	state.Get("count")            // announced to read hooks
//	state.Peek("count")           // raw read, not announced
//	state.Set("count", 1)         // notifies subscribers
//
// Plain map[string]any and []any values stored into a container are wrapped
// into containers of the same Realm, so nested state is reactive too.
//
// # Subscriptions
//
// Subscribe registers a listener. A deep listener also hears mutations of
// containers nested (at any depth) under the subscribed one:
//
//	unsub := state.Subscribe(func(op proxy.Op) { ... }, true)
//	defer unsub()
//
// The container graph may contain cycles. Propagation visits each container
// at most once per mutation.
//
// # Equality
//
// Is implements the exact equality used to decide whether a write changes
// anything: NaN equals NaN, +0 and -0 differ, values of different dynamic
// types never compare equal, and reference kinds compare by identity.
package proxy

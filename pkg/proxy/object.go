package proxy

import (
	"sort"
	"sync"
)

// Object is a dictionary-like reactive container keyed by string.
type Object struct {
	node

	mu     sync.RWMutex
	values map[string]any
}

// NewObject creates an Object in the default realm, wrapping init's values.
func NewObject(init map[string]any) *Object {
	return Default().NewObject(init)
}

// NewObject creates an Object in r. Nested map[string]any and []any values
// are wrapped into containers of the same realm.
func (r *Realm) NewObject(init map[string]any) *Object {
	return r.newObject(init, make(map[uintptr]Proxy))
}

func (r *Realm) newObject(init map[string]any, seen map[uintptr]Proxy) *Object {
	o := &Object{values: make(map[string]any, len(init))}
	o.node.init(r)
	if init != nil {
		seen[mapPointer(init)] = o
	}
	for k, v := range init {
		v = r.wrap(v, seen)
		o.values[k] = v
		o.adopt(v)
	}
	return o
}

// Get returns the value stored under key, announcing the read to the realm's
// hooks. Missing keys read as nil.
func (o *Object) Get(key string) any {
	o.realm.announce(o.values, key, o)

	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.values[key]
}

// Peek returns the value stored under key without announcing the read.
func (o *Object) Peek(key string) (any, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	v, ok := o.values[key]
	return v, ok
}

// Has reports whether key is present.
func (o *Object) Has(key string) bool {
	_, ok := o.Peek(key)
	return ok
}

// Keys returns the sorted key set.
func (o *Object) Keys() []string {
	o.mu.RLock()
	keys := make([]string, 0, len(o.values))
	for k := range o.values {
		keys = append(keys, k)
	}
	o.mu.RUnlock()

	sort.Strings(keys)
	return keys
}

// Len returns the number of keys.
func (o *Object) Len() int {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return len(o.values)
}

// Set stores v under key and notifies subscribers. Writing a value identical
// to the current one (by Is) is a no-op.
func (o *Object) Set(key string, v any) {
	v = o.realm.wrap(v, make(map[uintptr]Proxy))

	o.mu.Lock()
	prev, had := o.values[key]
	if had && Is(prev, v) {
		o.mu.Unlock()
		return
	}
	o.values[key] = v
	o.mu.Unlock()

	if had {
		o.release(prev)
	}
	o.adopt(v)
	o.notify(Op{Kind: OpSet, Target: o, Key: key, Value: v, Prev: prev})
}

// Delete removes key and notifies subscribers. Deleting a missing key is a
// no-op.
func (o *Object) Delete(key string) {
	o.mu.Lock()
	prev, had := o.values[key]
	if !had {
		o.mu.Unlock()
		return
	}
	delete(o.values, key)
	o.mu.Unlock()

	o.release(prev)
	o.notify(Op{Kind: OpDelete, Target: o, Key: key, Prev: prev})
}

package proxy

import (
	"fmt"
	"strconv"
	"sync"
)

// LengthKey is the key announced by List.Len and accepted by List.Peek.
const LengthKey = "length"

// List is an array-like reactive container. Elements are addressed by their
// decimal index as a key; the length is exposed under LengthKey.
type List struct {
	node

	mu     sync.RWMutex
	values []any
}

// NewList creates a List in the default realm.
func NewList(items ...any) *List {
	return Default().NewList(items...)
}

// NewList creates a List in r, wrapping nested plain values.
func (r *Realm) NewList(items ...any) *List {
	return r.newList(items, make(map[uintptr]Proxy))
}

func (r *Realm) newList(items []any, seen map[uintptr]Proxy) *List {
	l := &List{values: make([]any, 0, len(items))}
	l.node.init(r)
	for _, v := range items {
		v = r.wrap(v, seen)
		l.values = append(l.values, v)
		l.adopt(v)
	}
	return l
}

// Get returns the element at i, announcing the read. Out-of-range indexes
// read as nil.
func (l *List) Get(i int) any {
	l.mu.RLock()
	raw := l.values
	var v any
	if i >= 0 && i < len(raw) {
		v = raw[i]
	}
	l.mu.RUnlock()

	l.realm.announce(raw, strconv.Itoa(i), l)
	return v
}

// Len returns the number of elements, announcing a read of LengthKey.
func (l *List) Len() int {
	l.mu.RLock()
	raw := l.values
	l.mu.RUnlock()

	l.realm.announce(raw, LengthKey, l)
	return len(raw)
}

// Peek returns the element stored under an index key, or the length for
// LengthKey, without announcing the read.
func (l *List) Peek(key string) (any, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if key == LengthKey {
		return len(l.values), true
	}
	i, err := strconv.Atoi(key)
	if err != nil || i < 0 || i >= len(l.values) {
		return nil, false
	}
	return l.values[i], true
}

// Keys returns the index keys in ascending order.
func (l *List) Keys() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()

	keys := make([]string, len(l.values))
	for i := range l.values {
		keys[i] = strconv.Itoa(i)
	}
	return keys
}

// Set stores v at index i. Setting past the end grows the list, filling the
// gap with nil. Negative indexes panic.
func (l *List) Set(i int, v any) {
	if i < 0 {
		panic(fmt.Sprintf("proxy: negative list index %d", i))
	}
	v = l.realm.wrap(v, make(map[uintptr]Proxy))

	l.mu.Lock()
	var prev any
	grown := false
	if i < len(l.values) {
		prev = l.values[i]
		if Is(prev, v) {
			l.mu.Unlock()
			return
		}
	} else {
		for len(l.values) <= i {
			l.values = append(l.values, nil)
		}
		grown = true
	}
	l.values[i] = v
	l.mu.Unlock()

	if !grown {
		l.release(prev)
	}
	l.adopt(v)
	l.notify(Op{Kind: OpSet, Target: l, Key: strconv.Itoa(i), Value: v, Prev: prev})
}

// Push appends items and returns the new length.
func (l *List) Push(items ...any) int {
	if len(items) == 0 {
		return l.size()
	}
	wrapped := make([]any, len(items))
	for i, v := range items {
		wrapped[i] = l.realm.wrap(v, make(map[uintptr]Proxy))
	}

	l.mu.Lock()
	l.values = append(l.values, wrapped...)
	n := len(l.values)
	l.mu.Unlock()

	for _, v := range wrapped {
		l.adopt(v)
	}
	l.notify(Op{Kind: OpSplice, Target: l, Key: LengthKey, Value: n, Prev: n - len(wrapped)})
	return n
}

// Pop removes and returns the last element, or nil when empty.
func (l *List) Pop() any {
	l.mu.Lock()
	n := len(l.values)
	if n == 0 {
		l.mu.Unlock()
		return nil
	}
	last := l.values[n-1]
	l.values[n-1] = nil
	l.values = l.values[:n-1]
	l.mu.Unlock()

	l.release(last)
	l.notify(Op{Kind: OpSplice, Target: l, Key: LengthKey, Value: n - 1, Prev: n})
	return last
}

// Shift removes and returns the first element, or nil when empty.
func (l *List) Shift() any {
	l.mu.Lock()
	n := len(l.values)
	if n == 0 {
		l.mu.Unlock()
		return nil
	}
	first := l.values[0]
	rest := make([]any, n-1)
	copy(rest, l.values[1:])
	l.values = rest
	l.mu.Unlock()

	l.release(first)
	l.notify(Op{Kind: OpSplice, Target: l, Key: LengthKey, Value: n - 1, Prev: n})
	return first
}

// Remove deletes the element at index i, shifting later elements down, and
// returns it. Out-of-range indexes are a no-op returning nil.
func (l *List) Remove(i int) any {
	l.mu.Lock()
	n := len(l.values)
	if i < 0 || i >= n {
		l.mu.Unlock()
		return nil
	}
	removed := l.values[i]
	rest := make([]any, 0, n-1)
	rest = append(rest, l.values[:i]...)
	rest = append(rest, l.values[i+1:]...)
	l.values = rest
	l.mu.Unlock()

	l.release(removed)
	l.notify(Op{Kind: OpSplice, Target: l, Key: LengthKey, Value: n - 1, Prev: n})
	return removed
}

// Unshift prepends items and returns the new length.
func (l *List) Unshift(items ...any) int {
	if len(items) == 0 {
		return l.size()
	}
	wrapped := make([]any, len(items))
	for i, v := range items {
		wrapped[i] = l.realm.wrap(v, make(map[uintptr]Proxy))
	}

	l.mu.Lock()
	l.values = append(wrapped, l.values...)
	n := len(l.values)
	l.mu.Unlock()

	for _, v := range wrapped {
		l.adopt(v)
	}
	l.notify(Op{Kind: OpSplice, Target: l, Key: LengthKey, Value: n, Prev: n - len(wrapped)})
	return n
}

func (l *List) size() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.values)
}

package proxy

import (
	"sort"
	"sync"
	"sync/atomic"
)

// Proxy is implemented by every reactive container.
type Proxy interface {
	// ID returns the container's process-unique identifier.
	ID() uint64

	// Realm returns the realm whose hooks observe this container's reads.
	Realm() *Realm

	// Peek returns the raw value stored under key without announcing a read.
	Peek(key string) (any, bool)

	// Keys returns the container's current key set without announcing a read.
	Keys() []string

	// Subscribe registers fn for change notification. When deep is true, fn
	// also receives mutations of containers nested under this one.
	Subscribe(fn func(Op), deep bool) (unsubscribe func())

	base() *node
}

// OpKind identifies the mutation carried by an Op.
type OpKind uint8

const (
	// OpSet is a property write (including appends past the end of a List).
	OpSet OpKind = iota + 1

	// OpDelete is a property removal.
	OpDelete

	// OpSplice is a structural List change (push, pop, shift, unshift, remove).
	OpSplice
)

// String returns the lowercase name of the kind.
func (k OpKind) String() string {
	switch k {
	case OpSet:
		return "set"
	case OpDelete:
		return "delete"
	case OpSplice:
		return "splice"
	default:
		return "unknown"
	}
}

// Op describes one mutation. Target is the container that was mutated, which
// differs from the subscribed container when a deep listener hears a nested
// change.
type Op struct {
	Kind   OpKind
	Target Proxy
	Key    string
	Value  any
	Prev   any
}

type listener struct {
	fn     func(Op)
	deep   bool
	active atomic.Bool
}

// node holds the identity, listeners and parent links shared by containers.
type node struct {
	id    uint64
	realm *Realm

	lmu       sync.Mutex
	listeners []*listener

	// parents counts, per parent container, how many of its properties hold
	// this container.
	parents map[*node]int
}

func (n *node) init(realm *Realm) {
	if realm == nil {
		realm = Default()
	}
	n.id = nextID()
	n.realm = realm
}

func (n *node) base() *node { return n }

// ID returns the container's identifier.
func (n *node) ID() uint64 { return n.id }

// Realm returns the container's realm.
func (n *node) Realm() *Realm { return n.realm }

// Subscribe registers fn for change notification.
func (n *node) Subscribe(fn func(Op), deep bool) (unsubscribe func()) {
	l := &listener{fn: fn, deep: deep}
	l.active.Store(true)

	n.lmu.Lock()
	n.listeners = append(n.listeners, l)
	n.lmu.Unlock()

	return func() {
		if !l.active.Swap(false) {
			return
		}
		n.lmu.Lock()
		defer n.lmu.Unlock()
		for i, existing := range n.listeners {
			if existing == l {
				n.listeners = append(n.listeners[:i:i], n.listeners[i+1:]...)
				return
			}
		}
	}
}

// SubscriberCount returns the number of live listeners on the container.
func (n *node) SubscriberCount() int {
	n.lmu.Lock()
	defer n.lmu.Unlock()
	return len(n.listeners)
}

// adopt links v to n when v is a container.
func (n *node) adopt(v any) {
	child, ok := v.(Proxy)
	if !ok {
		return
	}
	c := child.base()
	c.lmu.Lock()
	if c.parents == nil {
		c.parents = make(map[*node]int)
	}
	c.parents[n]++
	c.lmu.Unlock()
}

// release drops one link from v to n when v is a container.
func (n *node) release(v any) {
	child, ok := v.(Proxy)
	if !ok {
		return
	}
	c := child.base()
	c.lmu.Lock()
	if c.parents[n] <= 1 {
		delete(c.parents, n)
	} else {
		c.parents[n]--
	}
	c.lmu.Unlock()
}

// notify delivers op to n's listeners and then, as a nested change, to every
// ancestor's deep listeners.
func (n *node) notify(op Op) {
	n.deliver(op, false, make(map[*node]struct{}))
}

func (n *node) deliver(op Op, nested bool, seen map[*node]struct{}) {
	if _, ok := seen[n]; ok {
		return
	}
	seen[n] = struct{}{}

	// Copy while holding the lock, deliver without it.
	n.lmu.Lock()
	listeners := n.listeners
	parents := make([]*node, 0, len(n.parents))
	for p := range n.parents {
		parents = append(parents, p)
	}
	n.lmu.Unlock()

	for _, l := range listeners {
		if nested && !l.deep {
			continue
		}
		if l.active.Load() {
			l.fn(op)
		}
	}

	sort.Slice(parents, func(i, j int) bool { return parents[i].id < parents[j].id })
	for _, p := range parents {
		p.deliver(op, true, seen)
	}
}

// IsProxy reports whether v is a reactive container.
func IsProxy(v any) bool {
	_, ok := v.(Proxy)
	return ok
}

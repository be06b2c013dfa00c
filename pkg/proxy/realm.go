package proxy

import (
	"sync"
	"sync/atomic"
)

// ReadHook is invoked for every announced read on any container of a Realm.
// target is the container's raw storage, key the property read and receiver
// the container through which the read happened. Hooks observe reads, they
// never change the value returned to the reader.
type ReadHook func(target any, key string, receiver Proxy)

type hookEntry struct {
	id uint64
	fn ReadHook
}

// Realm is the read hook point shared by every container it creates.
type Realm struct {
	mu    sync.RWMutex
	hooks []*hookEntry

	// installed mirrors len(hooks) so reads skip the lock when nothing listens.
	installed atomic.Int32
}

var (
	defaultRealm     *Realm
	defaultRealmOnce sync.Once
)

// NewRealm creates an isolated realm with no hooks installed.
func NewRealm() *Realm {
	return &Realm{}
}

// Default returns the process-wide realm used by NewObject and NewList.
func Default() *Realm {
	defaultRealmOnce.Do(func() {
		defaultRealm = NewRealm()
	})
	return defaultRealm
}

// OnRead installs hook on the realm's read path.
// The returned function removes it and is safe to call more than once.
func (r *Realm) OnRead(hook ReadHook) (remove func()) {
	entry := &hookEntry{id: nextID(), fn: hook}

	r.mu.Lock()
	r.hooks = append(r.hooks, entry)
	r.installed.Store(int32(len(r.hooks)))
	r.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			r.mu.Lock()
			defer r.mu.Unlock()
			for i, h := range r.hooks {
				if h.id == entry.id {
					// Copy so in-flight reads keep iterating their own slice.
					r.hooks = append(r.hooks[:i:i], r.hooks[i+1:]...)
					break
				}
			}
			r.installed.Store(int32(len(r.hooks)))
		})
	}
}

// HookCount returns the number of installed read hooks.
func (r *Realm) HookCount() int {
	return int(r.installed.Load())
}

// announce fires every installed hook for one read.
func (r *Realm) announce(target any, key string, receiver Proxy) {
	if r.installed.Load() == 0 {
		return
	}

	r.mu.RLock()
	hooks := r.hooks
	r.mu.RUnlock()

	for _, h := range hooks {
		h.fn(target, key, receiver)
	}
}

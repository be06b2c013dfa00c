package reactive

import (
	"sync"

	"github.com/vango-dev/reactive/pkg/proxy"
)

// Trap receives every read announced by any container of the interceptor's
// realm while it is installed.
type Trap func(target any, key string, receiver proxy.Proxy)

// TrapID identifies an installed trap.
type TrapID uint64

type trapEntry struct {
	id   TrapID
	trap Trap
}

// Interceptor is the registry of traps fed by one realm's read hook.
// It is empty at rest: the realm hook is attached when the first trap is
// installed and detached when the last one is removed.
type Interceptor struct {
	realm *proxy.Realm

	mu      sync.Mutex
	entries []trapEntry
	detach  func()

	// onChange reports the number of installed traps after every change.
	onChange func(n int)
}

// NewInterceptor creates an empty registry over realm.
func NewInterceptor(realm *proxy.Realm) *Interceptor {
	if realm == nil {
		realm = proxy.Default()
	}
	return &Interceptor{realm: realm}
}

// Install adds trap to the registry.
func (i *Interceptor) Install(trap Trap) TrapID {
	id := TrapID(nextID())

	i.mu.Lock()
	// Copy-on-write so dispatch can iterate without holding the lock.
	entries := make([]trapEntry, len(i.entries), len(i.entries)+1)
	copy(entries, i.entries)
	i.entries = append(entries, trapEntry{id: id, trap: trap})
	if i.detach == nil {
		i.detach = i.realm.OnRead(i.dispatch)
	}
	n := len(i.entries)
	i.mu.Unlock()

	i.changed(n)
	return id
}

// Remove deletes the trap installed under id. Unknown ids are ignored.
func (i *Interceptor) Remove(id TrapID) {
	i.mu.Lock()
	idx := -1
	for j, e := range i.entries {
		if e.id == id {
			idx = j
			break
		}
	}
	if idx < 0 {
		i.mu.Unlock()
		return
	}
	entries := make([]trapEntry, 0, len(i.entries)-1)
	entries = append(entries, i.entries[:idx]...)
	i.entries = append(entries, i.entries[idx+1:]...)

	var detach func()
	if len(i.entries) == 0 {
		detach, i.detach = i.detach, nil
	}
	n := len(i.entries)
	i.mu.Unlock()

	if detach != nil {
		detach()
	}
	i.changed(n)
}

// Len returns the number of installed traps.
func (i *Interceptor) Len() int {
	i.mu.Lock()
	defer i.mu.Unlock()
	return len(i.entries)
}

func (i *Interceptor) dispatch(target any, key string, receiver proxy.Proxy) {
	i.mu.Lock()
	entries := i.entries
	i.mu.Unlock()

	for _, e := range entries {
		e.trap(target, key, receiver)
	}
}

func (i *Interceptor) changed(n int) {
	if i.onChange != nil {
		i.onChange(n)
	}
}

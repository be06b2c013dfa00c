package reactive

import (
	"sync"
	"testing"

	"github.com/vango-dev/reactive/pkg/proxy"
)

// newTestRuntime returns a runtime over a private realm so tests never see
// each other's traps.
func newTestRuntime(t *testing.T, opts ...Option) (*Runtime, *proxy.Realm) {
	t.Helper()
	realm := proxy.NewRealm()
	rt := New(append([]Option{WithRealm(realm)}, opts...)...)
	return rt, realm
}

// testListener counts MarkDirty calls.
type testListener struct {
	id         uint64
	mu         sync.Mutex
	dirtyCount int
}

func newTestListener() *testListener {
	return &testListener{id: nextID()}
}

func (l *testListener) MarkDirty() {
	l.mu.Lock()
	l.dirtyCount++
	l.mu.Unlock()
}

func (l *testListener) ID() uint64 {
	return l.id
}

func (l *testListener) getDirtyCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.dirtyCount
}

func mustPanic(t *testing.T, fn func()) (recovered any) {
	t.Helper()
	defer func() {
		recovered = recover()
		if recovered == nil {
			t.Fatal("expected panic")
		}
	}()
	fn()
	return nil
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

package reactive

import (
	"testing"

	"github.com/vango-dev/reactive/pkg/proxy"
)

func TestInterceptorAttachesOnlyWhileInstalled(t *testing.T) {
	realm := proxy.NewRealm()
	i := NewInterceptor(realm)
	state := realm.NewObject(map[string]any{"a": 1})

	if realm.HookCount() != 0 {
		t.Fatal("empty interceptor should not hook the realm")
	}

	var first, second []string
	id1 := i.Install(func(_ any, key string, _ proxy.Proxy) { first = append(first, key) })
	id2 := i.Install(func(_ any, key string, _ proxy.Proxy) { second = append(second, key) })
	if realm.HookCount() != 1 || i.Len() != 2 {
		t.Fatalf("HookCount=%d Len=%d, want 1 and 2", realm.HookCount(), i.Len())
	}

	if got := state.Get("a"); got != 1 {
		t.Errorf("intercepted read returned %v, want 1", got)
	}
	i.Remove(id1)
	_ = state.Get("b")
	i.Remove(id2)
	i.Remove(id2)
	_ = state.Get("c")

	if len(first) != 1 || first[0] != "a" {
		t.Errorf("first trap saw %v, want [a]", first)
	}
	if len(second) != 2 || second[1] != "b" {
		t.Errorf("second trap saw %v, want [a b]", second)
	}
	if realm.HookCount() != 0 || i.Len() != 0 {
		t.Errorf("HookCount=%d Len=%d after removal, want 0", realm.HookCount(), i.Len())
	}
}

func TestRuntimesOverSeparateRealmsAreIsolated(t *testing.T) {
	rt1, realm1 := newTestRuntime(t)
	_, realm2 := newTestRuntime(t)
	foreign := realm2.NewObject(map[string]any{"v": 0})
	local := realm1.NewObject(map[string]any{"v": 0})

	w := rt1.Track(func() {
		_ = foreign.Get("v")
		_ = local.Get("v")
	})
	defer w.Unwatch()

	if roots := w.Roots(); len(roots) != 1 || roots[0] != local {
		t.Errorf("roots = %v, want only the container of the runtime's realm", roots)
	}
}

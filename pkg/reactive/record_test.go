package reactive

import (
	"testing"

	"github.com/vango-dev/reactive/pkg/proxy"
)

func touch(r *record, c proxy.Proxy, keys ...string) {
	for _, k := range keys {
		r.trap(nil, k, c)
	}
}

func TestRecordTracksStructure(t *testing.T) {
	parent := proxy.NewObject(map[string]any{"child": map[string]any{"a": 1}})
	child, _ := parent.Peek("child")

	r := newRecord()
	touch(r, parent, "child")
	if r.changed() {
		t.Fatal("fresh record reports a change")
	}

	child.(*proxy.Object).Set("a", 2)
	if r.changed() {
		t.Error("value change in an untracked child is not a dependency")
	}

	child.(*proxy.Object).Set("b", 1)
	if !r.changed() {
		t.Error("added key should be detected")
	}
}

func TestRecordRecursesIntoTrackedChildren(t *testing.T) {
	parent := proxy.NewObject(map[string]any{"child": map[string]any{"a": 1}})
	childValue, _ := parent.Peek("child")
	child := childValue.(*proxy.Object)

	r := newRecord()
	touch(r, parent, "child")
	touch(r, child, "a")

	roots := r.roots()
	if len(roots) != 1 || roots[0] != parent {
		t.Errorf("roots = %v, want [parent]", roots)
	}

	child.Set("a", 2)
	if !r.changed() {
		t.Error("change of a tracked child property should be detected")
	}
}

func TestRecordSelfReferenceIsRoot(t *testing.T) {
	self := proxy.NewObject(nil)
	self.Set("me", self)

	r := newRecord()
	touch(r, self, "me")
	if roots := r.roots(); len(roots) != 1 || roots[0] != self {
		t.Errorf("roots = %v, want [self]", roots)
	}
	if r.changed() {
		t.Error("self-referencing record should not report a change")
	}
}

func TestRecordMissingKeysReadAsNil(t *testing.T) {
	obj := proxy.NewObject(nil)

	r := newRecord()
	touch(r, obj, "missing")
	if r.changed() {
		t.Fatal("missing key reported as changed")
	}
	obj.Set("missing", 0)
	if !r.changed() {
		t.Error("key appearing with a value should be a change")
	}
}

func TestRecordReset(t *testing.T) {
	obj := proxy.NewObject(map[string]any{"a": 1})
	r := newRecord()
	touch(r, obj, "a")
	r.reset()

	if r.size() != 0 || len(r.roots()) != 0 {
		t.Error("reset should clear the record")
	}
}

func TestRootsCoverUnreachedCycles(t *testing.T) {
	realm := proxy.NewRealm()
	top := realm.NewObject(nil)
	c1 := realm.NewObject(nil)
	c2 := realm.NewObject(nil)
	top.Set("c", c1)
	c1.Set("next", c2)
	c2.Set("next", c1)

	d1 := realm.NewObject(nil)
	d2 := realm.NewObject(nil)
	d1.Set("next", d2)
	d2.Set("next", d1)

	r := newRecord()
	touch(r, top, "c")
	touch(r, c1, "next")
	touch(r, c2, "next")
	touch(r, d1, "next")
	touch(r, d2, "next")

	// The c cycle is reached from top; the d cycle is reached from nothing
	// outside it, so its first touched member is subscribed.
	roots := r.roots()
	if len(roots) != 2 || roots[0] != top || roots[1] != d1 {
		t.Errorf("roots = %v, want [top d1]", roots)
	}
}

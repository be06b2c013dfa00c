package reactive

import "testing"

func TestComputedRecomputesOnlyAffectedKey(t *testing.T) {
	rt, realm := newTestRuntime(t)
	x := realm.NewObject(map[string]any{"m": 1, "n": 1})

	runsA, runsB := 0, 0
	out := rt.Computed(map[string]func() any{
		"a": func() any { runsA++; return x.Get("m").(int) * 2 },
		"b": func() any { runsB++; return x.Get("n").(int) + 1 },
	})

	if out.Get("a") != 2 || out.Get("b") != 2 {
		t.Fatalf("initial a=%v b=%v, want 2 and 2", out.Get("a"), out.Get("b"))
	}

	x.Set("m", 5)
	if out.Get("a") != 10 {
		t.Errorf("a = %v, want 10", out.Get("a"))
	}
	if out.Get("b") != 2 {
		t.Errorf("b = %v, want 2", out.Get("b"))
	}
	if runsA != 2 || runsB != 1 {
		t.Errorf("runs a=%d b=%d, want 2 and 1", runsA, runsB)
	}
}

func TestComputedOutputIsReactive(t *testing.T) {
	rt, realm := newTestRuntime(t)
	x := realm.NewObject(map[string]any{"m": 1})

	out, stop := rt.Derive(map[string]func() any{
		"double": func() any { return x.Get("m").(int) * 2 },
	})

	var seen []int
	unwatch := rt.Watch(func() {
		seen = append(seen, out.Get("double").(int))
	})
	defer unwatch()

	x.Set("m", 3)
	if !equalInts(seen, []int{2, 6}) {
		t.Errorf("seen = %v, want [2 6]", seen)
	}

	stop()
	x.Set("m", 4)
	if out.Get("double") != 6 {
		t.Errorf("stopped computed still updates: %v", out.Get("double"))
	}
	if x.SubscriberCount() != 0 {
		t.Errorf("stopped computed still subscribed: %d", x.SubscriberCount())
	}
}

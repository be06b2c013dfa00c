package reactive

import (
	"errors"
	"sync"
	"testing"
)

func TestBatchSingleRerun(t *testing.T) {
	rt, realm := newTestRuntime(t)
	state := realm.NewObject(map[string]any{"count": 0})

	var data []int
	unwatch := rt.Watch(func() {
		data = append(data, state.Get("count").(int))
	})

	rt.Batch(func() {
		state.Set("count", 1)
		state.Set("count", 2)
		if len(data) != 1 {
			t.Errorf("watch ran inside the batch: %v", data)
		}
	})
	if !equalInts(data, []int{0, 2}) {
		t.Fatalf("data = %v, want [0 2]", data)
	}

	rt.Batch(func() {
		state.Set("count", 3)
		state.Set("count", 4)
	})
	if !equalInts(data, []int{0, 2, 4}) {
		t.Fatalf("data = %v, want [0 2 4]", data)
	}

	unwatch()
	rt.Batch(func() {
		state.Set("count", 5)
		state.Set("count", 6)
	})
	if !equalInts(data, []int{0, 2, 4}) {
		t.Errorf("watch ran after unwatch: %v", data)
	}
}

func TestBatchRestoredValueSkipsRerun(t *testing.T) {
	rt, realm := newTestRuntime(t)
	state := realm.NewObject(map[string]any{"count": 0})

	runs := 0
	unwatch := rt.Watch(func() {
		_ = state.Get("count")
		runs++
	})
	defer unwatch()

	rt.Batch(func() {
		state.Set("count", 1)
		state.Set("count", 0)
	})
	if runs != 1 {
		t.Errorf("runs = %d, want 1 (value restored before flush)", runs)
	}
}

func TestBatchMultipleWatches(t *testing.T) {
	rt, realm := newTestRuntime(t)
	a := realm.NewObject(map[string]any{"v": 0})
	b := realm.NewObject(map[string]any{"v": 0})

	runsA, runsB, runsBoth := 0, 0, 0
	defer rt.Watch(func() { _ = a.Get("v"); runsA++ })()
	defer rt.Watch(func() { _ = b.Get("v"); runsB++ })()
	defer rt.Watch(func() { _ = a.Get("v"); _ = b.Get("v"); runsBoth++ })()

	rt.Batch(func() {
		a.Set("v", 1)
		b.Set("v", 2)
	})

	if runsA != 2 || runsB != 2 || runsBoth != 2 {
		t.Errorf("runs a=%d b=%d both=%d, want 2 each", runsA, runsB, runsBoth)
	}
}

func TestBatchNestedFlushesIndependently(t *testing.T) {
	rt, realm := newTestRuntime(t)
	state := realm.NewObject(map[string]any{"count": 0})

	var data []int
	defer rt.Watch(func() {
		data = append(data, state.Get("count").(int))
	})()

	rt.Batch(func() {
		state.Set("count", 1)

		rt.Batch(func() {
			state.Set("count", 2)
			if rt.BatchDepth() != 2 {
				t.Errorf("BatchDepth() = %d, want 2", rt.BatchDepth())
			}
		})

		// The inner batch flushed its own notification on exit.
		if !equalInts(data, []int{0, 2}) {
			t.Errorf("after inner batch: data = %v, want [0 2]", data)
		}
		state.Set("count", 3)
	})

	// The outer frame still held the first notification.
	if !equalInts(data, []int{0, 2, 3}) {
		t.Errorf("after outer batch: data = %v, want [0 2 3]", data)
	}
	if rt.BatchDepth() != 0 {
		t.Errorf("BatchDepth() = %d after batches, want 0", rt.BatchDepth())
	}
}

func TestBatchFlushesOnPanic(t *testing.T) {
	rt, realm := newTestRuntime(t)
	state := realm.NewObject(map[string]any{"count": 0})

	var data []int
	defer rt.Watch(func() {
		data = append(data, state.Get("count").(int))
	})()

	got := mustPanic(t, func() {
		rt.Batch(func() {
			state.Set("count", 7)
			panic("batched failure")
		})
	})
	if got != "batched failure" {
		t.Errorf("recovered %v, want the original panic", got)
	}
	if !equalInts(data, []int{0, 7}) {
		t.Errorf("queued re-run dropped: data = %v, want [0 7]", data)
	}
	if rt.BatchDepth() != 0 {
		t.Errorf("frame left open after panic: depth %d", rt.BatchDepth())
	}
}

func TestBatchValue(t *testing.T) {
	rt, realm := newTestRuntime(t)
	state := realm.NewObject(map[string]any{"count": 0})

	var data []int
	defer rt.Watch(func() {
		data = append(data, state.Get("count").(int))
	})()

	errBoom := errors.New("boom")
	v, err := BatchValue(rt, func() (string, error) {
		state.Set("count", 1)
		return "done", errBoom
	})
	if v != "done" || !errors.Is(err, errBoom) {
		t.Errorf("BatchValue = (%q, %v), want (done, boom)", v, err)
	}
	if !equalInts(data, []int{0, 1}) {
		t.Errorf("data = %v, want [0 1]", data)
	}
}

func TestSchedulerDeduplicatesByID(t *testing.T) {
	s := newScheduler()
	listener := newTestListener()

	f := s.push()
	for i := 0; i < 5; i++ {
		s.register(listener)
	}
	if listener.getDirtyCount() != 0 {
		t.Fatalf("listener notified inside batch: %d", listener.getDirtyCount())
	}
	s.pop(f)
	if len(f.pending) != 1 {
		t.Errorf("pending = %d, want 1", len(f.pending))
	}

	s.register(listener)
	if listener.getDirtyCount() != 1 {
		t.Errorf("registration outside a batch should notify immediately, got %d", listener.getDirtyCount())
	}
}

func TestSchedulerPopOutOfOrderPanics(t *testing.T) {
	s := newScheduler()
	outer := s.push()
	inner := s.push()

	mustPanic(t, func() { s.pop(outer) })
	s.pop(inner)
	s.pop(outer)
	if s.depth() != 0 {
		t.Errorf("depth() = %d, want 0", s.depth())
	}
}

func TestBatchIsPerGoroutine(t *testing.T) {
	rt, realm := newTestRuntime(t)
	state := realm.NewObject(map[string]any{"count": 0})

	var mu sync.Mutex
	var data []int
	defer rt.Watch(func() {
		n := state.Get("count").(int)
		mu.Lock()
		data = append(data, n)
		mu.Unlock()
	})()

	rt.Batch(func() {
		var wg sync.WaitGroup
		wg.Add(1)
		go func() {
			defer wg.Done()
			state.Set("count", 1)
		}()
		wg.Wait()

		mu.Lock()
		defer mu.Unlock()
		if !equalInts(data, []int{0, 1}) {
			t.Errorf("mutation on another goroutine was deferred: %v", data)
		}
	})
}

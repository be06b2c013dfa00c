package reactive

import "sync"

// frame collects the listeners notified while one Batch call is open.
type frame struct {
	seen    map[uint64]struct{}
	pending []Listener
}

func newFrame() *frame {
	return &frame{seen: make(map[uint64]struct{})}
}

// add queues l unless a listener with the same ID is already pending.
func (f *frame) add(l Listener) {
	id := l.ID()
	if _, ok := f.seen[id]; ok {
		return
	}
	f.seen[id] = struct{}{}
	f.pending = append(f.pending, l)
}

// frameStack is the LIFO stack of open batches on one goroutine.
type frameStack struct {
	frames []*frame
}

// scheduler routes listener notifications into the innermost open batch of
// the notifying goroutine, or delivers them immediately when none is open.
type scheduler struct {
	// stacks maps goroutine ID to *frameStack.
	stacks sync.Map
}

func newScheduler() *scheduler {
	return &scheduler{}
}

func (s *scheduler) current() *frameStack {
	if st, ok := s.stacks.Load(getGoroutineID()); ok {
		return st.(*frameStack)
	}
	return nil
}

// register defers l to the innermost open batch, or calls l.MarkDirty now.
func (s *scheduler) register(l Listener) {
	if st := s.current(); st != nil && len(st.frames) > 0 {
		st.frames[len(st.frames)-1].add(l)
		return
	}
	l.MarkDirty()
}

// push opens a new frame on the current goroutine.
func (s *scheduler) push() *frame {
	gid := getGoroutineID()
	v, _ := s.stacks.LoadOrStore(gid, &frameStack{})
	st := v.(*frameStack)

	f := newFrame()
	st.frames = append(st.frames, f)
	return f
}

// pop closes f, which must be the innermost frame of the current goroutine.
func (s *scheduler) pop(f *frame) {
	gid := getGoroutineID()
	v, ok := s.stacks.Load(gid)
	if !ok {
		return
	}
	st := v.(*frameStack)

	n := len(st.frames)
	if n == 0 || st.frames[n-1] != f {
		panic("reactive: batch frames closed out of order")
	}
	st.frames[n-1] = nil
	st.frames = st.frames[:n-1]
	if len(st.frames) == 0 {
		s.stacks.Delete(gid)
	}
}

// depth returns the number of open batches on the current goroutine.
func (s *scheduler) depth() int {
	if st := s.current(); st != nil {
		return len(st.frames)
	}
	return 0
}

// Batch runs fn with notifications deferred. When fn returns (or panics), the
// batch is closed and every distinct watch notified inside it is evaluated
// exactly once, in notification order, before the panic continues.
//
// Nested batches are independent: an inner Batch flushes its own watches when
// it exits, even while an outer batch is still open.
//
// Example:
//
//	rt.Batch(func() {
//	    state.Set("first", "John")
//	    state.Set("last", "Doe")
//	})
//	// Watches reading both keys run once with both changes
func (rt *Runtime) Batch(fn func()) {
	f := rt.sched.push()
	defer rt.flush(f)
	fn()
}

func (rt *Runtime) flush(f *frame) {
	rt.sched.pop(f)

	rt.metrics.batchFlushed(len(f.pending))
	rt.emit(Event{Kind: EventFlush, Pending: len(f.pending)})
	if len(f.pending) > 0 {
		rt.logger.Debug("batch flush", "pending", len(f.pending))
	}

	for _, l := range f.pending {
		l.MarkDirty()
	}
}

// BatchValue runs fn inside rt.Batch and returns its result after the flush.
func BatchValue[T any](rt *Runtime, fn func() (T, error)) (T, error) {
	var (
		v   T
		err error
	)
	rt.Batch(func() {
		v, err = fn()
	})
	return v, err
}

// BatchDepth returns the number of batches open on the calling goroutine.
func (rt *Runtime) BatchDepth() int {
	return rt.sched.depth()
}

package reactive

import "sync"

// Effect watches fn and returns a function that stops it and then calls
// cleanup. cleanup may be nil and runs at most once.
//
// Example:
//
//	stop := rt.Effect(func() {
//	    title.Set(fmt.Sprintf("%d items", items.Len()))
//	}, func() {
//	    log.Println("effect stopped")
//	})
//	defer stop()
func (rt *Runtime) Effect(fn func(), cleanup func()) Unwatch {
	unwatch := rt.Watch(fn, WithName("effect"))
	var once sync.Once
	return func() {
		unwatch()
		if cleanup != nil {
			once.Do(cleanup)
		}
	}
}

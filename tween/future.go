package tween

import "sync"

// Future is a one-shot completion signal for a choreography. Callbacks
// registered with Then run synchronously, in registration order, on the
// tick that resolves the future.
type Future struct {
	done     chan struct{}
	once     sync.Once
	resolved bool
	then     []func()
}

// NewFuture returns an unresolved future.
func NewFuture() *Future {
	return &Future{done: make(chan struct{})}
}

// Resolved returns an already completed future.
func Resolved() *Future {
	f := NewFuture()
	f.Resolve()
	return f
}

// Resolve completes the future. Later calls are no-ops.
func (f *Future) Resolve() {
	if f == nil {
		return
	}
	f.once.Do(func() {
		f.resolved = true
		close(f.done)
		callbacks := f.then
		f.then = nil
		for _, fn := range callbacks {
			fn()
		}
	})
}

// Done is closed once the future resolves.
func (f *Future) Done() <-chan struct{} {
	return f.done
}

func (f *Future) IsResolved() bool {
	return f != nil && f.resolved
}

// Then runs fn when the future resolves, immediately if it already has.
func (f *Future) Then(fn func()) {
	if f == nil || fn == nil {
		return
	}
	if f.resolved {
		fn()
		return
	}
	f.then = append(f.then, fn)
}

// All resolves once every given future has resolved.
func All(futures ...*Future) *Future {
	out := NewFuture()
	pending := len(futures)
	if pending == 0 {
		out.Resolve()
		return out
	}
	for _, f := range futures {
		f.Then(func() {
			pending--
			if pending == 0 {
				out.Resolve()
			}
		})
	}
	return out
}

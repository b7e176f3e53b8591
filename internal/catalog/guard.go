package catalog

import "sync"

// guard owns a value behind a RWMutex. A panic inside write releases the lock
// and leaves it poisoned; the next acquirer runs repair over the value before
// using it.
type guard[T any] struct {
	name string
	mu   sync.RWMutex
	val  T

	poisoned  bool
	repair    func(v *T) int
	onRecover func(lock string, fixed int)
}

func (g *guard[T]) write(fn func(v *T)) {
	g.mu.Lock()
	g.recoverLocked()

	ok := false
	defer func() {
		if !ok {
			g.poisoned = true
		}
		g.mu.Unlock()
	}()

	fn(&g.val)
	ok = true
}

func (g *guard[T]) read(fn func(v T)) {
	for {
		g.mu.RLock()
		if !g.poisoned {
			break
		}
		g.mu.RUnlock()

		g.mu.Lock()
		g.recoverLocked()
		g.mu.Unlock()
	}
	defer g.mu.RUnlock()

	fn(g.val)
}

// recoverLocked must be called with mu held for writing.
func (g *guard[T]) recoverLocked() {
	if !g.poisoned {
		return
	}

	fixed := 0
	if g.repair != nil {
		fixed = g.repair(&g.val)
	}
	g.poisoned = false

	if g.onRecover != nil {
		g.onRecover(g.name, fixed)
	}
}

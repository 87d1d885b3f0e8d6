package signals

import "sync"

const defaultLatchCapacity = 1024

// Latch is a one-shot guard keyed by navigation id: the first Do for an id
// runs, later ones are dropped. Only the most recent ids are remembered.
type Latch struct {
	mu       sync.Mutex
	fired    map[string]struct{}
	order    []string
	capacity int
}

// NewLatch remembers up to capacity ids; non-positive means the default.
func NewLatch(capacity int) *Latch {
	if capacity <= 0 {
		capacity = defaultLatchCapacity
	}
	return &Latch{
		fired:    make(map[string]struct{}),
		capacity: capacity,
	}
}

// Do runs fn if navID has not fired yet and reports whether it ran.
// An empty navID cannot be deduplicated and never runs fn.
func (l *Latch) Do(navID string, fn func()) bool {
	if navID == "" {
		return false
	}
	l.mu.Lock()
	if _, seen := l.fired[navID]; seen {
		l.mu.Unlock()
		return false
	}
	l.fired[navID] = struct{}{}
	l.order = append(l.order, navID)
	if len(l.order) > l.capacity {
		oldest := l.order[0]
		l.order = l.order[1:]
		delete(l.fired, oldest)
	}
	l.mu.Unlock()

	fn()
	return true
}

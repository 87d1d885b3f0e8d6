// Package signals carries cart open, close and updated notifications between
// components that hold no reference to each other.
package signals

import "sync"

// Bus is an explicit observer list per event kind. Delivery is synchronous on
// the firing goroutine; each fired event reaches every handler subscribed at
// the moment of firing exactly once.
type Bus struct {
	mu      sync.Mutex
	nextID  int
	open    []openHandler
	close   []plainHandler
	updated []plainHandler
}

type openHandler struct {
	id int
	fn func(Stage)
}

type plainHandler struct {
	id int
	fn func()
}

func NewBus() *Bus {
	return &Bus{}
}

// OnOpen subscribes fn to open requests. The returned func unsubscribes and
// is safe to call more than once.
func (b *Bus) OnOpen(fn func(Stage)) func() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	id := b.nextID
	b.open = append(b.open, openHandler{id: id, fn: fn})
	return b.unsubscriber(func() {
		b.open = removeOpen(b.open, id)
	})
}

// OnClose subscribes fn to close requests.
func (b *Bus) OnClose(fn func()) func() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	id := b.nextID
	b.close = append(b.close, plainHandler{id: id, fn: fn})
	return b.unsubscriber(func() {
		b.close = removePlain(b.close, id)
	})
}

// OnUpdated subscribes fn to cart change notifications.
func (b *Bus) OnUpdated(fn func()) func() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	id := b.nextID
	b.updated = append(b.updated, plainHandler{id: id, fn: fn})
	return b.unsubscriber(func() {
		b.updated = removePlain(b.updated, id)
	})
}

// Open asks every subscriber to open the cart at stage. Unknown stages are
// delivered as StageCart.
func (b *Bus) Open(stage Stage) {
	stage = ParseStage(string(stage))
	b.mu.Lock()
	handlers := append([]openHandler(nil), b.open...)
	b.mu.Unlock()
	for _, h := range handlers {
		h.fn(stage)
	}
}

// Close asks every subscriber to close the cart.
func (b *Bus) Close() {
	b.mu.Lock()
	handlers := append([]plainHandler(nil), b.close...)
	b.mu.Unlock()
	for _, h := range handlers {
		h.fn()
	}
}

// Updated tells every subscriber the cart changed. It satisfies cart.Notifier.
func (b *Bus) Updated() {
	b.mu.Lock()
	handlers := append([]plainHandler(nil), b.updated...)
	b.mu.Unlock()
	for _, h := range handlers {
		h.fn()
	}
}

// Subscribers reports how many handlers are attached across all kinds.
func (b *Bus) Subscribers() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.open) + len(b.close) + len(b.updated)
}

func (b *Bus) unsubscriber(remove func()) func() {
	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			remove()
		})
	}
}

func removeOpen(list []openHandler, id int) []openHandler {
	out := list[:0:0]
	for _, h := range list {
		if h.id != id {
			out = append(out, h)
		}
	}
	return out
}

func removePlain(list []plainHandler, id int) []plainHandler {
	out := list[:0:0]
	for _, h := range list {
		if h.id != id {
			out = append(out, h)
		}
	}
	return out
}

package cart

import (
	"context"
	"sync"
)

// StorageKey is the single key the cart list is persisted under.
const StorageKey = "prints-cart-v1"

// Storage is a string key/value store shared by every Store of one shopper.
type Storage interface {
	GetItem(ctx context.Context, key string) (string, bool, error)
	SetItem(ctx context.Context, key, value string) error
	RemoveItem(ctx context.Context, key string) error
}

// ChangeFeed is implemented by storages that can announce writes made by
// other writers. A writer never receives its own changes. The channel closes
// when ctx is done.
type ChangeFeed interface {
	Changes(ctx context.Context, key string) (<-chan struct{}, error)
}

// MemoryStorage is an in-process storage shared by several tabs. Each Tab is
// a separate writer identity for change delivery.
type MemoryStorage struct {
	mu     sync.Mutex
	data   map[string]string
	subs   map[int]*memorySub
	nextID int
}

type memorySub struct {
	tab int
	key string
	ch  chan struct{}
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		data: make(map[string]string),
		subs: make(map[int]*memorySub),
	}
}

// Tab returns a new handle onto the shared data.
func (m *MemoryStorage) Tab() *MemoryTab {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	return &MemoryTab{store: m, id: m.nextID}
}

// Clear wipes every key, as when the shopper clears site data. Every tab is notified.
func (m *MemoryStorage) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for key := range m.data {
		delete(m.data, key)
		m.notifyLocked(0, key)
	}
}

func (m *MemoryStorage) notifyLocked(origin int, key string) {
	for _, sub := range m.subs {
		if sub.tab == origin || sub.key != key {
			continue
		}
		select {
		case sub.ch <- struct{}{}:
		default:
		}
	}
}

// MemoryTab is one writer on a MemoryStorage.
type MemoryTab struct {
	store *MemoryStorage
	id    int
}

func (t *MemoryTab) GetItem(ctx context.Context, key string) (string, bool, error) {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	v, ok := t.store.data[key]
	return v, ok, nil
}

func (t *MemoryTab) SetItem(ctx context.Context, key, value string) error {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	t.store.data[key] = value
	t.store.notifyLocked(t.id, key)
	return nil
}

func (t *MemoryTab) RemoveItem(ctx context.Context, key string) error {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	delete(t.store.data, key)
	t.store.notifyLocked(t.id, key)
	return nil
}

func (t *MemoryTab) Changes(ctx context.Context, key string) (<-chan struct{}, error) {
	m := t.store
	m.mu.Lock()
	m.nextID++
	subID := m.nextID
	sub := &memorySub{tab: t.id, key: key, ch: make(chan struct{}, 1)}
	m.subs[subID] = sub
	m.mu.Unlock()

	go func() {
		<-ctx.Done()
		m.mu.Lock()
		delete(m.subs, subID)
		close(sub.ch)
		m.mu.Unlock()
	}()
	return sub.ch, nil
}

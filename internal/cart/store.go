// Package cart owns the shopper's persisted list of line items.
package cart

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/gaprints/prints-backend/pkg/logger"
	"github.com/shopspring/decimal"
)

// Notifier receives a payload-free signal after every persisted mutation.
type Notifier interface {
	Updated()
}

// Store is the single owner of one shopper's cart state. Every mutation is a
// read-modify-write under the store mutex; Stores sharing a Storage see each
// other's writes eventually.
type Store struct {
	mu       sync.Mutex
	storage  Storage
	key      string
	notifier Notifier
	logg     *logger.Logger
}

// NewStore binds a store to storage. notifier and logg may be nil.
func NewStore(storage Storage, notifier Notifier, logg *logger.Logger) *Store {
	return &Store{
		storage:  storage,
		key:      StorageKey,
		notifier: notifier,
		logg:     logg,
	}
}

// Read returns the persisted list. Absent, unreadable or malformed data reads
// as an empty cart.
func (s *Store) Read(ctx context.Context) []LineItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readLocked(ctx)
}

// Write replaces the persisted list and notifies on success.
func (s *Store) Write(ctx context.Context, items []LineItem) {
	s.mutate(ctx, func([]LineItem) ([]LineItem, bool) {
		return items, true
	})
}

// AddOrMerge adds item, or increases the quantity of the line with the same id.
func (s *Store) AddOrMerge(ctx context.Context, item LineItem) {
	if item.ID == "" {
		item.ID = LineItemID(item.PrintID, item.Size)
	}
	if item.Qty < 1 {
		item.Qty = 1
	}
	s.mutate(ctx, func(items []LineItem) ([]LineItem, bool) {
		for i := range items {
			if items[i].ID == item.ID {
				items[i].Qty += item.Qty
				return items, true
			}
		}
		return append(items, item), true
	})
}

// UpdateQuantity sets the quantity of id, removing the line when qty <= 0.
// Unknown ids are a no-op.
func (s *Store) UpdateQuantity(ctx context.Context, id string, qty int) {
	s.mutate(ctx, func(items []LineItem) ([]LineItem, bool) {
		for i := range items {
			if items[i].ID != id {
				continue
			}
			if qty <= 0 {
				return append(items[:i], items[i+1:]...), true
			}
			items[i].Qty = qty
			return items, true
		}
		return nil, false
	})
}

// RemoveItem drops the line with id.
func (s *Store) RemoveItem(ctx context.Context, id string) {
	s.UpdateQuantity(ctx, id, 0)
}

// Clear empties the cart.
func (s *Store) Clear(ctx context.Context) {
	s.Write(ctx, []LineItem{})
}

// Subtotal sums items, or the current cart when items is nil.
func (s *Store) Subtotal(ctx context.Context, items []LineItem) decimal.Decimal {
	if items == nil {
		items = s.Read(ctx)
	}
	return Subtotal(items)
}

// Count sums quantities of items, or of the current cart when items is nil.
func (s *Store) Count(ctx context.Context, items []LineItem) int {
	if items == nil {
		items = s.Read(ctx)
	}
	return Count(items)
}

// Watch mirrors writes made through other Stores on the same storage into
// Updated notifications. It blocks until ctx is done and returns immediately
// when the storage cannot announce changes.
func (s *Store) Watch(ctx context.Context) error {
	feed, ok := s.storage.(ChangeFeed)
	if !ok {
		return nil
	}
	changes, err := feed.Changes(ctx, s.key)
	if err != nil {
		return err
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case _, open := <-changes:
			if !open {
				return nil
			}
			s.notify()
		}
	}
}

func (s *Store) readLocked(ctx context.Context) []LineItem {
	raw, ok, err := s.storage.GetItem(ctx, s.key)
	if err != nil {
		s.warn(ctx, "cart storage read failed", err)
		return []LineItem{}
	}
	if !ok || raw == "" {
		return []LineItem{}
	}
	var items []LineItem
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		s.warn(ctx, "cart storage holds malformed data", err)
		return []LineItem{}
	}
	return sanitize(items)
}

// mutate runs fn on the current list under the mutex and persists its result
// when fn reports a change. Subscribers are notified after the mutex is
// released so they can read the cart back synchronously.
func (s *Store) mutate(ctx context.Context, fn func([]LineItem) ([]LineItem, bool)) {
	s.mu.Lock()
	next, changed := fn(s.readLocked(ctx))
	written := changed && s.writeLocked(ctx, next)
	s.mu.Unlock()

	if written {
		s.notify()
	}
}

func (s *Store) writeLocked(ctx context.Context, items []LineItem) bool {
	raw, err := json.Marshal(sanitize(items))
	if err != nil {
		s.warn(ctx, "cart encode failed", err)
		return false
	}
	if err := s.storage.SetItem(ctx, s.key, string(raw)); err != nil {
		s.warn(ctx, "cart storage write failed", err)
		return false
	}
	return true
}

// sanitize drops lines that break the quantity floor and always returns a
// non-nil slice so an empty cart encodes as [].
func sanitize(items []LineItem) []LineItem {
	out := make([]LineItem, 0, len(items))
	for _, item := range items {
		if item.ID == "" || item.Qty < 1 {
			continue
		}
		out = append(out, item)
	}
	return out
}

func (s *Store) notify() {
	if s.notifier != nil {
		s.notifier.Updated()
	}
}

func (s *Store) warn(ctx context.Context, msg string, err error) {
	if s.logg == nil {
		return
	}
	s.logg.Warn(s.logg.WithFields(ctx, map[string]any{"cart_key": s.key, "error": err.Error()}), msg)
}

package signals

import (
	"context"
	"sync"
	"time"

	"github.com/gaprints/prints-backend/internal/cart"
	"github.com/gaprints/prints-backend/pkg/logger"
)

// StorageFactory returns the cart storage of one session.
type StorageFactory func(sessionID string) cart.Storage

// Session pairs a cart session's bus with the store that notifies it.
type Session struct {
	ID    string
	Bus   *Bus
	Store *cart.Store

	cancel   context.CancelFunc
	lastUsed time.Time
	pending  *Stage
}

// Registry lazily owns one Session per cart session id. Each session gets a
// single watcher mirroring changes from other instances into its bus.
type Registry struct {
	mu         sync.Mutex
	ctx        context.Context
	stop       context.CancelFunc
	sessions   map[string]*Session
	newStorage StorageFactory
	latch      *Latch
	logg       *logger.Logger
	now        func() time.Time
}

func NewRegistry(newStorage StorageFactory, logg *logger.Logger) *Registry {
	ctx, stop := context.WithCancel(context.Background())
	return &Registry{
		ctx:        ctx,
		stop:       stop,
		sessions:   make(map[string]*Session),
		newStorage: newStorage,
		latch:      NewLatch(0),
		logg:       logg,
		now:        time.Now,
	}
}

// Session returns the session for id, creating it on first use.
func (r *Registry) Session(id string) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sessions[id]; ok {
		s.lastUsed = r.now()
		return s
	}

	bus := NewBus()
	store := cart.NewStore(r.newStorage(id), bus, r.logg)
	ctx, cancel := context.WithCancel(r.ctx)
	s := &Session{ID: id, Bus: bus, Store: store, cancel: cancel, lastUsed: r.now()}
	r.sessions[id] = s

	go func() {
		if err := store.Watch(ctx); err != nil && r.logg != nil {
			wctx := r.logg.WithCartSession(ctx, id)
			r.logg.Warn(r.logg.WithField(wctx, "error", err.Error()), "cart change feed unavailable")
		}
	}()
	return s
}

// OncePerNavigation runs fn the first time navID is seen for the session.
// Deep links use it so a reconnecting stream does not reopen the cart.
func (r *Registry) OncePerNavigation(sessionID, navID string, fn func()) bool {
	if navID == "" {
		return false
	}
	return r.latch.Do(sessionID+"|"+navID, fn)
}

// DeferOpen records an open request to be delivered when the session's next
// page attaches, for navigations that leave the current page.
func (r *Registry) DeferOpen(sessionID string, stage Stage) {
	s := r.Session(sessionID)
	stage = ParseStage(string(stage))
	r.mu.Lock()
	s.pending = &stage
	r.mu.Unlock()
}

// TakeDeferredOpen consumes a pending open request.
func (r *Registry) TakeDeferredOpen(sessionID string) (Stage, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[sessionID]
	if !ok || s.pending == nil {
		return "", false
	}
	stage := *s.pending
	s.pending = nil
	return stage, true
}

// Sweep drops sessions idle longer than idle with nobody subscribed. Their
// carts stay in storage and are picked up again on the next request.
func (r *Registry) Sweep(idle time.Duration) int {
	cutoff := r.now().Add(-idle)
	r.mu.Lock()
	defer r.mu.Unlock()
	evicted := 0
	for id, s := range r.sessions {
		if s.lastUsed.After(cutoff) || s.Bus.Subscribers() > 0 {
			continue
		}
		s.cancel()
		delete(r.sessions, id)
		evicted++
	}
	return evicted
}

// Len reports the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Close stops every watcher.
func (r *Registry) Close() {
	r.stop()
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions = make(map[string]*Session)
}

package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

// cartChange is the broadcast announcing a write to a session cart.
type cartChange struct {
	Origin string `json:"origin"`
	Key    string `json:"key"`
}

// CartStorage persists one session's cart under a namespaced key and announces
// every write on the session's events channel. It satisfies cart.Storage and
// cart.ChangeFeed.
type CartStorage struct {
	client    *Client
	sessionID string
	ttl       time.Duration
}

// CartSession binds the client to a cart session. A zero ttl keeps keys forever.
func (c *Client) CartSession(sessionID string, ttl time.Duration) *CartStorage {
	return &CartStorage{client: c, sessionID: sessionID, ttl: ttl}
}

func (s *CartStorage) GetItem(ctx context.Context, key string) (string, bool, error) {
	value, err := s.client.Get(ctx, s.client.CartKey(s.sessionID, key))
	if IsMiss(err) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

func (s *CartStorage) SetItem(ctx context.Context, key, value string) error {
	if err := s.client.Set(ctx, s.client.CartKey(s.sessionID, key), value, s.ttl); err != nil {
		return err
	}
	s.announce(ctx, key)
	return nil
}

func (s *CartStorage) RemoveItem(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.client.CartKey(s.sessionID, key)); err != nil {
		return err
	}
	s.announce(ctx, key)
	return nil
}

// announce is best effort: the value is already persisted, so a failed
// broadcast only delays peers until their next read.
func (s *CartStorage) announce(ctx context.Context, key string) {
	payload, err := json.Marshal(cartChange{Origin: s.client.instance, Key: key})
	if err != nil {
		return
	}
	if err := s.client.Publish(ctx, s.client.CartEventsChannel(s.sessionID), string(payload)); err != nil && s.client.logg != nil {
		s.client.logg.Warn(s.client.logg.WithField(ctx, "cart_session", s.sessionID), "cart change broadcast failed: "+err.Error())
	}
}

// Changes streams a signal whenever another instance writes key for this
// session. Writes made by this instance are filtered out. The channel closes
// when ctx is done or the subscription ends.
func (s *CartStorage) Changes(ctx context.Context, key string) (<-chan struct{}, error) {
	if s.client.sub == nil {
		return nil, errors.New("redis subscriber not initialized")
	}
	msgs, closeFn, err := s.client.sub.Subscribe(ctx, s.client.CartEventsChannel(s.sessionID))
	if err != nil {
		return nil, err
	}

	out := make(chan struct{}, 1)
	go func() {
		defer close(out)
		defer func() { _ = closeFn() }()
		for {
			select {
			case <-ctx.Done():
				return
			case raw, ok := <-msgs:
				if !ok {
					return
				}
				var change cartChange
				if err := json.Unmarshal([]byte(raw), &change); err != nil {
					continue
				}
				if change.Origin == s.client.instance || change.Key != key {
					continue
				}
				select {
				case out <- struct{}{}:
				default:
					// a signal is already pending; readers reload the full value
				}
			}
		}
	}()
	return out, nil
}

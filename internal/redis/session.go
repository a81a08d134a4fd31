package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"metro/internal/session"
)

// Key prefixes
const (
	sessionKeyPrefix = "session:"
)

// SessionStore keeps session state in Redis as JSON. Idle sessions expire
// after the TTL; every read extends it.
type SessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSessionStore creates a new SessionStore.
func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	if ttl <= 0 {
		ttl = session.DefaultTTL
	}
	return &SessionStore{client: client, ttl: ttl}
}

// Get retrieves a session and refreshes its TTL.
func (s *SessionStore) Get(ctx context.Context, id string) (*session.State, error) {
	data, err := s.client.GetEx(ctx, sessionKeyPrefix+id, s.ttl).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, session.ErrNotFound
		}
		return nil, err
	}

	var state session.State
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, err
	}
	return &state, nil
}

// Save stores a session.
func (s *SessionStore) Save(ctx context.Context, state *session.State) error {
	state.UpdatedAt = time.Now()
	data, err := json.Marshal(state)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, sessionKeyPrefix+state.ID, data, s.ttl).Err()
}

// Delete removes a session.
func (s *SessionStore) Delete(ctx context.Context, id string) error {
	return s.client.Del(ctx, sessionKeyPrefix+id).Err()
}

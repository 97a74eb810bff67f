package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"hustle/internal/domain"
)

const sessionPrefix = "session:"

// SessionStore caches authenticated sessions in Redis, keyed by token.
type SessionStore struct {
	client *redis.Client
}

// NewSessionStore creates a new SessionStore.
func NewSessionStore(client *redis.Client) *SessionStore {
	return &SessionStore{client: client}
}

// SetSession stores a session until ttl elapses.
func (s *SessionStore) SetSession(ctx context.Context, session *domain.Session, ttl time.Duration) error {
	data, err := json.Marshal(session)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, sessionPrefix+session.Token, data, ttl).Err()
}

// GetSession retrieves a session. Returns nil, nil on a cache miss.
func (s *SessionStore) GetSession(ctx context.Context, token string) (*domain.Session, error) {
	data, err := s.client.Get(ctx, sessionPrefix+token).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var session domain.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// DeleteSession removes a session.
func (s *SessionStore) DeleteSession(ctx context.Context, token string) error {
	return s.client.Del(ctx, sessionPrefix+token).Err()
}

package service

import (
	"context"
	"sync"
	"time"
)

// localCodes keeps verification codes in process memory when Redis is off.
type localCodes struct {
	mu    sync.Mutex
	codes map[string]localCode
	now   func() time.Time
}

type localCode struct {
	code      string
	expiresAt time.Time
}

func newLocalCodes(now func() time.Time) *localCodes {
	return &localCodes{codes: make(map[string]localCode), now: now}
}

func (l *localCodes) SetCode(_ context.Context, userID, code string, ttl time.Duration) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.codes[userID] = localCode{code: code, expiresAt: l.now().Add(ttl)}
	return nil
}

func (l *localCodes) GetCode(_ context.Context, userID string) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	c, ok := l.codes[userID]
	if !ok {
		return "", nil
	}
	if !l.now().Before(c.expiresAt) {
		delete(l.codes, userID)
		return "", nil
	}
	return c.code, nil
}

func (l *localCodes) DeleteCode(_ context.Context, userID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	delete(l.codes, userID)
	return nil
}

// revokedTokens remembers logged-out tokens until they would have expired.
type revokedTokens struct {
	mu    sync.Mutex
	until map[string]time.Time
}

func newRevokedTokens() *revokedTokens {
	return &revokedTokens{until: make(map[string]time.Time)}
}

func (r *revokedTokens) add(token string, expiresAt, now time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for t, exp := range r.until {
		if !now.Before(exp) {
			delete(r.until, t)
		}
	}
	r.until[token] = expiresAt
}

func (r *revokedTokens) has(token string, now time.Time) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	exp, ok := r.until[token]
	return ok && now.Before(exp)
}

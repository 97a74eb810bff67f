package redis

import (
	"context"
	"time"

	"hustle/internal/domain"
)

// LocationStoreInterface defines the interface for runner location operations.
type LocationStoreInterface interface {
	UpdateLocation(ctx context.Context, runnerID string, lat, lng float64) error
	FindNearbyRunners(ctx context.Context, lat, lng, radiusKm float64) ([]RunnerLocation, error)
	RemoveLocation(ctx context.Context, runnerID string) error
}

// LockStoreInterface defines the interface for distributed locking.
type LockStoreInterface interface {
	AcquireTaskLock(ctx context.Context, taskID string, ttl time.Duration) (bool, error)
	ReleaseTaskLock(ctx context.Context, taskID string) error
}

// SessionStoreInterface defines the interface for session caching.
type SessionStoreInterface interface {
	SetSession(ctx context.Context, session *domain.Session, ttl time.Duration) error
	GetSession(ctx context.Context, token string) (*domain.Session, error)
	DeleteSession(ctx context.Context, token string) error
}

// OTPStoreInterface defines the interface for pending phone verification codes.
type OTPStoreInterface interface {
	SetCode(ctx context.Context, userID, code string, ttl time.Duration) error
	GetCode(ctx context.Context, userID string) (string, error)
	DeleteCode(ctx context.Context, userID string) error
}

// Ensure concrete types implement interfaces.
var (
	_ LocationStoreInterface = (*LocationStore)(nil)
	_ LockStoreInterface     = (*LockStore)(nil)
	_ SessionStoreInterface  = (*SessionStore)(nil)
	_ OTPStoreInterface      = (*OTPStore)(nil)
)

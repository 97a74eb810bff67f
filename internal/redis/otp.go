package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const otpPrefix = "otp:"

// OTPStore keeps one pending phone verification code per user.
type OTPStore struct {
	client *redis.Client
}

// NewOTPStore creates a new OTPStore.
func NewOTPStore(client *redis.Client) *OTPStore {
	return &OTPStore{client: client}
}

// SetCode replaces the user's pending code.
func (s *OTPStore) SetCode(ctx context.Context, userID, code string, ttl time.Duration) error {
	return s.client.Set(ctx, otpPrefix+userID, code, ttl).Err()
}

// GetCode returns the pending code, or "" when none is live.
func (s *OTPStore) GetCode(ctx context.Context, userID string) (string, error) {
	code, err := s.client.Get(ctx, otpPrefix+userID).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	return code, err
}

// DeleteCode drops the pending code.
func (s *OTPStore) DeleteCode(ctx context.Context, userID string) error {
	return s.client.Del(ctx, otpPrefix+userID).Err()
}

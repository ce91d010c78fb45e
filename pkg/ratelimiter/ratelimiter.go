package ratelimiter

import (
	"context"
	"fmt"
	"time"

	"anoa.com/collegetrack/pkg/apperror"
	"github.com/redis/go-redis/v9"
)

const (
	ScopeRegister = "register"
	ScopeLogin    = "login"
	ScopeReminder = "reminder"
)

// RateLimitError carries the wait time so handlers can set Retry-After.
type RateLimitError struct {
	Message    string
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return e.Message
}

func (e *RateLimitError) Unwrap() error {
	return apperror.ErrRateLimitExceeded
}

func key(scope, subject string) string {
	return fmt.Sprintf("rate_limit:%s:%s", scope, subject)
}

// CheckAndSetRateLimit claims a cooldown slot for subject. It returns false when the slot is
// already taken. A nil client disables limiting.
func CheckAndSetRateLimit(ctx context.Context, rdb *redis.Client, subject, scope string, limit time.Duration) (bool, error) {
	if rdb == nil {
		return true, nil
	}

	wasSet, err := rdb.SetNX(ctx, key(scope, subject), "locked", limit).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check rate limit in redis: %w", err)
	}

	return wasSet, nil
}

func GetRateLimitTTL(ctx context.Context, rdb *redis.Client, subject, scope string) (time.Duration, error) {
	if rdb == nil {
		return 0, nil
	}
	ttl, err := rdb.TTL(ctx, key(scope, subject)).Result()
	if err != nil {
		return 0, err
	}
	if ttl < 0 {
		return 0, nil
	}
	return ttl, nil
}

func ClearRateLimit(ctx context.Context, rdb *redis.Client, subject, scope string) error {
	if rdb == nil {
		return nil
	}
	_, err := rdb.Del(ctx, key(scope, subject)).Result()
	return err
}

// RegisterFailure increments the failure counter for subject. The window starts with the
// first failure and is not extended by later ones.
func RegisterFailure(ctx context.Context, rdb *redis.Client, subject, scope string, window time.Duration) (int64, error) {
	if rdb == nil {
		return 0, nil
	}

	k := key(scope, subject)
	count, err := rdb.Incr(ctx, k).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to increment failure counter: %w", err)
	}
	if count == 1 {
		if err := rdb.Expire(ctx, k, window).Err(); err != nil {
			return count, fmt.Errorf("failed to set failure window: %w", err)
		}
	}
	return count, nil
}

// Failures returns the current failure count for subject.
func Failures(ctx context.Context, rdb *redis.Client, subject, scope string) (int64, error) {
	if rdb == nil {
		return 0, nil
	}
	count, err := rdb.Get(ctx, key(scope, subject)).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return count, nil
}

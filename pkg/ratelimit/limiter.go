package ratelimit

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Result describes the outcome of a limit check
type Result struct {
	Allowed    bool
	Remaining  int64
	RetryAfter time.Duration
}

// SlidingWindow is a Redis-backed sliding window limiter shared across instances
type SlidingWindow struct {
	redis  *redis.Client
	prefix string
	limit  int64
	window time.Duration
}

// NewSlidingWindow creates a limiter allowing limit events per window for each key
func NewSlidingWindow(client *redis.Client, prefix string, limit int64, window time.Duration) *SlidingWindow {
	return &SlidingWindow{redis: client, prefix: prefix, limit: limit, window: window}
}

// Allow records an event for key and reports whether it fits in the window
func (l *SlidingWindow) Allow(ctx context.Context, key string) (*Result, error) {
	redisKey := fmt.Sprintf("ratelimit:%s:%s", l.prefix, key)
	now := time.Now()
	windowStart := now.Add(-l.window)

	pipe := l.redis.Pipeline()
	pipe.ZRemRangeByScore(ctx, redisKey, "0", fmt.Sprintf("%d", windowStart.UnixNano()))
	countCmd := pipe.ZCount(ctx, redisKey, fmt.Sprintf("%d", windowStart.UnixNano()), "+inf")
	pipe.ZAdd(ctx, redisKey, redis.Z{Score: float64(now.UnixNano()), Member: now.UnixNano()})
	pipe.Expire(ctx, redisKey, l.window*2)

	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("rate limit check failed: %w", err)
	}

	count := countCmd.Val()
	remaining := l.limit - count - 1
	if remaining < 0 {
		remaining = 0
	}

	res := &Result{Allowed: count < l.limit, Remaining: remaining}
	if !res.Allowed {
		res.RetryAfter = l.window
	}
	return res, nil
}

// LoginAttemptTracker locks an identifier out after repeated failed logins
type LoginAttemptTracker struct {
	redis       *redis.Client
	logger      *zap.Logger
	maxAttempts int
	baseBackoff time.Duration
	maxBackoff  time.Duration
}

func NewLoginAttemptTracker(client *redis.Client, logger *zap.Logger) *LoginAttemptTracker {
	return &LoginAttemptTracker{
		redis:       client,
		logger:      logger,
		maxAttempts: 10,
		baseBackoff: 5 * time.Second,
		maxBackoff:  time.Hour,
	}
}

// LockedFor returns how long the identifier remains locked, zero when it is not
func (t *LoginAttemptTracker) LockedFor(ctx context.Context, identifier string) (time.Duration, error) {
	ttl, err := t.redis.TTL(ctx, "login:locked:"+identifier).Result()
	if err != nil && err != redis.Nil {
		return 0, fmt.Errorf("failed to check lock status: %w", err)
	}
	if ttl < 0 {
		return 0, nil
	}
	return ttl, nil
}

// RecordFailure counts a failed attempt and applies an exponential lockout past the threshold
func (t *LoginAttemptTracker) RecordFailure(ctx context.Context, identifier string) error {
	key := "login:attempts:" + identifier

	attempts, err := t.redis.Incr(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("failed to increment attempts: %w", err)
	}
	t.redis.Expire(ctx, key, time.Hour)

	if int(attempts) < t.maxAttempts {
		return nil
	}

	backoff := time.Duration(float64(t.baseBackoff) * math.Pow(2, float64(int(attempts)-t.maxAttempts)))
	if backoff > t.maxBackoff {
		backoff = t.maxBackoff
	}
	if err := t.redis.Set(ctx, "login:locked:"+identifier, "1", backoff).Err(); err != nil {
		return fmt.Errorf("failed to lock identifier: %w", err)
	}

	t.logger.Warn("Login locked", zap.String("identifier", identifier), zap.Int64("attempts", attempts), zap.Duration("lockout", backoff))
	return nil
}

// RecordSuccess clears failed attempts
func (t *LoginAttemptTracker) RecordSuccess(ctx context.Context, identifier string) error {
	pipe := t.redis.Pipeline()
	pipe.Del(ctx, "login:attempts:"+identifier)
	pipe.Del(ctx, "login:locked:"+identifier)
	_, err := pipe.Exec(ctx)
	return err
}

// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/taibuivan/yamdb/internal/platform/constants"
)

// RedisAttemptLimiter implements AttemptLimiter with expiring Redis counters.
type RedisAttemptLimiter struct {
	client *redis.Client
}

// NewAttemptLimiter creates a new Redis-backed AttemptLimiter.
func NewAttemptLimiter(client *redis.Client) *RedisAttemptLimiter {
	return &RedisAttemptLimiter{client: client}
}

func attemptKey(username string) string {
	return constants.RedisPrefixExchangeAttempts + username
}

/*
Failures reads the current counter and its remaining lifetime.

Returns:
  - int: Failures in the open window (0 when none)
  - time.Duration: Time until the window closes
  - error: Connectivity errors
*/
func (repository *RedisAttemptLimiter) Failures(context context.Context, username string) (int, time.Duration, error) {
	key := attemptKey(username)

	count, err := repository.client.Get(context, key).Int()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, 0, nil
		}
		return 0, 0, fmt.Errorf("redis_attempts_get_failed: %w", err)
	}

	ttl, err := repository.client.TTL(context, key).Result()
	if err != nil {
		return 0, 0, fmt.Errorf("redis_attempts_ttl_failed: %w", err)
	}

	return count, ttl, nil
}

/*
RecordFailure increments the counter for a username.

Description: The first failure opens the window; later failures inside it
do not extend it.

Returns:
  - int: Counter value after the increment
  - error: Connectivity errors
*/
func (repository *RedisAttemptLimiter) RecordFailure(context context.Context, username string, window time.Duration) (int, error) {
	key := attemptKey(username)

	pipe := repository.client.TxPipeline()
	incr := pipe.Incr(context, key)
	pipe.ExpireNX(context, key, window)

	if _, err := pipe.Exec(context); err != nil {
		return 0, fmt.Errorf("redis_attempts_incr_failed: %w", err)
	}

	return int(incr.Val()), nil
}

// Reset clears the counter after a successful exchange.
func (repository *RedisAttemptLimiter) Reset(context context.Context, username string) error {
	if err := repository.client.Del(context, attemptKey(username)).Err(); err != nil {
		return fmt.Errorf("redis_attempts_reset_failed: %w", err)
	}
	return nil
}

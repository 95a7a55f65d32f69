package limiter

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// Redis is a sliding-window limiter backed by a shared Redis instance, for
// deployments running more than one process. Each (client, action) key is a
// sorted set of attempt timestamps.
type Redis struct {
	client *redis.Client
	window time.Duration
	max    int
	now    func() time.Time
}

// NewRedis creates a Redis limiter. The connection is verified eagerly so a
// misconfigured address fails at startup, not on the first login.
func NewRedis(ctx context.Context, client *redis.Client, window time.Duration, maxAttempts int) (*Redis, error) {
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("limiter.NewRedis: ping: %w", err)
	}

	return &Redis{
		client: client,
		window: window,
		max:    maxAttempts,
		now:    time.Now,
	}, nil
}

// Allow fails open: if Redis is unreachable the attempt is admitted, since
// locking every tenant out of signup and login is worse than briefly losing
// throttling.
func (r *Redis) Allow(ctx context.Context, clientID, action string) bool {
	key := "ratelimit:" + action + ":" + clientID
	now := r.now()
	cutoff := now.Add(-r.window)

	pipe := r.client.TxPipeline()
	pipe.ZRemRangeByScore(ctx, key, "0", fmt.Sprintf("%d", cutoff.UnixNano()))
	count := pipe.ZCard(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil {
		log.Warn().Err(err).Str("action", action).Msg("rate limiter unavailable, allowing request")
		return true
	}

	if count.Val() >= int64(r.max) {
		return false
	}

	pipe = r.client.TxPipeline()
	pipe.ZAdd(ctx, key, redis.Z{Score: float64(now.UnixNano()), Member: now.UnixNano()})
	pipe.Expire(ctx, key, r.window)
	if _, err := pipe.Exec(ctx); err != nil {
		log.Warn().Err(err).Str("action", action).Msg("rate limiter record failed")
	}

	return true
}

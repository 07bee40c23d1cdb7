package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v9"
	"github.com/sirupsen/logrus"
)

type Limiter interface {
	Allow(ctx context.Context, key string) bool
}

// Noop allows everything. Used when no Redis is configured.
type Noop struct{}

func (Noop) Allow(context.Context, string) bool { return true }

// Redis counts calls per key in fixed one-hour windows. Redis failures are
// logged and the call is allowed.
type Redis struct {
	client *redis.Client
	prefix string
	limit  int
	now    func() time.Time
}

func NewRedis(client *redis.Client, prefix string, limit int, now func() time.Time) *Redis {
	if now == nil {
		now = time.Now
	}
	return &Redis{client: client, prefix: prefix, limit: limit, now: now}
}

func (r *Redis) Allow(ctx context.Context, key string) bool {
	k := r.windowKey(key)

	cmds, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, k)
		pipe.Expire(ctx, k, time.Hour)
		return nil
	})
	if errors.Is(err, context.Canceled) {
		return false
	}
	if err != nil {
		logrus.WithError(err).WithField("key", k).Error("Could not check rate limit")
		return true
	}

	count := cmds[0].(*redis.IntCmd).Val()
	return count <= int64(r.limit)
}

func (r *Redis) windowKey(key string) string {
	now := r.now().UTC()
	return fmt.Sprintf("%s:%s::h%s", r.prefix, key, now.Format("2006010215"))
}

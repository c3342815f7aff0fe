package session

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const cookieKey = "philsys:session-cookie"

// Redis shares the session cookie across instances. Expiry is delegated to
// the Redis TTL, so there is no clock dependency here.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedis(client *redis.Client, ttl time.Duration) *Redis {
	return &Redis{client: client, ttl: ttl}
}

func (r *Redis) Get(ctx context.Context) (string, bool) {
	value, err := r.client.Get(ctx, cookieKey).Result()
	if err != nil || value == "" {
		return "", false
	}
	return value, true
}

func (r *Redis) Set(ctx context.Context, cookie string) {
	// Last write wins; a failed write only costs one extra bootstrap.
	_ = r.client.Set(ctx, cookieKey, cookie, r.ttl).Err()
}

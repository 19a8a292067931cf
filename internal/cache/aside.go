package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"socialnet/internal/middleware"

	"github.com/redis/go-redis/v9"
)

const UserKeyPrefix = "user:%d"

const UserTTL = 5 * time.Minute

func UserKey(userID uint) string {
	return fmt.Sprintf(UserKeyPrefix, userID)
}

// Aside reads key into dest; on a miss it calls fetch, which must populate
// dest, and stores the result with ttl. Cache failures never fail the call.
func Aside(ctx context.Context, key string, dest any, ttl time.Duration, fetch func() error) error {
	if client == nil {
		return fetch()
	}

	raw, err := client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		if jsonErr := json.Unmarshal(raw, dest); jsonErr == nil {
			middleware.CacheLookups.WithLabelValues("hit").Inc()
			return nil
		}
		middleware.CacheLookups.WithLabelValues("error").Inc()
	case errors.Is(err, redis.Nil):
		middleware.CacheLookups.WithLabelValues("miss").Inc()
	default:
		middleware.CacheLookups.WithLabelValues("error").Inc()
	}

	if err := fetch(); err != nil {
		return err
	}

	if b, err := json.Marshal(dest); err == nil {
		client.Set(ctx, key, b, ttl)
	}
	return nil
}

func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

func InvalidateUser(ctx context.Context, userID uint) {
	Invalidate(ctx, UserKey(userID))
}

package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

func blacklistKey(jti string) string {
	return fmt.Sprintf("blacklist:%s", jti)
}

// Revoker blacklists token IDs until their natural expiry.
// Without Redis revocation is a no-op.
type Revoker struct {
	rdb *redis.Client
}

func NewRevoker(rdb *redis.Client) *Revoker {
	return &Revoker{rdb: rdb}
}

// Revoke blacklists the token described by claims.
func (r *Revoker) Revoke(ctx context.Context, claims *Claims) error {
	if r == nil || r.rdb == nil || claims == nil || claims.ID == "" {
		return nil
	}
	ttl := time.Minute
	if claims.ExpiresAt != nil {
		ttl = time.Until(claims.ExpiresAt.Time)
	}
	if ttl <= 0 {
		return nil
	}
	return r.rdb.Set(ctx, blacklistKey(claims.ID), "1", ttl).Err()
}

// IsRevoked reports whether jti was blacklisted.
func (r *Revoker) IsRevoked(ctx context.Context, jti string) (bool, error) {
	if r == nil || r.rdb == nil || jti == "" {
		return false, nil
	}
	n, err := r.rdb.Exists(ctx, blacklistKey(jti)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// SessionCookie is the cookie name carrying the opaque session ID.
const SessionCookie = "sessionid"

var (
	ErrSessionNotFound     = errors.New("session not found")
	ErrSessionsUnavailable = errors.New("session store unavailable")
)

// SessionStore maps opaque session IDs to user IDs in Redis.
type SessionStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewSessionStore(rdb *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{rdb: rdb, ttl: ttl}
}

func sessionKey(id string) string {
	return fmt.Sprintf("session:%s", id)
}

// TTL is the lifetime of new sessions.
func (s *SessionStore) TTL() time.Duration {
	return s.ttl
}

// Create starts a session for userID and returns its ID.
func (s *SessionStore) Create(ctx context.Context, userID uint) (string, error) {
	if s == nil || s.rdb == nil {
		return "", ErrSessionsUnavailable
	}
	id := uuid.NewString()
	if err := s.rdb.Set(ctx, sessionKey(id), userID, s.ttl).Err(); err != nil {
		return "", err
	}
	return id, nil
}

// Get resolves a session ID to its user.
func (s *SessionStore) Get(ctx context.Context, id string) (uint, error) {
	if s == nil || s.rdb == nil {
		return 0, ErrSessionsUnavailable
	}
	if _, err := uuid.Parse(id); err != nil {
		return 0, ErrSessionNotFound
	}
	raw, err := s.rdb.Get(ctx, sessionKey(id)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, ErrSessionNotFound
	}
	if err != nil {
		return 0, err
	}
	uid, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, ErrSessionNotFound
	}
	return uint(uid), nil
}

// Destroy removes the session. Unknown IDs are ignored.
func (s *SessionStore) Destroy(ctx context.Context, id string) error {
	if s == nil || s.rdb == nil || id == "" {
		return nil
	}
	return s.rdb.Del(ctx, sessionKey(id)).Err()
}

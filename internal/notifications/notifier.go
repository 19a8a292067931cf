// Package notifications delivers live events to connected users through
// Redis pub/sub and WebSocket connections.
package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"runtime/debug"
	"strconv"
	"strings"
	"time"

	"socialnet/internal/middleware"

	"github.com/redis/go-redis/v9"
)

const (
	userChannelPrefix  = "notifications:user:"
	userChannelPattern = userChannelPrefix + "*"
)

// Event types published to users.
const (
	EventFollowCreated = "follow.created"
	EventPostLiked     = "post.liked"
)

// Event is the JSON envelope delivered to WebSocket clients.
type Event struct {
	Type    string    `json:"type"`
	Payload any       `json:"payload"`
	SentAt  time.Time `json:"sent_at"`
}

// UserChannel derives the Redis channel name for a user.
func UserChannel(userID uint) string {
	return userChannelPrefix + strconv.FormatUint(uint64(userID), 10)
}

func userFromChannel(channel string) (uint, bool) {
	raw, ok := strings.CutPrefix(channel, userChannelPrefix)
	if !ok {
		return 0, false
	}
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// Notifier publishes events into per-user Redis channels.
// With a nil client every publish is a no-op.
type Notifier struct {
	rdb *redis.Client
}

func NewNotifier(rdb *redis.Client) *Notifier {
	return &Notifier{rdb: rdb}
}

// Enabled reports whether events are actually delivered.
func (n *Notifier) Enabled() bool {
	return n != nil && n.rdb != nil
}

// Publish sends an event of eventType to userID.
func (n *Notifier) Publish(ctx context.Context, userID uint, eventType string, payload any) error {
	if !n.Enabled() {
		return nil
	}
	body, err := json.Marshal(Event{Type: eventType, Payload: payload, SentAt: time.Now().UTC()})
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	return n.rdb.Publish(ctx, UserChannel(userID), body).Err()
}

// Subscribe listens on every user channel and calls onMessage for each event
// until ctx is cancelled. It returns once the subscription is confirmed.
func (n *Notifier) Subscribe(ctx context.Context, onMessage func(userID uint, payload []byte)) error {
	if !n.Enabled() {
		return nil
	}
	sub := n.rdb.PSubscribe(ctx, userChannelPattern)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("subscribe %s: %w", userChannelPattern, err)
	}
	ch := sub.Channel()

	go func() {
		defer func() { _ = sub.Close() }()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				userID, ok := userFromChannel(msg.Channel)
				if !ok {
					middleware.Logger.Warn("invalid notification channel", slog.String("channel", msg.Channel))
					continue
				}
				dispatch(onMessage, userID, []byte(msg.Payload))
			}
		}
	}()
	return nil
}

func dispatch(onMessage func(uint, []byte), userID uint, payload []byte) {
	defer func() {
		if r := recover(); r != nil {
			middleware.Logger.Error("panic in notification subscriber",
				slog.Any("panic", r), slog.String("stack", string(debug.Stack())))
		}
	}()
	onMessage(userID, payload)
}

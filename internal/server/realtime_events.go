package server

import (
	"context"
	"log/slog"

	"socialnet/internal/middleware"
)

// publish sends a live event to userID. Failures are logged and never fail
// the request that triggered them.
func (s *Server) publish(ctx context.Context, userID uint, eventType string, payload any) {
	if !s.notifier.Enabled() {
		return
	}
	if err := s.notifier.Publish(ctx, userID, eventType, payload); err != nil {
		middleware.Logger.WarnContext(ctx, "failed to publish event",
			slog.String("event", eventType),
			slog.Uint64("recipient", uint64(userID)),
			slog.String("error", err.Error()),
		)
	}
}

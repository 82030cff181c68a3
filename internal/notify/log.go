package notify

import (
	"context"
	"log/slog"
)

// LogSender writes messages to the log instead of delivering them. It is
// used when no broker is configured. Bodies carry reset tokens, so they are
// only written at debug level.
type LogSender struct {
	Channel Channel
	Logger  *slog.Logger
}

func (s *LogSender) Send(ctx context.Context, destination, message string) error {
	if destination == "" {
		return ErrNoDestination
	}
	l := s.Logger
	if l == nil {
		l = slog.Default()
	}
	l.InfoContext(ctx, "notification", "channel", s.Channel, "destination", destination)
	l.DebugContext(ctx, "notification_body", "channel", s.Channel, "body", message)
	return nil
}

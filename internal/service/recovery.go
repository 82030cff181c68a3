package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/Skotchmaster/attendance/internal/logging"
	"github.com/Skotchmaster/attendance/internal/notify"
)

// RecoveryResult lists the channels that accepted the reset link. It is
// empty when the identifier matched nobody.
type RecoveryResult struct {
	Channels []notify.Channel
}

// RecoveryService runs the forgot-password flow: identify the user, issue a
// reset token and send the link over every channel the user can receive.
type RecoveryService struct {
	Lookup    *IdentityLookup
	Resets    *PasswordResetService
	WhatsApp  notify.Sender
	Email     notify.Sender
	PublicURL string
}

func ResetLink(publicURL, token string) string {
	return strings.TrimRight(publicURL, "/") + "/reset-password/" + token
}

// RequestReset never reveals whether the identifier is registered: an
// unknown identifier yields an empty result and no error. ErrDeliveryFailed
// is returned only when the user exists and no channel accepted the link.
func (s *RecoveryService) RequestReset(ctx context.Context, identifier string) (*RecoveryResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.recovery")

	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return nil, invalid("identifier", "email or phone is required")
	}

	u, err := s.Lookup.ByEmailOrPhone(ctx, identifier)
	if err != nil {
		l.Error("recovery_error", "status", 500, "error", err)
		return nil, err
	}
	if u == nil {
		l.Info("recovery_unknown_identity")
		return &RecoveryResult{}, nil
	}

	token, err := s.Resets.CreateToken(ctx, u.ID)
	if err != nil {
		l.Error("recovery_error", "status", 500, "error", err)
		return nil, err
	}
	link := ResetLink(s.PublicURL, token)
	msg := fmt.Sprintf("Hello %s, use this link to choose a new password: %s (valid for 1 hour)", u.Username, link)

	res := &RecoveryResult{}
	send := func(ch notify.Channel, sender notify.Sender, to string) {
		if sender == nil || to == "" {
			return
		}
		if err := sender.Send(ctx, to, msg); err != nil {
			l.Warn("recovery_send_failed", "channel", ch, "user_id", u.ID, "error", err)
			return
		}
		res.Channels = append(res.Channels, ch)
	}
	if u.Phone != nil {
		send(notify.WhatsApp, s.WhatsApp, *u.Phone)
	}
	send(notify.Email, s.Email, u.Email)

	if len(res.Channels) == 0 {
		s.Resets.Metrics.Reset("deliver", "error")
		l.Error("recovery_error", "status", 500, "reason", "no channel accepted the link", "user_id", u.ID)
		return nil, ErrDeliveryFailed
	}
	s.Resets.Metrics.Reset("deliver", "ok")
	l.Info("recovery_sent", "user_id", u.ID, "channels", res.Channels)
	return res, nil
}

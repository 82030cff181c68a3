package service

import (
	"context"
	"errors"
	"time"

	"github.com/Skotchmaster/attendance/internal/hash"
	"github.com/Skotchmaster/attendance/internal/logging"
	"github.com/Skotchmaster/attendance/internal/metrics"
	"github.com/Skotchmaster/attendance/internal/models"
	"github.com/Skotchmaster/attendance/internal/repo"
)

const ResetTokenLifetime = time.Hour

// MinResetPasswordLength applies to passwords chosen on the reset page.
const MinResetPasswordLength = 6

// PasswordResetService issues single-use reset tokens. Only the SHA-256
// digest of a token is stored; the raw value lives in the reset link.
type PasswordResetService struct {
	Tokens ResetTokenStore
	Users  UserStore
	Hasher *hash.Hasher
	// Sessions, when set, is used to log the user out everywhere after a
	// successful reset.
	Sessions *SessionManager
	Clock    Clock
	Metrics  *metrics.Metrics
}

func (s *PasswordResetService) CreateToken(ctx context.Context, userID string) (string, error) {
	token, err := randomString(resetTokenBytes)
	if err != nil {
		return "", err
	}
	id, err := randomString(resetIDBytes)
	if err != nil {
		return "", err
	}

	rec := &models.PasswordResetToken{
		ID:        id,
		UserID:    userID,
		TokenHash: hash.Sha256Hex(token),
		ExpiresAt: s.Clock.now().Add(ResetTokenLifetime),
	}
	if err := s.Tokens.CreateResetToken(ctx, rec); err != nil {
		s.Metrics.Reset("create", "error")
		return "", storage("create reset token", err)
	}
	s.Metrics.Reset("create", "ok")
	return token, nil
}

// GetValid returns the token record, or nil when the token is unknown,
// expired or already used.
func (s *PasswordResetService) GetValid(ctx context.Context, token string) (*models.PasswordResetToken, error) {
	if token == "" {
		return nil, nil
	}
	rec, err := s.Tokens.FindResetTokenByHash(ctx, hash.Sha256Hex(token))
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, nil
		}
		return nil, storage("find reset token", err)
	}
	if !rec.Valid(s.Clock.now()) {
		return nil, nil
	}
	return rec, nil
}

// UserForToken resolves the owner of a still-valid token. It returns
// ErrInvalidToken for every kind of invalid token.
func (s *PasswordResetService) UserForToken(ctx context.Context, token string) (*models.User, error) {
	rec, err := s.GetValid(ctx, token)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, ErrInvalidToken
	}
	u, err := s.Users.FindUserByID(ctx, rec.UserID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, storage("find user", err)
	}
	return u, nil
}

// ConsumeAndReset burns the token and stores the new password. A token
// that was consumed concurrently yields ErrInvalidToken and the password
// is left untouched.
func (s *PasswordResetService) ConsumeAndReset(ctx context.Context, token, newPassword string) error {
	l := logging.FromContext(ctx).With("svc", "auth.reset")

	if len(newPassword) < MinResetPasswordLength {
		return invalid("password", "must be at least 6 characters")
	}

	rec, err := s.GetValid(ctx, token)
	if err != nil {
		s.Metrics.Reset("consume", "error")
		l.Error("reset_error", "status", 500, "error", err)
		return err
	}
	if rec == nil {
		s.Metrics.Reset("consume", "invalid")
		l.Warn("reset_failed", "status", 400, "reason", "invalid token")
		return ErrInvalidToken
	}

	pwHash, err := s.Hasher.Hash(newPassword)
	if err != nil {
		s.Metrics.Reset("consume", "error")
		l.Error("reset_error", "status", 500, "reason", "cannot hash the password", "error", err)
		return err
	}

	if err := s.Tokens.ConsumeResetToken(ctx, rec.ID, rec.UserID, pwHash, s.Clock.now()); err != nil {
		if errors.Is(err, repo.ErrAlreadyConsumed) || errors.Is(err, repo.ErrNotFound) {
			s.Metrics.Reset("consume", "invalid")
			l.Warn("reset_failed", "status", 400, "reason", "token already consumed")
			return ErrInvalidToken
		}
		s.Metrics.Reset("consume", "error")
		l.Error("reset_error", "status", 500, "error", err)
		return storage("consume reset token", err)
	}

	if s.Sessions != nil {
		if err := s.Sessions.InvalidateUserSessions(ctx, rec.UserID); err != nil {
			l.Error("reset_logout_failed", "user_id", rec.UserID, "error", err)
		}
	}

	s.Metrics.Reset("consume", "ok")
	l.Info("password_reset", "user_id", rec.UserID)
	return nil
}

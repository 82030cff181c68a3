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

const (
	SessionLifetime = 30 * 24 * time.Hour
	// SessionRenewWindow is the trailing part of a session's lifetime in
	// which a successful validation pushes expiry out to a full lifetime.
	SessionRenewWindow = 15 * 24 * time.Hour
)

// SessionManager owns bearer sessions. Expiry is evaluated lazily on
// validation; there is no background sweep.
type SessionManager struct {
	Sessions SessionStore
	Clock    Clock
	Metrics  *metrics.Metrics
}

// SessionID is the storage key for a session token.
func SessionID(token string) string {
	return hash.Sha256Hex(token)
}

func (m *SessionManager) IssueToken() (string, error) {
	return randomString(sessionTokenBytes)
}

func (m *SessionManager) CreateSession(ctx context.Context, token, userID string) (*models.Session, error) {
	s := &models.Session{
		ID:        SessionID(token),
		UserID:    userID,
		ExpiresAt: m.Clock.now().Add(SessionLifetime),
	}
	if err := m.Sessions.CreateSession(ctx, s); err != nil {
		return nil, storage("create session", err)
	}
	return s, nil
}

// Validate returns the session and its owner, or (nil, nil, nil) when the
// token does not name a live session. Expired sessions are deleted here.
// An error means storage failed.
func (m *SessionManager) Validate(ctx context.Context, token string) (*models.Session, *models.User, error) {
	l := logging.FromContext(ctx).With("svc", "auth.session")

	if token == "" {
		m.Metrics.Session("missing")
		return nil, nil, nil
	}

	s, err := m.Sessions.FindSessionWithUser(ctx, SessionID(token))
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			m.Metrics.Session("missing")
			return nil, nil, nil
		}
		m.Metrics.Session("error")
		l.Error("session_lookup_failed", "error", err)
		return nil, nil, storage("find session", err)
	}

	now := m.Clock.now()

	if !now.Before(s.ExpiresAt) {
		if err := m.Sessions.DeleteSession(ctx, s.ID); err != nil {
			m.Metrics.Session("error")
			l.Error("session_expire_failed", "error", err)
			return nil, nil, storage("delete expired session", err)
		}
		m.Metrics.Session("expired")
		l.Debug("session_expired", "user_id", s.UserID)
		return nil, nil, nil
	}

	user := s.User
	s.User = models.User{}

	if !now.Before(s.ExpiresAt.Add(-SessionRenewWindow)) {
		expiresAt := now.Add(SessionLifetime)
		if err := m.Sessions.UpdateSessionExpiry(ctx, s.ID, expiresAt); err != nil {
			m.Metrics.Session("error")
			l.Error("session_renew_failed", "error", err)
			return nil, nil, storage("renew session", err)
		}
		s.ExpiresAt = expiresAt
		m.Metrics.Session("renewed")
		return s, &user, nil
	}

	m.Metrics.Session("valid")
	return s, &user, nil
}

// Invalidate deletes the session. Missing sessions are not an error.
func (m *SessionManager) Invalidate(ctx context.Context, sessionID string) error {
	if err := m.Sessions.DeleteSession(ctx, sessionID); err != nil {
		return storage("delete session", err)
	}
	return nil
}

func (m *SessionManager) InvalidateUserSessions(ctx context.Context, userID string) error {
	if _, err := m.Sessions.DeleteUserSessions(ctx, userID); err != nil {
		return storage("delete user sessions", err)
	}
	return nil
}

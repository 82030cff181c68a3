package service

import (
	"context"
	"time"

	"github.com/Skotchmaster/attendance/internal/models"
)

// The interfaces below are the slices of storage each component needs.
// repo.GormRepo implements all of them.

type UserStore interface {
	CreateUser(ctx context.Context, u *models.User) error
	FindUserByID(ctx context.Context, id string) (*models.User, error)
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	FindUserByPhone(ctx context.Context, phone string) (*models.User, error)
	UpdatePasswordHash(ctx context.Context, userID, passwordHash string) error
}

type SessionStore interface {
	CreateSession(ctx context.Context, s *models.Session) error
	FindSessionWithUser(ctx context.Context, id string) (*models.Session, error)
	UpdateSessionExpiry(ctx context.Context, id string, expiresAt time.Time) error
	DeleteSession(ctx context.Context, id string) error
	DeleteUserSessions(ctx context.Context, userID string) (int64, error)
}

type ResetTokenStore interface {
	CreateResetToken(ctx context.Context, t *models.PasswordResetToken) error
	FindResetTokenByHash(ctx context.Context, tokenHash string) (*models.PasswordResetToken, error)
	ConsumeResetToken(ctx context.Context, tokenID, userID, passwordHash string, usedAt time.Time) error
}

type APIKeyStore interface {
	CreateAPIKey(ctx context.Context, k *models.APIKey) error
	FindAPIKeyByHash(ctx context.Context, keyHash string) (*models.APIKey, error)
	FindAPIKeyByID(ctx context.Context, id string) (*models.APIKey, error)
	ListAPIKeys(ctx context.Context) ([]models.APIKey, error)
	ToggleAPIKey(ctx context.Context, id string) (*models.APIKey, error)
	TouchAPIKey(ctx context.Context, id string, at time.Time) error
	DeleteAPIKey(ctx context.Context, id string) (bool, error)
}

// Clock returns the current time. Services default to time.Now.
type Clock func() time.Time

func (c Clock) now() time.Time {
	if c == nil {
		return time.Now().UTC()
	}
	return c().UTC()
}

package service

import (
	"context"
	"errors"
	"strings"

	"github.com/Skotchmaster/attendance/internal/models"
	"github.com/Skotchmaster/attendance/internal/repo"
)

// IdentityLookup resolves users by login identifier. Lookups return a nil
// user, not an error, when nobody matches.
type IdentityLookup struct {
	Users UserStore
}

func NormalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// NormalizePhone keeps ASCII digits only.
func NormalizePhone(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func (l *IdentityLookup) ByEmail(ctx context.Context, email string) (*models.User, error) {
	email = NormalizeEmail(email)
	if email == "" {
		return nil, nil
	}
	return l.found(l.Users.FindUserByEmail(ctx, email))
}

func (l *IdentityLookup) ByPhone(ctx context.Context, phone string) (*models.User, error) {
	phone = NormalizePhone(phone)
	if phone == "" {
		return nil, nil
	}
	return l.found(l.Users.FindUserByPhone(ctx, phone))
}

// ByEmailOrPhone treats anything containing "@" as an email. A phone-like
// string with an "@" in it goes down the email path.
func (l *IdentityLookup) ByEmailOrPhone(ctx context.Context, login string) (*models.User, error) {
	if strings.Contains(login, "@") {
		return l.ByEmail(ctx, login)
	}
	return l.ByPhone(ctx, login)
}

func (l *IdentityLookup) found(u *models.User, err error) (*models.User, error) {
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, nil
		}
		return nil, storage("find user", err)
	}
	return u, nil
}

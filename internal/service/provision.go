package service

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/Skotchmaster/attendance/internal/logging"
	"github.com/Skotchmaster/attendance/internal/models"
	"github.com/Skotchmaster/attendance/internal/repo"
)

// MinProvisionPasswordLength applies to accounts and passwords set by an
// admin or an integration rather than by the user.
const MinProvisionPasswordLength = 6

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ProvisionInput describes an account created on someone's behalf. Phone is
// optional; Role defaults to models.RoleUser.
type ProvisionInput struct {
	Email       string
	Phone       string
	Username    string
	CompanyName string
	Password    string
	Role        models.Role
}

func (in *ProvisionInput) normalize() {
	in.Email = NormalizeEmail(in.Email)
	in.Phone = NormalizePhone(in.Phone)
	in.Username = strings.TrimSpace(in.Username)
	in.CompanyName = strings.TrimSpace(in.CompanyName)
	if in.Role == "" {
		in.Role = models.RoleUser
	}
}

func (in *ProvisionInput) validate() error {
	if !emailPattern.MatchString(in.Email) || len(in.Email) > maxEmailLength {
		return invalid("email", "is not a valid address")
	}
	if n := len(in.Phone); n != 0 && (n < 10 || n > 13) {
		return invalid("phone", "must have between 10 and 13 digits")
	}
	if utf8.RuneCountInString(in.Username) < 2 {
		return invalid("username", "must be at least 2 characters")
	}
	if in.CompanyName == "" {
		return invalid("company_name", "is required")
	}
	if len(in.Password) < MinProvisionPasswordLength {
		return invalid("password", "must be at least 6 characters")
	}
	if in.Role != models.RoleUser && in.Role != models.RoleAdmin {
		return invalid("role", "must be user or admin")
	}
	return nil
}

// Provision creates an account without starting a session. A taken email or
// phone yields ErrConflict.
func (s *AuthService) Provision(ctx context.Context, in ProvisionInput) (*models.User, error) {
	l := logging.FromContext(ctx).With("svc", "auth.provision")

	in.normalize()
	if err := in.validate(); err != nil {
		l.Warn("provision_failed", "status", 400, "reason", err.Error())
		return nil, err
	}

	if err := s.checkAvailable(ctx, in.Email, in.Phone); err != nil {
		if errors.Is(err, ErrConflict) {
			l.Warn("provision_failed", "status", 409, "reason", err.Error())
		}
		return nil, err
	}

	pwHash, err := s.Hasher.Hash(in.Password)
	if err != nil {
		l.Error("provision_error", "status", 500, "reason", "cannot hash the password", "error", err)
		return nil, err
	}
	id, err := NewUserID()
	if err != nil {
		return nil, err
	}

	u := &models.User{
		ID:           id,
		Email:        in.Email,
		Username:     in.Username,
		CompanyName:  in.CompanyName,
		PasswordHash: pwHash,
		Role:         in.Role,
	}
	if in.Phone != "" {
		phone := in.Phone
		u.Phone = &phone
	}
	if err := s.Users.CreateUser(ctx, u); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			l.Warn("provision_failed", "status", 409, "reason", "user already exist")
			return nil, ErrConflict
		}
		l.Error("provision_error", "status", 500, "error", err)
		return nil, storage("create user", err)
	}

	l.Info("user_provisioned", "user_id", u.ID, "role", u.Role)
	return u, nil
}

// UpdatePassword is the admin-side password change: a shorter minimum than
// self-service, plus a confirmation. All of the user's sessions end.
func (s *AuthService) UpdatePassword(ctx context.Context, userID, password, confirm string) error {
	if len(password) < MinProvisionPasswordLength {
		return invalid("password", "must be at least 6 characters")
	}
	if password != confirm {
		return invalid("confirm_password", "does not match")
	}
	if err := s.storePassword(ctx, userID, password); err != nil {
		return err
	}
	logging.FromContext(ctx).Info("password_updated", "svc", "auth.admin", "user_id", userID)
	return nil
}

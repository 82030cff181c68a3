package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/Skotchmaster/attendance/internal/hash"
	"github.com/Skotchmaster/attendance/internal/logging"
	"github.com/Skotchmaster/attendance/internal/metrics"
	"github.com/Skotchmaster/attendance/internal/models"
	"github.com/Skotchmaster/attendance/internal/repo"
)

const (
	MinPasswordLength = 8
	maxEmailLength    = 255
)

// AuthService covers the account operations built on the core components:
// registration, login with session issuance, logout and password changes.
type AuthService struct {
	Users    UserStore
	Lookup   *IdentityLookup
	Sessions *SessionManager
	Hasher   *hash.Hasher
	Metrics  *metrics.Metrics
}

type RegisterInput struct {
	Username        string
	CompanyName     string
	Phone           string
	Email           string
	Password        string
	ConfirmPassword string
}

// LoginResult carries the raw session token for the cookie.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	User      *models.User
}

func (in *RegisterInput) normalize() {
	in.Username = strings.TrimSpace(in.Username)
	in.CompanyName = strings.TrimSpace(in.CompanyName)
	in.Phone = NormalizePhone(in.Phone)
	in.Email = NormalizeEmail(in.Email)
}

func (in *RegisterInput) validate() error {
	if n := utf8.RuneCountInString(in.Username); n < 2 || n > 50 {
		return invalid("username", "must be between 2 and 50 characters")
	}
	if n := utf8.RuneCountInString(in.CompanyName); n < 2 || n > 100 {
		return invalid("company_name", "must be between 2 and 100 characters")
	}
	if n := len(in.Phone); n < 10 || n > 11 {
		return invalid("phone", "must have 10 or 11 digits")
	}
	if !strings.Contains(in.Email, "@") || len(in.Email) > maxEmailLength {
		return invalid("email", "is not a valid address")
	}
	if len(in.Password) < MinPasswordLength {
		return invalid("password", "must be at least 8 characters")
	}
	if in.Password != in.ConfirmPassword {
		return invalid("confirm_password", "does not match")
	}
	return nil
}

// Register creates a user with the "user" role and logs them in.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*LoginResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.register")

	in.normalize()
	if err := in.validate(); err != nil {
		l.Warn("register_failed", "status", 400, "reason", err.Error())
		return nil, err
	}

	if err := s.checkAvailable(ctx, in.Email, in.Phone); err != nil {
		if errors.Is(err, ErrConflict) {
			l.Warn("register_failed", "status", 409, "reason", err.Error())
		}
		return nil, err
	}

	pwHash, err := s.Hasher.Hash(in.Password)
	if err != nil {
		l.Error("register_error", "status", 500, "reason", "cannot hash the password", "error", err)
		return nil, err
	}

	id, err := NewUserID()
	if err != nil {
		return nil, err
	}
	phone := in.Phone
	u := &models.User{
		ID:           id,
		Email:        in.Email,
		Phone:        &phone,
		Username:     in.Username,
		CompanyName:  in.CompanyName,
		PasswordHash: pwHash,
		Role:         models.RoleUser,
	}
	if err := s.Users.CreateUser(ctx, u); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			l.Warn("register_failed", "status", 409, "reason", "user already exist")
			return nil, ErrConflict
		}
		l.Error("register_error", "status", 500, "error", err)
		return nil, storage("create user", err)
	}

	l.Info("user_registered", "user_id", u.ID)
	return s.startSession(ctx, u)
}

func (s *AuthService) checkAvailable(ctx context.Context, email, phone string) error {
	u, err := s.Lookup.ByEmail(ctx, email)
	if err != nil {
		return err
	}
	if u != nil {
		return fmt.Errorf("email: %w", ErrConflict)
	}
	u, err = s.Lookup.ByPhone(ctx, phone)
	if err != nil {
		return err
	}
	if u != nil {
		return fmt.Errorf("phone: %w", ErrConflict)
	}
	return nil
}

// Login accepts an email or a phone number. Unknown users and wrong
// passwords both yield ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, login, password string) (*LoginResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.login")

	u, err := s.Lookup.ByEmailOrPhone(ctx, login)
	if err != nil {
		s.Metrics.Login("error")
		l.Error("login_error", "status", 500, "error", err)
		return nil, err
	}
	if u == nil || !s.Hasher.Verify(u.PasswordHash, password) {
		s.Metrics.Login("invalid")
		l.Warn("login_failed", "status", 401, "reason", "invalid login or password")
		return nil, ErrInvalidCredentials
	}

	if s.Hasher.NeedsRehash(u.PasswordHash) {
		s.upgradeHash(ctx, u, password)
	}

	res, err := s.startSession(ctx, u)
	if err != nil {
		s.Metrics.Login("error")
		l.Error("login_error", "status", 500, "error", err)
		return nil, err
	}
	s.Metrics.Login("ok")
	l.Info("login", "user_id", u.ID)
	return res, nil
}

// upgradeHash re-hashes a verified password with the current parameters.
// Failures are logged and the login proceeds.
func (s *AuthService) upgradeHash(ctx context.Context, u *models.User, password string) {
	l := logging.FromContext(ctx).With("svc", "auth.login", "user_id", u.ID)

	pwHash, err := s.Hasher.Hash(password)
	if err != nil {
		l.Warn("rehash_failed", "error", err)
		return
	}
	if err := s.Users.UpdatePasswordHash(ctx, u.ID, pwHash); err != nil {
		l.Warn("rehash_failed", "error", err)
		return
	}
	u.PasswordHash = pwHash
	l.Info("password_rehashed")
}

func (s *AuthService) startSession(ctx context.Context, u *models.User) (*LoginResult, error) {
	token, err := s.Sessions.IssueToken()
	if err != nil {
		return nil, err
	}
	sess, err := s.Sessions.CreateSession(ctx, token, u.ID)
	if err != nil {
		return nil, err
	}
	return &LoginResult{Token: token, ExpiresAt: sess.ExpiresAt, User: u}, nil
}

func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	return s.Sessions.Invalidate(ctx, sessionID)
}

// SetPassword replaces the user's password and ends all their sessions.
func (s *AuthService) SetPassword(ctx context.Context, userID, password string) error {
	if len(password) < MinPasswordLength {
		return invalid("password", "must be at least 8 characters")
	}
	return s.storePassword(ctx, userID, password)
}

func (s *AuthService) storePassword(ctx context.Context, userID, password string) error {
	pwHash, err := s.Hasher.Hash(password)
	if err != nil {
		return err
	}
	if err := s.Users.UpdatePasswordHash(ctx, userID, pwHash); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrNotFound
		}
		return storage("update password", err)
	}
	return s.Sessions.InvalidateUserSessions(ctx, userID)
}

// EnsureAdmin creates an admin account unless the email is already
// registered. The bool reports whether a user was created.
func (s *AuthService) EnsureAdmin(ctx context.Context, email, username, password string) (*models.User, bool, error) {
	email = NormalizeEmail(email)
	if !strings.Contains(email, "@") {
		return nil, false, invalid("email", "is not a valid address")
	}
	if len(password) < MinPasswordLength {
		return nil, false, invalid("password", "must be at least 8 characters")
	}

	existing, err := s.Lookup.ByEmail(ctx, email)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		return existing, false, nil
	}

	pwHash, err := s.Hasher.Hash(password)
	if err != nil {
		return nil, false, err
	}
	id, err := NewUserID()
	if err != nil {
		return nil, false, err
	}
	u := &models.User{
		ID:           id,
		Email:        email,
		Username:     username,
		CompanyName:  "admin",
		PasswordHash: pwHash,
		Role:         models.RoleAdmin,
	}
	if err := s.Users.CreateUser(ctx, u); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return nil, false, ErrConflict
		}
		return nil, false, storage("create user", err)
	}
	return u, true, nil
}

package service

import (
	"context"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Skotchmaster/attendance/internal/hash"
	"github.com/Skotchmaster/attendance/internal/models"
	"github.com/Skotchmaster/attendance/internal/repo"
)

const testIterations = 1000

var testEpoch = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func InitTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(models.All()...))
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time { return c.t }

func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

type testEnv struct {
	repo     *repo.GormRepo
	clock    *fakeClock
	hasher   *hash.Hasher
	lookup   *IdentityLookup
	sessions *SessionManager
	resets   *PasswordResetService
	keys     *APIKeyService
	auth     *AuthService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	r := repo.New(InitTestDB(t))
	clk := &fakeClock{t: testEpoch}
	h := hash.New(testIterations)
	lookup := &IdentityLookup{Users: r}
	sessions := &SessionManager{Sessions: r, Clock: clk.Now}

	e := &testEnv{
		repo:     r,
		clock:    clk,
		hasher:   h,
		lookup:   lookup,
		sessions: sessions,
		resets:   &PasswordResetService{Tokens: r, Users: r, Hasher: h, Sessions: sessions, Clock: clk.Now},
		keys:     &APIKeyService{Keys: r, Clock: clk.Now},
		auth:     &AuthService{Users: r, Lookup: lookup, Sessions: sessions, Hasher: h},
	}
	t.Cleanup(e.keys.Wait)
	return e
}

func (e *testEnv) seedUser(t *testing.T, id, email, phone, password string) *models.User {
	t.Helper()

	pwHash, err := e.hasher.Hash(password)
	require.NoError(t, err)

	u := &models.User{
		ID:           id,
		Email:        email,
		Username:     "user " + id,
		CompanyName:  "acme",
		PasswordHash: pwHash,
		Role:         models.RoleUser,
	}
	if phone != "" {
		u.Phone = &phone
	}
	require.NoError(t, e.repo.CreateUser(context.Background(), u))
	return u
}

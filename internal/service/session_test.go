package service

import (
	"context"
	"encoding/base64"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/attendance/internal/hash"
)

func TestSessionManager_IssueToken(t *testing.T) {
	m := &SessionManager{}

	a, err := m.IssueToken()
	require.NoError(t, err)
	b, err := m.IssueToken()
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
	assert.Len(t, a, 24)
	raw, err := base64.RawURLEncoding.DecodeString(a)
	require.NoError(t, err)
	assert.Len(t, raw, 18)
}

func TestSessionManager_CreateAndValidate(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	e.seedUser(t, "u1", "a@x.com", "", "Secret123")

	token, err := e.sessions.IssueToken()
	require.NoError(t, err)
	s, err := e.sessions.CreateSession(ctx, token, "u1")
	require.NoError(t, err)

	assert.Equal(t, hash.Sha256Hex(token), s.ID)
	assert.NotEqual(t, token, s.ID)
	assert.True(t, testEpoch.Add(SessionLifetime).Equal(s.ExpiresAt))

	got, user, err := e.sessions.Validate(ctx, token)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.NotNil(t, user)
	assert.Equal(t, "u1", user.ID)
	assert.Equal(t, "a@x.com", user.Email)
	assert.True(t, s.ExpiresAt.Equal(got.ExpiresAt), "fresh session must not be renewed")
}

func TestSessionManager_Validate_Unknown(t *testing.T) {
	e := newTestEnv(t)

	for _, token := range []string{"", "not-a-session"} {
		s, u, err := e.sessions.Validate(context.Background(), token)
		require.NoError(t, err)
		assert.Nil(t, s)
		assert.Nil(t, u)
	}
}

func TestSessionManager_Renewal(t *testing.T) {
	tests := []struct {
		name    string
		elapsed time.Duration
		renewed bool
	}{
		{"twenty days left", 10 * 24 * time.Hour, false},
		{"just before window", SessionLifetime - SessionRenewWindow - time.Second, false},
		{"window boundary", SessionLifetime - SessionRenewWindow, true},
		{"ten days left", 20 * 24 * time.Hour, true},
		{"one second left", SessionLifetime - time.Second, true},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEnv(t)
			ctx := context.Background()
			e.seedUser(t, "u1", "a@x.com", "", "Secret123")

			token, err := e.sessions.IssueToken()
			require.NoError(t, err)
			created, err := e.sessions.CreateSession(ctx, token, "u1")
			require.NoError(t, err)

			e.clock.Advance(tt.elapsed)
			s, u, err := e.sessions.Validate(ctx, token)
			require.NoError(t, err)
			require.NotNil(t, s)
			require.NotNil(t, u)

			want := created.ExpiresAt
			if tt.renewed {
				want = e.clock.Now().Add(SessionLifetime)
			}
			assert.True(t, want.Equal(s.ExpiresAt), "expires_at = %s, want %s", s.ExpiresAt, want)

			stored, err := e.repo.FindSessionWithUser(ctx, s.ID)
			require.NoError(t, err)
			assert.True(t, want.Equal(stored.ExpiresAt), "renewal must be persisted")
		})
	}
}

func TestSessionManager_ExpiredIsDeleted(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	e.seedUser(t, "u1", "a@x.com", "", "Secret123")

	token, err := e.sessions.IssueToken()
	require.NoError(t, err)
	s, err := e.sessions.CreateSession(ctx, token, "u1")
	require.NoError(t, err)

	e.clock.Advance(SessionLifetime)
	got, u, err := e.sessions.Validate(ctx, token)
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.Nil(t, u)

	_, err = e.repo.FindSessionWithUser(ctx, s.ID)
	require.Error(t, err, "expired session row must be gone")

	// Even with the clock rewound the token stays dead.
	e.clock.t = testEpoch
	got, u, err = e.sessions.Validate(ctx, token)
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.Nil(t, u)
}

func TestSessionManager_Invalidate(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	e.seedUser(t, "u1", "a@x.com", "", "Secret123")

	t1, _ := e.sessions.IssueToken()
	t2, _ := e.sessions.IssueToken()
	s1, err := e.sessions.CreateSession(ctx, t1, "u1")
	require.NoError(t, err)
	_, err = e.sessions.CreateSession(ctx, t2, "u1")
	require.NoError(t, err)

	require.NoError(t, e.sessions.Invalidate(ctx, s1.ID))
	require.NoError(t, e.sessions.Invalidate(ctx, s1.ID), "invalidate is idempotent")

	s, _, err := e.sessions.Validate(ctx, t1)
	require.NoError(t, err)
	assert.Nil(t, s)

	s, _, err = e.sessions.Validate(ctx, t2)
	require.NoError(t, err)
	assert.NotNil(t, s)

	require.NoError(t, e.sessions.InvalidateUserSessions(ctx, "u1"))
	s, _, err = e.sessions.Validate(ctx, t2)
	require.NoError(t, err)
	assert.Nil(t, s)
}

package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/attendance/internal/models"
)

type stubSessions struct {
	sess *models.Session
	user *models.User
	err  error
	got  string
}

func (s *stubSessions) Validate(_ context.Context, token string) (*models.Session, *models.User, error) {
	s.got = token
	return s.sess, s.user, s.err
}

type stubKeys struct {
	key *models.APIKey
	err error
	got string
}

func (s *stubKeys) Validate(_ context.Context, key string) (*models.APIKey, error) {
	s.got = key
	return s.key, s.err
}

func ok(c echo.Context) error { return c.NoContent(http.StatusNoContent) }

func findCookie(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestSessions_Valid(t *testing.T) {
	exp := time.Now().Add(30 * 24 * time.Hour).UTC().Truncate(time.Second)
	v := &stubSessions{
		sess: &models.Session{ID: "sid", UserID: "u1", ExpiresAt: exp},
		user: &models.User{ID: "u1", Role: models.RoleUser},
	}

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "raw-token"})
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var seen *models.User
	h := Sessions(v, true)(func(c echo.Context) error {
		seen = User(c)
		assert.Equal(t, "sid", Session(c).ID)
		return ok(c)
	})
	require.NoError(t, h(c))

	assert.Equal(t, "raw-token", v.got)
	require.NotNil(t, seen)
	assert.Equal(t, "u1", seen.ID)

	ck := findCookie(rec, SessionCookieName)
	require.NotNil(t, ck)
	assert.Equal(t, "raw-token", ck.Value)
	assert.True(t, ck.HttpOnly)
	assert.True(t, ck.Secure)
	assert.Equal(t, http.SameSiteLaxMode, ck.SameSite)
	assert.Equal(t, "/", ck.Path)
	assert.True(t, exp.Equal(ck.Expires))
}

func TestSessions_InvalidClearsCookie(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "stale"})
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	h := Sessions(&stubSessions{}, false)(func(c echo.Context) error {
		assert.Nil(t, User(c))
		return ok(c)
	})
	require.NoError(t, h(c))

	ck := findCookie(rec, SessionCookieName)
	require.NotNil(t, ck)
	assert.Equal(t, "", ck.Value)
	assert.Equal(t, -1, ck.MaxAge)
}

func TestSessions_NoCookie(t *testing.T) {
	v := &stubSessions{}
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

	require.NoError(t, Sessions(v, false)(ok)(c))
	assert.Equal(t, "", v.got, "validator must not be called without a cookie")
	assert.Nil(t, findCookie(rec, SessionCookieName))
}

func TestSessions_StorageError(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "tok"})
	c := e.NewContext(req, httptest.NewRecorder())

	err := Sessions(&stubSessions{err: errors.New("db down")}, false)(ok)(c)
	var he *echo.HTTPError
	require.ErrorAs(t, err, &he)
	assert.Equal(t, http.StatusInternalServerError, he.Code)
}

func TestRequireLoginAndAdminOnly(t *testing.T) {
	tests := []struct {
		name      string
		user      *models.User
		wantLogin int
		wantAdmin int
	}{
		{"anonymous", nil, http.StatusUnauthorized, http.StatusUnauthorized},
		{"user", &models.User{ID: "u", Role: models.RoleUser}, http.StatusNoContent, http.StatusForbidden},
		{"admin", &models.User{ID: "a", Role: models.RoleAdmin}, http.StatusNoContent, http.StatusNoContent},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			for _, mw := range []struct {
				h    echo.HandlerFunc
				want int
			}{
				{RequireLogin(ok), tt.wantLogin},
				{AdminOnly(ok), tt.wantAdmin},
			} {
				e := echo.New()
				rec := httptest.NewRecorder()
				c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
				if tt.user != nil {
					c.Set(userKey, tt.user)
				}

				err := mw.h(c)
				if mw.want == http.StatusNoContent {
					require.NoError(t, err)
					assert.Equal(t, http.StatusNoContent, rec.Code)
					continue
				}
				var he *echo.HTTPError
				require.ErrorAs(t, err, &he)
				assert.Equal(t, mw.want, he.Code)
			}
		})
	}
}

func TestBearer(t *testing.T) {
	active := &models.APIKey{ID: "k1", IsActive: true}

	tests := []struct {
		name    string
		header  string
		key     *models.APIKey
		err     error
		want    int
		wantKey string
	}{
		{"missing header", "", active, nil, http.StatusUnauthorized, ""},
		{"wrong scheme", "Basic pa_abc", active, nil, http.StatusUnauthorized, ""},
		{"empty token", "Bearer   ", active, nil, http.StatusUnauthorized, ""},
		{"unknown key", "Bearer pa_abc", nil, nil, http.StatusUnauthorized, "pa_abc"},
		{"storage failure", "Bearer pa_abc", nil, errors.New("db down"), http.StatusInternalServerError, "pa_abc"},
		{"valid", "Bearer pa_abc", active, nil, http.StatusNoContent, "pa_abc"},
		{"lowercase scheme", "bearer pa_abc", active, nil, http.StatusNoContent, "pa_abc"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			v := &stubKeys{key: tt.key, err: tt.err}

			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, "/api/users/x", nil)
			if tt.header != "" {
				req.Header.Set(echo.HeaderAuthorization, tt.header)
			}
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			err := Bearer(v)(func(c echo.Context) error {
				assert.Equal(t, "k1", APIKey(c).ID)
				return ok(c)
			})(c)

			assert.Equal(t, tt.wantKey, v.got)
			if tt.want == http.StatusNoContent {
				require.NoError(t, err)
				assert.Equal(t, tt.want, rec.Code)
				return
			}
			var he *echo.HTTPError
			require.ErrorAs(t, err, &he)
			assert.Equal(t, tt.want, he.Code)
		})
	}
}

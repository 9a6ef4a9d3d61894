package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"firebase.google.com/go/v4/auth"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	haulzyauth "github.com/haulzy/haulzy-backend/internal/auth"
	"github.com/haulzy/haulzy-backend/internal/functions"
	"github.com/haulzy/haulzy-backend/internal/store"
)

type fakeVerifier map[string]string

func (f fakeVerifier) VerifyIDToken(_ context.Context, token string) (*auth.Token, error) {
	uid, ok := f[token]
	if !ok {
		return nil, errors.New("bad token")
	}
	return &auth.Token{UID: uid, Claims: map[string]interface{}{"email": uid + "@haulzy.test"}}, nil
}

type failingStore struct{ store.Store }

func (failingStore) Get(context.Context, string) (store.Document, error) {
	return store.Document{}, errors.New("unavailable")
}

func setupRouter(profiles store.Store) *gin.Engine {
	gin.SetMode(gin.TestMode)
	a := NewAuthenticator(fakeVerifier{"admin-token": "admin1", "user-token": "user1", "ghost-token": "ghost"}, profiles, nil)

	r := gin.New()
	echo := func(c *gin.Context) {
		s := haulzyauth.SessionFrom(c)
		if s == nil {
			c.JSON(http.StatusOK, gin.H{"anonymous": true})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"uid":          s.UID,
			"admin":        s.Admin,
			"caller_token": functions.CallerToken(c.Request.Context()),
		})
	}
	r.GET("/optional", a.OptionalAuth(), echo)
	r.GET("/auth", a.RequireAuth(), echo)
	r.GET("/admin", a.RequireAdmin(), echo)
	return r
}

func seededProfiles() *store.MemoryStore {
	s := store.NewMemoryStore()
	s.Seed("users/admin1", map[string]any{"email": "boss@haulzy.test", "role": "admin"})
	s.Seed("users/user1", map[string]any{"email": "cust@haulzy.test", "role": "user", "isAdmin": false})
	return s
}

func do(r http.Handler, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthenticator(t *testing.T) {
	r := setupRouter(seededProfiles())

	cases := []struct {
		name   string
		path   string
		token  string
		status int
		body   string
	}{
		{"optional without token", "/optional", "", http.StatusOK, `"anonymous":true`},
		{"optional with bad token", "/optional", "forged", http.StatusUnauthorized, "invalid token"},
		{"optional with user", "/optional", "user-token", http.StatusOK, `"uid":"user1"`},
		{"auth without token", "/auth", "", http.StatusUnauthorized, "missing authorization token"},
		{"auth with user", "/auth", "user-token", http.StatusOK, `"caller_token":"user-token"`},
		{"auth with unknown profile", "/auth", "ghost-token", http.StatusOK, `"admin":false`},
		{"admin without token", "/admin", "", http.StatusUnauthorized, "missing authorization token"},
		{"admin with user", "/admin", "user-token", http.StatusForbidden, "admin access required"},
		{"admin with admin", "/admin", "admin-token", http.StatusOK, `"admin":true`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := do(r, tc.path, tc.token)
			assert.Equal(t, tc.status, w.Code)
			assert.Contains(t, w.Body.String(), tc.body)
		})
	}
}

func TestAuthenticator_ProfileLoadFailure(t *testing.T) {
	r := setupRouter(failingStore{})
	w := do(r, "/auth", "user-token")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestIsAdminProfile(t *testing.T) {
	assert.True(t, haulzyauth.IsAdminProfile(map[string]any{"role": "Admin"}))
	assert.True(t, haulzyauth.IsAdminProfile(map[string]any{"role": "user", "isAdmin": true}))
	assert.False(t, haulzyauth.IsAdminProfile(map[string]any{"role": "user"}))
	assert.False(t, haulzyauth.IsAdminProfile(nil))
}

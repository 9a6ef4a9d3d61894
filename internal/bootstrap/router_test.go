package bootstrap

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/haulzy/haulzy-backend/config"
	"github.com/haulzy/haulzy-backend/internal/auth"
	"github.com/haulzy/haulzy-backend/internal/functions/functionstest"
	"github.com/haulzy/haulzy-backend/internal/store"
)

func testRouter(t *testing.T, withRedis bool) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mem := store.NewMemoryStore()
	mem.Seed(store.Doc(store.Users, "admin1"), map[string]any{"email": "boss@haulzy.com", "isAdmin": true})
	mem.Seed(store.Doc(store.Users, "c1"), map[string]any{"email": "cust@example.com", "role": "user"})

	b := &Backends{
		Store:     mem,
		Accounts:  auth.NewMemoryAccounts(),
		Verifier:  auth.DevVerifier{},
		Functions: functionstest.New(),
	}
	if withRedis {
		mr := miniredis.RunT(t)
		b.Redis = redis.NewClient(&redis.Options{Addr: mr.Addr()})
		t.Cleanup(func() { _ = b.Redis.Close() })
	}

	cfg := &config.Config{App: config.AppConfig{Version: "test", CORSOrigins: []string{"http://localhost:3000"}}}
	log := zap.NewNop()
	return BuildRouter(NewServices(cfg, b, log).RouterDeps(cfg, b, log))
}

func get(r http.Handler, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestBuildRouter_Gates(t *testing.T) {
	r := testRouter(t, false)

	tests := []struct {
		name  string
		path  string
		token string
		want  int
	}{
		{"health is public", "/healthz", "", http.StatusOK},
		{"plans are public", "/api/v1/checkout/plans", "", http.StatusOK},
		{"session is public", "/api/v1/session", "", http.StatusOK},
		{"me needs a token", "/api/v1/me", "", http.StatusUnauthorized},
		{"me for a customer", "/api/v1/me", "dev:c1", http.StatusOK},
		{"bad token", "/api/v1/me", "garbage", http.StatusUnauthorized},
		{"dashboard anonymous", "/api/v1/dashboard", "", http.StatusUnauthorized},
		{"dashboard for a customer", "/api/v1/dashboard", "dev:c1", http.StatusForbidden},
		{"dashboard for an admin", "/api/v1/dashboard", "dev:admin1", http.StatusOK},
		{"returns for an admin", "/api/v1/returns/items", "dev:admin1", http.StatusOK},
		{"users for an admin", "/api/v1/users", "dev:admin1", http.StatusOK},
		{"activity without a database", "/api/v1/activity", "dev:admin1", http.StatusOK},
		{"events need redis", "/api/v1/events", "dev:admin1", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := get(r, tt.path, tt.token)
			assert.Equal(t, tt.want, w.Code, w.Body.String())
		})
	}
}

func TestBuildRouter_HealthReportsBackends(t *testing.T) {
	r := testRouter(t, true)

	w := get(r, "/health", "")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Status string            `json:"status"`
		Checks map[string]string `json:"checks"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body.Status)
	assert.Equal(t, map[string]string{"redis": "up", "postgres": "disabled"}, body.Checks)
	assert.NotEmpty(t, w.Header().Get("X-Request-Id"))
}

func TestBuildRouter_AccessDecision(t *testing.T) {
	r := testRouter(t, false)

	w := get(r, "/api/v1/access?path=/dashboard", "dev:c1")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"path":"/dashboard","requirement":"admin","allowed":false,"redirect":"/"}`, w.Body.String())

	w = get(r, "/api/v1/access", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthCheck(t *testing.T) {
	gin.SetMode(gin.TestMode)

	h := NewHealthHandler("haulzy-api", "1.2.3", map[string]Check{
		"redis":    func(context.Context) error { return nil },
		"postgres": func(context.Context) error { return errors.New("refused") },
		"store":    nil,
	}, nil)

	r := gin.New()
	h.RegisterRoutes(r)

	for _, path := range []string{"/health", "/healthz"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		require.Equal(t, http.StatusOK, w.Code)

		var resp HealthResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "degraded", resp.Status)
		assert.Equal(t, "haulzy-api", resp.Service)
		assert.Equal(t, "1.2.3", resp.Version)
		assert.Equal(t, map[string]string{"redis": "up", "postgres": "down", "store": "disabled"}, resp.Checks)
	}
}

func TestHealthCheck_AllUp(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewHealthHandler("svc", "v", nil, nil).RegisterRoutes(r)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp.Status)
	assert.Empty(t, resp.Checks)
}

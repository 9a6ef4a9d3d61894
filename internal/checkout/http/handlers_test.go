package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haulzy/haulzy-backend/internal/activity"
	"github.com/haulzy/haulzy-backend/internal/auth"
	"github.com/haulzy/haulzy-backend/internal/checkout/domain"
	"github.com/haulzy/haulzy-backend/internal/checkout/repository"
	"github.com/haulzy/haulzy-backend/internal/checkout/service"
	"github.com/haulzy/haulzy-backend/internal/events"
	"github.com/haulzy/haulzy-backend/internal/functions"
	"github.com/haulzy/haulzy-backend/internal/functions/functionstest"
	"github.com/haulzy/haulzy-backend/internal/store"
	usersrepo "github.com/haulzy/haulzy-backend/internal/users/repository"
)

func newRouter(t *testing.T, stub *functionstest.Stub, signedIn bool) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	svc := service.NewCheckoutService(
		domain.DefaultCatalog(domain.PriceOverrides{BasicMonthCents: 900}),
		stub,
		repository.NewMemoryPendingStore(),
		auth.NewMemoryAccounts(),
		usersrepo.NewUserRepository(store.NewMemoryStore()),
		activity.Nop{},
		events.Nop{},
		service.Options{SuccessURL: "http://localhost:3000/success"},
		nil,
	)
	h := New(svc, nil)

	r := gin.New()
	api := r.Group("/api/v1")
	h.RegisterCheckout(api.Group("/checkout"))
	purchase := api.Group("/purchase")
	if signedIn {
		purchase.Use(func(c *gin.Context) {
			c.Set(auth.CtxSession, &auth.Session{UID: "u1", Email: "u1@x.com"})
			c.Next()
		})
	}
	h.RegisterPurchase(purchase)
	return r
}

func post(r *gin.Engine, target, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func TestHandler_ListPlans(t *testing.T) {
	r := newRouter(t, functionstest.New(), false)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/checkout/plans", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Plans []domain.Plan `json:"plans"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Plans, 3)
	assert.Equal(t, int64(900), body.Plans[1].Prices[domain.IntervalMonth])
	assert.Equal(t, int64(16200), body.Plans[2].Prices[domain.IntervalYear])
}

func TestHandler_StartSignup(t *testing.T) {
	r := newRouter(t, functionstest.New(), false)

	w := post(r, "/api/v1/checkout/signup", `{"firstName":"Ana","email":"nope"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	var body struct {
		Error  string            `json:"error"`
		Fields map[string]string `json:"fields"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "must be a valid email address", body.Fields["email"])
	assert.NotContains(t, body.Fields, "firstName")

	w = post(r, "/api/v1/checkout/signup", `not json`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandler_CompleteSignup(t *testing.T) {
	stub := functionstest.New().Respond(functions.VerifyCheckoutSession, map[string]any{"status": "expired"})
	r := newRouter(t, stub, false)

	w := post(r, "/api/v1/checkout/complete", `{"session_id":"cs_1"}`)
	assert.Equal(t, http.StatusPaymentRequired, w.Code)
	assert.JSONEq(t, `{"error":"payment not completed"}`, w.Body.String())

	w = post(r, "/api/v1/checkout/complete", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandler_Purchase(t *testing.T) {
	stub := functionstest.New().Respond(functions.PurchaseSubscription, map[string]any{"sessionId": "cs_p", "url": "https://pay.example/cs_p"})

	w := post(newRouter(t, stub, false), "/api/v1/purchase", `{"plan":"basic"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	r := newRouter(t, stub, true)
	w = post(r, "/api/v1/purchase", `{"plan":"basic","interval":"year"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"session_id":"cs_p","url":"https://pay.example/cs_p"}`, w.Body.String())

	w = post(r, "/api/v1/purchase", `{"plan":"platinum"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = post(r, "/api/v1/purchase/complete", `{"session_id":"cs_missing"}`)
	assert.Equal(t, http.StatusPaymentRequired, w.Code)
}

package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/haulzy/haulzy-backend/internal/auth"
	"github.com/haulzy/haulzy-backend/internal/checkout/domain"
	"github.com/haulzy/haulzy-backend/internal/functions"
)

func (h *Handler) ListPlans(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"plans": h.checkoutService.Plans()})
}

func (h *Handler) StartSignup(c *gin.Context) {
	var form domain.SignupForm
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	sess, err := h.checkoutService.StartSignup(c.Request.Context(), form)
	if err != nil {
		h.writeError(c, err, "failed to start checkout")
		return
	}
	c.JSON(http.StatusOK, sess)
}

func (h *Handler) CompleteSignup(c *gin.Context) {
	var req completeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": domain.ErrMissingSession.Error()})
		return
	}
	res, err := h.checkoutService.CompleteSignup(c.Request.Context(), req.SessionID)
	if err != nil {
		h.writeError(c, err, "failed to complete signup")
		return
	}
	c.JSON(http.StatusCreated, res)
}

func (h *Handler) StartPurchase(c *gin.Context) {
	session := auth.SessionFrom(c)
	if session == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}
	var req purchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	sess, err := h.checkoutService.StartPurchase(c.Request.Context(), session, req.Plan, req.Interval)
	if err != nil {
		h.writeError(c, err, "failed to start checkout")
		return
	}
	c.JSON(http.StatusOK, sess)
}

func (h *Handler) CompletePurchase(c *gin.Context) {
	session := auth.SessionFrom(c)
	if session == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}
	var req completeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": domain.ErrMissingSession.Error()})
		return
	}
	plan, err := h.checkoutService.CompletePurchase(c.Request.Context(), session, req.SessionID)
	if err != nil {
		h.writeError(c, err, "failed to complete purchase")
		return
	}
	c.JSON(http.StatusOK, gin.H{"plan": plan})
}

func (h *Handler) writeError(c *gin.Context, err error, fallback string) {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid signup form", "fields": verr.Fields})
	case errors.Is(err, domain.ErrMissingSession),
		errors.Is(err, domain.ErrUnknownPlan),
		errors.Is(err, domain.ErrInvalidInterval):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrPaymentNotCompleted):
		c.JSON(http.StatusPaymentRequired, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrPendingSignupNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrSessionMismatch):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, auth.ErrEmailInUse):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, functions.ErrNotConfigured):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "checkout is not available"})
	default:
		if ce, ok := functions.IsCallError(err); ok {
			h.log.Warn(fallback, zap.String("function", ce.Function), zap.String("status", ce.Status))
			c.JSON(http.StatusBadGateway, gin.H{"error": ce.Error()})
			return
		}
		h.log.Error(fallback, zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
	}
}

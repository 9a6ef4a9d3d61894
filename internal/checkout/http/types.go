package http

import (
	"go.uber.org/zap"

	"github.com/haulzy/haulzy-backend/internal/checkout/service"
)

type Handler struct {
	checkoutService *service.CheckoutService
	log             *zap.Logger
}

func New(checkoutService *service.CheckoutService, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{checkoutService: checkoutService, log: log}
}

type completeRequest struct {
	SessionID string `json:"session_id" binding:"required"`
}

type purchaseRequest struct {
	Plan     string `json:"plan" binding:"required"`
	Interval string `json:"interval"`
}

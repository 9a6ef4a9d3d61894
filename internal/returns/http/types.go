package http

import (
	"go.uber.org/zap"

	"github.com/haulzy/haulzy-backend/internal/returns/service"
)

type Handler struct {
	svc *service.ReturnsService
	log *zap.Logger
}

func New(svc *service.ReturnsService, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{svc: svc, log: log}
}

type statusRequest struct {
	Status string `json:"status" binding:"required"`
}

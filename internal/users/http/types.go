package http

import (
	"go.uber.org/zap"

	"github.com/haulzy/haulzy-backend/internal/users/domain"
	"github.com/haulzy/haulzy-backend/internal/users/service"
)

type Handler struct {
	userService *service.UserService
	log         *zap.Logger
}

func New(userService *service.UserService, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{userService: userService, log: log}
}

type meResponse struct {
	UID     string       `json:"uid"`
	Email   string       `json:"email,omitempty"`
	IsAdmin bool         `json:"is_admin"`
	User    *domain.User `json:"user"`
}

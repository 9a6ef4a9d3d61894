package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/haulzy/haulzy-backend/internal/dashboard/domain"
	"github.com/haulzy/haulzy-backend/internal/dashboard/service"
	"github.com/haulzy/haulzy-backend/internal/store"
)

type Handler struct {
	svc *service.DashboardService
	log *zap.Logger
}

func New(svc *service.DashboardService, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{svc: svc, log: log}
}

func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.GET("", h.GetOverview)
	rg.GET("/routes/:id", h.GetRoute)
	rg.GET("/history", h.GetHistory)
}

func (h *Handler) GetOverview(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.Build(c.Request.Context()))
}

func (h *Handler) GetRoute(c *gin.Context) {
	route, err := h.svc.Route(c.Request.Context(), c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, store.ErrInvalidID):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, domain.ErrRouteNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "route not found"})
		default:
			h.log.Error("failed to load route", zap.String("route_id", c.Param("id")), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load route"})
		}
		return
	}

	resp := gin.H{"route": route.RouteView}
	if len(route.Errors) > 0 {
		resp["errors"] = route.Errors
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) GetHistory(c *gin.Context) {
	days, err := strconv.Atoi(c.DefaultQuery("days", "30"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "days must be an integer"})
		return
	}

	snaps, err := h.svc.History(c.Request.Context(), days)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidDays) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.log.Error("failed to load history", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load history"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"days": days, "snapshots": snaps})
}

package activity

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handler struct {
	recorder Recorder
	log      *zap.Logger
}

func NewHandler(recorder Recorder, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{recorder: recorder, log: log}
}

func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.GET("/activity", h.List)
}

func (h *Handler) List(c *gin.Context) {
	limit := DefaultListLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = min(n, MaxListLimit)
	}

	entries, err := h.recorder.ListRecent(c.Request.Context(), limit)
	if err != nil {
		h.log.Error("failed to list activity", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list activity"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries, "count": len(entries)})
}

package access

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/haulzy/haulzy-backend/internal/auth"
)

type Handler struct{}

func NewHandler() *Handler {
	return &Handler{}
}

// Register expects the group to run OptionalAuth.
func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.GET("/session", h.GetSession)
	rg.GET("/access", h.GetAccess)
}

func (h *Handler) GetSession(c *gin.Context) {
	s := auth.SessionFrom(c)
	c.JSON(http.StatusOK, gin.H{
		"authenticated": s != nil,
		"user":          s,
		"is_admin":      s != nil && s.Admin,
		"nav":           NavLinks(c.DefaultQuery("path", HomePath), s),
	})
}

func (h *Handler) GetAccess(c *gin.Context) {
	p := c.Query("path")
	if p == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "path is required"})
		return
	}
	c.JSON(http.StatusOK, Decide(p, auth.SessionFrom(c)))
}

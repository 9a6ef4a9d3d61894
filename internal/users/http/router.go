package http

import "github.com/gin-gonic/gin"

// Register mounts the admin user-management routes.
func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.GET("", h.ListUsers)
	rg.GET("/:id", h.GetUser)
	rg.POST("/:id/toggle-role", h.ToggleRole)
	rg.DELETE("/:id", h.DeleteUser)
}

// RegisterMe mounts the signed-in caller's profile route.
func (h *Handler) RegisterMe(rg *gin.RouterGroup) {
	rg.GET("/me", h.GetMe)
}

package http

import "github.com/gin-gonic/gin"

// Register registers the returns routes. Callers mount them behind RequireAdmin.
func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.GET("/items", h.ListItems)
	rg.GET("/locations", h.ListLocations)
	rg.PUT("/pickups/:pickupId/items/:itemId/status", h.UpdateStatus)
	rg.POST("/items/:itemId/scan", h.ScanIn)
}

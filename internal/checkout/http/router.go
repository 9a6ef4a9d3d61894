package http

import "github.com/gin-gonic/gin"

// RegisterCheckout mounts the public signup checkout routes.
func (h *Handler) RegisterCheckout(rg *gin.RouterGroup) {
	rg.GET("/plans", h.ListPlans)
	rg.POST("/signup", h.StartSignup)
	rg.POST("/complete", h.CompleteSignup)
}

// RegisterPurchase mounts the signed-in purchase routes.
func (h *Handler) RegisterPurchase(rg *gin.RouterGroup) {
	rg.POST("", h.StartPurchase)
	rg.POST("/complete", h.CompletePurchase)
}

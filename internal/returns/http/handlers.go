package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/haulzy/haulzy-backend/internal/auth"
	"github.com/haulzy/haulzy-backend/internal/functions"
	"github.com/haulzy/haulzy-backend/internal/returns/domain"
	"github.com/haulzy/haulzy-backend/internal/store"
)

// ListItems supports ?status=, ?q= and ?return_location= filters.
func (h *Handler) ListItems(c *gin.Context) {
	list, err := h.svc.ListItems(c.Request.Context(), domain.Filter{
		Status:           c.Query("status"),
		Term:             c.Query("q"),
		ReturnLocationID: c.Query("return_location"),
	})
	if err != nil {
		h.log.Error("failed to list items", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load items"})
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *Handler) ListLocations(c *gin.Context) {
	locs, err := h.svc.ListReturnLocations(c.Request.Context())
	if err != nil {
		h.log.Error("failed to list return locations", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load return locations"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"locations": locs})
}

func (h *Handler) UpdateStatus(c *gin.Context) {
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	pickupID, itemID := c.Param("pickupId"), c.Param("itemId")
	err := h.svc.UpdateStatus(c.Request.Context(), auth.UserFirebaseUID(c), pickupID, itemID, req.Status)
	if err != nil {
		h.writeError(c, err, "failed to update status")
		return
	}
	c.JSON(http.StatusOK, gin.H{"pickup_id": pickupID, "item_id": itemID, "status": req.Status})
}

func (h *Handler) ScanIn(c *gin.Context) {
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	res, err := h.svc.ScanIn(c.Request.Context(), auth.UserFirebaseUID(c), c.Param("itemId"), req.Status)
	if err != nil {
		h.writeError(c, err, "failed to scan item")
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) writeError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, domain.ErrInvalidStatus),
		errors.Is(err, domain.ErrInvalidScanStatus),
		errors.Is(err, domain.ErrMissingItemID),
		errors.Is(err, store.ErrInvalidID):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrItemNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, functions.ErrNotConfigured):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "scanning is not available"})
	default:
		if ce, ok := functions.IsCallError(err); ok {
			c.JSON(http.StatusBadGateway, gin.H{"error": ce.Error(), "status": ce.Status})
			return
		}
		h.log.Error(fallback, zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
	}
}

package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/haulzy/haulzy-backend/internal/auth"
	"github.com/haulzy/haulzy-backend/internal/store"
	"github.com/haulzy/haulzy-backend/internal/users/domain"
)

// ListUsers supports ?search= and ?role=all|admin|user.
func (h *Handler) ListUsers(c *gin.Context) {
	users, err := h.userService.List(c.Request.Context(), domain.Filter{
		Search: c.Query("search"),
		Role:   c.Query("role"),
	})
	if err != nil {
		h.writeError(c, err, "failed to load users")
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users, "count": len(users)})
}

func (h *Handler) GetUser(c *gin.Context) {
	user, err := h.userService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err, "failed to load user")
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

func (h *Handler) ToggleRole(c *gin.Context) {
	user, err := h.userService.ToggleRole(c.Request.Context(), auth.UserFirebaseUID(c), c.Param("id"))
	if err != nil {
		h.writeError(c, err, "failed to update user role")
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

// DeleteUser removes the profile; ?purge_auth=true also removes the sign-in account.
func (h *Handler) DeleteUser(c *gin.Context) {
	purge, err := strconv.ParseBool(c.DefaultQuery("purge_auth", "false"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "purge_auth must be a boolean"})
		return
	}
	if err := h.userService.Delete(c.Request.Context(), auth.UserFirebaseUID(c), c.Param("id"), purge); err != nil {
		h.writeError(c, err, "failed to delete user")
		return
	}
	c.Status(http.StatusNoContent)
}

// GetMe returns the caller's profile. A signed-in user without a profile
// gets a null user.
func (h *Handler) GetMe(c *gin.Context) {
	session := auth.SessionFrom(c)
	if session == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	resp := meResponse{UID: session.UID, Email: session.Email, IsAdmin: session.Admin}
	user, err := h.userService.Get(c.Request.Context(), session.UID)
	switch {
	case err == nil:
		resp.User = &user
		resp.IsAdmin = user.IsAdmin
	case errors.Is(err, domain.ErrUserNotFound):
	default:
		h.writeError(c, err, "failed to load profile")
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) writeError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, domain.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrInvalidRole), errors.Is(err, store.ErrInvalidID):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrSelfAction):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	default:
		h.log.Error(fallback, zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
	}
}

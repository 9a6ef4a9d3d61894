package auth

import (
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	CtxFirebaseUID = "firebase_uid"
	CtxEmail       = "email"
	CtxSession     = "session"
)

// Session is the signed-in caller.
type Session struct {
	UID     string         `json:"uid"`
	Email   string         `json:"email,omitempty"`
	Admin   bool           `json:"is_admin"`
	Profile map[string]any `json:"profile,omitempty"`
	Token   string         `json:"-"`
}

// UserFirebaseUID extracts the Firebase UID from the Gin context.
func UserFirebaseUID(c *gin.Context) string {
	return strings.TrimSpace(c.GetString(CtxFirebaseUID))
}

// SessionFrom returns the session resolved by the auth middleware, or nil.
func SessionFrom(c *gin.Context) *Session {
	v, ok := c.Get(CtxSession)
	if !ok {
		return nil
	}
	s, _ := v.(*Session)
	return s
}

// IsAdminProfile reports whether a users record grants admin access.
func IsAdminProfile(profile map[string]any) bool {
	if profile == nil {
		return false
	}
	if role, ok := profile["role"].(string); ok && strings.EqualFold(strings.TrimSpace(role), "admin") {
		return true
	}
	b, _ := profile["isAdmin"].(bool)
	return b
}

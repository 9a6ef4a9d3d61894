package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/haulzy/haulzy-backend/internal/auth"
	"github.com/haulzy/haulzy-backend/internal/functions"
	"github.com/haulzy/haulzy-backend/internal/store"
)

// Authenticator resolves the caller from a Firebase ID token and their
// users record.
type Authenticator struct {
	verifier auth.Verifier
	profiles store.Store
	log      *zap.Logger
}

func NewAuthenticator(verifier auth.Verifier, profiles store.Store, log *zap.Logger) *Authenticator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Authenticator{verifier: verifier, profiles: profiles, log: log}
}

// OptionalAuth resolves a session when a bearer token is present. Requests
// without a token pass through anonymously; a bad token is rejected.
func (a *Authenticator) OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !a.resolve(c) {
			return
		}
		c.Next()
	}
}

// RequireAuth rejects anonymous callers with 401.
func (a *Authenticator) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !a.resolve(c) {
			return
		}
		if auth.SessionFrom(c) == nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing authorization token"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireAdmin rejects anonymous callers with 401 and non-admins with 403.
func (a *Authenticator) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !a.resolve(c) {
			return
		}
		session := auth.SessionFrom(c)
		if session == nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing authorization token"})
			c.Abort()
			return
		}
		if !session.Admin {
			c.JSON(http.StatusForbidden, gin.H{"error": "admin access required"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// resolve sets the session on c when a valid token is present. It returns
// false after aborting the request.
func (a *Authenticator) resolve(c *gin.Context) bool {
	if auth.SessionFrom(c) != nil {
		return true
	}

	token := extractToken(c)
	if token == "" {
		return true
	}

	decoded, err := a.verifier.VerifyIDToken(c.Request.Context(), token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		c.Abort()
		return false
	}

	session := &auth.Session{UID: decoded.UID, Token: token}
	if email, ok := decoded.Claims["email"].(string); ok {
		session.Email = email
	}

	doc, err := a.profiles.Get(c.Request.Context(), store.Doc(store.Users, decoded.UID))
	switch {
	case err == nil:
		session.Profile = doc.Data
		session.Admin = auth.IsAdminProfile(doc.Data)
		if session.Email == "" {
			session.Email, _ = doc.Data["email"].(string)
		}
	case errors.Is(err, store.ErrNotFound):
	default:
		a.log.Error("failed to load user profile", zap.String("uid", decoded.UID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load user profile"})
		c.Abort()
		return false
	}

	c.Set(auth.CtxFirebaseUID, session.UID)
	c.Set(auth.CtxEmail, session.Email)
	c.Set(auth.CtxSession, session)
	c.Request = c.Request.WithContext(functions.WithCallerToken(c.Request.Context(), token))
	return true
}

// extractToken extracts the Bearer token from the Authorization header
func extractToken(c *gin.Context) string {
	bearerToken := c.GetHeader("Authorization")
	if len(bearerToken) > 7 && strings.EqualFold(bearerToken[:7], "Bearer ") {
		return strings.TrimSpace(bearerToken[7:])
	}
	return ""
}

package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"libraryhub/internal/microservices/http-api/service"

	"github.com/gin-gonic/gin"
)

// Context keys set by the middlewares below.
const (
	KeyUserID = "userID"
	KeyEmail  = "email"
	KeyRole   = "role"
	KeyCaller = "caller"
)

// AuthMiddleware requires a valid bearer token issued by the auth provider.
func AuthMiddleware(authService service.AuthService) gin.HandlerFunc {
	return authenticate(authService, true)
}

// OptionalAuth accepts anonymous requests but still rejects malformed or invalid tokens.
func OptionalAuth(authService service.AuthService) gin.HandlerFunc {
	return authenticate(authService, false)
}

func authenticate(authService service.AuthService, required bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			if required {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing authorization header"})
				return
			}
			c.Next()
			return
		}

		// format: "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization header format"})
			return
		}

		claims, err := authService.ValidateToken(parts[1])
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}

		c.Set(KeyUserID, claims.UserID())
		c.Set(KeyEmail, claims.Email)
		c.Next()
	}
}

// LoadCaller resolves the role of the authenticated user from the profiles table and
// stores a service.Caller for handlers. Anonymous requests get an anonymous member caller.
func LoadCaller(ledger service.LedgerService) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		caller, _, err := ledger.ResolveCaller(ctx, c.GetString(KeyUserID))
		if err != nil {
			slog.Error("resolve_caller_failed", "user_id", c.GetString(KeyUserID), "error", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "could not load user role"})
			return
		}

		c.Set(KeyCaller, caller)
		c.Set(KeyRole, caller.Role)
		c.Next()
	}
}

// CallerFrom returns the caller stored by LoadCaller.
func CallerFrom(c *gin.Context) service.Caller {
	if v, ok := c.Get(KeyCaller); ok {
		if caller, ok := v.(service.Caller); ok {
			return caller
		}
	}
	return service.Caller{UserID: c.GetString(KeyUserID), Role: c.GetString(KeyRole)}
}

// RequireRole checks the role set by LoadCaller against the allowed roles.
func RequireRole(allowed ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString(KeyUserID) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": service.ErrAuthRequired.Error()})
			return
		}

		roleInterface, exists := c.Get(KeyRole)
		if !exists {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "role not resolved"})
			return
		}
		userRole, ok := roleInterface.(string)
		if !ok {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "invalid role format"})
			return
		}

		for _, r := range allowed {
			if r == userRole {
				c.Next()
				return
			}
		}

		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
			"error":    service.ErrForbidden.Error(),
			"required": allowed,
			"current":  userRole,
		})
	}
}

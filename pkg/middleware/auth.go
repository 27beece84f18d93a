package middleware

import (
	"net/http"
	"strings"

	"campus-market/internal/entity"
	"campus-market/pkg/jwt"

	"github.com/gin-gonic/gin"
)

const currentUserKey = "current_user"

// UserResolver turns a token subject into the current user record.
type UserResolver interface {
	ByID(id string) (*entity.User, error)
}

// CurrentUser returns the resolved user for the request, or nil for an
// anonymous caller.
func CurrentUser(c *gin.Context) *entity.User {
	v, exists := c.Get(currentUserKey)
	if !exists {
		return nil
	}
	user, ok := v.(*entity.User)
	if !ok {
		return nil
	}
	return user
}

// AuthMiddleware rejects requests without a valid bearer token.
func AuthMiddleware(jwtService *jwt.Service, users UserResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := resolveUser(c, jwtService, users)
		if !ok {
			return
		}
		if user == nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization required"})
			c.Abort()
			return
		}
		c.Set(currentUserKey, user)
		c.Set("user_id", user.ID)
		c.Next()
	}
}

// OptionalAuthMiddleware resolves the user when a token is present and
// lets anonymous requests through. A malformed or expired token is still
// rejected rather than silently downgraded to anonymous.
func OptionalAuthMiddleware(jwtService *jwt.Service, users UserResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := resolveUser(c, jwtService, users)
		if !ok {
			return
		}
		if user != nil {
			c.Set(currentUserKey, user)
			c.Set("user_id", user.ID)
		}
		c.Next()
	}
}

// AdminMiddleware rejects anonymous callers with 401 and authenticated
// non-admins with 403.
func AdminMiddleware(jwtService *jwt.Service, users UserResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := resolveUser(c, jwtService, users)
		if !ok {
			return
		}
		if user == nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization required"})
			c.Abort()
			return
		}
		if !user.IsAdmin {
			c.JSON(http.StatusForbidden, gin.H{"error": "Admin access required"})
			c.Abort()
			return
		}
		c.Set(currentUserKey, user)
		c.Set("user_id", user.ID)
		c.Next()
	}
}

// resolveUser returns (nil, true) for anonymous requests and (nil, false)
// after it has already written an error response.
func resolveUser(c *gin.Context, jwtService *jwt.Service, users UserResolver) (*entity.User, bool) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return nil, true
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization header"})
		c.Abort()
		return nil, false
	}

	claims, err := jwtService.ValidateToken(parts[1])
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
		c.Abort()
		return nil, false
	}

	user, err := users.ByID(claims.UserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve user"})
		c.Abort()
		return nil, false
	}
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unknown user"})
		c.Abort()
		return nil, false
	}

	return user, true
}

package auth

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/mikepea/bookmarks/pkg/bookmarks/errx"
	"github.com/mikepea/bookmarks/pkg/bookmarks/httpx"
)

const (
	// ContextKeyUserID is the key for user ID in gin context
	ContextKeyUserID = "user_id"
	// ContextKeyToken is the key for the raw bearer token in gin context
	ContextKeyToken = "token"
)

// Authenticator validates a bearer token of the wanted type
type Authenticator interface {
	Authenticate(token string, want TokenType) (uint, error)
}

// AuthMiddleware requires an access token and sets user info in context
func AuthMiddleware(a Authenticator) gin.HandlerFunc {
	return requireToken(a, TokenTypeAccess)
}

// RefreshMiddleware requires a refresh token; access tokens are rejected
func RefreshMiddleware(a Authenticator) gin.HandlerFunc {
	return requireToken(a, TokenTypeRefresh)
}

func requireToken(a Authenticator, want TokenType) gin.HandlerFunc {
	return func(c *gin.Context) {
		const op = "auth.middleware"

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			httpx.Error(c, errx.New(op, errx.Unauthorized, "Authorization header required"))
			return
		}

		// Expect "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" || strings.TrimSpace(parts[1]) == "" {
			httpx.Error(c, errx.New(op, errx.Unauthorized, "Invalid authorization header format"))
			return
		}

		tokenString := strings.TrimSpace(parts[1])
		userID, err := a.Authenticate(tokenString, want)
		if err != nil {
			httpx.Error(c, err)
			return
		}

		c.Set(ContextKeyUserID, userID)
		c.Set(ContextKeyToken, tokenString)

		c.Next()
	}
}

// GetUserID returns the user ID from the gin context
func GetUserID(c *gin.Context) (uint, bool) {
	userID, exists := c.Get(ContextKeyUserID)
	if !exists {
		return 0, false
	}
	id, ok := userID.(uint)
	return id, ok
}

// GetToken returns the validated bearer token from the gin context
func GetToken(c *gin.Context) (string, bool) {
	token, exists := c.Get(ContextKeyToken)
	if !exists {
		return "", false
	}
	s, ok := token.(string)
	return s, ok
}

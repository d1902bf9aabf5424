package middleware

import (
	"net/http"
	"strings"

	"github.com/fittracker-api/internal/service"
	"github.com/fittracker-api/pkg/response"
	"github.com/gin-gonic/gin"
)

// ContextKeyUserID is the key for the authenticated user ID in gin context
const ContextKeyUserID = "user_id"

// TokenValidator resolves a bearer token to its claims
type TokenValidator interface {
	ValidateToken(token string) (*service.JWTClaims, error)
}

// AuthMiddleware rejects requests without a valid bearer token and records
// the token holder's ID on the context
func AuthMiddleware(tokens TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, msg := bearerToken(c.Request)
		if token == "" {
			response.Unauthorized(c, msg)
			c.Abort()
			return
		}

		claims, err := tokens.ValidateToken(token)
		if err != nil {
			response.Unauthorized(c, "invalid or expired token")
			c.Abort()
			return
		}

		c.Set(ContextKeyUserID, claims.UserID)
		c.Next()
	}
}

func bearerToken(r *http.Request) (string, string) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", "missing authorization header"
	}

	scheme, token, ok := strings.Cut(header, " ")
	token = strings.TrimSpace(token)
	if !ok || !strings.EqualFold(scheme, "bearer") || token == "" {
		return "", "invalid authorization header format"
	}
	return token, ""
}

// GetUserID returns the authenticated user ID, or 0 outside AuthMiddleware
func GetUserID(c *gin.Context) uint {
	return c.GetUint(ContextKeyUserID)
}

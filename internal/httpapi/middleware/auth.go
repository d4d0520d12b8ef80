package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"llamachat/internal/auth"
	"llamachat/internal/common"
)

const (
	UserIDKey   = "userID"
	UsernameKey = "username"
)

// AuthRequired resolves the bearer token to a session owner before any
// handler runs. Missing/unknown tokens and expired sessions both end in 401,
// with distinct messages.
func AuthRequired(authSvc *auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			common.Fail(c, http.StatusUnauthorized, 40101, "invalid token")
			c.Abort()
			return
		}

		user, err := authSvc.ResolveToken(c.Request.Context(), token)
		if err != nil {
			switch {
			case errors.Is(err, auth.ErrTokenExpired):
				common.Fail(c, http.StatusUnauthorized, 40102, "token expired")
			case errors.Is(err, auth.ErrUnauthenticated):
				common.Fail(c, http.StatusUnauthorized, 40101, "invalid token")
			default:
				common.Fail(c, http.StatusInternalServerError, 50001, "internal error")
			}
			c.Abort()
			return
		}

		c.Set(UserIDKey, user.ID)
		c.Set(UsernameKey, user.Username)
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	h := c.GetHeader("Authorization")
	if h == "" {
		return ""
	}
	parts := strings.SplitN(h, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// UserID reads the authenticated user id injected by AuthRequired.
func UserID(c *gin.Context) (uint64, bool) {
	v, ok := c.Get(UserIDKey)
	if !ok {
		return 0, false
	}
	id, ok := v.(uint64)
	return id, ok
}

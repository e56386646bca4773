package http

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/jmanzanog/bond-tracker/internal/domain"
)

const (
	contextKeyUserID    = "user_id"
	contextKeySessionID = "session_id"
)

// Both prefixes are accepted; "Token" is what older clients send.
var authSchemes = []string{"Bearer ", "Token "}

func extractToken(header string) (string, bool) {
	for _, scheme := range authSchemes {
		if token, ok := strings.CutPrefix(header, scheme); ok && strings.TrimSpace(token) != "" {
			return strings.TrimSpace(token), true
		}
	}
	return "", false
}

// RequireAuth rejects requests without a valid, unrevoked access token and
// stores the caller's user and session ids in the gin context.
func (h *Handler) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		token, ok := extractToken(c.GetHeader("Authorization"))
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "Authentication credentials were not provided."})
			return
		}

		userID, sessionID, err := h.userService.Authenticate(ctx, token)
		if err != nil {
			if errors.Is(err, domain.ErrInvalidToken) || errors.Is(err, domain.ErrTokenExpired) {
				slog.WarnContext(ctx, "Unauthorized access", "error", err)
				c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "Invalid or expired token."})
				return
			}
			slog.ErrorContext(ctx, "Failed to authenticate request", "error", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{Error: "Internal server error."})
			return
		}

		c.Set(contextKeyUserID, userID)
		c.Set(contextKeySessionID, sessionID)
		c.Next()
	}
}

func currentUserID(c *gin.Context) string {
	return c.GetString(contextKeyUserID)
}

func currentSessionID(c *gin.Context) string {
	return c.GetString(contextKeySessionID)
}

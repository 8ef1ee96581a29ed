package middleware

import (
	"context"
	"net/http"
	"strings"

	fbauth "firebase.google.com/go/v4/auth"
	"github.com/gin-gonic/gin"

	"github.com/k1w1proplus/chat-backend/internal/auth"
	"github.com/k1w1proplus/chat-backend/internal/users"
)

// FirebaseAuthMiddleware validates Firebase ID tokens and extracts user info
func FirebaseAuthMiddleware(authClient *fbauth.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"ok": false, "error": "missing authorization token"})
			c.Abort()
			return
		}

		decodedToken, err := authClient.VerifyIDToken(context.Background(), token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"ok": false, "error": "invalid token"})
			c.Abort()
			return
		}

		c.Set(auth.CtxUID, decodedToken.UID)

		if email, ok := decodedToken.Claims["email"].(string); ok {
			c.Set(auth.CtxEmail, email)
		}
		if name, ok := decodedToken.Claims["name"].(string); ok {
			c.Set(auth.CtxDisplayName, name)
		}

		c.Next()
	}
}

// WithUser upserts the authenticated identity into the users table and
// makes the stored display name available to handlers. Runs after token
// verification.
func WithUser(userRepo *users.Repo) gin.HandlerFunc {
	return func(c *gin.Context) {
		ident := auth.CurrentUser(c)
		if ident.UID == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"ok": false, "error": "unauthenticated"})
			c.Abort()
			return
		}

		u, err := userRepo.EnsureUser(c.Request.Context(), users.UpsertUser{
			UID:         ident.UID,
			Email:       ident.Email,
			DisplayName: ident.DisplayName,
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "ensure user: " + err.Error()})
			c.Abort()
			return
		}

		c.Set(auth.CtxDisplayName, u.DisplayName)
		c.Next()
	}
}

// extractToken extracts the Bearer token from the Authorization header
func extractToken(c *gin.Context) string {
	bearerToken := c.GetHeader("Authorization")
	if len(bearerToken) > 7 && strings.HasPrefix(bearerToken, "Bearer ") {
		return bearerToken[7:]
	}
	return ""
}

package auth

import (
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	CtxUID         = "firebase_uid"
	CtxEmail       = "email"
	CtxDisplayName = "display_name"
)

// Identity is the authenticated-user handle the rest of the app works
// with. It is set by the auth middleware.
type Identity struct {
	UID         string
	Email       string
	DisplayName string
}

// CurrentUser extracts the authenticated identity from the Gin context.
// A zero UID means the request was not authenticated.
func CurrentUser(c *gin.Context) Identity {
	return Identity{
		UID:         strings.TrimSpace(c.GetString(CtxUID)),
		Email:       c.GetString(CtxEmail),
		DisplayName: c.GetString(CtxDisplayName),
	}
}

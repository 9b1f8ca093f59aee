package auth

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/M0chiIron/ProjetL3/pkg/apierr"
)

const (
	ctxUserIDKey  = "auth_user_id"
	ctxTokenKey   = "auth_session_token"
	bearerPrefix  = "bearer "
	sessionCookie = "session_token"
)

// TokenFromRequest pulls the session token from the Authorization header,
// falling back to the session cookie for browser clients.
func TokenFromRequest(c *gin.Context) string {
	h := c.GetHeader("Authorization")
	if strings.HasPrefix(strings.ToLower(h), bearerPrefix) {
		return strings.TrimSpace(h[len(bearerPrefix):])
	}
	if cookie, err := c.Cookie(sessionCookie); err == nil {
		return cookie
	}
	return ""
}

// RequireSession resolves the session token into an account id and stores
// it on the request context. Unknown or expired tokens end the request
// with 401.
func RequireSession(sessions *SessionStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := TokenFromRequest(c)
		if token == "" {
			apierr.Respond(c, apierr.Auth("Unauthorized"))
			c.Abort()
			return
		}

		sess, err := sessions.Get(c.Request.Context(), token)
		if err != nil {
			apierr.Respond(c, apierr.Storage("session lookup failed", err))
			c.Abort()
			return
		}
		if sess == nil {
			apierr.Respond(c, apierr.Auth("Unauthorized"))
			c.Abort()
			return
		}

		c.Set(ctxUserIDKey, sess.UserID)
		c.Set(ctxTokenKey, sess.Token)
		c.Next()
	}
}

// CurrentUserID returns the authenticated account id, or "" outside a
// RequireSession route.
func CurrentUserID(c *gin.Context) string {
	v, ok := c.Get(ctxUserIDKey)
	if !ok {
		return ""
	}
	id, _ := v.(string)
	return id
}

func currentToken(c *gin.Context) string {
	v, ok := c.Get(ctxTokenKey)
	if !ok {
		return ""
	}
	token, _ := v.(string)
	return token
}

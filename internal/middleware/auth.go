package middleware

import (
	"strings"

	"rentexpress/internal/access"
	"rentexpress/internal/apperr"
	"rentexpress/internal/models"
	"rentexpress/internal/util"

	"github.com/gin-gonic/gin"
)

// TokenCookie is the cookie carrying the session token.
const TokenCookie = "rex_token"

const actorKey = "actor"

// Credential extracts the bearer token from the Authorization header,
// falling back to the session cookie.
func Credential(c *gin.Context) string {
	if h := c.GetHeader("Authorization"); h != "" {
		parts := strings.SplitN(h, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
	}
	if cookie, err := c.Cookie(TokenCookie); err == nil && cookie != "" {
		return cookie
	}
	return ""
}

// RequireActor rejects the request unless it carries a valid credential.
func RequireActor(v access.Verifier) gin.HandlerFunc {
	return requireActor(v, false)
}

// RequireActorWithQueryToken also accepts ?token=, for download links that
// a browser opens without headers. Mount it on download routes only.
func RequireActorWithQueryToken(v access.Verifier) gin.HandlerFunc {
	return requireActor(v, true)
}

func requireActor(v access.Verifier, allowQuery bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		cred := Credential(c)
		if cred == "" && allowQuery {
			cred = c.Query("token")
		}
		if cred == "" {
			util.Fail(c, "authenticate", apperr.Authentication("missing credential"))
			c.Abort()
			return
		}
		a, err := v.Verify(c.Request.Context(), cred)
		if err != nil {
			util.Fail(c, "authenticate", err)
			c.Abort()
			return
		}
		setActor(c, a)
		c.Next()
	}
}

// OptionalActor attaches the actor when a valid credential is present and
// otherwise lets the request through anonymously.
func OptionalActor(v access.Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		if cred := Credential(c); cred != "" {
			if a, err := v.Verify(c.Request.Context(), cred); err == nil {
				setActor(c, a)
			}
		}
		c.Next()
	}
}

// RequireRole rejects authenticated actors outside roles.
func RequireRole(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		a, _ := CurrentActor(c)
		if err := a.Require(roles...); err != nil {
			util.Fail(c, "authorize", err)
			c.Abort()
			return
		}
		c.Next()
	}
}

func setActor(c *gin.Context, a access.Actor) {
	c.Set(actorKey, a)
	c.Set(util.ActorIDKey, a.ID)
	c.Request = c.Request.WithContext(access.WithActor(c.Request.Context(), a))
}

// CurrentActor returns the actor attached by RequireActor or OptionalActor.
func CurrentActor(c *gin.Context) (access.Actor, bool) {
	v, ok := c.Get(actorKey)
	if !ok {
		return access.Actor{}, false
	}
	a, ok := v.(access.Actor)
	return a, ok && a.ID != ""
}

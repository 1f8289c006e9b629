package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/craftandcart/storefront/apperrors"
	"github.com/craftandcart/storefront/identity"
)

const identityContextKey = "identity"

// SessionHeader names the anonymous owner key a client sends when it
// is not signed in. Signed-in requests are keyed by the token's email.
const SessionHeader = "X-Session-ID"

// Identity resolves an optional bearer token. A missing or invalid
// token leaves the request anonymous; routes that need a signed-in
// customer stack RequireIdentity on top.
func Identity(provider identity.Provider) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			c.Next()
			return
		}

		id, err := provider.ParseToken(token)
		if err != nil {
			c.Next()
			return
		}

		c.Set(identityContextKey, id)
		c.Request = c.Request.WithContext(identity.NewContext(c.Request.Context(), id))
		c.Next()
	}
}

// RequireIdentity aborts anonymous requests, pointing the client at
// the sign-in page with a return_to back to the requested path.
func RequireIdentity(provider identity.Provider) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := CurrentIdentity(c); !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":       apperrors.ErrUnauthorized.Message,
				"sign_in_url": provider.SignInURL(c.Request.URL.Path),
			})
			return
		}
		c.Next()
	}
}

// CurrentIdentity returns the signed-in customer, if any.
func CurrentIdentity(c *gin.Context) (identity.Identity, bool) {
	val, exists := c.Get(identityContextKey)
	if !exists {
		return identity.Identity{}, false
	}
	id, ok := val.(identity.Identity)
	return id, ok
}

// Owner returns the storage key for the request: the signed-in email
// when present, otherwise the client's session header. Requests with
// neither have nowhere to keep a cart and are rejected.
func Owner(c *gin.Context) (string, bool) {
	if id, ok := CurrentIdentity(c); ok {
		return id.Email, true
	}
	if session := c.GetHeader(SessionHeader); session != "" {
		return session, true
	}
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
		"error": "missing " + SessionHeader + " header",
	})
	return "", false
}

package identity

import (
	"context"
	"fmt"
	"net/url"

	"github.com/golang-jwt/jwt/v4"
)

// Claims is the token payload issued by the identity provider.
type Claims struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	jwt.RegisteredClaims
}

// JWTProvider resolves identities from HS256 bearer tokens.
type JWTProvider struct {
	secret    []byte
	signInURL string
}

var _ Provider = (*JWTProvider)(nil)

func NewJWTProvider(secret []byte, signInURL string) *JWTProvider {
	return &JWTProvider{secret: secret, signInURL: signInURL}
}

// ParseToken validates the token and extracts the identity.
func (p *JWTProvider) ParseToken(tokenString string) (Identity, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return p.secret, nil
	})
	if err != nil {
		return Identity{}, err
	}
	if !token.Valid || claims.Email == "" {
		return Identity{}, fmt.Errorf("invalid token")
	}
	return Identity{Email: claims.Email, DisplayName: claims.Name}, nil
}

// Current returns the identity the auth middleware attached, if any.
func (p *JWTProvider) Current(ctx context.Context) (Identity, bool) {
	return FromContext(ctx)
}

// SignInURL is the authentication redirect target.
func (p *JWTProvider) SignInURL(returnTo string) string {
	if returnTo == "" {
		return p.signInURL
	}
	return p.signInURL + "?return_to=" + url.QueryEscape(returnTo)
}

// SignOut is client-side token disposal; nothing to revoke here.
func (p *JWTProvider) SignOut(ctx context.Context) error {
	return nil
}

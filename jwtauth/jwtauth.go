// Package jwtauth provides a bearer-token guard for seam handlers.
//
// Provide a *Verifier to the api and ask for Claims in a handler:
//
//	v := jwtauth.NewVerifier(secret)
//	api := seam.New(seam.Provide(v))
//	api.Add("auth.whoami").Handler(seam.Func1(func(ctx context.Context, c jwtauth.Claims) (Who, error) {
//	    sub, _ := c.GetSubject()
//	    return Who{User: sub}, nil
//	}))
package jwtauth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/bjaus/seam"
)

// Sentinel errors.
var (
	ErrMissingToken = errors.New("missing bearer token")
	ErrInvalidToken = errors.New("invalid bearer token")
)

// Verifier signs and verifies HS256 tokens with a shared secret.
type Verifier struct {
	secret []byte
	opts   []jwt.ParserOption
}

// NewVerifier returns a Verifier for secret. Extra parser options such as
// jwt.WithIssuer or jwt.WithLeeway are applied on every Verify.
func NewVerifier(secret []byte, opts ...jwt.ParserOption) *Verifier {
	return &Verifier{
		secret: secret,
		opts:   append([]jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}, opts...),
	}
}

// Sign returns a signed token for claims.
func (v *Verifier) Sign(claims jwt.MapClaims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := token.SignedString(v.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return s, nil
}

// Verify parses token and checks its signature and registered claims.
func (v *Verifier) Verify(token string) (jwt.MapClaims, error) {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return v.secret, nil
	}, v.opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// BearerToken extracts the token of an "Authorization: Bearer" header.
func BearerToken(h http.Header) (string, error) {
	auth := h.Get("Authorization")
	scheme, token, ok := strings.Cut(auth, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return "", ErrMissingToken
	}
	return strings.TrimSpace(token), nil
}

// Claims is a guard holding the verified claims of the request's bearer
// token. Requests without a valid token fail with 401.
type Claims struct {
	jwt.MapClaims
}

// ResolveParam implements seam.Param.
func (c *Claims) ResolveParam(_ context.Context, req *seam.Request) error {
	v, ok := seam.Lookup[*Verifier](req)
	if !ok || v == nil {
		return seam.ServerError("no *jwtauth.Verifier provided")
	}

	token, err := BearerToken(req.Header)
	if err != nil {
		return seam.External(http.StatusUnauthorized, "Missing bearer token").WithCause(err)
	}
	claims, err := v.Verify(token)
	if err != nil {
		return seam.Errorf(http.StatusUnauthorized, "verify bearer token: %v", err).
			WithExternalMessage("Invalid bearer token").
			WithCause(err)
	}
	c.MapClaims = claims
	return nil
}

// Package token implements the trust contract shared by the auth service and
// the todo API: a signed claims payload over a shared secret. Both services
// compile this package; agreement on secret and algorithm is a deployment
// invariant, not something checked at runtime.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

var (
	ErrMalformed    = errors.New("malformed token")
	ErrBadSignature = errors.New("bad token signature")
	ErrExpired      = errors.New("token expired")
	ErrInvalid      = errors.New("invalid token")
)

// Claims is the verified payload of a token, valid for one request.
type Claims struct {
	Subject   string
	Email     string
	Provider  string
	ExpiresAt time.Time
}

// Codec signs and verifies claims payloads with a shared secret.
type Codec struct {
	secret []byte
	method jwt.SigningMethod
	parser *jwt.Parser
}

// NewCodec creates a codec for the given secret and signing algorithm
// (typically "HS256"). Only HMAC algorithms are supported.
func NewCodec(secret []byte, algorithm string) (*Codec, error) {
	method := jwt.GetSigningMethod(algorithm)
	if method == nil {
		return nil, fmt.Errorf("unknown signing algorithm %q", algorithm)
	}
	if _, ok := method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unsupported signing algorithm %q", algorithm)
	}
	return &Codec{
		secret: secret,
		method: method,
		parser: jwt.NewParser(jwt.WithValidMethods([]string{algorithm})),
	}, nil
}

// Issue produces a signed token encoding the subject, email and provider,
// expiring after ttl.
func (c *Codec) Issue(subject, email, provider string, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"sub":      subject,
		"email":    email,
		"provider": provider,
		"exp":      time.Now().Add(ttl).Unix(),
	}
	return jwt.NewWithClaims(c.method, claims).SignedString(c.secret)
}

// Decode verifies the signature and expiry of raw and returns its claims.
// Failures are reported as ErrMalformed, ErrBadSignature, ErrExpired or
// ErrInvalid.
func (c *Codec) Decode(raw string) (Claims, error) {
	parsed, err := c.parser.Parse(raw, func(t *jwt.Token) (any, error) {
		return c.secret, nil
	})
	if err != nil {
		return Claims{}, decodeError(err)
	}
	mc, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return Claims{}, ErrInvalid
	}
	return FromMapClaims(mc)
}

func decodeError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrExpired
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrSignatureInvalid):
		return ErrBadSignature
	case errors.Is(err, jwt.ErrTokenMalformed):
		return ErrMalformed
	default:
		return ErrInvalid
	}
}

// FromMapClaims builds Claims from a verified claim map. The subject is
// mandatory; everything else is optional.
func FromMapClaims(mc jwt.MapClaims) (Claims, error) {
	sub, ok := mc["sub"].(string)
	if !ok || sub == "" {
		return Claims{}, ErrInvalid
	}
	claims := Claims{Subject: sub}
	if email, ok := mc["email"].(string); ok {
		claims.Email = email
	}
	if provider, ok := mc["provider"].(string); ok {
		claims.Provider = provider
	}
	if exp, ok := mc["exp"].(float64); ok {
		claims.ExpiresAt = time.Unix(int64(exp), 0)
	}
	return claims, nil
}

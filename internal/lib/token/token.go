// Package token signs and verifies the HS256 bearer tokens accepted by the API.
//
// Verification failures are reported as *Error values whose Kind tells a
// malformed (or tampered) token apart from an expired one.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Kind classifies a verification failure.
type Kind int

const (
	// KindMalformed covers unparsable tokens, bad signatures and wrong algorithms.
	KindMalformed Kind = iota + 1

	// KindExpired means the token was valid but its exp claim has passed.
	KindExpired
)

// Error is a token verification failure.
type Error struct {
	Kind Kind   `json:"-"`
	Name string `json:"name"`
	err  error
}

func (e *Error) Error() string {
	return e.err.Error()
}

func (e *Error) Unwrap() error {
	return e.err
}

// Claims are the registered claims plus the user identity.
type Claims struct {
	jwt.RegisteredClaims
	Role string `json:"role,omitempty"`
}

// Manager signs and verifies tokens with one shared secret.
type Manager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewManager builds a Manager. ttl is the lifetime of signed tokens.
func NewManager(secret string, ttl time.Duration) *Manager {
	return &Manager{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// Sign issues a token for userID.
func (m *Manager) Sign(userID, role string) (string, error) {
	now := m.now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    "natours",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
		Role: role,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Verify parses tokenStr and returns its claims.
func (m *Manager) Verify(tokenStr string) (*Claims, error) {
	claims := &Claims{}

	_, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return m.secret, nil
	}, jwt.WithTimeFunc(m.now))
	if err != nil {
		return nil, classify(err)
	}

	if claims.Subject == "" {
		return nil, &Error{Kind: KindMalformed, Name: "JsonWebTokenError", err: errors.New("token has no subject")}
	}

	return claims, nil
}

func classify(err error) *Error {
	if errors.Is(err, jwt.ErrTokenExpired) {
		return &Error{Kind: KindExpired, Name: "TokenExpiredError", err: err}
	}
	return &Error{Kind: KindMalformed, Name: "JsonWebTokenError", err: err}
}

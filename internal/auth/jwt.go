package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
	ErrOpaqueToken  = errors.New("token is not a JWT")
)

// Claims represents JWT claims issued by the storefront backend
type Claims struct {
	UserID string `json:"_id"`
	Email  string `json:"email,omitempty"`
	Role   string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// Inspect decodes the claims of a stored token without verifying its
// signature. The client never holds the signing key; this is only used to
// skip a restore request for a token that has visibly expired.
func Inspect(tokenString string) (*Claims, error) {
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokenString, claims); err != nil {
		return nil, ErrOpaqueToken
	}
	return claims, nil
}

// Expired reports whether the claims carry an expiry at or before now.
// Tokens without an exp claim never expire on the client side.
func (c *Claims) Expired(now time.Time) bool {
	if c == nil || c.ExpiresAt == nil {
		return false
	}
	return !now.Before(c.ExpiresAt.Time)
}

// CheckUsable returns ErrExpiredToken for a JWT past its expiry and nil for
// anything else, including opaque tokens that only the backend can judge
func CheckUsable(tokenString string, now time.Time) error {
	claims, err := Inspect(tokenString)
	if err != nil {
		return nil
	}
	if claims.Expired(now) {
		return ErrExpiredToken
	}
	return nil
}

// Issuer signs and validates HS256 tokens. The fake backend in apitest uses
// it so that client tests exercise real JWTs.
type Issuer struct {
	secretKey []byte
	expiry    time.Duration
}

// NewIssuer creates a new token issuer
func NewIssuer(secretKey string, expiry time.Duration) *Issuer {
	return &Issuer{
		secretKey: []byte(secretKey),
		expiry:    expiry,
	}
}

// Issue creates a new signed token
func (s *Issuer) Issue(userID, email, role string) (string, time.Time, error) {
	return s.IssueAt(time.Now(), userID, email, role)
}

// IssueAt creates a token as if issued at the given instant
func (s *Issuer) IssueAt(issuedAt time.Time, userID, email, role string) (string, time.Time, error) {
	expiresAt := issuedAt.Add(s.expiry)

	claims := Claims{
		UserID: userID,
		Email:  email,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			Subject:   userID,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.secretKey)
	if err != nil {
		return "", time.Time{}, err
	}

	return tokenString, expiresAt, nil
}

// Validate verifies a token and returns its claims
func (s *Issuer) Validate(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.secretKey, nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

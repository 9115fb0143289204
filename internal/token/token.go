package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Class selects the signing secret and lifetime for a token. Access and
// refresh tokens use independent secrets so that compromise of one cannot
// forge the other.
type Class int

const (
	ClassAccess Class = iota
	ClassRefresh
)

// ErrInvalidToken covers every verification failure. Expired and tampered
// tokens are deliberately not distinguished for callers.
var ErrInvalidToken = errors.New("invalid or expired token")

// Identity is the minimal claim set carried by both token classes.
type Identity struct {
	Email    string
	Username string
}

type Claims struct {
	jwt.RegisteredClaims
	Email    string `json:"email"`
	Username string `json:"username"`
}

// Service issues and verifies signed, time-bound bearer tokens. It holds
// no mutable state after construction.
type Service struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

func NewService(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) *Service {
	return &Service{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}
}

// IssueAccess signs a short-lived access token for the identity.
func (s *Service) IssueAccess(id Identity) (string, error) {
	return s.issue(id, s.accessSecret, s.accessTTL)
}

// IssueRefresh signs a long-lived refresh token for the identity.
func (s *Service) IssueRefresh(id Identity) (string, error) {
	return s.issue(id, s.refreshSecret, s.refreshTTL)
}

func (s *Service) issue(id Identity, secret []byte, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Email:    id.Email,
		Username: id.Username,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// Verify checks signature and expiry against the secret of the given class
// and returns the embedded identity.
func (s *Service) Verify(tokenString string, class Class) (Identity, error) {
	secret := s.accessSecret
	if class == ClassRefresh {
		secret = s.refreshSecret
	}

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return secret, nil
	})
	if err != nil || !parsed.Valid {
		return Identity{}, ErrInvalidToken
	}

	return Identity{Email: claims.Email, Username: claims.Username}, nil
}

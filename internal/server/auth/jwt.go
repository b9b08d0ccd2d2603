// Package auth issues and parses the signed session tokens handed to
// clients after login.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/accountd/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Claims carries the standard registered claims and the user id.
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"userId"`
}

// TokenManager signs tokens with a process-wide HMAC secret.
type TokenManager struct {
	secretKey        []byte
	validityDuration time.Duration
	now              func() time.Time
}

func NewTokenManager(secretKey []byte, validityDuration time.Duration) *TokenManager {
	return &TokenManager{
		secretKey:        secretKey,
		validityDuration: validityDuration,
		now:              time.Now,
	}
}

// WithClock returns a copy that reads the current time from now.
func (m *TokenManager) WithClock(now func() time.Time) *TokenManager {
	c := *m
	c.now = now
	return &c
}

// ValidityDuration is how long an issued token stays valid.
func (m *TokenManager) ValidityDuration() time.Duration {
	return m.validityDuration
}

// Issue returns an HS256 token for userID that expires after the
// configured validity duration.
func (m *TokenManager) Issue(userID string) (string, error) {
	now := m.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.validityDuration)),
		},
		UserID: userID,
	})

	tokenString, err := token.SignedString(m.secretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// Parse validates tokenString and returns the user id it was issued for.
// Every failure (bad signature, other algorithm, expiry, missing user)
// wraps common.ErrInvalidToken.
func (m *TokenManager) Parse(tokenString string) (string, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return m.secretKey, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %w", common.ErrInvalidToken, err)
	}

	if !token.Valid {
		return "", common.ErrInvalidToken
	}
	if claims.UserID == "" {
		return "", fmt.Errorf("%w: %w", common.ErrInvalidToken, errors.New("no user id"))
	}

	return claims.UserID, nil
}

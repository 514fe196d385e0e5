package utils

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

var ErrInvalidToken = errors.New("invalid or expired token")

// Claims carried by both access and refresh tokens.
type Claims struct {
	UserID    uuid.UUID `json:"user_id"`
	TokenType string    `json:"token_type"`
	jwt.RegisteredClaims
}

// GenerateAccessToken mints a short-lived access token.
func GenerateAccessToken(userID uuid.UUID, secret string, ttl time.Duration) (string, error) {
	return generateToken(userID, TokenTypeAccess, secret, ttl)
}

// GenerateRefreshToken mints a long-lived refresh token.
func GenerateRefreshToken(userID uuid.UUID, secret string, ttl time.Duration) (string, error) {
	return generateToken(userID, TokenTypeRefresh, secret, ttl)
}

func generateToken(userID uuid.UUID, tokenType, secret string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID:    userID,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// ParseAccessToken validates an access token and returns its claims.
func ParseAccessToken(tokenStr, secret string) (*Claims, error) {
	return parseToken(tokenStr, TokenTypeAccess, secret)
}

// ParseRefreshToken validates a refresh token and returns its claims.
func ParseRefreshToken(tokenStr, secret string) (*Claims, error) {
	return parseToken(tokenStr, TokenTypeRefresh, secret)
}

func parseToken(tokenStr, wantType, secret string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.TokenType != wantType {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

package services

import (
	"time"

	"github.com/google/uuid"
	"github.com/mentorlink/mentorlink/internal/utils"
)

// TokenIssuer mints and validates JWT pairs with the shared secret.
type TokenIssuer struct {
	secret     string
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewTokenIssuer(secret string, accessTTL, refreshTTL time.Duration) *TokenIssuer {
	return &TokenIssuer{secret: secret, accessTTL: accessTTL, refreshTTL: refreshTTL}
}

func (t *TokenIssuer) Issue(userID uuid.UUID) (*TokenPair, error) {
	access, err := utils.GenerateAccessToken(userID, t.secret, t.accessTTL)
	if err != nil {
		return nil, err
	}
	refresh, err := utils.GenerateRefreshToken(userID, t.secret, t.refreshTTL)
	if err != nil {
		return nil, err
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func (t *TokenIssuer) ParseAccess(token string) (*utils.Claims, error) {
	return utils.ParseAccessToken(token, t.secret)
}

func (t *TokenIssuer) ParseRefresh(token string) (*utils.Claims, error) {
	return utils.ParseRefreshToken(token, t.secret)
}

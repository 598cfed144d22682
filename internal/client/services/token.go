package services

import (
	"fmt"
	"time"

	"github.com/dmitrijs2005/briefly/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// DecodeTokenExpiry reads the exp claim of a JWT without verifying its
// signature. The client never holds the signing key; the backend remains
// the authority on validity.
func DecodeTokenExpiry(token string) (time.Time, error) {
	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, fmt.Errorf("%w: missing exp claim", common.ErrInvalidToken)
	}
	return claims.ExpiresAt.Time, nil
}

// expired reports whether exp has been reached. Validity ends at exp itself.
func expired(exp, now time.Time) bool {
	return !now.Before(exp)
}

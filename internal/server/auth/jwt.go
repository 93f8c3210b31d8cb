// Package auth issues and verifies the access tokens that identify
// principals on API requests.
package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/avoronov/storebox/internal/common"
	"github.com/avoronov/storebox/internal/server/models"
)

// Claims carries the principal identity alongside the registered claims.
type Claims struct {
	jwt.RegisteredClaims
	UserID    string
	AccountID string
	Email     string
}

// GenerateToken signs an HS256 token identifying the principal for the
// given validity duration.
func GenerateToken(principal models.Principal, secretKey []byte, validityDuration time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(validityDuration)),
		},
		UserID:    principal.ID,
		AccountID: principal.AccountID,
		Email:     principal.Email,
	})

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// GetPrincipalFromToken verifies the token and extracts the principal it
// identifies.
func GetPrincipalFromToken(tokenString string, secretKey []byte) (models.Principal, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	})
	if err != nil {
		return models.Principal{}, err
	}

	if !token.Valid {
		return models.Principal{}, common.ErrInvalidToken
	}

	return models.Principal{ID: claims.UserID, AccountID: claims.AccountID, Email: claims.Email}, nil
}

// Package auth issues and verifies session tokens. A token is only valid
// while its session row exists, so logout revokes it everywhere.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/storeit-dev/storeit/internal/cache"
	"github.com/storeit-dev/storeit/pkg/models"
	"github.com/storeit-dev/storeit/pkg/types"
	"gorm.io/gorm"
)

var ErrInvalidToken = errors.New("invalid token")

func Encode(secret string, claims *types.JWTClaims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

func Decode(secret string, token string) (*types.JWTClaims, error) {
	claims := &types.JWTClaims{}

	tkn, err := jwt.ParseWithClaims(token, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	if !tkn.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// VerifyToken decodes the token and checks that its session still exists.
func VerifyToken(db *gorm.DB, cacher cache.Cacher, secret, token string) (*types.JWTClaims, error) {
	claims, err := Decode(secret, token)
	if err != nil {
		return nil, err
	}

	if _, err := GetSessionByHash(db, cacher, claims.Hash); err != nil {
		return nil, fmt.Errorf("invalid session: %w", err)
	}

	return claims, nil
}

func GetSessionByHash(db *gorm.DB, cacher cache.Cacher, hash string) (*models.Session, error) {
	session, err := cache.Fetch(cacher, cache.KeySession(hash), time.Hour, func() (models.Session, error) {
		var s models.Session
		if err := db.Where("hash = ?", hash).First(&s).Error; err != nil {
			return s, err
		}
		return s, nil
	})
	if err != nil {
		return nil, err
	}
	return &session, nil
}

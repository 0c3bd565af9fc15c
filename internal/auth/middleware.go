package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/storeit-dev/storeit/internal/cache"
	"github.com/storeit-dev/storeit/pkg/types"
	"gorm.io/gorm"
)

const (
	CookieName = "user-session"

	claimsKey = "jwtUser"
)

// Middleware authenticates the request from the session cookie or a Bearer
// header and stores the verified claims in the gin context.
func Middleware(db *gorm.DB, cacher cache.Cacher, secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var token string

		cookie, err := c.Request.Cookie(CookieName)
		if err != nil {
			authHeader := c.GetHeader("Authorization")
			bearerToken := strings.Split(authHeader, "Bearer ")
			if len(bearerToken) != 2 {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing auth token"})
				return
			}
			token = bearerToken[1]
		} else {
			token = cookie.Value
		}

		claims, err := VerifyToken(db, cacher, secret, token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}

		c.Set(claimsKey, claims)
		c.Next()
	}
}

// CurrentActor returns the acting identity for an authenticated request, or
// false when the request carries no verified session.
func CurrentActor(c *gin.Context) (*types.Actor, bool) {
	val, ok := c.Get(claimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := val.(*types.JWTClaims)
	if !ok {
		return nil, false
	}
	return &types.Actor{ID: claims.Subject, Email: claims.Email, Name: claims.Name}, true
}

// Claims returns the raw verified claims, for handlers that need the session
// hash.
func Claims(c *gin.Context) (*types.JWTClaims, bool) {
	val, ok := c.Get(claimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := val.(*types.JWTClaims)
	return claims, ok
}

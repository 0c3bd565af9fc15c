package types

import (
	"github.com/golang-jwt/jwt/v5"
)

// AppError pairs a service-level failure with the HTTP status it maps to.
type AppError struct {
	Error error
	Code  int
}

// Actor is the acting identity, resolved from the session and passed
// explicitly into every service operation.
type Actor struct {
	ID    string
	Email string
	Name  string
}

type JWTClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
	Name  string `json:"name"`
	Hash  string `json:"hash"`
}

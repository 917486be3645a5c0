package jwt

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type AccessClaims struct {
	jwt.RegisteredClaims
	Roles []string `json:"roles,omitempty"`
}

type RefreshClaims struct {
	jwt.RegisteredClaims
}

type JWTUtil interface {
	GenerateAccessToken(userID uuid.UUID, roles []string) (token string, exp time.Time, jti string, err error)

	GenerateRefreshToken(userID uuid.UUID) (token string, exp time.Time, jti string, err error)

	ValidateAccessToken(raw string) (AccessClaims, error)

	ValidateRefreshToken(raw string) (RefreshClaims, error)
}

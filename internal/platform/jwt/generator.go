// Package jwtmw はAPIアクセストークンの発行と検証ミドルウェアを提供します。
package jwtmw

import (
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	// EnvKeyJWTSecret is the environment variable holding the HMAC signing secret.
	EnvKeyJWTSecret = "JWT_SECRET"
	// Issuer identifies tokens minted by this service. Tokens without it are rejected.
	Issuer = "portfolio-backend"
)

// AccessClaims はこのサービスが発行するアクセストークンのペイロードです。
// sub にはユーザーIDを10進文字列で格納します。
type AccessClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Generator defines the interface for access token generation.
type Generator interface {
	// GenerateToken creates a signed JWT for the given user.
	GenerateToken(userID uint, email string) (string, error)
}

type generator struct {
	secret     []byte
	expiration time.Duration
}

// NewGenerator creates a Generator signing with the provided HMAC secret.
// Tokens expire after the given duration.
func NewGenerator(secret string, expiration time.Duration) Generator {
	return &generator{
		secret:     []byte(secret),
		expiration: expiration,
	}
}

// GenerateToken creates an HS256-signed token carrying AccessClaims.
func (g *generator) GenerateToken(userID uint, email string) (string, error) {
	now := time.Now()
	claims := AccessClaims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    Issuer,
			Subject:   strconv.FormatUint(uint64(userID), 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(g.expiration)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(g.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

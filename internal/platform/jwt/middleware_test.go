package jwtmw

import (
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

// runGuard はAuthRequiredミドルウェアに1リクエストを通し、レコーダーと
// コンテキストを返します。
func runGuard(t *testing.T, authHeader string) (*httptest.ResponseRecorder, *gin.Context) {
	t.Helper()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/portfolio/optimize", nil)
	if authHeader != "" {
		c.Request.Header.Set("Authorization", authHeader)
	}
	AuthRequired()(c)
	return w, c
}

func TestAuthRequired_MissingBearerToken(t *testing.T) {
	t.Setenv(EnvKeyJWTSecret, "guard-secret")

	tests := []struct {
		name       string
		authHeader string
	}{
		{"no header", ""},
		{"basic auth", "Basic cXVhbnQ6cGFzcw=="},
		{"lowercase scheme", "bearer token123"},
		{"missing space", "Bearertoken123"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, c := runGuard(t, tt.authHeader)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.True(t, c.IsAborted())
		})
	}
}

func TestAuthRequired_MissingJWTSecret(t *testing.T) {
	t.Setenv(EnvKeyJWTSecret, "")

	w, c := runGuard(t, "Bearer sometoken")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.True(t, c.IsAborted())
}

func TestAuthRequired_RejectedTokens(t *testing.T) {
	const secret = "guard-secret"
	t.Setenv(EnvKeyJWTSecret, secret)

	tests := []struct {
		name  string
		token string
	}{
		{"malformed token", "not.a.valid.token"},
		{"random string", "randomstring"},
		{"wrong secret", mintToken(t, "other-secret", 5, time.Hour)},
		{"expired token", mintToken(t, secret, 5, -time.Hour)},
		{"foreign issuer", signClaims(t, secret, AccessClaims{
			Email: "quant@example.com",
			RegisteredClaims: jwt.RegisteredClaims{
				Issuer:    "someone-else",
				Subject:   "5",
				IssuedAt:  jwt.NewNumericDate(time.Now()),
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
		})},
		{"missing expiration", signClaims(t, secret, AccessClaims{
			RegisteredClaims: jwt.RegisteredClaims{
				Issuer:   Issuer,
				Subject:  "5",
				IssuedAt: jwt.NewNumericDate(time.Now()),
			},
		})},
		{"non-numeric subject", signClaims(t, secret, AccessClaims{
			RegisteredClaims: jwt.RegisteredClaims{
				Issuer:    Issuer,
				Subject:   "not-a-number",
				IssuedAt:  jwt.NewNumericDate(time.Now()),
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
		})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, c := runGuard(t, "Bearer "+tt.token)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.True(t, c.IsAborted())
		})
	}
}

func TestAuthRequired_ValidToken(t *testing.T) {
	const secret = "guard-secret"
	t.Setenv(EnvKeyJWTSecret, secret)

	tests := []struct {
		name   string
		userID uint
	}{
		{"user id 1", 1},
		{"user id 42", 42},
		{"user id 999", 999},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, c := runGuard(t, "Bearer "+mintToken(t, secret, tt.userID, time.Hour))

			require.False(t, c.IsAborted(), "response: %s", w.Body.String())

			userID, exists := c.Get(ContextUserID)
			require.True(t, exists)
			assert.Equal(t, tt.userID, userID.(uint))

			email, exists := c.Get(ContextUserEmail)
			require.True(t, exists)
			assert.Equal(t, "quant@example.com", email.(string))
		})
	}
}

func TestAuthRequired_UnsignedTokenRejected(t *testing.T) {
	t.Setenv(EnvKeyJWTSecret, "guard-secret")

	// "none" アルゴリズム（未署名）のトークン
	token := jwt.NewWithClaims(jwt.SigningMethodNone, AccessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    Issuer,
			Subject:   "1",
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	tokenStr, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	w, _ := runGuard(t, "Bearer "+tokenStr)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

// mintToken は本番と同じGeneratorでトークンを発行します。
func mintToken(t *testing.T, secret string, userID uint, expiration time.Duration) string {
	t.Helper()
	tokenStr, err := NewGenerator(secret, expiration).GenerateToken(userID, "quant@example.com")
	require.NoError(t, err)
	return tokenStr
}

// signClaims は任意のクレームをHS256で署名します。検証経路の失敗ケース用です。
func signClaims(t *testing.T, secret string, claims AccessClaims) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

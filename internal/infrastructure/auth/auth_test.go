package auth

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/creditx/creditx-server/internal/config"
)

func newRouter(v *Validator) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(v.Middleware())
	r.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(ContextSubjectKey))
	})
	return r
}

func do(r http.Handler, header, value string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	if header != "" {
		req.Header.Set(header, value)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestMiddlewareDisabled(t *testing.T) {
	v, err := NewValidator(context.Background(), &config.Config{}, zerolog.Nop())
	require.NoError(t, err)
	assert.True(t, v.Ready())
	assert.Equal(t, http.StatusOK, do(newRouter(v), "", "").Code)
}

func TestMiddlewareEnabled(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	cfg := &config.Config{
		AuthEnabled:  true,
		AuthIssuer:   "https://issuer.example",
		AuthAudience: "creditx",
		APIKey:       "secret",
	}
	v := NewValidatorWithKeyfunc(cfg, zerolog.Nop(), func(*jwt.Token) (any, error) {
		return &key.PublicKey, nil
	})
	r := newRouter(v)

	sign := func(claims jwt.MapClaims) string {
		s, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(key)
		require.NoError(t, err)
		return s
	}
	valid := sign(jwt.MapClaims{
		"iss": cfg.AuthIssuer,
		"aud": "creditx",
		"sub": "officer-1",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	wrongIssuer := sign(jwt.MapClaims{
		"iss": "https://other.example",
		"aud": "creditx",
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	tests := []struct {
		name   string
		header string
		value  string
		status int
		body   string
	}{
		{"no credentials", "", "", http.StatusUnauthorized, ""},
		{"valid token", "Authorization", "Bearer " + valid, http.StatusOK, "officer-1"},
		{"wrong issuer", "Authorization", "Bearer " + wrongIssuer, http.StatusUnauthorized, ""},
		{"malformed header", "Authorization", "Token abc", http.StatusUnauthorized, ""},
		{"api key", "X-API-Key", "secret", http.StatusOK, "api-key"},
		{"wrong api key", "X-API-Key", "nope", http.StatusUnauthorized, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(r, tt.header, tt.value)
			assert.Equal(t, tt.status, w.Code)
			if tt.body != "" {
				assert.Equal(t, tt.body, w.Body.String())
			}
		})
	}
}

func TestBearerToken(t *testing.T) {
	assert.Equal(t, "abc", bearerToken("bearer abc"))
	assert.Equal(t, "", bearerToken("abc"))
	assert.Equal(t, "", bearerToken(""))
}

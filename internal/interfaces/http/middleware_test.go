package http

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"mindcare/internal/config"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func writePublicKey(t *testing.T, key *rsa.PrivateKey) string {
	t.Helper()
	der, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "issuer.pem")
	require.NoError(t, os.WriteFile(path, pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der}), 0o600))
	return path
}

func sessionRouter(t *testing.T, cfg config.AuthConfig) *gin.Engine {
	t.Helper()
	mw, err := NewMiddleware(cfg)
	require.NoError(t, err)
	h := NewHandler(nil, nil, nil)
	r := gin.New()
	r.GET("/session", mw.AuthRequired(), h.Session)
	return r
}

func sessionStatus(r *gin.Engine, token string) (int, string) {
	req := httptest.NewRequest(http.MethodGet, "/session", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w.Code, gjson.Get(w.Body.String(), "user_id").String()
}

func TestMiddleware_RSAAndIssuer(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	r := sessionRouter(t, config.AuthConfig{
		PublicKeyFile: writePublicKey(t, key),
		JWTSecret:     testSecret,
		Issuer:        "https://idp.example.edu",
	})

	sign := func(method jwt.SigningMethod, signingKey interface{}, iss string) string {
		s, err := jwt.NewWithClaims(method, jwt.MapClaims{
			"sub": "user_rsa",
			"iss": iss,
			"exp": time.Now().Add(time.Hour).Unix(),
		}).SignedString(signingKey)
		require.NoError(t, err)
		return s
	}

	code, userID := sessionStatus(r, sign(jwt.SigningMethodRS256, key, "https://idp.example.edu"))
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "user_rsa", userID)

	code, _ = sessionStatus(r, sign(jwt.SigningMethodHS256, []byte(testSecret), "https://idp.example.edu"))
	assert.Equal(t, http.StatusOK, code)

	code, _ = sessionStatus(r, sign(jwt.SigningMethodRS256, key, "https://elsewhere.example.com"))
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestMiddleware_RejectsUnlistedAlgorithm(t *testing.T) {
	r := sessionRouter(t, config.AuthConfig{JWTSecret: testSecret})

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	token, err := jwt.NewWithClaims(jwt.SigningMethodRS256, jwt.MapClaims{
		"sub": "u", "exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString(key)
	require.NoError(t, err)

	code, _ := sessionStatus(r, token)
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestNewMiddleware_RequiresVerifier(t *testing.T) {
	_, err := NewMiddleware(config.AuthConfig{})
	assert.Error(t, err)

	_, err = NewMiddleware(config.AuthConfig{PublicKeyFile: filepath.Join(t.TempDir(), "missing.pem")})
	assert.Error(t, err)
}

package http

import (
	"crypto/rsa"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"mindcare/internal/config"
	"mindcare/internal/entities"
	"mindcare/internal/infrastructure"
	"mindcare/internal/logging"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

const (
	ctxUserID       = "user_id"
	ctxRole         = "role"
	headerRequestID = "X-Request-ID"
)

const contentSecurityPolicy = "default-src 'self'; " +
	"script-src 'self' 'unsafe-inline'; " +
	"style-src 'self' 'unsafe-inline' https://fonts.googleapis.com; " +
	"img-src 'self' data: https: blob:; " +
	"font-src 'self' data: https://fonts.gstatic.com; " +
	"connect-src 'self' https://api.openai.com https://generativelanguage.googleapis.com; " +
	"frame-ancestors 'none';"

type Middleware struct {
	keyFunc jwt.Keyfunc
	methods []string
	issuer  string
}

// NewMiddleware verifies RS* tokens with the public key file and HS* tokens
// with the secret. At least one must be configured.
func NewMiddleware(cfg config.AuthConfig) (*Middleware, error) {
	m := &Middleware{issuer: cfg.Issuer}

	var rsaKey *rsa.PublicKey
	if cfg.PublicKeyFile != "" {
		key, err := loadRSAPublicKey(cfg.PublicKeyFile)
		if err != nil {
			return nil, err
		}
		rsaKey = key
		m.methods = append(m.methods, "RS256", "RS384", "RS512")
	}
	secret := []byte(cfg.JWTSecret)
	if len(secret) > 0 {
		m.methods = append(m.methods, "HS256", "HS384", "HS512")
	}
	if len(m.methods) == 0 {
		return nil, fmt.Errorf("no token verifier configured: set JWT_SECRET or JWT_PUBLIC_KEY_FILE")
	}

	m.keyFunc = func(token *jwt.Token) (interface{}, error) {
		switch token.Method.(type) {
		case *jwt.SigningMethodRSA:
			if rsaKey != nil {
				return rsaKey, nil
			}
		case *jwt.SigningMethodHMAC:
			if len(secret) > 0 {
				return secret, nil
			}
		}
		return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
	}
	return m, nil
}

func loadRSAPublicKey(path string) (*rsa.PublicKey, error) {
	pem, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read public key: %w", err)
	}
	key, err := jwt.ParseRSAPublicKeyFromPEM(pem)
	if err != nil {
		return nil, fmt.Errorf("parse public key: %w", err)
	}
	return key, nil
}

// parse returns the caller's user id, or "" when the token is absent or invalid.
func (m *Middleware) parse(c *gin.Context) (string, string) {
	authHeader := c.GetHeader("Authorization")
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return "", ""
	}
	tokenString := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	if tokenString == "" {
		return "", ""
	}

	opts := []jwt.ParserOption{jwt.WithValidMethods(m.methods), jwt.WithExpirationRequired()}
	if m.issuer != "" {
		opts = append(opts, jwt.WithIssuer(m.issuer))
	}
	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, m.keyFunc, opts...)
	if err != nil || !token.Valid {
		logging.FromContext(c.Request.Context()).Debugf("rejected bearer token: %v", err)
		return "", ""
	}

	role, _ := claims["role"].(string)
	if sub, _ := claims["sub"].(string); sub != "" {
		return sub, role
	}
	if id, ok := claims["user_id"].(float64); ok && id > 0 {
		return strconv.FormatFloat(id, 'f', 0, 64), role
	}
	return "", ""
}

// Authenticate attaches the user id of a valid bearer token. It never aborts.
func (m *Middleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		if userID, role := m.parse(c); userID != "" {
			c.Set(ctxUserID, userID)
			c.Set(ctxRole, role)
		}
		c.Next()
	}
}

// AuthRequired aborts with 401 unless a valid bearer token is present.
func (m *Middleware) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, role := m.parse(c)
		if userID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			return
		}
		c.Set(ctxUserID, userID)
		c.Set(ctxRole, role)
		c.Next()
	}
}

func authContext(c *gin.Context) entities.AuthContext {
	return entities.AuthContext{UserID: c.GetString(ctxUserID)}
}

// RequestLogger tags each request with an id and logs its outcome.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(headerRequestID)
		if id == "" || len(id) > 64 {
			id = uuid.NewString()
		}
		c.Set(logging.RequestIDKey, id)
		c.Header(headerRequestID, id)
		c.Request = c.Request.WithContext(logging.WithRequestID(c.Request.Context(), id))

		start := time.Now()
		c.Next()

		entry := logging.FromContext(c.Request.Context()).WithFields(log.Fields{
			"method":  c.Request.Method,
			"path":    c.Request.URL.Path,
			"status":  c.Writer.Status(),
			"latency": time.Since(start).Round(time.Millisecond),
			"client":  ClientIP(c),
		})
		switch status := c.Writer.Status(); {
		case status >= http.StatusInternalServerError:
			entry.Error("request completed")
		case status >= http.StatusBadRequest:
			entry.Warn("request completed")
		default:
			entry.Info("request completed")
		}
	}
}

// Recovery turns a panic outside the chat pipeline into a 500.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				logging.FromContext(c.Request.Context()).WithField("panic", fmt.Sprint(r)).Error("handler panic")
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
			}
		}()
		c.Next()
	}
}

// ClientIP is the peer address, or the forwarded client when the peer is a
// trusted proxy.
func ClientIP(c *gin.Context) string {
	return c.ClientIP()
}

// RateLimit applies limiter per client IP.
func RateLimit(limiter *infrastructure.ClientRateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, wait := limiter.Allow(ClientIP(c))
		if !ok {
			secs := int(wait.Round(time.Second) / time.Second)
			if secs < 1 {
				secs = 1
			}
			c.Header("Retry-After", strconv.Itoa(secs))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Too Many Requests"})
			return
		}
		c.Next()
	}
}

// CORS allows the configured origins; "*" allows any origin without credentials.
func CORS(origins []string) gin.HandlerFunc {
	allowed := make(map[string]bool, len(origins))
	wildcard := false
	for _, o := range origins {
		if o == "*" {
			wildcard = true
		}
		allowed[strings.TrimRight(o, "/")] = true
	}

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		switch {
		case origin == "":
		case wildcard:
			c.Header("Access-Control-Allow-Origin", "*")
		case allowed[origin]:
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Access-Control-Allow-Credentials", "true")
			c.Header("Vary", "Origin")
		}
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-ID")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// SecurityHeaders adds security headers to prevent common attacks
func SecurityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("X-Frame-Options", "DENY")
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		h.Set("X-XSS-Protection", "1; mode=block")
		h.Set("Permissions-Policy", "camera=(), microphone=(), geolocation=()")
		h.Set("Content-Security-Policy", contentSecurityPolicy)
		c.Next()
	}
}

// HTTPSRedirect sends plain-HTTP requests behind a proxy to https with a 301.
func HTTPSRedirect() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("X-Forwarded-Proto") != "https" {
			c.Redirect(http.StatusMovedPermanently, "https://"+c.Request.Host+c.Request.URL.RequestURI())
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequestSizeLimiter limits request body size to prevent DoS
func RequestSizeLimiter(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if maxBytes > 0 {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		}
		c.Next()
	}
}

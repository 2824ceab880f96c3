package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"mindcare/internal/entities"
	"mindcare/internal/infrastructure"
	"mindcare/internal/logging"
	"mindcare/internal/metrics"
	"mindcare/internal/usecases"

	"github.com/gin-gonic/gin"
)

// ChatResponder is the chat pipeline behind POST /api/chat.
type ChatResponder interface {
	Respond(ctx context.Context, auth entities.AuthContext, rawBody []byte) (entities.ChatResponse, error)
}

// VendorLister reports which completion vendors have credentials.
type VendorLister interface {
	Configured() []entities.Service
}

// Options carries the optional pieces of the router.
type Options struct {
	// Auth enables /api/auth/register and /api/auth/login when non-nil.
	Auth         *usecases.AuthUsecase
	Vendors      VendorLister
	Metrics      *metrics.Collector
	Limiter      *infrastructure.ClientRateLimiter
	Production   bool
	MaxBodyBytes int64
	CORSOrigins  []string

	// TrustedProxies lists the peers whose X-Forwarded-For is believed.
	// Empty means the peer address is the client.
	TrustedProxies []string
}

type Handler struct {
	chat    ChatResponder
	auth    *usecases.AuthUsecase
	vendors VendorLister
}

func NewHandler(chat ChatResponder, auth *usecases.AuthUsecase, vendors VendorLister) *Handler {
	return &Handler{chat: chat, auth: auth, vendors: vendors}
}

func SetupRoutes(r *gin.Engine, chat ChatResponder, middleware *Middleware, opts Options) error {
	if err := r.SetTrustedProxies(opts.TrustedProxies); err != nil {
		return fmt.Errorf("trusted proxies: %w", err)
	}
	h := NewHandler(chat, opts.Auth, opts.Vendors)

	r.Use(RequestLogger())
	r.Use(Recovery())
	if opts.Production {
		r.Use(HTTPSRedirect())
	}
	r.Use(SecurityHeaders())
	r.Use(RequestSizeLimiter(opts.MaxBodyBytes))
	r.Use(CORS(opts.CORSOrigins))

	r.GET("/healthz", h.Health)
	if opts.Metrics != nil {
		r.GET("/metrics", gin.WrapH(opts.Metrics.Handler()))
	}

	api := r.Group("/api")
	if opts.Limiter != nil {
		api.Use(RateLimit(opts.Limiter))
	}
	api.POST("/chat", middleware.Authenticate(), h.Chat)

	authGroup := api.Group("/auth")
	{
		authGroup.GET("/session", middleware.AuthRequired(), h.Session)
		if h.auth != nil {
			authGroup.POST("/register", h.Register)
			authGroup.POST("/login", h.Login)
		}
	}
	return nil
}

// Chat answers one support-chat message.
func (h *Handler) Chat(c *gin.Context) {
	auth := authContext(c)

	// Anonymous callers get 401 without their body being read.
	var body []byte
	if auth.Authenticated() {
		var err error
		if body, err = io.ReadAll(c.Request.Body); err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "Request body too large"})
				return
			}
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}
	}

	resp, err := h.chat.Respond(c.Request.Context(), auth, body)
	if err != nil {
		var verr *usecases.ValidationError
		if !errors.As(err, &verr) {
			logging.FromContext(c.Request.Context()).Errorf("chat pipeline returned unexpected error: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
			return
		}
		status := http.StatusBadRequest
		if errors.Is(err, usecases.ErrUnauthenticated) {
			status = http.StatusUnauthorized
		}
		c.JSON(status, gin.H{"error": verr.UserMessage()})
		return
	}
	c.JSON(http.StatusOK, resp)
}

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *Handler) Register(c *gin.Context) {
	var req credentials
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	if !ValidUsername(req.Username) || !ValidPassword(req.Password) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid username or password (min 8 chars)"})
		return
	}

	user, err := h.auth.Register(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, usecases.ErrUsernameTaken) {
			c.JSON(http.StatusConflict, gin.H{"error": "Username already exists"})
			return
		}
		logging.FromContext(c.Request.Context()).Errorf("register failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": user.ID, "username": user.Username})
}

func (h *Handler) Login(c *gin.Context) {
	var req credentials
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	token, expires, err := h.auth.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, usecases.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
			return
		}
		logging.FromContext(c.Request.Context()).Errorf("login failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token, "expires_at": expires.UTC()})
}

// Session echoes the identity of the bearer token.
func (h *Handler) Session(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"user_id": c.GetString(ctxUserID),
		"role":    c.GetString(ctxRole),
	})
}

func (h *Handler) Health(c *gin.Context) {
	services := []entities.Service{}
	if h.vendors != nil {
		services = append(services, h.vendors.Configured()...)
	}
	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"services": services,
	})
}

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mindcare/internal/config"
	"mindcare/internal/infrastructure"
	"mindcare/internal/interfaces"
	httpapi "mindcare/internal/interfaces/http"
	"mindcare/internal/logging"
	"mindcare/internal/metrics"
	"mindcare/internal/repository"
	"mindcare/internal/usecases"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

func main() {
	configPath := flag.String("config", os.Getenv("CONFIG_FILE"), "path to a YAML config file")
	flag.Parse()

	// Load .env file
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintln(os.Stderr, "Warning: failed to load .env:", err)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Failed to load configuration:", err)
		os.Exit(1)
	}

	logging.SetupBaseLogger()
	logging.SetLevel(cfg.Debug)
	if err := logging.ConfigureLogOutput(cfg.LoggingToFile, cfg.LogDir); err != nil {
		log.Fatalf("failed to configure log output: %v", err)
	}
	defer logging.Close()

	validation := cfg.Validate()
	for _, w := range validation.Warnings {
		log.Warn(w)
	}
	if !validation.Valid() {
		log.Fatalf("missing required configuration: %v", validation.Missing)
	}

	if err := run(cfg); err != nil {
		log.Errorf("server stopped: %v", err)
		logging.Close()
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	collector := metrics.NewCollector()

	var authUsecase *usecases.AuthUsecase
	if cfg.Auth.LocalEnabled {
		store, closeStore, err := openUserStore(ctx, cfg.Database)
		if err != nil {
			return err
		}
		defer closeStore()
		authUsecase = usecases.NewAuthUsecase(store, cfg.Auth)
		log.Infof("local identity provider enabled (%s)", cfg.Database.Driver)
	}

	middleware, err := httpapi.NewMiddleware(cfg.Auth)
	if err != nil {
		return err
	}

	httpClient := infrastructure.NewHTTPClient()
	gemini := infrastructure.NewGeminiClient(cfg.Gemini, httpClient)
	openai := infrastructure.NewOpenAIClient(cfg.OpenAI, httpClient)

	chain := usecases.NewCompletionChain(gemini, openai, cfg.VendorTimeout, collector)
	chatService := usecases.NewChatService(
		usecases.NewRequestValidator(),
		usecases.NewCrisisDetector(),
		chain,
		usecases.NewResponseAssembler(nil),
		collector,
	)
	log.Infof("completion vendors configured: %v", chain.Configured())

	limiter := infrastructure.NewClientRateLimiter(cfg.RateLimit.RequestsPerMinute, cfg.RateLimit.Burst)
	defer limiter.Close()

	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	err = httpapi.SetupRoutes(r, chatService, middleware, httpapi.Options{
		Auth:           authUsecase,
		Vendors:        chain,
		Metrics:        collector,
		Limiter:        limiter,
		Production:     cfg.IsProduction(),
		MaxBodyBytes:   cfg.MaxBodyBytes,
		CORSOrigins:    cfg.CORSOrigins,
		TrustedProxies: cfg.TrustedProxies,
	})
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infof("server listening on %s (%s)", cfg.Addr(), cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	return nil
}

func openUserStore(ctx context.Context, db config.DatabaseConfig) (interfaces.UserStore, func(), error) {
	switch db.Driver {
	case "postgres":
		pg, err := infrastructure.NewPostgresClient(ctx, db.DSN)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		return repository.NewUserRepository(pg.Pool), pg.Close, nil
	case "sqlite", "":
		lite, err := infrastructure.NewSQLiteClient(ctx, db.DSN)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open sqlite store: %w", err)
		}
		return repository.NewSQLiteUserRepository(lite.DB), func() { _ = lite.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unsupported database driver %q", db.Driver)
	}
}

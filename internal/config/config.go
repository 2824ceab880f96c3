// Package config loads mindcare settings from an optional YAML file and the
// process environment. Environment variables always win over the file so a
// deployment can keep secrets out of the checked-in config.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultGeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	DefaultGeminiModel   = "gemini-1.5-flash"
	DefaultOpenAIBaseURL = "https://api.openai.com/v1"
	DefaultOpenAIModel   = "gpt-4o-mini"

	EnvProduction  = "production"
	EnvDevelopment = "development"
)

// Config represents the application's configuration.
type Config struct {
	// Host is the interface the HTTP server binds to. Empty binds all interfaces.
	Host string `yaml:"host"`
	// Port is the HTTP listen port.
	Port int `yaml:"port"`
	// Environment is "development" or "production". Production enables the HTTPS redirect.
	Environment string `yaml:"environment"`
	// AppURL is the public base URL, used only for startup warnings.
	AppURL string `yaml:"app-url"`

	// Debug enables debug-level logging and gin debug mode.
	Debug bool `yaml:"debug"`
	// LoggingToFile writes logs to a rotating file under LogDir instead of stdout.
	LoggingToFile bool   `yaml:"logging-to-file"`
	LogDir        string `yaml:"log-dir"`

	// VendorTimeout bounds every outbound vendor call.
	VendorTimeout time.Duration `yaml:"vendor-timeout"`

	Gemini GeminiConfig `yaml:"gemini"`
	OpenAI OpenAIConfig `yaml:"openai"`

	Auth     AuthConfig     `yaml:"auth"`
	Database DatabaseConfig `yaml:"database"`

	RateLimit RateLimitConfig `yaml:"rate-limit"`

	// MaxBodyBytes caps inbound request bodies.
	MaxBodyBytes int64 `yaml:"max-body-bytes"`
	// CORSOrigins lists allowed browser origins. Empty disables CORS headers.
	CORSOrigins []string `yaml:"cors-origins"`
	// TrustedProxies lists proxy IPs or CIDRs whose X-Forwarded-For names
	// the client. Empty trusts no proxy.
	TrustedProxies []string `yaml:"trusted-proxies"`
}

// GeminiConfig configures the primary vendor.
type GeminiConfig struct {
	APIKey  string `yaml:"api-key"`
	BaseURL string `yaml:"base-url"`
	Model   string `yaml:"model"`
}

// OpenAIConfig configures the secondary vendor.
type OpenAIConfig struct {
	APIKey      string  `yaml:"api-key"`
	BaseURL     string  `yaml:"base-url"`
	Model       string  `yaml:"model"`
	MaxTokens   int     `yaml:"max-tokens"`
	Temperature float64 `yaml:"temperature"`
}

// AuthConfig configures bearer token verification and the optional local identity provider.
type AuthConfig struct {
	// JWTSecret verifies (and, for local auth, signs) HS256 tokens.
	JWTSecret string `yaml:"jwt-secret"`
	// PublicKeyFile is a PEM RSA public key for tokens issued by an external identity provider.
	PublicKeyFile string `yaml:"public-key-file"`
	// Issuer, when set, must match the token "iss" claim.
	Issuer string `yaml:"issuer"`
	// LocalEnabled exposes /api/auth/register and /api/auth/login.
	LocalEnabled bool          `yaml:"local-enabled"`
	TokenTTL     time.Duration `yaml:"token-ttl"`
}

// DatabaseConfig selects the user store backing local auth.
type DatabaseConfig struct {
	// Driver is "sqlite" or "postgres".
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

// RateLimitConfig controls the per-client limiter on /api routes.
type RateLimitConfig struct {
	RequestsPerMinute int `yaml:"requests-per-minute"`
	Burst             int `yaml:"burst"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		Port:          8080,
		Environment:   EnvDevelopment,
		LogDir:        "logs",
		VendorTimeout: 12 * time.Second,
		Gemini: GeminiConfig{
			BaseURL: DefaultGeminiBaseURL,
			Model:   DefaultGeminiModel,
		},
		OpenAI: OpenAIConfig{
			BaseURL:     DefaultOpenAIBaseURL,
			Model:       DefaultOpenAIModel,
			MaxTokens:   300,
			Temperature: 0.7,
		},
		Auth: AuthConfig{
			TokenTTL: 24 * time.Hour,
		},
		Database: DatabaseConfig{
			Driver: "sqlite",
			DSN:    "file:mindcare.db?_pragma=foreign_keys(1)",
		},
		RateLimit: RateLimitConfig{
			RequestsPerMinute: 100,
			Burst:             100,
		},
		MaxBodyBytes: 1 << 20,
	}
}

// Load reads the YAML file at path (skipped when path is empty) on top of the
// defaults, then applies environment overrides.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	var errs []error
	envString("HOST", &c.Host)
	errs = append(errs, envInt("PORT", &c.Port))
	envString("APP_ENV", &c.Environment)
	envString("APP_URL", &c.AppURL)
	errs = append(errs, envBool("DEBUG", &c.Debug))
	errs = append(errs, envBool("LOGGING_TO_FILE", &c.LoggingToFile))
	envString("LOG_DIR", &c.LogDir)
	errs = append(errs, envDuration("VENDOR_TIMEOUT", &c.VendorTimeout))

	envString("GEMINI_API_KEY", &c.Gemini.APIKey)
	envString("GEMINI_BASE_URL", &c.Gemini.BaseURL)
	envString("GEMINI_MODEL", &c.Gemini.Model)

	envString("OPENAI_API_KEY", &c.OpenAI.APIKey)
	envString("OPENAI_BASE_URL", &c.OpenAI.BaseURL)
	envString("OPENAI_MODEL", &c.OpenAI.Model)
	errs = append(errs, envInt("OPENAI_MAX_TOKENS", &c.OpenAI.MaxTokens))
	if v, ok := os.LookupEnv("OPENAI_TEMPERATURE"); ok && v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("OPENAI_TEMPERATURE: %w", err))
		} else {
			c.OpenAI.Temperature = f
		}
	}

	envString("JWT_SECRET", &c.Auth.JWTSecret)
	envString("JWT_PUBLIC_KEY_FILE", &c.Auth.PublicKeyFile)
	envString("JWT_ISSUER", &c.Auth.Issuer)
	errs = append(errs, envBool("AUTH_LOCAL_ENABLED", &c.Auth.LocalEnabled))
	errs = append(errs, envDuration("AUTH_TOKEN_TTL", &c.Auth.TokenTTL))

	envString("DB_DRIVER", &c.Database.Driver)
	envString("DATABASE_URL", &c.Database.DSN)

	errs = append(errs, envInt("RATE_LIMIT_PER_MINUTE", &c.RateLimit.RequestsPerMinute))
	errs = append(errs, envInt("RATE_LIMIT_BURST", &c.RateLimit.Burst))

	envList("CORS_ORIGINS", &c.CORSOrigins)
	envList("TRUSTED_PROXIES", &c.TrustedProxies)
	return errors.Join(errs...)
}

// envList replaces dst with the comma-separated entries of key when it is set.
func envList(key string, dst *[]string) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return
	}
	*dst = nil
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			*dst = append(*dst, item)
		}
	}
}

// Addr returns the listen address for http.Server.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// IsProduction reports whether the server runs in production mode.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, EnvProduction)
}

// ValidationResult lists settings that prevent startup and settings that are merely advisable.
type ValidationResult struct {
	Missing  []string
	Warnings []string
}

// Valid reports whether nothing required is missing.
func (r ValidationResult) Valid() bool {
	return len(r.Missing) == 0
}

// Validate checks the loaded configuration the way the server needs it at startup.
func (c *Config) Validate() ValidationResult {
	var res ValidationResult

	if c.Auth.JWTSecret == "" && c.Auth.PublicKeyFile == "" {
		res.Missing = append(res.Missing, "JWT_SECRET or JWT_PUBLIC_KEY_FILE")
	}
	if c.Auth.LocalEnabled && c.Auth.JWTSecret == "" {
		res.Missing = append(res.Missing, "JWT_SECRET (required by local auth)")
	}
	if c.Auth.LocalEnabled {
		switch c.Database.Driver {
		case "sqlite", "postgres":
		default:
			res.Missing = append(res.Missing, fmt.Sprintf("DB_DRIVER (unsupported %q)", c.Database.Driver))
		}
	}
	if c.Port <= 0 || c.Port > 65535 {
		res.Missing = append(res.Missing, fmt.Sprintf("PORT (invalid %d)", c.Port))
	}

	if c.Gemini.APIKey == "" && c.OpenAI.APIKey == "" {
		res.Warnings = append(res.Warnings, "No AI API keys configured. Set GEMINI_API_KEY or OPENAI_API_KEY for chat functionality.")
	}
	if c.AppURL == "" {
		res.Warnings = append(res.Warnings, "APP_URL not set. Set this for production deployments.")
	}
	if c.VendorTimeout <= 0 {
		res.Warnings = append(res.Warnings, "VENDOR_TIMEOUT is not positive; vendor calls fall back to the 12s default.")
	}
	return res
}

func envString(key string, dst *string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

func envInt(key string, dst *int) error {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = n
	return nil
}

func envBool(key string, dst *bool) error {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = b
	return nil
}

func envDuration(key string, dst *time.Duration) error {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = d
	return nil
}

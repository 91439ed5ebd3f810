package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Insecure fallbacks, honored only when ENV=dev. Any other environment
// must provide real secrets or startup fails.
const (
	devAccessSecret  = "dev-access-secret-do-not-deploy"
	devRefreshSecret = "dev-refresh-secret-do-not-deploy"
)

type Config struct {
	// App
	Env string // dev / staging / prod
	// HTTP
	HTTPAddr string
	// Auth / Security
	AccessTokenSecret  string
	RefreshTokenSecret string
	JWTIssuer          string
	AccessTokenTTL     time.Duration
	RefreshTokenTTL    time.Duration
	BcryptCost         int

	// Infrastructure
	DBAddr        string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RabbitURL     string

	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
}

// UsingDevSecrets reports whether either signing secret is a built-in
// dev fallback, so bootstrap can warn loudly.
func (c *Config) UsingDevSecrets() bool {
	return c.AccessTokenSecret == devAccessSecret || c.RefreshTokenSecret == devRefreshSecret
}

func Load() (*Config, error) {
	// Best-effort: a missing .env file is not an error.
	_ = godotenv.Load()

	cfg := &Config{
		Env:       getEnv("ENV", "dev"),
		HTTPAddr:  getEnv("HTTP_ADDR", ":8080"),
		JWTIssuer: getEnv("JWT_ISSUER", "auth-service"),
	}

	// Signing secrets. Distinct per token kind so a leaked access-token
	// signing capability cannot forge refresh tokens.
	cfg.AccessTokenSecret = os.Getenv("ACCESS_TOKEN_SECRET")
	cfg.RefreshTokenSecret = os.Getenv("REFRESH_TOKEN_SECRET")
	if cfg.AccessTokenSecret == "" {
		if cfg.Env != "dev" {
			return nil, fmt.Errorf("missing required env var: ACCESS_TOKEN_SECRET")
		}
		cfg.AccessTokenSecret = devAccessSecret
	}
	if cfg.RefreshTokenSecret == "" {
		if cfg.Env != "dev" {
			return nil, fmt.Errorf("missing required env var: REFRESH_TOKEN_SECRET")
		}
		cfg.RefreshTokenSecret = devRefreshSecret
	}

	ttl, err := getDuration("ACCESS_TOKEN_TTL", 15*time.Minute)
	if err != nil {
		return nil, err
	}
	cfg.AccessTokenTTL = ttl

	rtl, err := getDuration("REFRESH_TOKEN_TTL", 7*24*time.Hour)
	if err != nil {
		return nil, err
	}
	cfg.RefreshTokenTTL = rtl

	// The database is the only hard dependency: user records hold the
	// rotating refresh token, so the service cannot run without it.
	cfg.DBAddr = os.Getenv("DB_ADDR")
	if cfg.DBAddr == "" {
		return nil, fmt.Errorf("missing required env var: DB_ADDR")
	}

	// Redis (rate limiting) and RabbitMQ (events) are best-effort; the
	// service degrades without them.
	cfg.RedisAddr = os.Getenv("REDIS_ADDR")
	cfg.RedisPassword = os.Getenv("REDIS_PASSWORD")
	cfg.RabbitURL = os.Getenv("RABBIT_URL")

	cfg.BcryptCost = 12

	rt, err := getDuration("HTTP_READ_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}
	cfg.HTTPReadTimeout = rt

	wt, err := getDuration("HTTP_WRITE_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, err
	}
	cfg.HTTPWriteTimeout = wt

	it, err := getDuration("HTTP_IDLE_TIMEOUT", time.Minute)
	if err != nil {
		return nil, err
	}
	cfg.HTTPIdleTimeout = it

	return cfg, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}

	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid duration for %s: %q: %w", key, v, err)
	}
	return d, nil
}

package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the API service.
type Config struct {
	AppName     string
	AppEnv      string
	AppPort     string
	DatabaseURL string
	RedisURL    string
	JWTSecret   string

	// SCM provider credentials. At least one provider must be configured
	// or the service has no remote side to provision against.
	GitHubToken  string
	GitLabToken  string
	GitLabAPIURL string

	// OrgListTimeout bounds remote organization listing calls.
	OrgListTimeout time.Duration
	// AssignmentCacheTTL controls how long assignment listings are served
	// from cache before storage is consulted again.
	AssignmentCacheTTL time.Duration
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("GRADEHUB")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "GradeHub API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("scm.org_wait", "30s")
	v.SetDefault("assignments.cache_ttl", "5m")

	orgWait, err := time.ParseDuration(v.GetString("scm.org_wait"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid scm org wait: %w", err)
	}

	cacheTTL, err := time.ParseDuration(v.GetString("assignments.cache_ttl"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid assignment cache ttl: %w", err)
	}

	cfg := Config{
		AppName:            v.GetString("app.name"),
		AppEnv:             v.GetString("app.env"),
		AppPort:            v.GetString("app.port"),
		DatabaseURL:        v.GetString("database.url"),
		RedisURL:           v.GetString("redis.url"),
		JWTSecret:          v.GetString("jwt.secret"),
		GitHubToken:        v.GetString("github.token"),
		GitLabToken:        v.GetString("gitlab.token"),
		GitLabAPIURL:       v.GetString("gitlab.api_url"),
		OrgListTimeout:     orgWait,
		AssignmentCacheTTL: cacheTTL,
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("jwt secret must be provided")
	}

	if cfg.GitHubToken == "" && cfg.GitLabToken == "" {
		return Config{}, fmt.Errorf("at least one scm provider token must be provided")
	}

	return cfg, nil
}

package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config is the full runtime configuration, sourced from environment
// variables.
type Config struct {
	DatabaseURL       string        `mapstructure:"database_url"`
	HTTPAddr          string        `mapstructure:"http_addr"`
	LogLevel          string        `mapstructure:"log_level"`
	JWTSecret         string        `mapstructure:"jwt_secret"`
	GenAIBaseURL      string        `mapstructure:"genai_base_url"`
	GenAIAPIKey       string        `mapstructure:"genai_api_key"`
	GenAIModel        string        `mapstructure:"genai_model"`
	DBMaxOpenConns    int           `mapstructure:"db_max_open_conns"`
	DBMaxIdleConns    int           `mapstructure:"db_max_idle_conns"`
	DBConnMaxLifetime time.Duration `mapstructure:"db_conn_max_lifetime"`
	OTPPurgeCron      string        `mapstructure:"otp_purge_cron"`
}

// Load reads configuration from the environment. DATABASE_URL and
// JWT_SECRET are required; everything else has a default.
func Load() (Config, error) {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("http_addr", ":8080")
	v.SetDefault("log_level", "info")
	v.SetDefault("genai_base_url", "https://generativelanguage.googleapis.com")
	v.SetDefault("genai_model", "models/gemini-1.5-flash")
	v.SetDefault("db_max_open_conns", 10)
	v.SetDefault("db_max_idle_conns", 5)
	v.SetDefault("db_conn_max_lifetime", 30*time.Minute)
	v.SetDefault("otp_purge_cron", "@every 5m")

	// AutomaticEnv only resolves keys it has seen; bind the ones
	// without defaults explicitly.
	for _, key := range []string{"database_url", "jwt_secret", "genai_api_key"} {
		if err := v.BindEnv(key); err != nil {
			return Config{}, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.DatabaseURL == "" {
		return Config{}, fmt.Errorf("missing required environment variable: DATABASE_URL")
	}
	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("missing required environment variable: JWT_SECRET")
	}

	return cfg, nil
}

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Log       LogConfig
	CORS      CORSConfig
	Extractor ExtractorConfig
	Session   SessionConfig
	FreeTier  FreeTierConfig
	License   LicenseConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// ProviderConfig holds settings for a single LLM extraction provider.
type ProviderConfig struct {
	Provider        string  `mapstructure:"provider"`
	APIKey          string  `mapstructure:"api_key"`
	Model           string  `mapstructure:"model"`
	Temperature     float64 `mapstructure:"temperature"`
	MaxOutputTokens int     `mapstructure:"max_output_tokens"`
	TimeoutSecs     int     `mapstructure:"timeout_secs"`

	// MaxTextChars is shared across providers; populated from
	// extractor.max_text_chars during Load.
	MaxTextChars int `mapstructure:"-"`
}

// ExtractorConfig holds AI normalizer settings with an optional secondary
// provider used as an availability fallback.
type ExtractorConfig struct {
	Primary   ProviderConfig `mapstructure:"primary"`
	Secondary ProviderConfig `mapstructure:"secondary"`

	MaxTextChars int `mapstructure:"max_text_chars"`
}

// SecondaryConfig returns the secondary provider config, or nil if not configured.
func (e *ExtractorConfig) SecondaryConfig() *ProviderConfig {
	if e.Secondary.Provider != "" {
		return &e.Secondary
	}
	return nil
}

// SessionConfig holds in-memory session lifecycle settings.
type SessionConfig struct {
	TTL           time.Duration `mapstructure:"ttl"`
	SweepInterval time.Duration `mapstructure:"sweep_interval"`
	MaxFileSizeMB int64         `mapstructure:"max_file_size_mb"`
}

// FreeTierConfig holds free tier metering settings.
type FreeTierConfig struct {
	DailyLimit int `mapstructure:"daily_limit"`
}

// LicenseConfig holds license verification settings.
type LicenseConfig struct {
	Endpoint         string `mapstructure:"endpoint"`
	ProductPermalink string `mapstructure:"product_permalink"`
	TimeoutSecs      int    `mapstructure:"timeout_secs"`
}

// Load reads configuration from environment variables with the FREIGHTSNAP_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("FREIGHTSNAP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "120s")
	v.SetDefault("server.environment", "development")

	// Log defaults
	v.SetDefault("log.level", "debug")
	v.SetDefault("log.format", "console")

	// CORS defaults (localhost origins for development)
	v.SetDefault("cors.allowed_origins", "http://localhost:3000,http://127.0.0.1:3000")

	// Extractor defaults: Groq is the primary provider, no secondary.
	v.SetDefault("extractor.primary.provider", "groq")
	v.SetDefault("extractor.primary.api_key", "")
	v.SetDefault("extractor.primary.model", "llama-3.3-70b-versatile")
	v.SetDefault("extractor.primary.temperature", 0.1)
	v.SetDefault("extractor.primary.max_output_tokens", 8000)
	v.SetDefault("extractor.primary.timeout_secs", 120)
	v.SetDefault("extractor.secondary.provider", "")
	v.SetDefault("extractor.secondary.api_key", "")
	v.SetDefault("extractor.secondary.model", "")
	v.SetDefault("extractor.secondary.temperature", 0.1)
	v.SetDefault("extractor.secondary.max_output_tokens", 8000)
	v.SetDefault("extractor.secondary.timeout_secs", 120)
	v.SetDefault("extractor.max_text_chars", 50000)

	// Session defaults
	v.SetDefault("session.ttl", "2h")
	v.SetDefault("session.sweep_interval", "5m")
	v.SetDefault("session.max_file_size_mb", 25)

	// Free tier defaults
	v.SetDefault("free_tier.daily_limit", 3)

	// License defaults
	v.SetDefault("license.endpoint", "https://api.gumroad.com/v2/licenses/verify")
	v.SetDefault("license.product_permalink", "freightsnap-pro")
	v.SetDefault("license.timeout_secs", 15)

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":                           "FREIGHTSNAP_SERVER_PORT",
		"server.read_timeout":                   "FREIGHTSNAP_SERVER_READ_TIMEOUT",
		"server.write_timeout":                  "FREIGHTSNAP_SERVER_WRITE_TIMEOUT",
		"server.environment":                    "FREIGHTSNAP_SERVER_ENVIRONMENT",
		"log.level":                             "FREIGHTSNAP_LOG_LEVEL",
		"log.format":                            "FREIGHTSNAP_LOG_FORMAT",
		"cors.allowed_origins":                  "FREIGHTSNAP_CORS_ALLOWED_ORIGINS",
		"extractor.primary.provider":            "FREIGHTSNAP_EXTRACTOR_PRIMARY_PROVIDER",
		"extractor.primary.api_key":             "FREIGHTSNAP_EXTRACTOR_PRIMARY_API_KEY",
		"extractor.primary.model":               "FREIGHTSNAP_EXTRACTOR_PRIMARY_MODEL",
		"extractor.primary.temperature":         "FREIGHTSNAP_EXTRACTOR_PRIMARY_TEMPERATURE",
		"extractor.primary.max_output_tokens":   "FREIGHTSNAP_EXTRACTOR_PRIMARY_MAX_OUTPUT_TOKENS",
		"extractor.primary.timeout_secs":        "FREIGHTSNAP_EXTRACTOR_PRIMARY_TIMEOUT_SECS",
		"extractor.secondary.provider":          "FREIGHTSNAP_EXTRACTOR_SECONDARY_PROVIDER",
		"extractor.secondary.api_key":           "FREIGHTSNAP_EXTRACTOR_SECONDARY_API_KEY",
		"extractor.secondary.model":             "FREIGHTSNAP_EXTRACTOR_SECONDARY_MODEL",
		"extractor.secondary.temperature":       "FREIGHTSNAP_EXTRACTOR_SECONDARY_TEMPERATURE",
		"extractor.secondary.max_output_tokens": "FREIGHTSNAP_EXTRACTOR_SECONDARY_MAX_OUTPUT_TOKENS",
		"extractor.secondary.timeout_secs":      "FREIGHTSNAP_EXTRACTOR_SECONDARY_TIMEOUT_SECS",
		"extractor.max_text_chars":              "FREIGHTSNAP_EXTRACTOR_MAX_TEXT_CHARS",
		"session.ttl":                           "FREIGHTSNAP_SESSION_TTL",
		"session.sweep_interval":                "FREIGHTSNAP_SESSION_SWEEP_INTERVAL",
		"session.max_file_size_mb":              "FREIGHTSNAP_SESSION_MAX_FILE_SIZE_MB",
		"free_tier.daily_limit":                 "FREIGHTSNAP_FREE_TIER_DAILY_LIMIT",
		"license.endpoint":                      "FREIGHTSNAP_LICENSE_ENDPOINT",
		"license.product_permalink":             "FREIGHTSNAP_LICENSE_PRODUCT_PERMALINK",
		"license.timeout_secs":                  "FREIGHTSNAP_LICENSE_TIMEOUT_SECS",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	// Railway/Heroku/Render set a PORT env var. Use it if FREIGHTSNAP_SERVER_PORT is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("FREIGHTSNAP_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:         serverPort,
		ReadTimeout:  v.GetDuration("server.read_timeout"),
		WriteTimeout: v.GetDuration("server.write_timeout"),
		Environment:  v.GetString("server.environment"),
	}
	cfg.Log = LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
	}

	// Parse CORS allowed origins from comma-separated string
	var corsOrigins []string
	for _, o := range strings.Split(v.GetString("cors.allowed_origins"), ",") {
		o = strings.TrimSpace(o)
		if o != "" {
			corsOrigins = append(corsOrigins, o)
		}
	}
	cfg.CORS = CORSConfig{AllowedOrigins: corsOrigins}

	cfg.Extractor = ExtractorConfig{
		Primary: ProviderConfig{
			Provider:        v.GetString("extractor.primary.provider"),
			APIKey:          v.GetString("extractor.primary.api_key"),
			Model:           v.GetString("extractor.primary.model"),
			Temperature:     v.GetFloat64("extractor.primary.temperature"),
			MaxOutputTokens: v.GetInt("extractor.primary.max_output_tokens"),
			TimeoutSecs:     v.GetInt("extractor.primary.timeout_secs"),
		},
		Secondary: ProviderConfig{
			Provider:        v.GetString("extractor.secondary.provider"),
			APIKey:          v.GetString("extractor.secondary.api_key"),
			Model:           v.GetString("extractor.secondary.model"),
			Temperature:     v.GetFloat64("extractor.secondary.temperature"),
			MaxOutputTokens: v.GetInt("extractor.secondary.max_output_tokens"),
			TimeoutSecs:     v.GetInt("extractor.secondary.timeout_secs"),
		},
		MaxTextChars: v.GetInt("extractor.max_text_chars"),
	}
	cfg.Extractor.Primary.MaxTextChars = cfg.Extractor.MaxTextChars
	cfg.Extractor.Secondary.MaxTextChars = cfg.Extractor.MaxTextChars

	cfg.Session = SessionConfig{
		TTL:           v.GetDuration("session.ttl"),
		SweepInterval: v.GetDuration("session.sweep_interval"),
		MaxFileSizeMB: v.GetInt64("session.max_file_size_mb"),
	}

	cfg.FreeTier = FreeTierConfig{
		DailyLimit: v.GetInt("free_tier.daily_limit"),
	}

	cfg.License = LicenseConfig{
		Endpoint:         v.GetString("license.endpoint"),
		ProductPermalink: v.GetString("license.product_permalink"),
		TimeoutSecs:      v.GetInt("license.timeout_secs"),
	}

	if cfg.Extractor.MaxTextChars <= 0 {
		return nil, fmt.Errorf("extractor.max_text_chars must be positive")
	}

	return cfg, nil
}

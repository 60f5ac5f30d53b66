package app

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"github.com/hirewire/hirewire/internal/database"
	"github.com/hirewire/hirewire/internal/notify"
)

// Config is the root application configuration.
type Config struct {
	Server       ServerConfig       `mapstructure:"server"`
	Database     DatabaseConfig     `mapstructure:"database"`
	Cache        CacheConfig        `mapstructure:"cache"`
	Auth         AuthConfig         `mapstructure:"auth"`
	Email        EmailConfig        `mapstructure:"email"`
	SMS          SMSConfig          `mapstructure:"sms"`
	Verification VerificationConfig `mapstructure:"verification"`
	RateLimit    RateLimitConfig    `mapstructure:"rate_limit"`
}

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	Host       string `mapstructure:"host"`
	Port       int    `mapstructure:"port"`
	LogLevel   string `mapstructure:"log_level"`
	RequestLog bool   `mapstructure:"request_log"`
}

// DatabaseConfig selects and configures the primary database.
type DatabaseConfig struct {
	Driver   string `mapstructure:"driver"`
	Path     string `mapstructure:"path"`
	DSN      string `mapstructure:"dsn"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Name     string `mapstructure:"name"`
	User     string            `mapstructure:"user"`
	Password string            `mapstructure:"password"`
	Options  map[string]string `mapstructure:"options"`
}

// CacheConfig selects the cache backend.
type CacheConfig struct {
	Driver string      `mapstructure:"driver"`
	Redis  RedisConfig `mapstructure:"redis"`
}

// RedisConfig configures the redis cache backend.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	TLS      bool   `mapstructure:"tls"`
}

// AuthConfig configures token issuance.
type AuthConfig struct {
	JWTSecret       string        `mapstructure:"jwt_secret"`
	JWTIssuer       string        `mapstructure:"jwt_issuer"`
	AccessTokenTTL  time.Duration `mapstructure:"access_token_ttl"`
	RefreshTokenTTL time.Duration `mapstructure:"refresh_token_ttl"`
	RefreshLength   int           `mapstructure:"refresh_length"`
}

// EmailConfig configures SMTP delivery.
type EmailConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
}

// SMSConfig configures SMS delivery.
type SMSConfig struct {
	Region string `mapstructure:"region"`
}

// VerificationConfig tunes the code lifecycle.
type VerificationConfig struct {
	CodeTTL      time.Duration `mapstructure:"code_ttl"`
	ResendWindow time.Duration `mapstructure:"resend_window"`
	Retention    time.Duration `mapstructure:"retention"`
}

// RateLimitConfig tunes the per-IP request limiter.
type RateLimitConfig struct {
	MaxRequests int           `mapstructure:"max_requests"`
	Window      time.Duration `mapstructure:"window"`
}

// LoadConfig reads configuration from file and environment.
// Environment variables use the HIREWIRE_ prefix with underscores,
// e.g. HIREWIRE_SERVER_PORT or HIREWIRE_AUTH_JWT_SECRET.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.request_log", true)

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", "hirewire.db")

	v.SetDefault("cache.driver", "memory")
	v.SetDefault("cache.redis.addr", "localhost:6379")

	v.SetDefault("auth.jwt_issuer", "hirewire")
	v.SetDefault("auth.access_token_ttl", "15m")
	v.SetDefault("auth.refresh_token_ttl", "720h")
	v.SetDefault("auth.refresh_length", 48)

	v.SetDefault("email.port", 587)

	v.SetDefault("sms.region", "us-east-1")

	v.SetDefault("verification.code_ttl", "10m")
	v.SetDefault("verification.resend_window", "60s")
	v.SetDefault("verification.retention", "600s")

	v.SetDefault("rate_limit.max_requests", 60)
	v.SetDefault("rate_limit.window", "1m")

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/hirewire")
	}

	v.SetEnvPrefix("HIREWIRE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// A missing default config file is fine; env and defaults cover it.
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config: read: %w", err)
		}
	}

	var cfg Config
	decodeHook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))
	if err := v.Unmarshal(&cfg, decodeHook); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}

	if cfg.Auth.JWTSecret == "" {
		return nil, fmt.Errorf("config: auth.jwt_secret is required")
	}

	return &cfg, nil
}

// DatabaseConfig converts the app settings into the database package config.
func (c *Config) DatabaseConfig() database.Config {
	return database.Config{
		Driver:   c.Database.Driver,
		Path:     c.Database.Path,
		DSN:      c.Database.DSN,
		Host:     c.Database.Host,
		Port:     c.Database.Port,
		Name:     c.Database.Name,
		User:     c.Database.User,
		Password: c.Database.Password,
		Options:  c.Database.Options,
	}
}

// SMTPConfig converts the app settings into the mailer config.
func (c *Config) SMTPConfig() notify.SMTPConfig {
	return notify.SMTPConfig{
		Host:     c.Email.Host,
		Port:     c.Email.Port,
		Username: c.Email.Username,
		Password: c.Email.Password,
		From:     c.Email.From,
	}
}

// Addr returns the listen address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

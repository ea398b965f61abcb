// Package config loads server settings from an optional HCL file, then the
// environment, then defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsimple"
)

// Config is the resolved server configuration.
type Config struct {
	ListenAddr     string
	DatabaseDriver string
	DatabaseURL    string
	JWTSecret      string
	TokenTTL       time.Duration
	LogLevel       string
	LogDevelopment bool
	RateLimitRPS   float64
	RateLimitBurst int
}

// Defaults.
const (
	DefaultListenAddr     = ":8080"
	DefaultDatabaseDriver = "sqlite"
	DefaultDatabaseURL    = "matchbook.db"
	DefaultTokenTTL       = 24 * time.Hour
	DefaultLogLevel       = "info"
	DefaultRateLimitRPS   = 20
	DefaultRateLimitBurst = 40
)

// File is the HCL layout:
//
//	listen_addr = ":8080"
//
//	database {
//	  driver = "postgres"
//	  url    = "postgres://matchbook@localhost/matchbook"
//	}
//
//	auth {
//	  jwt_secret = "change-me"
//	  token_ttl  = "24h"
//	}
//
//	log {
//	  level       = "debug"
//	  development = true
//	}
//
//	rate_limit {
//	  rps   = 20
//	  burst = 40
//	}
type File struct {
	ListenAddr string         `hcl:"listen_addr,optional"`
	Database   *DatabaseBlock `hcl:"database,block"`
	Auth       *AuthBlock     `hcl:"auth,block"`
	Log        *LogBlock      `hcl:"log,block"`
	RateLimit  *RateBlock     `hcl:"rate_limit,block"`
}

type DatabaseBlock struct {
	Driver string `hcl:"driver,optional"`
	URL    string `hcl:"url,optional"`
}

type AuthBlock struct {
	JWTSecret string `hcl:"jwt_secret,optional"`
	TokenTTL  string `hcl:"token_ttl,optional"`
}

type LogBlock struct {
	Level       string `hcl:"level,optional"`
	Development bool   `hcl:"development,optional"`
}

type RateBlock struct {
	RPS   float64 `hcl:"rps,optional"`
	Burst int     `hcl:"burst,optional"`
}

// Load reads path (skipped when empty), applies env overrides from getenv,
// fills defaults and validates.
func Load(path string, getenv func(string) string) (*Config, error) {
	cfg := &Config{}
	if path != "" {
		src, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		if err := cfg.applyHCL(src, path); err != nil {
			return nil, err
		}
	}
	if getenv == nil {
		getenv = os.Getenv
	}
	if err := cfg.applyEnv(getenv); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse decodes HCL source without touching the environment.
func Parse(src []byte, filename string) (*Config, error) {
	cfg := &Config{}
	if err := cfg.applyHCL(src, filename); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyHCL(src []byte, filename string) error {
	var f File
	if err := hclsimple.Decode(filename, src, nil, &f); err != nil {
		var diags hcl.Diagnostics
		if errors.As(err, &diags) {
			for _, diag := range diags {
				if diag.Severity == hcl.DiagError {
					return fmt.Errorf("config parse error at %s: %s", diag.Subject, diag.Detail)
				}
			}
		}
		return fmt.Errorf("parsing config: %w", err)
	}

	c.ListenAddr = f.ListenAddr
	if f.Database != nil {
		c.DatabaseDriver = f.Database.Driver
		c.DatabaseURL = f.Database.URL
	}
	if f.Auth != nil {
		c.JWTSecret = f.Auth.JWTSecret
		if f.Auth.TokenTTL != "" {
			ttl, err := time.ParseDuration(f.Auth.TokenTTL)
			if err != nil {
				return fmt.Errorf("auth.token_ttl: %w", err)
			}
			c.TokenTTL = ttl
		}
	}
	if f.Log != nil {
		c.LogLevel = f.Log.Level
		c.LogDevelopment = f.Log.Development
	}
	if f.RateLimit != nil {
		c.RateLimitRPS = f.RateLimit.RPS
		c.RateLimitBurst = f.RateLimit.Burst
	}
	return nil
}

func (c *Config) applyEnv(getenv func(string) string) error {
	if v := getenv("LISTEN_ADDR"); v != "" {
		c.ListenAddr = v
	}
	if v := getenv("DATABASE_DRIVER"); v != "" {
		c.DatabaseDriver = v
	}
	if v := getenv("DATABASE_URL"); v != "" {
		c.DatabaseURL = v
	}
	if v := getenv("JWT_SECRET"); v != "" {
		c.JWTSecret = v
	}
	if v := getenv("LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := getenv("TOKEN_TTL"); v != "" {
		ttl, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("TOKEN_TTL: %w", err)
		}
		c.TokenTTL = ttl
	}
	if v := getenv("RATE_LIMIT_RPS"); v != "" {
		rps, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("RATE_LIMIT_RPS: %w", err)
		}
		c.RateLimitRPS = rps
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.ListenAddr == "" {
		c.ListenAddr = DefaultListenAddr
	}
	if c.DatabaseDriver == "" {
		c.DatabaseDriver = DefaultDatabaseDriver
	}
	if c.DatabaseURL == "" && c.DatabaseDriver == DefaultDatabaseDriver {
		c.DatabaseURL = DefaultDatabaseURL
	}
	if c.TokenTTL == 0 {
		c.TokenTTL = DefaultTokenTTL
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
	if c.RateLimitRPS == 0 {
		c.RateLimitRPS = DefaultRateLimitRPS
	}
	if c.RateLimitBurst == 0 {
		c.RateLimitBurst = DefaultRateLimitBurst
	}
}

// Validate reports settings the server cannot start with.
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return errors.New("jwt secret is required (auth.jwt_secret or JWT_SECRET)")
	}
	if c.DatabaseURL == "" {
		return errors.New("database url is required (database.url or DATABASE_URL)")
	}
	switch c.DatabaseDriver {
	case "sqlite", "postgres", "pgx":
	default:
		return fmt.Errorf("unsupported database driver %q", c.DatabaseDriver)
	}
	if c.TokenTTL < 0 {
		return errors.New("token ttl must be positive")
	}
	if c.RateLimitRPS < 0 || c.RateLimitBurst < 0 {
		return errors.New("rate limit must not be negative")
	}
	return nil
}

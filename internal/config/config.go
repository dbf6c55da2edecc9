// Package config loads settings from BAZAAR_* environment variables and
// builds the process logger.
package config

import (
	"fmt"
	"io"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/sirupsen/logrus"
)

// Prefix of every environment variable read by Load.
const Prefix = "bazaar"

const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

// Config holds the BAZAAR_* settings.
type Config struct {
	DatabaseURL string        `envconfig:"DATABASE_URL"`
	HTTPAddr    string        `envconfig:"HTTP_ADDR" default:":8080"`
	UploadDir   string        `envconfig:"UPLOAD_DIR" default:"./uploads"`
	JWTSecret   string        `envconfig:"JWT_SECRET" required:"true"`
	JWTTTL      time.Duration `envconfig:"JWT_TTL" default:"24h"`
	BcryptCost  int           `envconfig:"BCRYPT_COST" default:"10"`
	LogLevel    string        `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat   string        `envconfig:"LOG_FORMAT" default:"text"`
	Store       string        `envconfig:"STORE" default:"postgres"`
}

// Load reads the environment and validates the result.
func Load() (*Config, error) {
	var c Config
	if err := envconfig.Process(Prefix, &c); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// LoadDatabaseURL reads only BAZAAR_DATABASE_URL, for commands that need
// nothing else.
func LoadDatabaseURL() (string, error) {
	var c struct {
		DatabaseURL string `envconfig:"DATABASE_URL"`
	}
	if err := envconfig.Process(Prefix, &c); err != nil {
		return "", fmt.Errorf("load config: %w", err)
	}
	return c.DatabaseURL, nil
}

// Validate reports settings that envconfig accepts but the server cannot run with.
func (c *Config) Validate() error {
	switch c.Store {
	case StorePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("BAZAAR_DATABASE_URL is required with the postgres store")
		}
	case StoreMemory:
	default:
		return fmt.Errorf("unknown store %q", c.Store)
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("BAZAAR_JWT_SECRET must not be empty")
	}
	if c.JWTTTL <= 0 {
		return fmt.Errorf("BAZAAR_JWT_TTL must be positive")
	}
	return nil
}

// NewLogger builds a logger writing to out at the configured level and format.
func (c *Config) NewLogger(out io.Writer) (*logrus.Logger, error) {
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}

	log := logrus.New()
	log.SetOutput(out)
	log.SetLevel(level)
	switch c.LogFormat {
	case "json":
		log.SetFormatter(&logrus.JSONFormatter{})
	case "text":
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	default:
		return nil, fmt.Errorf("unknown log format %q", c.LogFormat)
	}
	return log, nil
}

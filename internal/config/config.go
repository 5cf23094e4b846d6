package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	pkgconfig "github.com/Sahithee-Vadali/Roxiler-Systems-client/pkg/config"
)

// Session storage backends.
const (
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

// DefaultAPIURL is the base URL used when none is configured.
const DefaultAPIURL = "http://localhost:5000"

// Config holds all configuration for the storerate client.
type Config struct {
	Environment string `env:"STORERATE_ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"STORERATE_LOG_LEVEL" envDefault:"warn"`

	// API
	APIURL        string        `env:"STORERATE_API_URL"`
	LegacyAPIURL  string        `env:"REACT_APP_API_URL"`
	HTTPTimeout   time.Duration `env:"STORERATE_HTTP_TIMEOUT" envDefault:"0s"`
	BreakerEnable bool          `env:"STORERATE_CIRCUIT_BREAKER_ENABLED" envDefault:"false"`

	// Session storage
	SessionBackend string        `env:"STORERATE_SESSION_BACKEND" envDefault:"file"`
	SessionFile    string        `env:"STORERATE_SESSION_FILE"`
	Profile        string        `env:"STORERATE_PROFILE" envDefault:"default"`
	SessionTTL     time.Duration `env:"STORERATE_SESSION_TTL" envDefault:"0s"`

	// Redis
	RedisHost     string `env:"STORERATE_REDIS_HOST" envDefault:"localhost"`
	RedisPort     int    `env:"STORERATE_REDIS_PORT" envDefault:"6379"`
	RedisPassword string `env:"STORERATE_REDIS_PASSWORD"`
	RedisDB       int    `env:"STORERATE_REDIS_DB" envDefault:"0"`

	// OpenTelemetry
	OTELEnabled    bool    `env:"STORERATE_OTEL_ENABLED" envDefault:"false"`
	OTELEndpoint   string  `env:"STORERATE_OTEL_ENDPOINT" envDefault:"localhost:4318"`
	OTELSampleRate float64 `env:"STORERATE_OTEL_SAMPLE_RATE" envDefault:"1.0"`
}

// Load reads configuration from a .env file in the working directory (if
// any) and then from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.LoadWithDotenv(cfg, ".env"); err != nil {
		return nil, fmt.Errorf("load storerate config: %w", err)
	}
	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) normalize() error {
	if c.APIURL == "" {
		c.APIURL = c.LegacyAPIURL
	}
	if c.APIURL == "" {
		c.APIURL = DefaultAPIURL
	}
	c.APIURL = strings.TrimRight(c.APIURL, "/")

	u, err := url.Parse(c.APIURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid API URL %q: must be an absolute http(s) URL", c.APIURL)
	}

	switch c.SessionBackend {
	case BackendFile, BackendRedis, BackendMemory:
	default:
		return fmt.Errorf("invalid session backend %q: want %s, %s or %s",
			c.SessionBackend, BackendFile, BackendRedis, BackendMemory)
	}

	if c.Profile == "" {
		return fmt.Errorf("profile must not be empty")
	}

	if c.SessionBackend == BackendRedis && (c.RedisPort < 1 || c.RedisPort > 65535) {
		return fmt.Errorf("invalid redis port: %d", c.RedisPort)
	}

	if c.OTELSampleRate < 0 || c.OTELSampleRate > 1 {
		return fmt.Errorf("invalid OTEL sample rate %v: must be within [0,1]", c.OTELSampleRate)
	}

	if c.SessionBackend == BackendFile && c.SessionFile == "" {
		path, err := defaultSessionFile(c.Profile)
		if err != nil {
			return err
		}
		c.SessionFile = path
	}
	return nil
}

// RedisAddr returns the Redis address string.
func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.RedisHost, c.RedisPort)
}

func defaultSessionFile(profile string) (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locate config dir: %w", err)
	}
	return filepath.Join(dir, "storerate", profile+".session.json"), nil
}

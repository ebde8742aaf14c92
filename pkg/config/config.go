package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of environment overrides, e.g. INVSCAN_API_KEY
const EnvPrefix = "INVSCAN"

// Config is the runtime configuration shared by the CLI and the HTTP server
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	API       APIConfig       `mapstructure:"api"`
	Data      DataConfig      `mapstructure:"data"`
	Upload    UploadConfig    `mapstructure:"upload"`
	Scan      ScanConfig      `mapstructure:"scan"`
	Log       LogConfig       `mapstructure:"log"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`
}

type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

type APIConfig struct {
	// Key is compared to the filter-api-key request header. Empty disables the check.
	Key string `mapstructure:"key"`
}

type DataConfig struct {
	Dir string `mapstructure:"dir"`
}

type UploadConfig struct {
	Dir string `mapstructure:"dir"`
}

type ScanConfig struct {
	ChunkSize int `mapstructure:"chunksize"`
	Limit     int `mapstructure:"limit"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type RateLimitConfig struct {
	PerMinute int `mapstructure:"perminute"`
	Burst     int `mapstructure:"burst"`
}

var defaults = map[string]interface{}{
	"server.addr":         ":8080",
	"api.key":             "",
	"data.dir":            "data",
	"upload.dir":          "uploads",
	"scan.chunksize":      200,
	"scan.limit":          30,
	"log.level":           "info",
	"log.format":          "text",
	"ratelimit.perminute": 600,
	"ratelimit.burst":     50,
}

// Load reads configuration from defaults, then the optional file at path,
// then INVSCAN_ environment variables. An empty path skips the file.
func Load(path string) (*Config, error) {
	v := viper.New()
	for key, val := range defaults {
		v.SetDefault(key, val)
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config %s: %w", path, err)
			}
		}
	}

	// scan.chunksize -> INVSCAN_SCAN_CHUNKSIZE
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns the configuration used when nothing is overridden
func Default() *Config {
	cfg, err := Load("")
	if err != nil {
		panic(err)
	}
	return cfg
}

// Validate rejects values the scanner or server cannot run with
func (c *Config) Validate() error {
	if c.Scan.ChunkSize < 1 {
		return fmt.Errorf("scan.chunksize must be positive, got %d", c.Scan.ChunkSize)
	}
	if c.RateLimit.PerMinute < 0 || c.RateLimit.Burst < 0 {
		return fmt.Errorf("ratelimit values must not be negative")
	}
	return nil
}

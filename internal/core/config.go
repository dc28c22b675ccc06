package core

import (
	"errors"
	"fmt"
	"time"

	"nowplaying/pkg/musiclink"
	"nowplaying/pkg/text"
)

const (
	// DefaultServerPort is the port the HTTP API listens on.
	DefaultServerPort = 8080
	// DefaultFloodLimitPerMinute is the number of parse requests a client may send per minute.
	DefaultFloodLimitPerMinute = 120
	// DefaultSeenCapacity is the number of song identities remembered per session.
	DefaultSeenCapacity = 10000
	// DefaultSeenFalsePositiveRate is the Bloom filter false positive rate of the seen store.
	DefaultSeenFalsePositiveRate = 0.001
	// DefaultMaxRequestBytes bounds the size of a parse request body.
	DefaultMaxRequestBytes = 64 << 10
)

var (
	// ErrInvalidConfig is wrapped by every Validate failure.
	ErrInvalidConfig = errors.New("invalid configuration")
)

type Config struct {
	Server ServerConfig
	Log    LogConfig
	Parser musiclink.Config
	Store  StoreConfig
	App    AppConfig
}

type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type LogConfig struct {
	Level  string
	Format string
}

type StoreConfig struct {
	SeenCapacity          int
	SeenFalsePositiveRate float64
}

type AppConfig struct {
	FloodLimitPerMinute int
	MaxRequestBytes     int64
}

func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:         "0.0.0.0",
			Port:         DefaultServerPort,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		Parser: musiclink.Config{
			Title:               musiclink.DefaultTitleConfig(),
			ShortFormSeparators: text.ShortFormSeparators,
			Description:         musiclink.DefaultDescriptionConfig(),
		},
		Store: StoreConfig{
			SeenCapacity:          DefaultSeenCapacity,
			SeenFalsePositiveRate: DefaultSeenFalsePositiveRate,
		},
		App: AppConfig{
			FloodLimitPerMinute: DefaultFloodLimitPerMinute,
			MaxRequestBytes:     DefaultMaxRequestBytes,
		},
	}
}

// Validate checks the values that would otherwise fail deep inside a component.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("%w: server port %d out of range", ErrInvalidConfig, c.Server.Port)
	}
	if c.Store.SeenCapacity <= 0 {
		return fmt.Errorf("%w: seen capacity must be positive", ErrInvalidConfig)
	}
	if rate := c.Store.SeenFalsePositiveRate; rate <= 0 || rate >= 1 {
		return fmt.Errorf("%w: seen false positive rate %v must be in (0, 1)", ErrInvalidConfig, rate)
	}
	if c.App.FloodLimitPerMinute <= 0 {
		return fmt.Errorf("%w: flood limit must be positive", ErrInvalidConfig)
	}
	if c.App.MaxRequestBytes <= 0 {
		return fmt.Errorf("%w: max request bytes must be positive", ErrInvalidConfig)
	}
	for _, sep := range c.Parser.Title.Separators {
		if sep == "" {
			return fmt.Errorf("%w: empty title separator", ErrInvalidConfig)
		}
	}
	for _, sep := range c.Parser.ShortFormSeparators {
		if sep == "" {
			return fmt.Errorf("%w: empty short-form separator", ErrInvalidConfig)
		}
	}
	return nil
}

// Package config loads the tlrouter configuration: the routing plan and
// depth, per-call timeouts, optional client-side rate limits, the key
// sources, logging and the HTTP server.
//
// A minimal file:
//
//	plan:
//	  - provider: groq
//	  - provider: openai
//	    model: gpt-4o-mini
//	depth: 2
//	keys:
//	  file: ~/.local/share/tlrouter/auth.json
package config

import (
	"time"

	"github.com/ZaguanLabs/tlrouter"
)

// Config is the top-level configuration.
type Config struct {
	Plan      tlrouter.RoutingPlan `yaml:"plan"`
	Depth     int                  `yaml:"depth"`
	Timeouts  TimeoutConfig        `yaml:"timeouts"`
	RateLimit RateLimitConfig      `yaml:"rate_limit"`
	Keys      KeysConfig           `yaml:"keys"`
	Log       LogConfig            `yaml:"log"`
	Server    ServerConfig         `yaml:"server"`
}

// TimeoutConfig bounds each adapter call.
type TimeoutConfig struct {
	Translate time.Duration `yaml:"translate"`
	Analyze   time.Duration `yaml:"analyze"`
}

// RateLimitConfig throttles outbound calls per provider. Zero disables it.
type RateLimitConfig struct {
	RequestsPerMinute int `yaml:"requests_per_minute"`
	Burst             int `yaml:"burst"`
}

// Enabled reports whether client-side throttling is on.
func (c RateLimitConfig) Enabled() bool {
	return c.RequestsPerMinute > 0
}

// KeysConfig lists the key sources, consulted in the order static, env,
// file, redis.
type KeysConfig struct {
	Static map[tlrouter.ProviderID]string `yaml:"static"`
	Env    *bool                          `yaml:"env"`
	File   string                         `yaml:"file"`
	Redis  RedisKeysConfig                `yaml:"redis"`
}

// EnvEnabled reports whether environment variables are consulted.
func (c KeysConfig) EnvEnabled() bool {
	return c.Env == nil || *c.Env
}

// RedisKeysConfig enables the shared Redis key store when URL is set.
type RedisKeysConfig struct {
	URL    string `yaml:"url"`
	Prefix string `yaml:"prefix"`
}

// LogConfig controls the slog handler.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text or json
}

// ServerConfig configures `tlrouter serve`.
type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

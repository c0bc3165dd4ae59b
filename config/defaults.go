package config

import (
	"time"

	"github.com/ZaguanLabs/tlrouter"
)

// Default values for configuration fields.
const (
	DefaultLogLevel        = "info"
	DefaultLogFormat       = "text"
	DefaultServerAddr      = "127.0.0.1:8080"
	DefaultReadTimeout     = 10 * time.Second
	DefaultShutdownTimeout = 15 * time.Second
)

// DefaultPlan tries every built-in vendor; steps without a key are skipped.
func DefaultPlan() tlrouter.RoutingPlan {
	return tlrouter.RoutingPlan{
		{Provider: tlrouter.ProviderGroq},
		{Provider: tlrouter.ProviderCerebras},
		{Provider: tlrouter.ProviderGemini},
		{Provider: tlrouter.ProviderOpenAI},
		{Provider: tlrouter.ProviderXAI},
	}
}

// Defaults returns a configuration with every field at its default.
func Defaults() Config {
	return Config{
		Plan:  DefaultPlan(),
		Depth: tlrouter.MaxRoutingSteps,
		Timeouts: TimeoutConfig{
			Translate: tlrouter.DefaultTranslateTimeout,
			Analyze:   tlrouter.DefaultAnalyzeTimeout,
		},
		Log: LogConfig{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
		Server: ServerConfig{
			Addr:            DefaultServerAddr,
			ReadTimeout:     DefaultReadTimeout,
			ShutdownTimeout: DefaultShutdownTimeout,
		},
	}
}

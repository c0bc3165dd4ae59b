package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ZaguanLabs/tlrouter"
)

// Validate checks the configuration for required fields and valid values.
// Every problem is reported, each with its field path.
func (c *Config) Validate() error {
	var errs []error

	if len(c.Plan) == 0 {
		errs = append(errs, fmt.Errorf("plan must list at least one step"))
	}
	if len(c.Plan) > tlrouter.MaxRoutingSteps {
		errs = append(errs, fmt.Errorf("plan has %d steps, at most %d are allowed", len(c.Plan), tlrouter.MaxRoutingSteps))
	}
	for i, step := range c.Plan {
		cfg := step.Config("")
		if err := cfg.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("plan[%d]: %w", i, err))
			continue
		}
		if !tlrouter.KnownProviders[step.Provider] {
			errs = append(errs, fmt.Errorf("plan[%d].provider: unknown provider %q", i, step.Provider))
		}
	}

	if c.Depth < 1 || c.Depth > tlrouter.MaxRoutingSteps {
		errs = append(errs, fmt.Errorf("depth must be between 1 and %d, got %d", tlrouter.MaxRoutingSteps, c.Depth))
	}

	if c.Timeouts.Translate < 0 {
		errs = append(errs, fmt.Errorf("timeouts.translate must not be negative"))
	}
	if c.Timeouts.Analyze < 0 {
		errs = append(errs, fmt.Errorf("timeouts.analyze must not be negative"))
	}

	if c.RateLimit.RequestsPerMinute < 0 || c.RateLimit.Burst < 0 {
		errs = append(errs, fmt.Errorf("rate_limit values must not be negative"))
	}

	for id := range c.Keys.Static {
		if !tlrouter.KnownProviders[id] {
			errs = append(errs, fmt.Errorf("keys.static: unknown provider %q", id))
		}
	}
	if url := c.Keys.Redis.URL; url != "" && !strings.HasPrefix(url, "redis://") && !strings.HasPrefix(url, "rediss://") {
		errs = append(errs, fmt.Errorf("keys.redis.url must start with redis:// or rediss://"))
	}

	if _, err := parseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json", "":
	default:
		errs = append(errs, fmt.Errorf("log.format must be \"text\" or \"json\", got %q", c.Log.Format))
	}

	return errors.Join(errs...)
}

package config

import (
	"fmt"
	"strings"
)

// Validate performs business-rule validation on the loaded configuration.
// It must be called after loading; Load calls it automatically.
func (c *Config) Validate() error {
	if err := c.Policy.validate(); err != nil {
		return fmt.Errorf("policy: %w", err)
	}
	if err := c.Sweep.validate(); err != nil {
		return fmt.Errorf("sweep: %w", err)
	}

	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log: level must be one of debug, info, warn, error (got %q)", c.Log.Level)
	}

	if c.Server.RateLimitPerMinute <= 0 {
		return fmt.Errorf("server: rate_limit_per_minute must be > 0 (got %d)", c.Server.RateLimitPerMinute)
	}

	return nil
}

func (p *PolicyConfig) validate() error {
	if p.MinInterval <= 0 {
		return fmt.Errorf("min_interval must be > 0 (got %v)", p.MinInterval)
	}
	if p.MaxInterval < p.MinInterval {
		return fmt.Errorf("max_interval must be >= min_interval (got %v < %v)", p.MaxInterval, p.MinInterval)
	}
	// Growth factors must not shrink the interval: a factor below 1.0
	// would break monotonic interval growth on successful reviews.
	if p.HardFactor < 1.0 {
		return fmt.Errorf("hard_factor must be >= 1.0 (got %v)", p.HardFactor)
	}
	if p.GoodFactor < p.HardFactor {
		return fmt.Errorf("good_factor must be >= hard_factor (got %v < %v)", p.GoodFactor, p.HardFactor)
	}
	if p.EasyFactor < p.GoodFactor {
		return fmt.Errorf("easy_factor must be >= good_factor (got %v < %v)", p.EasyFactor, p.GoodFactor)
	}
	return nil
}

func (s *SweepConfig) validate() error {
	if s.Interval <= 0 {
		return fmt.Errorf("interval must be > 0 (got %v)", s.Interval)
	}
	if s.BatchLimit <= 0 {
		return fmt.Errorf("batch_limit must be > 0 (got %d)", s.BatchLimit)
	}
	if s.RetryCap < 0 {
		return fmt.Errorf("retry_cap must be >= 0 (got %d)", s.RetryCap)
	}
	if s.DeliveryTimeout <= 0 {
		return fmt.Errorf("delivery_timeout must be > 0 (got %v)", s.DeliveryTimeout)
	}
	if s.ReconcileGrace < s.Interval {
		return fmt.Errorf("reconcile_grace must be >= interval (got %v < %v)", s.ReconcileGrace, s.Interval)
	}
	return nil
}

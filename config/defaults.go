package config

import "github.com/next-trace/scg-mediator/dispatch"

// Defaults returns a fully populated default configuration.
func Defaults() *Config {
	cfg := &Config{}
	SetDefaults(cfg)

	return cfg
}

// SetDefaults fills every empty field with its default value.
func SetDefaults(cfg *Config) {
	if cfg.Publish.Strategy == "" {
		cfg.Publish.Strategy = dispatch.DefaultStrategy.String()
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}

	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "text"
	}

	if cfg.Relay.Transport == "" {
		cfg.Relay.Transport = "none"
	}

	if cfg.RateLimit.RPS > 0 && cfg.RateLimit.Burst == 0 {
		cfg.RateLimit.Burst = 1
	}
}

// Package config loads engine configuration from a yaml file, a .env file and
// MEDIATOR_* environment variables, in increasing priority.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	berr "github.com/next-trace/scg-mediator/contract/errors"
	"github.com/next-trace/scg-mediator/dispatch"
)

// EnvPrefix prefixes every environment override, e.g. MEDIATOR_PUBLISH_STRATEGY.
const EnvPrefix = "MEDIATOR"

// Config is the mediator configuration as loaded by Load.
type Config struct {
	Publish   PublishConfig   `mapstructure:"publish"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Relay     RelayConfig     `mapstructure:"relay"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`
}

// PublishConfig selects the default publish strategy.
type PublishConfig struct {
	// Default multicast strategy name, see dispatch.StrategyNames.
	Strategy string `mapstructure:"strategy" validate:"required,strategy"`
}

// RelayConfig selects and addresses the outbound relay transport.
type RelayConfig struct {
	// Transport: none, inmemory, nats, kafka, rabbitmq
	Transport     string   `mapstructure:"transport" validate:"required,oneof=none inmemory nats kafka rabbitmq"`
	URL           string   `mapstructure:"url" validate:"omitempty,url"`
	Brokers       []string `mapstructure:"brokers" validate:"omitempty,dive,hostname_port"`
	SubjectPrefix string   `mapstructure:"subject_prefix"`
	Exchange      string   `mapstructure:"exchange"`
	ClientID      string   `mapstructure:"client_id"`
}

// RateLimitConfig bounds sends per second; RPS 0 disables limiting.
type RateLimitConfig struct {
	RPS   float64 `mapstructure:"rps" validate:"gte=0"`
	Burst int     `mapstructure:"burst" validate:"gte=0"`
}

// Load reads configuration from path (or mediator.yaml in the usual places
// when path is empty), applies defaults and validates the result.
func Load(path string) (*Config, error) {
	// Load .env file if it exists (doesn't error if missing)
	_ = godotenv.Load()

	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("mediator")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// keys must be known to viper for AutomaticEnv to reach them on Unmarshal
	registerKeys(v, Defaults())

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	SetDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", errors.Join(berr.ErrNotConfigured, err))
	}

	return &cfg, nil
}

// MustLoad loads configuration and panics on error (for use in main).
func MustLoad(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		panic(fmt.Sprintf("failed to load configuration: %v", err))
	}

	return cfg
}

// Strategy returns the parsed default publish strategy.
func (c *Config) Strategy() (dispatch.Strategy, error) {
	return dispatch.ParseStrategy(c.Publish.Strategy)
}

func registerKeys(v *viper.Viper, d *Config) {
	v.SetDefault("publish.strategy", d.Publish.Strategy)
	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)
	v.SetDefault("relay.transport", d.Relay.Transport)
	v.SetDefault("relay.url", d.Relay.URL)
	v.SetDefault("relay.brokers", d.Relay.Brokers)
	v.SetDefault("relay.subject_prefix", d.Relay.SubjectPrefix)
	v.SetDefault("relay.exchange", d.Relay.Exchange)
	v.SetDefault("relay.client_id", d.Relay.ClientID)
	v.SetDefault("ratelimit.rps", d.RateLimit.RPS)
	v.SetDefault("ratelimit.burst", d.RateLimit.Burst)
}

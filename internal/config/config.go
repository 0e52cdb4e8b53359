package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Controller policy selection. The two policies are mutually exclusive and
// chosen per deployment.
const (
	PolicyAntifreeze = "antifreeze"
	PolicyKeepAlive  = "keepalive"
)

// Serial describes the chiller serial device.
type Serial struct {
	Port       string        `mapstructure:"port"`
	Baud       int           `mapstructure:"baud"`
	Timeout    time.Duration `mapstructure:"timeout"`
	QueryDelay time.Duration `mapstructure:"query_delay"`
}

// Poll tunes the poll loop cadence.
type Poll struct {
	Interval       time.Duration `mapstructure:"interval"`
	ReconnectDelay time.Duration `mapstructure:"reconnect_delay"`
}

// Controller selects and parameterizes the automatic decision policy.
type Controller struct {
	Policy                 string        `mapstructure:"policy"`
	AntifreezeEnableLimit  float64       `mapstructure:"antifreeze_enable_limit"`
	AntifreezeDisableLimit float64       `mapstructure:"antifreeze_disable_limit"`
	KeepAliveTimeout       time.Duration `mapstructure:"keepalive_timeout"`
	FrostThreshold         float64       `mapstructure:"frost_threshold"`
}

// Allowlists holds the network origins authorized for privileged calls.
type Allowlists struct {
	Control []string `mapstructure:"control"`
	Camera  []string `mapstructure:"camera"`
}

// Environment points at the temperature collaborator. An empty URL disables
// the collaborator and the controller falls back to the chiller's own
// ambient sensor.
type Environment struct {
	URL      string        `mapstructure:"url"`
	ValueKey string        `mapstructure:"value_key"`
	ValidKey string        `mapstructure:"valid_key"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// Power points at the power-channel collaborator. An empty URL disables it.
type Power struct {
	URL      string        `mapstructure:"url"`
	Channels []string      `mapstructure:"channels"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// Config is the daemon configuration loaded from configs/config.yml.
type Config struct {
	Port        string      `mapstructure:"port"`
	LogLevel    string      `mapstructure:"log_level"`
	Serial      Serial      `mapstructure:"serial"`
	Poll        Poll        `mapstructure:"poll"`
	Controller  Controller  `mapstructure:"controller"`
	Allowlists  Allowlists  `mapstructure:"allowlists"`
	Environment Environment `mapstructure:"environment"`
	Power       Power       `mapstructure:"power"`
}

// Load reads and validates the configuration from the given directory.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "9070")
	v.SetDefault("log_level", "info")
	v.SetDefault("serial.baud", 9600)
	v.SetDefault("serial.timeout", 5*time.Second)
	v.SetDefault("serial.query_delay", time.Second)
	v.SetDefault("poll.interval", 30*time.Second)
	v.SetDefault("poll.reconnect_delay", 10*time.Second)
	v.SetDefault("controller.keepalive_timeout", time.Minute)
	v.SetDefault("controller.frost_threshold", 5.0)
	v.SetDefault("environment.timeout", 3*time.Second)
	v.SetDefault("power.timeout", 3*time.Second)
}

// Validate rejects configurations the daemon cannot run with.
func (c *Config) Validate() error {
	if c.Serial.Port == "" {
		return fmt.Errorf("serial.port is required")
	}
	switch c.Controller.Policy {
	case PolicyAntifreeze:
		if c.Controller.AntifreezeDisableLimit <= c.Controller.AntifreezeEnableLimit {
			return fmt.Errorf("controller.antifreeze_disable_limit (%g) must be above controller.antifreeze_enable_limit (%g)",
				c.Controller.AntifreezeDisableLimit, c.Controller.AntifreezeEnableLimit)
		}
	case PolicyKeepAlive:
		if c.Controller.KeepAliveTimeout <= 0 {
			return fmt.Errorf("controller.keepalive_timeout must be positive")
		}
	default:
		return fmt.Errorf("controller.policy must be %q or %q, got %q",
			PolicyAntifreeze, PolicyKeepAlive, c.Controller.Policy)
	}
	if c.Environment.URL != "" && c.Environment.ValueKey == "" {
		return fmt.Errorf("environment.value_key is required when environment.url is set")
	}
	if c.Power.URL != "" && len(c.Power.Channels) == 0 {
		return fmt.Errorf("power.channels is required when power.url is set")
	}
	return nil
}

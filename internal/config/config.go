// ABOUTME: Configuration loading and parsing for sensorwatch
// ABOUTME: Supports YAML files with environment variable expansion and duration parsing

package config

import (
	"fmt"
	"os"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the complete sensorwatch configuration
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	Simulation SimulationConfig `yaml:"simulation"`
	Logging    LoggingConfig    `yaml:"logging"`
	Metrics    MetricsConfig    `yaml:"metrics"`
}

// ServerConfig holds the HTTP listener configuration
type ServerConfig struct {
	HTTPAddr string `yaml:"http_addr"`
	// AllowedOrigins are the cross-origin sources permitted to call the
	// dashboard API (the dashboard client is served from another domain)
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// DatabaseConfig holds database configuration.
// The database is ephemeral: it is rebuilt at startup and on every reset.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// SimulationConfig holds the timing and distribution knobs for the
// background actors.
type SimulationConfig struct {
	ProducerInterval   time.Duration `yaml:"-"`
	ClassifierInterval time.Duration `yaml:"-"`
	ResetInterval      time.Duration `yaml:"-"`

	// AnomalyProbability is the per-tick chance the producer emits an
	// anomalous value instead of a normal draw
	AnomalyProbability float64 `yaml:"anomaly_probability"`

	// Raw string values for YAML unmarshaling
	ProducerIntervalRaw   string `yaml:"producer_interval"`
	ClassifierIntervalRaw string `yaml:"classifier_interval"`
	ResetIntervalRaw      string `yaml:"reset_interval"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// MetricsConfig holds metrics endpoint configuration
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// Default returns the configuration used when no config file is present.
// The intervals mirror the reference deployment: one reading per second,
// a classifier pass every minute, a full dataset reset every 15 minutes.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			HTTPAddr: "localhost:5000",
		},
		Database: DatabaseConfig{
			Path: "sensor_data.db",
		},
		Simulation: SimulationConfig{
			ProducerInterval:   time.Second,
			ClassifierInterval: time.Minute,
			ResetInterval:      15 * time.Minute,
			AnomalyProbability: 0.05,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Path:    "/metrics",
		},
	}
}

// Load reads a configuration file from the given path and returns a parsed
// Config. Missing fields keep their defaults. Environment variables in the
// format ${VAR_NAME} are expanded. Duration strings are parsed into
// time.Duration values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	// Expand environment variables in the raw YAML content
	expandedData := expandEnvVars(string(data))

	cfg := Default()
	if err := yaml.Unmarshal([]byte(expandedData), cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	// Parse duration fields
	if err := parseDurations(cfg); err != nil {
		return nil, fmt.Errorf("parsing durations: %w", err)
	}

	// Validate required fields
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// expandEnvVars replaces ${VAR_NAME} patterns with the corresponding environment variable values.
// If the environment variable is not set, it is replaced with an empty string.
func expandEnvVars(s string) string {
	// Match ${VAR_NAME} pattern
	re := regexp.MustCompile(`\$\{([^}]+)\}`)

	return re.ReplaceAllStringFunc(s, func(match string) string {
		varName := re.FindStringSubmatch(match)[1]
		return os.Getenv(varName)
	})
}

// Validate checks that all required configuration fields are present and valid.
// Returns an error describing the first validation failure encountered.
func (c *Config) Validate() error {
	if c.Server.HTTPAddr == "" {
		return fmt.Errorf("server.http_addr is required")
	}

	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}

	if c.Simulation.AnomalyProbability < 0 || c.Simulation.AnomalyProbability > 1 {
		return fmt.Errorf("simulation.anomaly_probability must be between 0 and 1, got %v",
			c.Simulation.AnomalyProbability)
	}

	for name, d := range map[string]time.Duration{
		"simulation.producer_interval":   c.Simulation.ProducerInterval,
		"simulation.classifier_interval": c.Simulation.ClassifierInterval,
		"simulation.reset_interval":      c.Simulation.ResetInterval,
	} {
		if d <= 0 {
			return fmt.Errorf("%s must be positive", name)
		}
	}

	return nil
}

// parseDurations converts the raw duration strings into time.Duration values.
// Empty raw values keep the defaults already present on the config.
func parseDurations(cfg *Config) error {
	var err error

	if cfg.Simulation.ProducerIntervalRaw != "" {
		cfg.Simulation.ProducerInterval, err = time.ParseDuration(cfg.Simulation.ProducerIntervalRaw)
		if err != nil {
			return fmt.Errorf("parsing producer_interval %q: %w", cfg.Simulation.ProducerIntervalRaw, err)
		}
	}

	if cfg.Simulation.ClassifierIntervalRaw != "" {
		cfg.Simulation.ClassifierInterval, err = time.ParseDuration(cfg.Simulation.ClassifierIntervalRaw)
		if err != nil {
			return fmt.Errorf("parsing classifier_interval %q: %w", cfg.Simulation.ClassifierIntervalRaw, err)
		}
	}

	if cfg.Simulation.ResetIntervalRaw != "" {
		cfg.Simulation.ResetInterval, err = time.ParseDuration(cfg.Simulation.ResetIntervalRaw)
		if err != nil {
			return fmt.Errorf("parsing reset_interval %q: %w", cfg.Simulation.ResetIntervalRaw, err)
		}
	}

	return nil
}

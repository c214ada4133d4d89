// Package config loads run settings from defaults, an optional YAML file
// and IMAGEGRAB_* environment variables, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/go-scripts/imagegrab/internal/fetch"
)

// EnvPrefix prefixes every environment override
const EnvPrefix = "IMAGEGRAB_"

// Config captures everything one run needs.
type Config struct {
	UserAgent     string        `yaml:"user_agent"`
	Timeout       Duration      `yaml:"timeout"`
	Concurrency   int           `yaml:"concurrency"`
	OutputDir     string        `yaml:"output_dir"`
	MaxBodyBytes  int64         `yaml:"max_body_bytes"`
	RateLimit     float64       `yaml:"rate_limit"` // requests per second, 0 disables
	RespectRobots bool          `yaml:"respect_robots"`
	Logging       LoggingConfig `yaml:"logging"`
}

// LoggingConfig selects log verbosity.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Default returns a Config populated with the stock settings. OutputDir is
// left empty; DefaultOutputDir supplies a timestamped name at run time.
func Default() Config {
	return Config{
		UserAgent:    fetch.DefaultUserAgent,
		Timeout:      DurationFrom(fetch.DefaultTimeout),
		Concurrency:  10,
		MaxBodyBytes: fetch.DefaultMaxBodyBytes,
		Logging:      LoggingConfig{Level: "info"},
	}
}

// DefaultOutputDir names the destination after the start time of the run.
func DefaultOutputDir(now time.Time) string {
	return "images_" + now.Format("20060102_150405")
}

// Load reads and validates configuration from a YAML file. A missing file
// is not an error; the defaults are returned.
func Load(path string) (*Config, error) {
	cfg := Default()
	if strings.TrimSpace(path) == "" {
		return &cfg, nil
	}
	fh, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return &cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer fh.Close()

	if err := decodeYAML(fh, &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadFromReader decodes configuration from an arbitrary reader.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := Default()
	if err := decodeYAML(r, &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func decodeYAML(r io.Reader, cfg *Config) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("decode config: %w", err)
	}
	return nil
}

// ApplyEnv overrides fields from IMAGEGRAB_* variables found through
// lookup. Values that do not parse are skipped and reported; the previous
// value stays in place.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) []error {
	var problems []error
	get := func(name string) (string, bool) {
		v, ok := lookup(EnvPrefix + name)
		return strings.TrimSpace(v), ok && strings.TrimSpace(v) != ""
	}
	bad := func(name, v string, err error) {
		problems = append(problems, fmt.Errorf("%s%s=%q: %w", EnvPrefix, name, v, err))
	}

	if v, ok := get("USER_AGENT"); ok {
		c.UserAgent = v
	}
	if v, ok := get("OUTPUT_DIR"); ok {
		c.OutputDir = v
	}
	if v, ok := get("LOG_LEVEL"); ok {
		c.Logging.Level = v
	}
	if v, ok := get("TIMEOUT"); ok {
		if d, err := ParseDuration(v); err != nil {
			bad("TIMEOUT", v, err)
		} else {
			c.Timeout = d
		}
	}
	if v, ok := get("CONCURRENCY"); ok {
		if n, err := strconv.Atoi(v); err != nil {
			bad("CONCURRENCY", v, err)
		} else {
			c.Concurrency = n
		}
	}
	if v, ok := get("MAX_BODY_BYTES"); ok {
		if n, err := strconv.ParseInt(v, 10, 64); err != nil {
			bad("MAX_BODY_BYTES", v, err)
		} else {
			c.MaxBodyBytes = n
		}
	}
	if v, ok := get("RATE_LIMIT"); ok {
		if f, err := strconv.ParseFloat(v, 64); err != nil {
			bad("RATE_LIMIT", v, err)
		} else {
			c.RateLimit = f
		}
	}
	if v, ok := get("RESPECT_ROBOTS"); ok {
		c.RespectRobots = parseBool(v)
	}
	return problems
}

func parseBool(v string) bool {
	switch strings.ToLower(v) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}

// Validate enforces the invariants a run depends on.
func (c Config) Validate() error {
	if c.Concurrency < 1 {
		return fmt.Errorf("concurrency must be >= 1 (got %d)", c.Concurrency)
	}
	if c.Timeout.Duration <= 0 {
		return fmt.Errorf("timeout must be > 0 (got %s)", c.Timeout.Duration)
	}
	if c.RateLimit < 0 {
		return fmt.Errorf("rate_limit must be >= 0 (got %g)", c.RateLimit)
	}
	if c.MaxBodyBytes <= 0 {
		return fmt.Errorf("max_body_bytes must be > 0 (got %d)", c.MaxBodyBytes)
	}
	if strings.TrimSpace(c.UserAgent) == "" {
		return errors.New("user_agent must be set")
	}
	switch strings.ToLower(c.Logging.Level) {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level %q is not one of debug, info, warn, error", c.Logging.Level)
	}
	return nil
}

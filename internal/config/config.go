package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Addrs           []string      `yaml:"addrs"`            // listen addresses; the default binds loopback on both families
	LogDir          string        `yaml:"log_dir"`          // logs directory
	LogLevel        string        `yaml:"log_level"`        // debug, info, warn, error
	LogStderr       bool          `yaml:"log_stderr"`       // mirror logs to stderr
	PingBinary      string        `yaml:"ping_binary"`      // ping executable
	Ping6Binary     string        `yaml:"ping6_binary"`     // used for IPv6 literals when set (BSD ping6)
	MaxCount        int           `yaml:"max_count"`        // upper bound for ?count=, 0 = unlimited
	AllowedOrigins  []string      `yaml:"allowed_origins"`  // CORS origins
	APIKeys         []string      `yaml:"api_keys"`         // empty means no auth
	RateRPM         int           `yaml:"rate_rpm"`         // per-IP requests per minute, 0 = off
	RateBurst       int           `yaml:"rate_burst"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"` // graceful shutdown budget
}

func Default() Config {
	return Config{
		Addrs:           []string{"127.0.0.1:6122", "[::1]:6122"},
		LogDir:          "logs",
		LogLevel:        "info",
		PingBinary:      "ping",
		AllowedOrigins:  []string{"*"},
		RateBurst:       10,
		ShutdownTimeout: 10 * time.Second,
	}
}

// FromEnv returns the defaults overridden by the environment.
func FromEnv() Config {
	cfg := Default()
	ApplyEnv(&cfg)
	return cfg
}

// Load reads defaults, then the YAML file at path (if path is non-empty),
// then the environment.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	ApplyEnv(&cfg)
	return cfg, nil
}

// ApplyEnv overrides cfg with any of the recognised variables that are set.
// Unparsable numbers are ignored and the previous value is kept.
func ApplyEnv(cfg *Config) {
	if v := os.Getenv("ADDR"); v != "" {
		cfg.Addrs = splitList(v)
	}
	if v := os.Getenv("LOG_DIR"); v != "" {
		cfg.LogDir = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("LOG_STDERR"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.LogStderr = b
		}
	}
	if v := os.Getenv("PING_BINARY"); v != "" {
		cfg.PingBinary = v
	}
	if v := os.Getenv("PING6_BINARY"); v != "" {
		cfg.Ping6Binary = v
	}
	if v := os.Getenv("PING_MAX_COUNT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.MaxCount = n
		}
	}
	if v := os.Getenv("ALLOWED_ORIGINS"); v != "" {
		cfg.AllowedOrigins = splitList(v)
	}
	if v := os.Getenv("API_KEYS"); v != "" {
		cfg.APIKeys = splitList(v)
	}
	if v := os.Getenv("RATE_RPM"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.RateRPM = n
		}
	}
	if v := os.Getenv("RATE_BURST"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.RateBurst = n
		}
	}
	if v := os.Getenv("SHUTDOWN_TIMEOUT_MS"); v != "" {
		if ms, err := strconv.Atoi(v); err == nil && ms >= 0 {
			cfg.ShutdownTimeout = time.Duration(ms) * time.Millisecond
		}
	}
}

// Validate reports every problem at once.
func (c Config) Validate() error {
	var errs error
	if len(c.Addrs) == 0 {
		errs = multierr.Append(errs, errors.New("at least one listen address is required"))
	}
	for _, a := range c.Addrs {
		if !strings.Contains(a, ":") {
			errs = multierr.Append(errs, fmt.Errorf("listen address %q has no port", a))
		}
	}
	if c.LogDir == "" {
		errs = multierr.Append(errs, errors.New("log dir cannot be empty"))
	}
	if _, err := zapcore.ParseLevel(c.LogLevel); err != nil {
		errs = multierr.Append(errs, fmt.Errorf("log level: %w", err))
	}
	if c.PingBinary == "" {
		errs = multierr.Append(errs, errors.New("ping binary cannot be empty"))
	}
	if c.MaxCount < 0 {
		errs = multierr.Append(errs, errors.New("max count cannot be negative"))
	}
	if c.RateRPM < 0 {
		errs = multierr.Append(errs, errors.New("rate rpm cannot be negative"))
	}
	if c.RateRPM > 0 && c.RateBurst < 1 {
		errs = multierr.Append(errs, errors.New("rate burst must be at least 1 when rate limiting is on"))
	}
	if c.ShutdownTimeout < 0 {
		errs = multierr.Append(errs, errors.New("shutdown timeout cannot be negative"))
	}
	return errs
}

func splitList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

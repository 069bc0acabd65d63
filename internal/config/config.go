// Package config assembles the API's settings from defaults, an optional
// TOML or YAML file and LOANCALC_* environment variables, in that order.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"loancalc/internal/solver"
)

// FileEnv names the environment variable that points at a config file.
const FileEnv = "LOANCALC_CONFIG"

var ErrInvalid = errors.New("invalid config")

type Config struct {
	Addr        string `toml:"addr" yaml:"addr"`
	ServiceName string `toml:"service_name" yaml:"service_name"`

	// Epsilon is used for requests that do not carry their own tolerance.
	Epsilon                 float64 `toml:"epsilon" yaml:"epsilon"`
	MaxBruteForceIterations int     `toml:"max_brute_force_iterations" yaml:"max_brute_force_iterations"`
	MaxBisectionIterations  int     `toml:"max_bisection_iterations" yaml:"max_bisection_iterations"`

	// RedisAddr selects the Redis cache; empty means in-memory.
	RedisAddr string        `toml:"redis_addr" yaml:"redis_addr"`
	CacheTTL  time.Duration `toml:"cache_ttl" yaml:"cache_ttl"`
}

func Default() Config {
	return Config{
		Addr:                    ":8080",
		ServiceName:             "loancalc",
		Epsilon:                 solver.DefaultEpsilon,
		MaxBruteForceIterations: solver.DefaultLimits.BruteForceIterations,
		MaxBisectionIterations:  solver.DefaultLimits.BisectionIterations,
		CacheTTL:                10 * time.Minute,
	}
}

// Load returns the defaults overlaid with the file at path (skipped when
// path is empty) and then with the environment.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		if err := decodeFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// FromEnv is Load with the path taken from LOANCALC_CONFIG.
func FromEnv() (Config, error) {
	return Load(os.Getenv(FileEnv))
}

func (c Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr is empty", ErrInvalid)
	case !(c.Epsilon > 0):
		return fmt.Errorf("%w: epsilon must be positive, got %g", ErrInvalid, c.Epsilon)
	case c.MaxBruteForceIterations <= 0:
		return fmt.Errorf("%w: max_brute_force_iterations must be positive", ErrInvalid)
	case c.MaxBisectionIterations <= 0:
		return fmt.Errorf("%w: max_bisection_iterations must be positive", ErrInvalid)
	case c.CacheTTL < 0:
		return fmt.Errorf("%w: cache_ttl is negative", ErrInvalid)
	}
	return nil
}

// Limits converts the iteration ceilings for the solver package.
func (c Config) Limits() solver.Limits {
	return solver.Limits{
		BruteForceIterations: c.MaxBruteForceIterations,
		BisectionIterations:  c.MaxBisectionIterations,
	}
}

func decodeFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		if _, err := toml.Decode(string(data), cfg); err != nil {
			return fmt.Errorf("parse toml %s: %w", path, err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("parse yaml %s: %w", path, err)
		}
	default:
		return fmt.Errorf("%w: unsupported config extension %q", ErrInvalid, ext)
	}
	return nil
}

func applyEnv(cfg *Config) error {
	if v, ok := os.LookupEnv("LOANCALC_ADDR"); ok {
		cfg.Addr = v
	}
	if v, ok := os.LookupEnv("OTEL_SERVICE_NAME"); ok && v != "" {
		cfg.ServiceName = v
	}
	if v, ok := os.LookupEnv("LOANCALC_REDIS_ADDR"); ok {
		cfg.RedisAddr = v
	}

	if v, ok := os.LookupEnv("LOANCALC_EPSILON"); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("LOANCALC_EPSILON: %w", err)
		}
		cfg.Epsilon = f
	}
	if v, ok := os.LookupEnv("LOANCALC_MAX_BRUTE_FORCE_ITERATIONS"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("LOANCALC_MAX_BRUTE_FORCE_ITERATIONS: %w", err)
		}
		cfg.MaxBruteForceIterations = n
	}
	if v, ok := os.LookupEnv("LOANCALC_MAX_BISECTION_ITERATIONS"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("LOANCALC_MAX_BISECTION_ITERATIONS: %w", err)
		}
		cfg.MaxBisectionIterations = n
	}
	if v, ok := os.LookupEnv("LOANCALC_CACHE_TTL"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("LOANCALC_CACHE_TTL: %w", err)
		}
		cfg.CacheTTL = d
	}
	return nil
}

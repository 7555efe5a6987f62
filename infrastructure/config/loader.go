package config

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Loader layers configuration sources.
// The loading order (from lowest to highest priority):
//  1. Default values (in code)
//  2. YAML file, when a path is given or CONFIG_FILE is set
//  3. Environment variables
type Loader struct {
	path    string
	lookup  func(string) (string, bool)
	sources []string
}

// NewLoader creates a loader. An empty path falls back to CONFIG_FILE.
func NewLoader(path string) *Loader {
	return &Loader{
		path:   path,
		lookup: os.LookupEnv,
	}
}

// WithLookup replaces the environment lookup, mostly for tests
func (l *Loader) WithLookup(lookup func(string) (string, bool)) *Loader {
	l.lookup = lookup
	return l
}

// Load builds and validates the configuration
func (l *Loader) Load() (*Config, error) {
	l.sources = l.sources[:0]

	env := Development
	if val, ok := l.lookup("ENVIRONMENT"); ok && val != "" {
		env = Environment(strings.ToLower(val))
	}
	cfg := Default(env)
	l.sources = append(l.sources, "defaults")

	path := l.path
	if path == "" {
		path, _ = l.lookup("CONFIG_FILE")
	}
	if path != "" {
		if err := l.loadFile(path, cfg); err != nil {
			return nil, err
		}
	}

	if err := l.loadEnvironmentVariables(cfg); err != nil {
		return nil, err
	}
	l.sources = append(l.sources, "environment")
	cfg.LoadedFrom = append([]string(nil), l.sources...)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func (l *Loader) loadFile(path string, cfg *Config) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	if err := DecodeYAML(file, cfg); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}

	l.sources = append(l.sources, path)
	return nil
}

// DecodeYAML overlays the YAML document in r onto cfg. Unknown keys are rejected.
func DecodeYAML(r io.Reader, cfg *Config) error {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil && err != io.EOF {
		return err
	}
	return nil
}

// loadEnvironmentVariables overlays environment variables on the configuration.
func (l *Loader) loadEnvironmentVariables(cfg *Config) error {
	if val, ok := l.get("SERVER_ADDRESS"); ok {
		cfg.Server.Address = val
	}
	if val, ok := l.get("DATA_PATH"); ok {
		cfg.Input.DataPath = val
	}
	if val, ok := l.get("OUTPUT_PATH"); ok {
		cfg.Input.OutputPath = val
	}
	if val, ok := l.get("LOG_LEVEL"); ok {
		cfg.Logging.Level = strings.ToLower(val)
	}
	if val, ok := l.get("LOG_FORMAT"); ok {
		cfg.Logging.Format = strings.ToLower(val)
	}
	if val, ok := l.get("OTLP_ENDPOINT"); ok {
		cfg.Tracing.Endpoint = val
	}
	if val, ok := l.get("AWS_REGION"); ok {
		cfg.Metrics.CloudWatch.Region = val
	}

	ints := []struct {
		key    string
		target *int
	}{
		{"ANALYSIS_WORKERS", &cfg.Analysis.Workers},
		{"PARALLEL_THRESHOLD", &cfg.Analysis.ParallelThreshold},
		{"MAX_RECORDS", &cfg.Analysis.MaxRecords},
	}
	for _, v := range ints {
		val, ok := l.get(v.key)
		if !ok {
			continue
		}
		n, err := strconv.Atoi(val)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", v.key, val, err)
		}
		*v.target = n
	}

	bools := []struct {
		key    string
		target *bool
	}{
		{"ENABLE_METRICS", &cfg.Metrics.Enabled},
		{"ENABLE_TRACING", &cfg.Tracing.Enabled},
		{"ENABLE_CLOUDWATCH", &cfg.Metrics.CloudWatch.Enabled},
	}
	for _, v := range bools {
		val, ok := l.get(v.key)
		if !ok {
			continue
		}
		b, err := strconv.ParseBool(val)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", v.key, val, err)
		}
		*v.target = b
	}

	return nil
}

func (l *Loader) get(key string) (string, bool) {
	val, ok := l.lookup(key)
	if !ok || val == "" {
		return "", false
	}
	return val, true
}

// Load loads configuration from CONFIG_FILE and the environment
func Load() (*Config, error) {
	return NewLoader("").Load()
}

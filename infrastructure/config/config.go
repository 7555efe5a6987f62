// Package config loads the service configuration from defaults, an optional
// YAML file and environment variables, in that order of precedence.
package config

import (
	"fmt"
	"time"

	domainconfig "loangraph/domain/config"
	"loangraph/pkg/validation"
)

// Environment represents the deployment environment
type Environment string

const (
	Development Environment = "development"
	Staging     Environment = "staging"
	Production  Environment = "production"
	Test        Environment = "test"
)

// Config holds the complete application configuration
type Config struct {
	Environment Environment `yaml:"environment" validate:"required,oneof=development staging production test"`
	Server      Server      `yaml:"server"`
	Input       Input       `yaml:"input"`
	Analysis    Analysis    `yaml:"analysis"`
	Render      Render      `yaml:"render"`
	Logging     Logging     `yaml:"logging"`
	Metrics     Metrics     `yaml:"metrics"`
	Tracing     Tracing     `yaml:"tracing"`

	// LoadedFrom lists the sources applied, lowest priority first
	LoadedFrom []string `yaml:"-"`
}

// Server configures the HTTP listener
type Server struct {
	Address         string        `yaml:"address" validate:"required,hostname_port"`
	ReadTimeout     time.Duration `yaml:"read_timeout" validate:"gt=0"`
	WriteTimeout    time.Duration `yaml:"write_timeout" validate:"gt=0"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" validate:"gt=0"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" validate:"gt=0"`
	RequestTimeout  time.Duration `yaml:"request_timeout" validate:"gt=0"`
	MaxRequestSize  int64         `yaml:"max_request_size" validate:"gt=0"`
	AllowedOrigins  []string      `yaml:"allowed_origins"`
}

// Input locates the record source and the plot destination
type Input struct {
	DataPath   string `yaml:"data_path" validate:"required"`
	OutputPath string `yaml:"output_path" validate:"required"`
}

// Analysis configures graph construction. Zero Workers and ParallelThreshold
// select the defaults; zero MaxRecords accepts inputs of any size.
type Analysis struct {
	Workers           int `yaml:"workers" validate:"gte=0"`
	ParallelThreshold int `yaml:"parallel_threshold" validate:"gte=0"`
	MaxRecords        int `yaml:"max_records" validate:"gte=0"`
}

// Render configures the default plot
type Render struct {
	Width  int    `yaml:"width" validate:"min=100,max=4000"`
	Height int    `yaml:"height" validate:"min=100,max=4000"`
	Format string `yaml:"format" validate:"oneof=png svg"`
	Title  string `yaml:"title" validate:"max=200"`
}

// Logging configures zap
type Logging struct {
	Level  string `yaml:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" validate:"oneof=json console"`
}

// Metrics configures the Prometheus collector and the optional CloudWatch
// publisher used by Lambda deployments
type Metrics struct {
	Enabled    bool       `yaml:"enabled"`
	Namespace  string     `yaml:"namespace" validate:"required"`
	Path       string     `yaml:"path" validate:"required,startswith=/"`
	CloudWatch CloudWatch `yaml:"cloudwatch"`
}

// CloudWatch configures per-run metric publishing
type CloudWatch struct {
	Enabled   bool   `yaml:"enabled"`
	Namespace string `yaml:"namespace" validate:"required_if=Enabled true"`
	Region    string `yaml:"region"`
}

// Tracing configures the OpenTelemetry exporter
type Tracing struct {
	Enabled     bool    `yaml:"enabled"`
	Endpoint    string  `yaml:"endpoint"`
	ServiceName string  `yaml:"service_name" validate:"required"`
	SampleRate  float64 `yaml:"sample_rate" validate:"gte=0,lte=1"`
}

// Validate checks the configuration against its struct tags
func (c *Config) Validate() error {
	if err := validation.Default().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// IsProduction reports whether the service runs in production
func (c *Config) IsProduction() bool {
	return c.Environment == Production
}

// DomainConfig derives the graph builder settings
func (c *Config) DomainConfig() *domainconfig.DomainConfig {
	return domainconfig.LoadDomainConfig(c.Analysis.Workers, c.Analysis.ParallelThreshold)
}

// Default returns a configuration with sensible defaults for env
func Default(env Environment) *Config {
	cfg := &Config{
		Environment: env,
		Server: Server{
			Address:         ":8080",
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    60 * time.Second,
			IdleTimeout:     120 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			RequestTimeout:  60 * time.Second,
			MaxRequestSize:  32 * 1024 * 1024, // 32MB
			AllowedOrigins:  []string{"*"},
		},
		Analysis: Analysis{
			MaxRecords: 5000,
		},
		Input: Input{
			DataPath:   "./data/loan_data.csv",
			OutputPath: "degree_distribution.png",
		},
		Render: Render{
			Width:  800,
			Height: 600,
			Format: "png",
			Title:  "Degree distribution of loan data",
		},
		Logging: Logging{
			Level:  "info",
			Format: "json",
		},
		Metrics: Metrics{
			Enabled:   true,
			Namespace: "loangraph",
			Path:      "/metrics",
			CloudWatch: CloudWatch{
				Namespace: "LoanGraph/" + string(env),
			},
		},
		Tracing: Tracing{
			ServiceName: "loangraph",
			SampleRate:  1.0,
		},
	}

	switch env {
	case Development, Test:
		cfg.Logging.Level = "debug"
		cfg.Logging.Format = "console"
	case Production:
		cfg.Tracing.SampleRate = 0.1
	}

	return cfg
}

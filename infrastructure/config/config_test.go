package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"loangraph/infrastructure/config"
	apperrors "loangraph/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func env(vars map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		val, ok := vars[key]
		return val, ok
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.NewLoader("").WithLookup(env(nil)).Load()
	require.NoError(t, err)

	assert.Equal(t, config.Development, cfg.Environment)
	assert.Equal(t, ":8080", cfg.Server.Address)
	assert.Equal(t, "degree_distribution.png", cfg.Input.OutputPath)
	assert.Equal(t, 800, cfg.Render.Width)
	assert.Equal(t, 600, cfg.Render.Height)
	assert.Equal(t, "Degree distribution of loan data", cfg.Render.Title)
	assert.Equal(t, "console", cfg.Logging.Format)
	assert.Equal(t, 5000, cfg.Analysis.MaxRecords)
	assert.Equal(t, []string{"defaults", "environment"}, cfg.LoadedFrom)
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	cfg, err := config.NewLoader("").WithLookup(env(map[string]string{
		"ENVIRONMENT":        "production",
		"SERVER_ADDRESS":     "localhost:9090",
		"DATA_PATH":          "/data/loans.csv",
		"OUTPUT_PATH":        "/tmp/out.png",
		"ANALYSIS_WORKERS":   "4",
		"PARALLEL_THRESHOLD": "500",
		"MAX_RECORDS":        "20000",
		"LOG_LEVEL":          "WARN",
		"ENABLE_METRICS":     "false",
		"ENABLE_TRACING":     "true",
		"OTLP_ENDPOINT":      "collector:4317",
		"ENABLE_CLOUDWATCH":  "true",
		"AWS_REGION":         "eu-west-1",
	})).Load()
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "localhost:9090", cfg.Server.Address)
	assert.Equal(t, "/data/loans.csv", cfg.Input.DataPath)
	assert.Equal(t, "/tmp/out.png", cfg.Input.OutputPath)
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.False(t, cfg.Metrics.Enabled)
	assert.True(t, cfg.Tracing.Enabled)
	assert.Equal(t, "collector:4317", cfg.Tracing.Endpoint)
	assert.Equal(t, 0.1, cfg.Tracing.SampleRate)
	assert.True(t, cfg.Metrics.CloudWatch.Enabled)
	assert.Equal(t, "eu-west-1", cfg.Metrics.CloudWatch.Region)
	assert.Equal(t, "LoanGraph/production", cfg.Metrics.CloudWatch.Namespace)
	assert.Equal(t, 20000, cfg.Analysis.MaxRecords)

	domain := cfg.DomainConfig()
	assert.Equal(t, 4, domain.Workers)
	assert.Equal(t, 500, domain.ParallelThreshold)
}

func TestLoad_YAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "loangraph.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
environment: staging
server:
  address: "127.0.0.1:8181"
  request_timeout: 2m
render:
  width: 1024
  format: svg
analysis:
  workers: 2
`), 0o600))

	cfg, err := config.NewLoader(path).WithLookup(env(map[string]string{
		"ANALYSIS_WORKERS": "8",
	})).Load()
	require.NoError(t, err)

	assert.Equal(t, config.Staging, cfg.Environment)
	assert.Equal(t, "127.0.0.1:8181", cfg.Server.Address)
	assert.Equal(t, 2*time.Minute, cfg.Server.RequestTimeout)
	assert.Equal(t, 1024, cfg.Render.Width)
	assert.Equal(t, 600, cfg.Render.Height)
	assert.Equal(t, "svg", cfg.Render.Format)
	assert.Equal(t, 8, cfg.Analysis.Workers, "environment wins over the file")
	assert.Equal(t, []string{"defaults", path, "environment"}, cfg.LoadedFrom)
}

func TestLoad_ConfigFileFromEnvironment(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	require.NoError(t, os.WriteFile(path, []byte("input:\n  data_path: from-file.csv\n"), 0o600))

	cfg, err := config.NewLoader("").WithLookup(env(map[string]string{"CONFIG_FILE": path})).Load()
	require.NoError(t, err)

	assert.Equal(t, "from-file.csv", cfg.Input.DataPath)
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()
	unknown := filepath.Join(dir, "unknown.yaml")
	require.NoError(t, os.WriteFile(unknown, []byte("database:\n  table: x\n"), 0o600))
	invalid := filepath.Join(dir, "invalid.yaml")
	require.NoError(t, os.WriteFile(invalid, []byte("render:\n  width: 50\n"), 0o600))

	tests := []struct {
		name    string
		path    string
		vars    map[string]string
		wantErr string
	}{
		{name: "missing file", path: filepath.Join(dir, "nope.yaml"), wantErr: "failed to open config file"},
		{name: "unknown key", path: unknown, wantErr: "failed to parse"},
		{name: "out of range width", path: invalid, wantErr: "width"},
		{name: "bad environment", vars: map[string]string{"ENVIRONMENT": "qa"}, wantErr: "environment"},
		{name: "bad worker count", vars: map[string]string{"ANALYSIS_WORKERS": "many"}, wantErr: "ANALYSIS_WORKERS"},
		{name: "negative record limit", vars: map[string]string{"MAX_RECORDS": "-1"}, wantErr: "max_records"},
		{name: "bad bool", vars: map[string]string{"ENABLE_TRACING": "maybe"}, wantErr: "ENABLE_TRACING"},
		{name: "bad log level", vars: map[string]string{"LOG_LEVEL": "verbose"}, wantErr: "level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := config.NewLoader(tt.path).WithLookup(env(tt.vars)).Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidate_ReportsFieldDetails(t *testing.T) {
	cfg := config.Default(config.Development)
	cfg.Server.Address = "not an address"
	cfg.Metrics.Path = "metrics"

	err := cfg.Validate()
	require.Error(t, err)

	appErr := apperrors.GetAppError(err)
	require.NotNil(t, appErr)
	assert.Contains(t, appErr.Details, "server.address")
	assert.Contains(t, appErr.Details, "metrics.path")
	assert.True(t, strings.HasPrefix(err.Error(), "invalid configuration"))
}

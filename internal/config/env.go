package config

import (
	stderrors "errors"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/vango-dev/reactive/internal/errors"
)

// Environment variables read by ApplyEnv.
const (
	EnvLogLevel         = "REACTIVE_LOG_LEVEL"
	EnvLogFormat        = "REACTIVE_LOG_FORMAT"
	EnvInspectorHost    = "REACTIVE_INSPECTOR_HOST"
	EnvInspectorPort    = "REACTIVE_INSPECTOR_PORT"
	EnvMetricsEnabled   = "REACTIVE_METRICS_ENABLED"
	EnvMetricsNamespace = "REACTIVE_METRICS_NAMESPACE"
	EnvWatch            = "REACTIVE_WATCH"
)

// LoadDotEnv loads environment variables from path. A missing file is not
// an error. Variables already set in the environment win.
func LoadDotEnv(path string) error {
	err := godotenv.Load(path)
	if stderrors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return errors.New("R101").WithDetailf("cannot load %s", path).Wrap(err)
	}
	return nil
}

// ApplyEnv overrides c with the REACTIVE_* variables that are set.
// Malformed numbers and booleans are R103 errors.
func (c *Config) ApplyEnv() error {
	if v, ok := os.LookupEnv(EnvLogLevel); ok {
		c.Log.Level = v
	}
	if v, ok := os.LookupEnv(EnvLogFormat); ok {
		c.Log.Format = v
	}
	if v, ok := os.LookupEnv(EnvInspectorHost); ok {
		c.Inspector.Host = v
	}
	if v, ok := os.LookupEnv(EnvInspectorPort); ok {
		port, err := strconv.Atoi(v)
		if err != nil {
			return errors.New("R103").WithDetailf("%s must be a number, got %q", EnvInspectorPort, v)
		}
		c.Inspector.Port = port
	}
	if v, ok := os.LookupEnv(EnvMetricsEnabled); ok {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return errors.New("R103").WithDetailf("%s must be a boolean, got %q", EnvMetricsEnabled, v)
		}
		c.Metrics.Enabled = &enabled
	}
	if v, ok := os.LookupEnv(EnvMetricsNamespace); ok {
		c.Metrics.Namespace = v
	}
	if v, ok := os.LookupEnv(EnvWatch); ok {
		watch, err := strconv.ParseBool(v)
		if err != nil {
			return errors.New("R103").WithDetailf("%s must be a boolean, got %q", EnvWatch, v)
		}
		c.Watch = watch
	}
	return nil
}

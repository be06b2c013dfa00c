package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/vango-dev/reactive/internal/errors"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "reactive.json"

	// DefaultPort is the default inspector port.
	DefaultPort = 7070

	// DefaultHost is the default inspector host.
	DefaultHost = "localhost"

	// DefaultScenarioDir is scanned when no scenario patterns are configured.
	DefaultScenarioDir = "scenarios"

	// DefaultNamespace is the default Prometheus namespace.
	DefaultNamespace = "reactive"
)

// Config represents the complete reactive.json configuration.
type Config struct {
	// Scenarios lists scenario files, directories or glob patterns,
	// relative to the config file.
	Scenarios []string `json:"scenarios,omitempty"`

	// Log contains logging configuration.
	Log LogConfig `json:"log,omitempty"`

	// Inspector contains inspector server configuration.
	Inspector InspectorConfig `json:"inspector,omitempty"`

	// Metrics contains Prometheus configuration.
	Metrics MetricsConfig `json:"metrics,omitempty"`

	// Watch re-runs scenarios when their files change.
	Watch bool `json:"watch,omitempty"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// LogConfig contains logging settings.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `json:"level,omitempty"`

	// Format is text or json.
	Format string `json:"format,omitempty"`
}

// InspectorConfig contains inspector server settings.
type InspectorConfig struct {
	// Host is the host to bind to.
	Host string `json:"host,omitempty"`

	// Port is the port to listen on.
	Port int `json:"port,omitempty"`
}

// MetricsConfig contains Prometheus settings.
type MetricsConfig struct {
	// Enabled registers engine metrics and serves /metrics.
	Enabled *bool `json:"enabled,omitempty"`

	// Namespace is the metric name prefix.
	Namespace string `json:"namespace,omitempty"`
}

// On reports whether metrics are enabled. They are unless turned off.
func (m MetricsConfig) On() bool {
	return m.Enabled == nil || *m.Enabled
}

// New creates a new Config with default values.
func New() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

// Load reads configuration from the specified directory.
func Load(dir string) (*Config, error) {
	return LoadFile(filepath.Join(dir, ConfigFileName))
}

// LoadFile reads configuration from the specified file path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("R104").
				WithDetail("No " + ConfigFileName + " found in " + filepath.Dir(path))
		}
		return nil, errors.New("R101").Wrap(err)
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, errors.New("R102").
			WithLocation(path, 0, 0).
			WithDetail("Failed to parse " + ConfigFileName + ": " + err.Error()).
			WithSuggestion("Check that " + ConfigFileName + " is valid JSON")
	}

	cfg.configPath = path
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// Dir returns the directory containing the config file, or "" for a
// config built from defaults.
func (c *Config) Dir() string {
	if c.configPath == "" {
		return ""
	}
	return filepath.Dir(c.configPath)
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	if len(c.Scenarios) == 0 {
		c.Scenarios = []string{DefaultScenarioDir}
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}

	if c.Inspector.Host == "" {
		c.Inspector.Host = DefaultHost
	}
	if c.Inspector.Port == 0 {
		c.Inspector.Port = DefaultPort
	}

	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = DefaultNamespace
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Inspector.Port < 0 || c.Inspector.Port > 65535 {
		return errors.New("R103").
			WithDetailf("inspector.port must be between 0 and 65535, got %d", c.Inspector.Port)
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return errors.New("R103").
			WithDetailf("log.level must be debug, info, warn or error, got %q", c.Log.Level)
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return errors.New("R103").
			WithDetailf("log.format must be text or json, got %q", c.Log.Format)
	}
	return nil
}

// Address returns the host:port the inspector listens on.
func (c *Config) Address() string {
	return c.Inspector.Host + ":" + strconv.Itoa(c.Inspector.Port)
}

// ScenarioFiles resolves the configured scenario entries, relative to the
// config directory, into a sorted list of .yaml and .yml files. Directories
// are scanned one level deep. Entries matching nothing are skipped.
func (c *Config) ScenarioFiles() ([]string, error) {
	seen := make(map[string]struct{})
	var files []string
	add := func(path string) {
		if _, ok := seen[path]; !ok {
			seen[path] = struct{}{}
			files = append(files, path)
		}
	}

	for _, entry := range c.Scenarios {
		pattern := entry
		if !filepath.IsAbs(pattern) {
			pattern = filepath.Join(c.Dir(), pattern)
		}
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, errors.New("R103").
				WithDetailf("invalid scenario pattern %q", entry).
				Wrap(err)
		}
		for _, match := range matches {
			info, err := os.Stat(match)
			if err != nil {
				continue
			}
			if !info.IsDir() {
				if IsScenarioFile(match) {
					add(match)
				}
				continue
			}
			entries, err := os.ReadDir(match)
			if err != nil {
				return nil, errors.New("R101").Wrap(err)
			}
			for _, e := range entries {
				if e.Type().IsRegular() && IsScenarioFile(e.Name()) {
					add(filepath.Join(match, e.Name()))
				}
			}
		}
	}

	sort.Strings(files)
	return files, nil
}

// IsScenarioFile reports whether path has a scenario file extension.
func IsScenarioFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

// Exists checks if a config file exists in the given directory.
func Exists(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, ConfigFileName))
	return err == nil
}

// FindProjectRoot walks up directories to find the project root.
// Returns the directory containing reactive.json, or an R104 error.
func FindProjectRoot(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	for {
		if Exists(dir) {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.New("R104").
				WithDetail("No " + ConfigFileName + " found in " + startDir + " or any parent directory")
		}
		dir = parent
	}
}

// LoadFromWorkingDir loads configuration from the nearest reactive.json at
// or above the working directory. Without one it returns defaults whose
// relative paths resolve against the working directory.
func LoadFromWorkingDir() (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}

	root, err := FindProjectRoot(wd)
	if err != nil {
		if errors.Is(err, "R104") {
			cfg := New()
			cfg.configPath = filepath.Join(wd, ConfigFileName)
			return cfg, nil
		}
		return nil, err
	}

	return Load(root)
}

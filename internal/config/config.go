package config

import (
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/Lewis310/lewishealthapplication/internal/errors"
)

// EnvPrefix prefixes every environment override, e.g. HEALTHREPORT_WEIGHT_KG.
const EnvPrefix = "HEALTHREPORT"

// FileName is the config file looked up in the base directory.
const FileName = "config.yaml"

// Config holds application configuration.
type Config struct {
	// WeightKg and ProteinPerKg set the daily protein target.
	WeightKg     float64 `mapstructure:"weight_kg" yaml:"weight_kg"`
	ProteinPerKg float64 `mapstructure:"protein_per_kg" yaml:"protein_per_kg"`

	// DuplicateDates is the nutrition duplicate-date policy: "first" or "reject".
	DuplicateDates string `mapstructure:"duplicate_dates" yaml:"duplicate_dates"`

	// MaxUploadBytes caps a single web upload request.
	MaxUploadBytes int64 `mapstructure:"max_upload_bytes" yaml:"max_upload_bytes"`

	// MaxRows caps the data rows of one CSV. 0 means unlimited.
	MaxRows int `mapstructure:"max_rows" yaml:"max_rows"`

	// MaxReports is how many generated reports the session keeps; older ones are evicted.
	MaxReports int `mapstructure:"max_reports" yaml:"max_reports"`

	Bind    string `mapstructure:"bind" yaml:"bind"`
	Port    int    `mapstructure:"port" yaml:"port"`
	LogMode string `mapstructure:"log_mode" yaml:"log_mode"`

	ChartWidth  int `mapstructure:"chart_width" yaml:"chart_width"`
	ChartHeight int `mapstructure:"chart_height" yaml:"chart_height"`

	// DisabledTools is a list of MCP tool names to exclude from registration.
	DisabledTools []string `mapstructure:"disabled_tools" yaml:"disabled_tools,omitempty"`

	// DisabledTypes disables every tool of a type. Known types: "report".
	DisabledTypes []string `mapstructure:"disabled_types" yaml:"disabled_types,omitempty"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		WeightKg:       75,
		ProteinPerKg:   1.2,
		DuplicateDates: "first",
		MaxUploadBytes: 10 << 20,
		MaxRows:        100000,
		MaxReports:     20,
		Bind:           "127.0.0.1",
		Port:           8501,
		LogMode:        "dev",
		ChartWidth:     800,
		ChartHeight:    400,
	}
}

// DefaultBaseDir returns ~/.healthreport.
func DefaultBaseDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".healthreport"), nil
}

// Load reads baseDir/config.yaml, then HEALTHREPORT_* environment variables,
// over the defaults. A missing file is not an error.
// The baseDir parameter allows tests to use t.TempDir() instead of ~/.healthreport.
func Load(baseDir string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	d := DefaultConfig()
	v.SetDefault("weight_kg", d.WeightKg)
	v.SetDefault("protein_per_kg", d.ProteinPerKg)
	v.SetDefault("duplicate_dates", d.DuplicateDates)
	v.SetDefault("max_upload_bytes", d.MaxUploadBytes)
	v.SetDefault("max_rows", d.MaxRows)
	v.SetDefault("max_reports", d.MaxReports)
	v.SetDefault("bind", d.Bind)
	v.SetDefault("port", d.Port)
	v.SetDefault("log_mode", d.LogMode)
	v.SetDefault("chart_width", d.ChartWidth)
	v.SetDefault("chart_height", d.ChartHeight)
	v.SetDefault("disabled_tools", []string{})
	v.SetDefault("disabled_types", []string{})

	if baseDir != "" {
		v.AddConfigPath(baseDir)
		v.SetConfigName(strings.TrimSuffix(FileName, filepath.Ext(FileName)))
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !stderrors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	c.DisabledTools = mergeStringSlice(nil, c.DisabledTools)
	c.DisabledTypes = mergeStringSlice(nil, c.DisabledTypes)
	return &c, nil
}

// Save writes c as YAML to path, creating the parent directory.
func Save(c *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Validate rejects values no run could use.
func (c *Config) Validate() error {
	switch {
	case c.WeightKg <= 0:
		return errors.NewInvalidRequest(fmt.Sprintf("weight_kg must be positive, got %v", c.WeightKg))
	case c.ProteinPerKg <= 0:
		return errors.NewInvalidRequest(fmt.Sprintf("protein_per_kg must be positive, got %v", c.ProteinPerKg))
	case c.DuplicateDates != "first" && c.DuplicateDates != "reject":
		return errors.NewInvalidRequest(fmt.Sprintf("duplicate_dates must be first or reject, got %q", c.DuplicateDates))
	case c.MaxUploadBytes <= 0:
		return errors.NewInvalidRequest("max_upload_bytes must be positive")
	case c.MaxRows < 0:
		return errors.NewInvalidRequest("max_rows must not be negative")
	case c.MaxReports <= 0:
		return errors.NewInvalidRequest("max_reports must be positive")
	case c.Port <= 0 || c.Port > 65535:
		return errors.NewInvalidRequest(fmt.Sprintf("port out of range: %d", c.Port))
	}
	return nil
}

// Merge combines base and overlay configs.
// Overlay values take precedence for scalars; arrays are merged and deduplicated.
func Merge(base, overlay *Config) *Config {
	result := *base

	if overlay.WeightKg != 0 {
		result.WeightKg = overlay.WeightKg
	}
	if overlay.ProteinPerKg != 0 {
		result.ProteinPerKg = overlay.ProteinPerKg
	}
	if overlay.DuplicateDates != "" {
		result.DuplicateDates = overlay.DuplicateDates
	}
	if overlay.MaxUploadBytes != 0 {
		result.MaxUploadBytes = overlay.MaxUploadBytes
	}
	if overlay.MaxRows != 0 {
		result.MaxRows = overlay.MaxRows
	}
	if overlay.MaxReports != 0 {
		result.MaxReports = overlay.MaxReports
	}
	if overlay.Bind != "" {
		result.Bind = overlay.Bind
	}
	if overlay.Port != 0 {
		result.Port = overlay.Port
	}
	if overlay.LogMode != "" {
		result.LogMode = overlay.LogMode
	}
	if overlay.ChartWidth != 0 {
		result.ChartWidth = overlay.ChartWidth
	}
	if overlay.ChartHeight != 0 {
		result.ChartHeight = overlay.ChartHeight
	}

	result.DisabledTools = mergeStringSlice(base.DisabledTools, overlay.DisabledTools)
	result.DisabledTypes = mergeStringSlice(base.DisabledTypes, overlay.DisabledTypes)

	return &result
}

// mergeStringSlice combines two slices, trims whitespace, and removes duplicates.
func mergeStringSlice(a, b []string) []string {
	seen := make(map[string]bool)
	result := make([]string, 0, len(a)+len(b))

	for _, s := range append(append([]string(nil), a...), b...) {
		s = strings.TrimSpace(s)
		if s != "" && !seen[s] {
			seen[s] = true
			result = append(result, s)
		}
	}

	if len(result) == 0 {
		return nil
	}
	return result
}

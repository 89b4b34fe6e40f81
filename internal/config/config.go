// Package config loads the run configuration from defaults, an optional
// YAML file, S57X_ environment variables and command-line flags.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/beetlebugorg/s57extract/pkg/s57"
)

// EnvPrefix prefixes every environment override, e.g. S57X_OUTPUT_DIR.
const EnvPrefix = "S57X"

// Engine kinds.
const (
	EngineNative = "native"
	EngineOGR    = "ogr"
)

// Metrics backends.
const (
	MetricsNone        = "none"
	MetricsPushgateway = "pushgateway"
)

// Config is the complete run configuration.
type Config struct {
	Input   InputConfig   `mapstructure:"input" yaml:"input"`
	Output  OutputConfig  `mapstructure:"output" yaml:"output"`
	Engine  EngineConfig  `mapstructure:"engine" yaml:"engine"`
	Filter  FilterConfig  `mapstructure:"filter" yaml:"filter"`
	Level   LevelConfig   `mapstructure:"level" yaml:"level"`
	Names   NamesConfig   `mapstructure:"names" yaml:"names"`
	Depth   DepthConfig   `mapstructure:"depth" yaml:"depth"`
	Log     LogConfig     `mapstructure:"log" yaml:"log"`
	Metrics MetricsConfig `mapstructure:"metrics" yaml:"metrics"`
}

// InputConfig locates the chart cells.
type InputConfig struct {
	Dir       string `mapstructure:"dir" yaml:"dir"`
	Extension string `mapstructure:"extension" yaml:"extension"`
}

// OutputConfig locates the output table and run summary.
type OutputConfig struct {
	Dir         string `mapstructure:"dir" yaml:"dir"`
	Name        string `mapstructure:"name" yaml:"name"` // empty: the mode's default
	SummaryPath string `mapstructure:"summary_path" yaml:"summary_path"`
}

// EngineConfig selects and tunes the geodata engine.
type EngineConfig struct {
	Kind         string  `mapstructure:"kind" yaml:"kind"`
	OGR2OGR      string  `mapstructure:"ogr2ogr" yaml:"ogr2ogr"`
	OGRInfo      string  `mapstructure:"ogrinfo" yaml:"ogrinfo"`
	WKTPrecision int     `mapstructure:"wkt_precision" yaml:"wkt_precision"`
	Tolerance    float64 `mapstructure:"tolerance" yaml:"tolerance"`
	ApplyUpdates bool    `mapstructure:"apply_updates" yaml:"apply_updates"`
}

// FilterConfig restricts extraction to an area.
type FilterConfig struct {
	// BBox is "minlon,minlat,maxlon,maxlat"; empty disables the filter.
	BBox string `mapstructure:"bbox" yaml:"bbox"`
}

// LevelConfig locates the chart-level code in a cell filename.
type LevelConfig struct {
	Offset   int    `mapstructure:"offset" yaml:"offset"`
	Sentinel string `mapstructure:"sentinel" yaml:"sentinel"`
}

// NamesConfig configures names mode.
type NamesConfig struct {
	Layers []string `mapstructure:"layers" yaml:"layers"`
	Field  string   `mapstructure:"field" yaml:"field"`
}

// DepthConfig configures depth mode.
type DepthConfig struct {
	LandValue float64 `mapstructure:"land_value" yaml:"land_value"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level     string `mapstructure:"level" yaml:"level"`
	Format    string `mapstructure:"format" yaml:"format"`
	Output    string `mapstructure:"output" yaml:"output"`
	FilePath  string `mapstructure:"file_path" yaml:"file_path"`
	AddSource bool   `mapstructure:"add_source" yaml:"add_source"`
}

// MetricsConfig configures the metrics backend.
type MetricsConfig struct {
	Backend        string `mapstructure:"backend" yaml:"backend"`
	PushgatewayURL string `mapstructure:"pushgateway_url" yaml:"pushgateway_url"`
	Job            string `mapstructure:"job" yaml:"job"`
}

// SetDefaults registers the default of every key.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("input.dir", "")
	v.SetDefault("input.extension", ".000")
	v.SetDefault("output.dir", "")
	v.SetDefault("output.name", "")
	v.SetDefault("output.summary_path", "")
	v.SetDefault("engine.kind", EngineNative)
	v.SetDefault("engine.ogr2ogr", "ogr2ogr")
	v.SetDefault("engine.ogrinfo", "ogrinfo")
	v.SetDefault("engine.wkt_precision", 8)
	v.SetDefault("engine.tolerance", 0.00025)
	v.SetDefault("engine.apply_updates", true)
	v.SetDefault("filter.bbox", "")
	v.SetDefault("level.offset", 2)
	v.SetDefault("level.sentinel", "0")
	v.SetDefault("names.layers", []string{"LNDARE", "DEPARE", "SEAARE", "HRBFAC", "BRIDGE"})
	v.SetDefault("names.field", "NOBJNM")
	v.SetDefault("depth.land_value", -1.0)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.output", "stderr")
	v.SetDefault("log.file_path", "")
	v.SetDefault("log.add_source", false)
	v.SetDefault("metrics.backend", MetricsNone)
	v.SetDefault("metrics.pushgateway_url", "")
	v.SetDefault("metrics.job", "s57extract")
}

// NewViper returns a viper instance with defaults and environment overrides
// set up. Flags are bound to it by the caller.
func NewViper() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads the config file into v and decodes the result. An explicit
// configPath must exist; otherwise s57extract.yaml is looked up in the
// working directory and ./configs, and its absence is not an error.
func Load(v *viper.Viper, configPath string) (*Config, error) {
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("s57extract")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}

// Validate checks the settings every command depends on.
func (c *Config) Validate() error {
	if c.Engine.Kind != EngineNative && c.Engine.Kind != EngineOGR {
		return fmt.Errorf("invalid engine kind: %s, must be '%s' or '%s'", c.Engine.Kind, EngineNative, EngineOGR)
	}
	if c.Engine.Tolerance <= 0 {
		return fmt.Errorf("engine.tolerance must be positive, got %v", c.Engine.Tolerance)
	}
	if c.Engine.WKTPrecision < 0 {
		return fmt.Errorf("engine.wkt_precision must not be negative, got %d", c.Engine.WKTPrecision)
	}
	if c.Level.Offset < 0 {
		return fmt.Errorf("level.offset must not be negative, got %d", c.Level.Offset)
	}
	if len(c.Level.Sentinel) != 1 {
		return fmt.Errorf("level.sentinel must be a single character, got %q", c.Level.Sentinel)
	}
	if _, err := c.BBox(); err != nil {
		return err
	}
	if len(c.Names.Layers) == 0 {
		return fmt.Errorf("names.layers must not be empty")
	}
	if c.Names.Field == "" {
		return fmt.Errorf("names.field is required")
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "warning": true, "error": true}
	if !validLevels[strings.ToLower(c.Log.Level)] {
		return fmt.Errorf("invalid log level: %s", c.Log.Level)
	}
	if c.Log.Format != "json" && c.Log.Format != "text" {
		return fmt.Errorf("invalid log format: %s, must be 'json' or 'text'", c.Log.Format)
	}
	switch c.Log.Output {
	case "stdout", "stderr":
	case "file":
		if c.Log.FilePath == "" {
			return fmt.Errorf("log.file_path is required when log.output is 'file'")
		}
	default:
		return fmt.Errorf("invalid log output: %s", c.Log.Output)
	}

	switch c.Metrics.Backend {
	case MetricsNone, "":
	case MetricsPushgateway:
		if c.Metrics.PushgatewayURL == "" {
			return fmt.Errorf("metrics.pushgateway_url is required for the pushgateway backend")
		}
	default:
		return fmt.Errorf("invalid metrics backend: %s", c.Metrics.Backend)
	}

	return nil
}

// ValidateRun checks the settings an extraction run depends on.
func (c *Config) ValidateRun() error {
	if c.Input.Dir == "" {
		return fmt.Errorf("input.dir is required")
	}
	if c.Output.Dir == "" {
		return fmt.Errorf("output.dir is required")
	}
	return c.Validate()
}

// BBox returns the spatial filter, or nil when none is configured.
func (c *Config) BBox() (*s57.Bounds, error) {
	if strings.TrimSpace(c.Filter.BBox) == "" {
		return nil, nil
	}
	b, err := s57.ParseBounds(c.Filter.BBox)
	if err != nil {
		return nil, fmt.Errorf("invalid filter.bbox: %w", err)
	}
	return &b, nil
}

// Sentinel returns the level sentinel as a byte.
func (c *Config) Sentinel() byte {
	if c.Level.Sentinel == "" {
		return '0'
	}
	return c.Level.Sentinel[0]
}

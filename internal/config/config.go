package config

import (
	"encoding/json"
	stderrors "errors"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/vango-dev/signalstate/internal/errors"
	"github.com/vango-dev/signalstate/pkg/state"
)

const (
	// JSONFileName is the name of the JSON configuration file.
	JSONFileName = "signalstate.json"

	// YAMLFileName is the name of the YAML configuration file.
	YAMLFileName = "signalstate.yaml"

	// DefaultFrameInterval is the default delay between a dispatch and its flush.
	DefaultFrameInterval = "16ms"

	// DefaultInspectorAddress is the default inspector listen address.
	DefaultInspectorAddress = "127.0.0.1:6060"

	// DefaultNamespace is the default Prometheus namespace.
	DefaultNamespace = "signalstate"

	// DefaultTracerName is the default OpenTelemetry tracer name.
	DefaultTracerName = "signalstate"
)

// Scheduler names.
const (
	SchedulerFrame     = "frame"
	SchedulerImmediate = "immediate"
)

// Log formats.
const (
	LogFormatText = "text"
	LogFormatJSON = "json"
	LogFormatTint = "tint"
)

// Config represents signalstate.json or signalstate.yaml.
type Config struct {
	// Scheduler is "frame" or "immediate".
	Scheduler string `json:"scheduler,omitempty" yaml:"scheduler,omitempty"`

	// FrameInterval is the frame scheduler delay (e.g., "16ms").
	FrameInterval string `json:"frameInterval,omitempty" yaml:"frameInterval,omitempty"`

	// ProdMode disables dev-mode integrity fingerprinting.
	ProdMode bool `json:"prodMode,omitempty" yaml:"prodMode,omitempty"`

	// Integrity is "warn" or "panic".
	Integrity string `json:"integrity,omitempty" yaml:"integrity,omitempty"`

	// Log contains logging configuration.
	Log LogConfig `json:"log" yaml:"log"`

	// Inspector contains inspector server configuration.
	Inspector InspectorConfig `json:"inspector" yaml:"inspector"`

	// Metrics contains Prometheus configuration.
	Metrics MetricsConfig `json:"metrics" yaml:"metrics"`

	// Tracing contains OpenTelemetry configuration.
	Tracing TracingConfig `json:"tracing" yaml:"tracing"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// LogConfig contains logging settings.
type LogConfig struct {
	// Level is debug, info, warn or error.
	Level string `json:"level,omitempty" yaml:"level,omitempty"`

	// Format is text, json or tint.
	Format string `json:"format,omitempty" yaml:"format,omitempty"`

	// NoColor disables colors in the tint format.
	NoColor bool `json:"noColor,omitempty" yaml:"noColor,omitempty"`
}

// InspectorConfig contains inspector server settings.
type InspectorConfig struct {
	// Address is the host:port to listen on.
	Address string `json:"address,omitempty" yaml:"address,omitempty"`
}

// MetricsConfig contains Prometheus settings.
type MetricsConfig struct {
	// Enabled installs the Prometheus instrumentation.
	Enabled bool `json:"enabled,omitempty" yaml:"enabled,omitempty"`

	// Namespace is the metrics namespace.
	Namespace string `json:"namespace,omitempty" yaml:"namespace,omitempty"`
}

// TracingConfig contains OpenTelemetry settings.
type TracingConfig struct {
	// Enabled installs the flush tracing instrumentation.
	Enabled bool `json:"enabled,omitempty" yaml:"enabled,omitempty"`

	// TracerName is the tracer name.
	TracerName string `json:"tracerName,omitempty" yaml:"tracerName,omitempty"`
}

// New creates a new Config with default values.
func New() *Config {
	return &Config{
		Scheduler:     SchedulerFrame,
		FrameInterval: DefaultFrameInterval,
		Integrity:     state.IntegrityWarn.String(),
		Log: LogConfig{
			Level:  "info",
			Format: LogFormatTint,
		},
		Inspector: InspectorConfig{
			Address: DefaultInspectorAddress,
		},
		Metrics: MetricsConfig{
			Enabled:   true,
			Namespace: DefaultNamespace,
		},
		Tracing: TracingConfig{
			TracerName: DefaultTracerName,
		},
	}
}

// Load reads configuration from the specified directory.
// It looks for signalstate.json, then signalstate.yaml and signalstate.yml.
func Load(dir string) (*Config, error) {
	for _, name := range candidates {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return LoadFile(path)
		}
	}
	return nil, errors.New("E100").
		WithDetail("No " + JSONFileName + " or " + YAMLFileName + " found in " + dir).
		WithSuggestion("Run 'signalstate config init' to write the defaults")
}

var candidates = []string{JSONFileName, YAMLFileName, "signalstate.yml"}

// LoadFile reads configuration from the specified file path. The format
// follows the extension.
func LoadFile(path string) (*Config, error) {
	format, err := formatOf(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.New("E100").
			Wrap(err).
			WithSuggestion("Check the --config path")
	}

	cfg := New()
	switch format {
	case "json":
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, jsonError(path, data, err)
		}
	case "yaml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, yamlError(path, err)
		}
	}

	cfg.configPath = path
	cfg.applyDefaults()

	return cfg, nil
}

func formatOf(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return "json", nil
	case ".yaml", ".yml":
		return "yaml", nil
	}
	return "", errors.New("E103").
		WithDetail("Cannot infer the format of " + filepath.Base(path) + ".").
		WithSuggestion("Rename the file to " + JSONFileName + " or " + YAMLFileName)
}

// Save writes the configuration to the file it was loaded from.
func (c *Config) Save() error {
	if c.configPath == "" {
		return errors.Newf(errors.CategoryConfig, "no config path set")
	}
	return c.SaveTo(c.configPath)
}

// SaveTo writes the configuration to the specified path, as JSON or YAML
// according to its extension.
func (c *Config) SaveTo(path string) error {
	format, err := formatOf(path)
	if err != nil {
		return err
	}

	var data []byte
	if format == "json" {
		data, err = json.MarshalIndent(c, "", "  ")
		// Add newline at end of file
		data = append(data, '\n')
	} else {
		data, err = yaml.Marshal(c)
	}
	if err != nil {
		return errors.Newf(errors.CategoryConfig, "encode config").Wrap(err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.Newf(errors.CategoryConfig, "write %s", path).Wrap(err)
	}

	c.configPath = path
	return nil
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// Dir returns the directory containing the config file.
func (c *Config) Dir() string {
	if c.configPath == "" {
		return ""
	}
	return filepath.Dir(c.configPath)
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	if c.Scheduler == "" {
		c.Scheduler = SchedulerFrame
	}
	if c.FrameInterval == "" {
		c.FrameInterval = DefaultFrameInterval
	}
	if c.Integrity == "" {
		c.Integrity = state.IntegrityWarn.String()
	}

	// Log
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = LogFormatTint
	}

	if c.Inspector.Address == "" {
		c.Inspector.Address = DefaultInspectorAddress
	}
	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = DefaultNamespace
	}
	if c.Tracing.TracerName == "" {
		c.Tracing.TracerName = DefaultTracerName
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	switch c.Scheduler {
	case SchedulerFrame, SchedulerImmediate:
	default:
		return errors.New("E104").
			WithSuggestion(`Set "scheduler" to "frame" or "immediate", got "` + c.Scheduler + `"`).
			WithExample(`"scheduler": "frame"`)
	}

	if d, err := time.ParseDuration(c.FrameInterval); err != nil || d <= 0 {
		e := errors.New("E105").
			WithSuggestion(`Use a Go duration such as "16ms", got "` + c.FrameInterval + `"`)
		if err != nil {
			e.Wrap(err)
		}
		return e
	}

	if _, err := c.IntegrityMode(); err != nil {
		return err
	}

	if _, err := c.LogLevel(); err != nil {
		return err
	}

	switch c.Log.Format {
	case LogFormatText, LogFormatJSON, LogFormatTint:
	default:
		return errors.New("E108").
			WithSuggestion(`Set "log.format" to "text", "json" or "tint", got "` + c.Log.Format + `"`)
	}

	if _, _, err := net.SplitHostPort(c.Inspector.Address); err != nil {
		return errors.New("E109").Wrap(err)
	}

	return nil
}

// FrameDuration returns the parsed frame interval, or state.FrameInterval
// when it does not parse.
func (c *Config) FrameDuration() time.Duration {
	d, err := time.ParseDuration(c.FrameInterval)
	if err != nil || d <= 0 {
		return state.FrameInterval
	}
	return d
}

// IntegrityMode returns the configured integrity mode.
func (c *Config) IntegrityMode() (state.IntegrityMode, error) {
	switch c.Integrity {
	case state.IntegrityWarn.String():
		return state.IntegrityWarn, nil
	case state.IntegrityPanic.String():
		return state.IntegrityPanic, nil
	}
	return state.IntegrityWarn, errors.New("E106").
		WithSuggestion(`Set "integrity" to "warn" or "panic", got "` + c.Integrity + `"`).
		WithExample(`"integrity": "panic"`)
}

// LogLevel returns the configured slog level.
func (c *Config) LogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return slog.LevelInfo, errors.New("E107").Wrap(err)
	}
	return level, nil
}

// Apply configures the state engine: scheduler, prod mode, integrity mode
// and logger. Call Validate first.
func (c *Config) Apply(logger *slog.Logger) {
	switch c.Scheduler {
	case SchedulerImmediate:
		state.SetScheduler(state.ImmediateScheduler)
	default:
		state.SetScheduler(state.FrameScheduler(c.FrameDuration()))
	}

	if mode, err := c.IntegrityMode(); err == nil {
		state.SetIntegrityMode(mode)
	}
	if c.ProdMode {
		state.EnableProdMode()
	}
	state.SetLogger(logger)
}

// Exists checks if a config file exists in the given directory.
func Exists(dir string) bool {
	for _, name := range candidates {
		if _, err := os.Stat(filepath.Join(dir, name)); err == nil {
			return true
		}
	}
	return false
}

// FindConfigDir walks up directories to find one holding a config file.
func FindConfigDir(startDir string) (string, error) {
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
			return "", errors.New("E100").
				WithDetail("No config file found in " + startDir + " or any parent directory")
		}
		dir = parent
	}
}

// LoadFromWorkingDir loads configuration from the current working directory
// or its nearest parent holding a config file. Without one it returns the
// defaults.
func LoadFromWorkingDir() (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}

	dir, err := FindConfigDir(wd)
	if stderrors.Is(err, errors.New("E100")) {
		return New(), nil
	}
	if err != nil {
		return nil, err
	}

	return Load(dir)
}

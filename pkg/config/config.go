// Package config provides configuration loading and validation for myboxplot.
package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/mpedy/myboxplot/pkg/dataset"
	"github.com/mpedy/myboxplot/pkg/survey"
)

// Sentinel validation errors.
var (
	ErrInvalidPort           = errors.New("invalid server port")
	ErrInvalidScale          = errors.New("invalid input scale")
	ErrInvalidFormat         = errors.New("invalid input format")
	ErrInvalidColor          = errors.New("invalid color")
	ErrInvalidThreshold      = errors.New("threshold value must be in [0,100]")
	ErrInvalidThresholdCount = errors.New("number of threshold lines must not be negative")
	ErrInvalidLogoSize       = errors.New("logo size must be positive")
	ErrInvalidTheme          = errors.New("invalid chart theme")
	ErrInvalidLogLevel       = errors.New("invalid log level")
	ErrInvalidLogFormat      = errors.New("invalid log format")
	ErrInvalidSampleRatio    = errors.New("sample ratio must be in [0,1]")
)

const (
	// EnvPrefix prefixes every environment override.
	EnvPrefix = "MYBOXPLOT"

	// FileName is the config file name searched when no path is given.
	FileName = "myboxplot"

	maxPort = 65535
)

// Chart themes.
const (
	ThemeLight = "light"
	ThemeDark  = "dark"
)

// Log formats.
const (
	LogFormatText = "text"
	LogFormatJSON = "json"
)

var colorPattern = regexp.MustCompile(`^(#[0-9a-fA-F]{3}|#[0-9a-fA-F]{6}|[a-zA-Z]+)$`)

// Config holds all configuration for myboxplot.
type Config struct {
	Input     InputConfig     `mapstructure:"input"`
	Colors    ColorsConfig    `mapstructure:"colors"`
	Chart     ChartConfig     `mapstructure:"chart"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Server    ServerConfig    `mapstructure:"server"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// InputConfig controls dataset decoding.
type InputConfig struct {
	// Format is csv, json or yaml. Empty infers it from the file extension.
	Format string  `mapstructure:"format"`
	Scale  float64 `mapstructure:"scale"`
}

// ColorOverride pins a category to a colour.
type ColorOverride struct {
	Category string `mapstructure:"category"`
	Color    string `mapstructure:"color"`
}

// ColorsConfig holds per-category colour overrides. It is a list because
// viper lowercases map keys.
type ColorsConfig struct {
	Overrides []ColorOverride `mapstructure:"overrides"`
}

// OverrideMap returns the overrides keyed by canonical category.
// Later entries win.
func (c ColorsConfig) OverrideMap() map[survey.Category]survey.Color {
	if len(c.Overrides) == 0 {
		return nil
	}

	result := make(map[survey.Category]survey.Color, len(c.Overrides))

	for _, o := range c.Overrides {
		result[dataset.NormalizeCategory(o.Category)] = survey.Color(o.Color)
	}

	return result
}

// ThresholdLine is a horizontal reference line on the chart.
type ThresholdLine struct {
	Value float64 `mapstructure:"value" json:"value" yaml:"value"`
	Color string  `mapstructure:"color" json:"color" yaml:"color"`
}

// ChartConfig holds chart rendering settings.
type ChartConfig struct {
	Theme                  string          `mapstructure:"theme"`
	ThresholdLines         []ThresholdLine `mapstructure:"threshold_lines"`
	NumberOfThresholdLines int             `mapstructure:"number_of_threshold_lines"`
	LogoSize               int             `mapstructure:"logo_size"`
	ShowLogo               bool            `mapstructure:"show_logo"`
}

// ActiveThresholdLines returns the first NumberOfThresholdLines lines.
func (c ChartConfig) ActiveThresholdLines() []ThresholdLine {
	n := min(max(c.NumberOfThresholdLines, 0), len(c.ThresholdLines))

	return c.ThresholdLines[:n]
}

// LoggingConfig holds logging-specific configuration.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// ServerConfig holds server-specific configuration.
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
	Port         int           `mapstructure:"port"`
}

// Addr returns host:port.
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// TelemetryConfig holds tracing, metrics and error reporting settings.
type TelemetryConfig struct {
	OTLPEndpoint string  `mapstructure:"otlp_endpoint"`
	OTLPHeaders  string  `mapstructure:"otlp_headers"`
	Environment  string  `mapstructure:"environment"`
	SentryDSN    string  `mapstructure:"sentry_dsn"`
	SampleRatio  float64 `mapstructure:"sample_ratio"`
	OTLPInsecure bool    `mapstructure:"otlp_insecure"`
}

// LoadDotEnv loads variables from the given .env files into the process
// environment without overriding variables already set. Missing files are
// skipped.
func LoadDotEnv(paths ...string) error {
	for _, path := range paths {
		_, statErr := os.Stat(path)
		if errors.Is(statErr, os.ErrNotExist) {
			continue
		}

		err := godotenv.Load(path)
		if err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
	}

	return nil
}

// LoadConfig loads configuration from file and environment variables.
func LoadConfig(configPath string) (*Config, error) {
	viperCfg := viper.New()

	setDefaults(viperCfg)

	if configPath != "" {
		viperCfg.SetConfigFile(configPath)
	} else {
		viperCfg.SetConfigName(FileName)
		viperCfg.SetConfigType("yaml")
		viperCfg.AddConfigPath(".")
		viperCfg.AddConfigPath("./config")
		viperCfg.AddConfigPath("/etc/myboxplot")
	}

	viperCfg.SetEnvPrefix(EnvPrefix)
	viperCfg.AutomaticEnv()
	viperCfg.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	readErr := viperCfg.ReadInConfig()
	if readErr != nil {
		var notFoundErr viper.ConfigFileNotFoundError
		if !errors.As(readErr, &notFoundErr) {
			return nil, fmt.Errorf("failed to read config file: %w", readErr)
		}
	}

	var config Config

	unmarshalErr := viperCfg.Unmarshal(&config)
	if unmarshalErr != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", unmarshalErr)
	}

	validateErr := config.Validate()
	if validateErr != nil {
		return nil, fmt.Errorf("invalid configuration: %w", validateErr)
	}

	return &config, nil
}

// Default returns the configuration used when nothing is configured.
func Default() *Config {
	return &Config{
		Input: InputConfig{Scale: DefaultInputScale},
		Chart: ChartConfig{
			Theme:                  ThemeLight,
			ThresholdLines:         DefaultThresholdLines(),
			NumberOfThresholdLines: DefaultNumberOfThresholdLines,
			LogoSize:               DefaultLogoSize,
			ShowLogo:               DefaultShowLogo,
		},
		Logging: LoggingConfig{Level: DefaultLogLevel, Format: LogFormatText},
		Server: ServerConfig{
			Host:         DefaultServerHost,
			Port:         DefaultServerPort,
			ReadTimeout:  DefaultServerReadTimeout,
			WriteTimeout: DefaultServerWriteTimeout,
			IdleTimeout:  DefaultServerIdleTimeout,
		},
	}
}

// setDefaults sets default configuration values.
func setDefaults(viperCfg *viper.Viper) {
	def := Default()

	viperCfg.SetDefault("input.format", def.Input.Format)
	viperCfg.SetDefault("input.scale", def.Input.Scale)

	viperCfg.SetDefault("colors.overrides", []map[string]any{})

	thresholds := make([]map[string]any, 0, len(def.Chart.ThresholdLines))
	for _, line := range def.Chart.ThresholdLines {
		thresholds = append(thresholds, map[string]any{"value": line.Value, "color": line.Color})
	}

	viperCfg.SetDefault("chart.theme", def.Chart.Theme)
	viperCfg.SetDefault("chart.threshold_lines", thresholds)
	viperCfg.SetDefault("chart.number_of_threshold_lines", def.Chart.NumberOfThresholdLines)
	viperCfg.SetDefault("chart.logo_size", def.Chart.LogoSize)
	viperCfg.SetDefault("chart.show_logo", def.Chart.ShowLogo)

	viperCfg.SetDefault("logging.level", def.Logging.Level)
	viperCfg.SetDefault("logging.format", def.Logging.Format)

	viperCfg.SetDefault("server.host", def.Server.Host)
	viperCfg.SetDefault("server.port", def.Server.Port)
	viperCfg.SetDefault("server.read_timeout", def.Server.ReadTimeout.String())
	viperCfg.SetDefault("server.write_timeout", def.Server.WriteTimeout.String())
	viperCfg.SetDefault("server.idle_timeout", def.Server.IdleTimeout.String())

	viperCfg.SetDefault("telemetry.otlp_endpoint", "")
	viperCfg.SetDefault("telemetry.otlp_headers", "")
	viperCfg.SetDefault("telemetry.otlp_insecure", false)
	viperCfg.SetDefault("telemetry.sample_ratio", 0.0)
	viperCfg.SetDefault("telemetry.sentry_dsn", "")
	viperCfg.SetDefault("telemetry.environment", "")
}

// Validate checks the configuration for out-of-range values.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > maxPort {
		return fmt.Errorf("%w: %d", ErrInvalidPort, c.Server.Port)
	}

	err := dataset.ValidateScale(c.Input.Scale)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidScale, err)
	}

	if c.Input.Format != "" {
		_, err := dataset.ParseFormat(c.Input.Format)
		if err != nil {
			return fmt.Errorf("%w: %q", ErrInvalidFormat, c.Input.Format)
		}
	}

	for _, o := range c.Colors.Overrides {
		cat := dataset.NormalizeCategory(o.Category)
		if !survey.IsKnown(cat) {
			return fmt.Errorf("colors.overrides: %w", &survey.UnknownCategoryError{Category: cat})
		}

		if !colorPattern.MatchString(o.Color) {
			return fmt.Errorf("%w: %q for %s", ErrInvalidColor, o.Color, cat)
		}
	}

	err = c.Chart.validate()
	if err != nil {
		return err
	}

	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: %q", ErrInvalidLogLevel, c.Logging.Level)
	}

	switch c.Logging.Format {
	case LogFormatText, LogFormatJSON:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidLogFormat, c.Logging.Format)
	}

	if c.Telemetry.SampleRatio < 0 || c.Telemetry.SampleRatio > 1 {
		return fmt.Errorf("%w: %v", ErrInvalidSampleRatio, c.Telemetry.SampleRatio)
	}

	return nil
}

func (c ChartConfig) validate() error {
	if c.Theme != ThemeLight && c.Theme != ThemeDark {
		return fmt.Errorf("%w: %q", ErrInvalidTheme, c.Theme)
	}

	if c.NumberOfThresholdLines < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidThresholdCount, c.NumberOfThresholdLines)
	}

	if c.LogoSize <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidLogoSize, c.LogoSize)
	}

	for _, line := range c.ThresholdLines {
		if line.Value < 0 || line.Value > 100 {
			return fmt.Errorf("%w: %v", ErrInvalidThreshold, line.Value)
		}

		if !colorPattern.MatchString(line.Color) {
			return fmt.Errorf("%w: %q for threshold %v", ErrInvalidColor, line.Color, line.Value)
		}
	}

	return nil
}

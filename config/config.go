// Package config loads the YAML configuration shared by the timetable CLI
// and HTTP server.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/tsawler/timetable/schedule"
	"github.com/tsawler/timetable/source"
)

// Config holds the full timetable configuration.
//
// LogLevel is one of debug, info, warn or error; LogFormat is text or json.
type Config struct {
	Columns       schedule.Columns `yaml:"columns"`
	HeaderCaption string           `yaml:"header_caption" validate:"required"`
	Sheet         string           `yaml:"sheet"`
	ReportSuffix  string           `yaml:"report_suffix" validate:"required,excludesall=/\\"`
	Strict        bool             `yaml:"strict"`
	MaxFileMB     int              `yaml:"max_file_mb" validate:"gt=0"`
	Listen        string           `yaml:"listen" validate:"required"`
	LogLevel      string           `yaml:"log_level"`
	LogFormat     string           `yaml:"log_format" validate:"omitempty,oneof=text json"`
}

// Default returns sane defaults.
func Default() *Config {
	return &Config{
		Columns:       schedule.DefaultColumns(),
		HeaderCaption: schedule.DefaultHeaderCaption,
		ReportSuffix:  source.DefaultReportSuffix,
		MaxFileMB:     50,
		Listen:        ":8080",
		LogLevel:      "info",
		LogFormat:     "text",
	}
}

// Load reads and parses a YAML config file. Values missing from the file
// keep their defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report fields by their YAML keys.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("yaml"), ",")
		return name
	})
	return v
}

// Validate checks that required fields are present and values are sane.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			if fe.Param() != "" {
				return fmt.Errorf("%s: value %v fails %s=%s", fe.Field(), fe.Value(), fe.Tag(), fe.Param())
			}
			return fmt.Errorf("%s: value %v fails %s", fe.Field(), fe.Value(), fe.Tag())
		}
		return err
	}
	if err := c.Columns.Validate(); err != nil {
		return fmt.Errorf("columns: %w", err)
	}
	if strings.TrimSpace(c.HeaderCaption) == "" {
		return fmt.Errorf("header_caption is blank")
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// Environment variables read by ApplyEnv.
const (
	EnvListen    = "TIMETABLE_LISTEN"
	EnvLogLevel  = "TIMETABLE_LOG_LEVEL"
	EnvSheet     = "TIMETABLE_SHEET"
	EnvStrict    = "TIMETABLE_STRICT"
	EnvMaxFileMB = "TIMETABLE_MAX_FILE_MB"
)

// ApplyEnv loads the given .env files, if they exist, into the process
// environment and then overrides config values from TIMETABLE_* variables.
// Variables already set in the environment win over .env files.
func (c *Config) ApplyEnv(files ...string) error {
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load env file %s: %w", f, err)
		}
	}

	if v := os.Getenv(EnvListen); v != "" {
		c.Listen = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv(EnvSheet); v != "" {
		c.Sheet = v
	}
	if v := os.Getenv(EnvStrict); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvStrict, err)
		}
		c.Strict = b
	}
	if v := os.Getenv(EnvMaxFileMB); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvMaxFileMB, err)
		}
		c.MaxFileMB = n
	}
	return c.Validate()
}

// MaxFileBytes returns max file size in bytes.
func (c *Config) MaxFileBytes() int64 { return int64(c.MaxFileMB) * 1024 * 1024 }

// ParseLevel maps a level name to a slog level. The empty string is info.
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unsupported log_level %q (use debug, info, warn or error)", name)
	}
}

// NewLogger builds a logger writing to w at the configured level and format.
func (c *Config) NewLogger(w io.Writer) *slog.Logger {
	lvl, _ := ParseLevel(c.LogLevel)
	opts := &slog.HandlerOptions{Level: lvl}
	if c.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

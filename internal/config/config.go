// Package config loads runtime settings from an optional YAML file and
// HISTOVIEW_* environment variables on top of struct defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"histoview/internal/models"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

const (
	FileName  = "histoview"
	EnvPrefix = "HISTOVIEW"
)

type Config struct {
	Camera  CameraConfig  `mapstructure:"camera"`
	Display DisplayConfig `mapstructure:"display"`
	Fetch   FetchConfig   `mapstructure:"fetch"`
	Params  ParamsConfig  `mapstructure:"params"`
	Log     LogConfig     `mapstructure:"log"`
	Window  WindowConfig  `mapstructure:"window"`
}

type CameraConfig struct {
	Index int `mapstructure:"index" default:"0" validate:"gte=0"`
}

type DisplayConfig struct {
	// FrameInterval paces the camera loop; zero runs back to back.
	FrameInterval time.Duration `mapstructure:"frame_interval" default:"33ms" validate:"gte=0"`
	// StatsInterval controls how often frame statistics are logged.
	StatsInterval time.Duration `mapstructure:"stats_interval" default:"30s" validate:"gt=0"`
}

type FetchConfig struct {
	Timeout  time.Duration `mapstructure:"timeout" default:"30s" validate:"gt=0"`
	MaxBytes int64         `mapstructure:"max_bytes" default:"33554432" validate:"gt=0"`
}

type ParamsConfig struct {
	Mode         string `mapstructure:"mode" default:"Normal" validate:"oneof=Normal Grayscale Binary Canny"`
	BinaryThresh int    `mapstructure:"binary_thresh" default:"128" validate:"gte=0,lte=255"`
	CannyT1      int    `mapstructure:"canny_t1" default:"100" validate:"gte=0,lte=500"`
	CannyT2      int    `mapstructure:"canny_t2" default:"200" validate:"gte=0,lte=500"`
}

type LogConfig struct {
	Level      string `mapstructure:"level" default:"info" validate:"oneof=debug info warn error"`
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb" default:"10" validate:"gt=0"`
	MaxBackups int    `mapstructure:"max_backups" default:"3" validate:"gte=0"`
	MaxAgeDays int    `mapstructure:"max_age_days" default:"7" validate:"gte=0"`
}

type WindowConfig struct {
	Width  float32 `mapstructure:"width" default:"1200" validate:"gte=400"`
	Height float32 `mapstructure:"height" default:"800" validate:"gte=300"`
}

// keys lists every setting so that env overrides work without a config file.
var keys = []string{
	"camera.index",
	"display.frame_interval",
	"display.stats_interval",
	"fetch.timeout",
	"fetch.max_bytes",
	"params.mode",
	"params.binary_thresh",
	"params.canny_t1",
	"params.canny_t2",
	"log.level",
	"log.file",
	"log.max_size_mb",
	"log.max_backups",
	"log.max_age_days",
	"window.width",
	"window.height",
}

var validate = validator.New()

// Default returns a Config populated from struct defaults only.
func Default() (*Config, error) {
	cfg := &Config{}
	if err := defaults.Set(cfg); err != nil {
		return nil, fmt.Errorf("failed to set defaults: %w", err)
	}
	return cfg, nil
}

// Load reads path, or histoview.yaml from the working directory or
// $HOME/.config/histoview when path is empty. A missing file is not an error.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(FileName)
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", FileName))
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for _, key := range keys {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", key, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	cfg, err := Default()
	if err != nil {
		return nil, err
	}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyLegacyLogEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyLegacyLogEnv honours LOG_LEVEL and DEBUG=1.
func applyLegacyLogEnv(cfg *Config) {
	switch level := os.Getenv("LOG_LEVEL"); level {
	case "debug", "info", "warn", "error":
		cfg.Log.Level = level
	case "":
		if os.Getenv("DEBUG") == "1" {
			cfg.Log.Level = "debug"
		}
	}
}

func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}

// InitialParams converts the configured slider defaults to a Params snapshot.
func (c *Config) InitialParams() models.Params {
	return models.Params{
		Mode:         models.ParseMode(c.Params.Mode),
		BinaryThresh: c.Params.BinaryThresh,
		CannyLow:     c.Params.CannyT1,
		CannyHigh:    c.Params.CannyT2,
	}
}

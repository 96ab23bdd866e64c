package log

import (
	"fmt"
	"strings"
	"time"
)

type Config struct {
	Level       string `yaml:"level"`
	Format      string `yaml:"format"`
	Environment string `yaml:"environment"`
	ServiceName string `yaml:"service_name"`
	Version     string `yaml:"version"`

	// OutputPath is "stdout", "stderr" or a file path. File output rotates
	// through lumberjack using the limits below.
	OutputPath string `yaml:"output_path"`

	FileMaxSizeInMB  int  `yaml:"file_max_size_mb"`
	FileMaxAgeInDays int  `yaml:"file_max_age_days"`
	FileMaxBackups   int  `yaml:"file_max_backups"`
	CompressRotated  bool `yaml:"compress_rotated"`

	DisableCaller     bool            `yaml:"disable_caller"`
	DisableStacktrace bool            `yaml:"disable_stacktrace"`
	SamplingConfig    *SamplingConfig `yaml:"sampling"`

	InitialFields map[string]interface{} `yaml:"initial_fields"`
}

// SamplingConfig caps repeated entries per tick, Initial pass through and
// every Thereafter-th after that.
type SamplingConfig struct {
	Initial    int           `yaml:"initial"`
	Thereafter int           `yaml:"thereafter"`
	Tick       time.Duration `yaml:"tick"`
}

func (c *Config) Validate() error {
	switch strings.ToLower(c.Level) {
	case "debug", "info", "warn", "error", "fatal":
	default:
		return fmt.Errorf("invalid log level %q, must be one of: debug, info, warn, error, fatal", c.Level)
	}

	switch strings.ToLower(c.Format) {
	case "json", "console":
	default:
		return fmt.Errorf("invalid log format %q, must be 'json' or 'console'", c.Format)
	}

	if c.FileMaxSizeInMB <= 0 {
		return fmt.Errorf("file_max_size_mb must be greater than 0")
	}
	if c.FileMaxAgeInDays <= 0 {
		return fmt.Errorf("file_max_age_days must be greater than 0")
	}
	if c.FileMaxBackups < 0 {
		return fmt.Errorf("file_max_backups must not be negative")
	}

	if s := c.SamplingConfig; s != nil {
		if s.Initial <= 0 || s.Thereafter <= 0 {
			return fmt.Errorf("sampling initial and thereafter must be greater than 0")
		}
	}

	return nil
}

func DefaultConfig() Config {
	return Config{
		Level:            "info",
		Format:           "json",
		Environment:      "development",
		ServiceName:      "atelier-backend",
		Version:          "1.0.0",
		OutputPath:       "stdout",
		FileMaxSizeInMB:  100,
		FileMaxAgeInDays: 30,
		FileMaxBackups:   10,
		CompressRotated:  true,
		InitialFields:    make(map[string]interface{}),
	}
}

func DevelopmentConfig() Config {
	config := DefaultConfig()
	config.Level = "debug"
	config.Format = "console"
	return config
}

func ProductionConfig(serviceName, version string) Config {
	config := DefaultConfig()
	config.Environment = "production"
	config.ServiceName = serviceName
	config.Version = version
	config.DisableCaller = true
	config.DisableStacktrace = true
	config.SamplingConfig = &SamplingConfig{
		Initial:    100,
		Thereafter: 100,
	}
	return config
}

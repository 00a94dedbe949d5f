// Package config provides Igniter's layered configuration surface (spec
// §6.5), grounded on the teacher's spf13/viper-backed
// internal/infrastructure/config package: env-var expansion, YAML
// parsing, and silent defaulting of missing keys.
package config

import "time"

// Config is the full configuration surface: the spec §6.5 fields the
// Builder's .config(...) stage consumes, plus the ambient app/log/
// telemetry sections the teacher's boilerplate carries.
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	HTTP      HTTPConfig      `mapstructure:"http"`
	Realtime  RealtimeConfig  `mapstructure:"realtime"`
	Log       LogConfig       `mapstructure:"log"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// AppConfig carries identity metadata, mirroring the teacher's AppConfig.
type AppConfig struct {
	Name    string `mapstructure:"name"`
	Env     string `mapstructure:"env"`
	Version string `mapstructure:"version"`
}

// HTTPConfig is the spec §6.5 core configuration surface (baseURL,
// basePath, timeoutMs, bodyLimitBytes) plus the teacher's server-level
// timeouts.
type HTTPConfig struct {
	BaseURL        string        `mapstructure:"base_url"`
	BasePath       string        `mapstructure:"base_path"`
	TimeoutMs      int           `mapstructure:"timeout_ms"`
	BodyLimitBytes int64         `mapstructure:"body_limit_bytes"`
	Port           int           `mapstructure:"port"`
	Prefork        bool          `mapstructure:"prefork"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	IdleTimeout    time.Duration `mapstructure:"idle_timeout"`
}

// RealtimeConfig is the spec §6.5 realtime.* configuration surface.
type RealtimeConfig struct {
	HeartbeatMs     int    `mapstructure:"heartbeat_ms"`
	QueueSize       int    `mapstructure:"queue_size"`
	OverflowPolicy  string `mapstructure:"overflow_policy"`
}

// LogConfig mirrors the teacher's LogConfig (rotation settings for the
// logrus driver).
type LogConfig struct {
	Driver   string `mapstructure:"driver"`
	Path     string `mapstructure:"path"`
	Level    int    `mapstructure:"level"`
	Rotation struct {
		MaxSize   int  `mapstructure:"max_size"`
		MaxBackup int  `mapstructure:"max_backup"`
		MaxAge    int  `mapstructure:"max_age"`
		Compress  bool `mapstructure:"compress"`
	} `mapstructure:"rotation"`
}

// TelemetryConfig mirrors the teacher's TelemetryConfig.
type TelemetryConfig struct {
	Enabled        bool    `mapstructure:"enabled"`
	Type           string  `mapstructure:"type"`
	MetricsAddress string  `mapstructure:"metrics_address"`
	TracerAddress  string  `mapstructure:"tracer_address"`
	Namespace      string  `mapstructure:"namespace"`
	SampleRate     float64 `mapstructure:"sample_rate"`
}

// Defaults mirrors spec §6.5's stated default values, applied by
// ApplyDefaults after loading, whether from file or literal construction.
func Defaults() Config {
	return Config{
		HTTP: HTTPConfig{
			BaseURL:        "",
			BasePath:       "/",
			TimeoutMs:      30000,
			BodyLimitBytes: 1_048_576,
		},
		Realtime: RealtimeConfig{
			HeartbeatMs:    15000,
			QueueSize:      1024,
			OverflowPolicy: "drop-oldest",
		},
	}
}

// ApplyDefaults fills zero-valued fields in cfg from Defaults(), mirroring
// the "missing required fields are silently defaulted" rule of spec §4.1.
func ApplyDefaults(cfg Config) Config {
	d := Defaults()

	if cfg.HTTP.BasePath == "" {
		cfg.HTTP.BasePath = d.HTTP.BasePath
	}
	if cfg.HTTP.TimeoutMs == 0 {
		cfg.HTTP.TimeoutMs = d.HTTP.TimeoutMs
	}
	if cfg.HTTP.BodyLimitBytes == 0 {
		cfg.HTTP.BodyLimitBytes = d.HTTP.BodyLimitBytes
	}
	if cfg.Realtime.HeartbeatMs == 0 {
		cfg.Realtime.HeartbeatMs = d.Realtime.HeartbeatMs
	}
	if cfg.Realtime.QueueSize == 0 {
		cfg.Realtime.QueueSize = d.Realtime.QueueSize
	}
	if cfg.Realtime.OverflowPolicy == "" {
		cfg.Realtime.OverflowPolicy = d.Realtime.OverflowPolicy
	}

	return cfg
}

// Timeout returns HTTP.TimeoutMs as a time.Duration.
func (c Config) Timeout() time.Duration {
	return time.Duration(c.HTTP.TimeoutMs) * time.Millisecond
}

// Heartbeat returns Realtime.HeartbeatMs as a time.Duration.
func (c Config) Heartbeat() time.Duration {
	return time.Duration(c.Realtime.HeartbeatMs) * time.Millisecond
}

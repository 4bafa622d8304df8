package common

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
)

// Config represents the application configuration
type Config struct {
	Server    ServerConfig    `toml:"server"`
	Logging   LoggingConfig   `toml:"logging"`
	Device    DeviceConfig    `toml:"device"`
	Telemetry TelemetryConfig `toml:"telemetry"`
	AppsFlyer AppsFlyerConfig `toml:"appsflyer"`
	Keystore  KeystoreConfig  `toml:"keystore"`
}

type ServerConfig struct {
	Name string `toml:"name"`
}

type LoggingConfig struct {
	Level  string   `toml:"level"`  // "debug", "info", "warn", "error"
	Output []string `toml:"output"` // "stdout", "file"
}

// DeviceConfig selects the device and the adb binary used to reach it.
type DeviceConfig struct {
	AdbPath string `toml:"adb_path"` // adb binary (default: "adb" on PATH)
	Serial  string `toml:"serial"`   // device serial; empty = single connected device
}

// TelemetryConfig tunes the log pipeline: the product marker that
// identifies SDK lines, the buffer bound, and the bounded wait used by
// verification reads.
type TelemetryConfig struct {
	Marker         string `toml:"marker"`          // product marker substring (default: "AppsFlyer_")
	TagPrefix      string `toml:"tag_prefix"`      // logcat tag prefix to stream (default: marker)
	BufferCapacity int    `toml:"buffer_capacity"` // max buffered lines (default: 4000)
	PollInterval   string `toml:"poll_interval"`   // e.g. "200ms" - wait increment
	PollTimeout    string `toml:"poll_timeout"`    // e.g. "2s" - wait ceiling
	RecencyWindow  string `toml:"recency_window"`  // e.g. "5m" - evidence freshness window
}

// AppsFlyerConfig covers the outbound API surface: credential
// validation and OneLink resolution.
type AppsFlyerConfig struct {
	APIBaseURL     string  `toml:"api_base_url" validate:"omitempty,url"`
	SigningKey     string  `toml:"signing_key"`     // HMAC key for OneLink requests; APPSFLYER_SIGNING_KEY overrides
	RequestTimeout string  `toml:"request_timeout"` // e.g. "15s"
	RateLimit      float64 `toml:"rate_limit"`      // outbound requests per second
}

// KeystoreConfig locates the app signing keystore for fingerprint
// extraction.
type KeystoreConfig struct {
	KeytoolPath string `toml:"keytool_path"` // keytool binary (default: "keytool" on PATH)
	Path        string `toml:"path"`
	Alias       string `toml:"alias"`
}

// DefaultConfig returns the built-in defaults. File and environment
// values layer on top.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Name: "appsflyer-sdk-mcp",
		},
		Logging: LoggingConfig{
			Level:  "warn",
			Output: []string{"stdout"},
		},
		Device: DeviceConfig{
			AdbPath: "adb",
		},
		Telemetry: TelemetryConfig{
			Marker:         "AppsFlyer_",
			BufferCapacity: 4000,
			PollInterval:   "200ms",
			PollTimeout:    "2s",
			RecencyWindow:  "5m",
		},
		AppsFlyer: AppsFlyerConfig{
			APIBaseURL:     "https://hq1.appsflyer.com",
			RequestTimeout: "15s",
			RateLimit:      2,
		},
		Keystore: KeystoreConfig{
			KeytoolPath: "keytool",
		},
	}
}

// LoadFromFile loads configuration: defaults -> TOML file -> env
// overrides. A missing file is not an error; defaults apply.
func LoadFromFile(path string) (*Config, error) {
	config := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err == nil {
			if err := toml.Unmarshal(data, config); err != nil {
				return nil, fmt.Errorf("parsing config %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	applyEnvOverrides(config)

	if config.Telemetry.TagPrefix == "" {
		config.Telemetry.TagPrefix = config.Telemetry.Marker
	}

	if err := validator.New().Struct(config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return config, nil
}

// applyEnvOverrides applies environment variables on top of file
// values. Secrets in particular are expected to come from the
// environment rather than the config file.
func applyEnvOverrides(config *Config) {
	if v := os.Getenv("APPSFLYER_MCP_LOG_LEVEL"); v != "" {
		config.Logging.Level = v
	}
	if v := os.Getenv("APPSFLYER_MCP_ADB_PATH"); v != "" {
		config.Device.AdbPath = v
	}
	if v := os.Getenv("APPSFLYER_MCP_DEVICE_SERIAL"); v != "" {
		config.Device.Serial = v
	}
	if v := os.Getenv("APPSFLYER_MCP_API_BASE_URL"); v != "" {
		config.AppsFlyer.APIBaseURL = v
	}
	if v := os.Getenv("APPSFLYER_SIGNING_KEY"); v != "" {
		config.AppsFlyer.SigningKey = v
	}
	if v := os.Getenv("APPSFLYER_MCP_BUFFER_CAPACITY"); v != "" {
		if capacity, err := strconv.Atoi(v); err == nil && capacity > 0 {
			config.Telemetry.BufferCapacity = capacity
		}
	}
}

// ParseDurationOr converts a config duration string (e.g. "200ms"),
// falling back when the value is empty or malformed. TOML carries
// durations as strings so they stay readable in config files.
func ParseDurationOr(s string, fallback time.Duration) time.Duration {
	if s == "" {
		return fallback
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}

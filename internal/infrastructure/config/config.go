package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for finger.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	Bots      BotsConfig      `yaml:"bots"`
	Platform  PlatformConfig  `yaml:"platform"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Settings  SettingsConfig  `yaml:"settings"`
	Database  DatabaseConfig  `yaml:"database"`
	MQTT      MQTTConfig      `yaml:"mqtt"`
	InfluxDB  InfluxDBConfig  `yaml:"influxdb"`
	Logging   LoggingConfig   `yaml:"logging"`
	Hotkey    HotkeyConfig    `yaml:"hotkey"`
	UI        UIConfig        `yaml:"ui"`
}

// BotsConfig locates the bot scripts.
type BotsConfig struct {
	// Dir is scanned recursively for bot folders.
	Dir string `yaml:"dir"`

	// EntryFile is the script file that marks a folder as a bot.
	EntryFile string `yaml:"entry_file"`
}

// PlatformConfig selects the window backend.
type PlatformConfig struct {
	// Kind is "xdotool" or "stub".
	Kind          string `yaml:"kind"`
	XdotoolBinary string `yaml:"xdotool_binary"`
	ImportBinary  string `yaml:"import_binary"`
}

// SchedulerConfig contains orchestrator timings.
type SchedulerConfig struct {
	SettleDelay     time.Duration `yaml:"settle_delay"`
	PassInterval    time.Duration `yaml:"pass_interval"`
	DefaultCooldown time.Duration `yaml:"default_cooldown"`

	// RescanInterval triggers a periodic window rescan. Zero disables it.
	RescanInterval time.Duration `yaml:"rescan_interval"`
}

// SettingsConfig selects where enabled bots are persisted.
type SettingsConfig struct {
	// Backend is "file" or "sqlite".
	Backend string `yaml:"backend"`

	// Path is the JSON file used by the file backend.
	Path string `yaml:"path"`
}

// DatabaseConfig contains SQLite database settings.
type DatabaseConfig struct {
	Path        string `yaml:"path"`
	WALMode     bool   `yaml:"wal_mode"`
	BusyTimeout int    `yaml:"busy_timeout"`

	// TickHistory records every tick in the tick_history table.
	TickHistory bool `yaml:"tick_history"`
}

// MQTTConfig contains MQTT broker connection settings.
type MQTTConfig struct {
	Enabled     bool                `yaml:"enabled"`
	Broker      MQTTBrokerConfig    `yaml:"broker"`
	Auth        MQTTAuthConfig      `yaml:"auth"`
	QoS         int                 `yaml:"qos"`
	Reconnect   MQTTReconnectConfig `yaml:"reconnect"`
	TopicPrefix string              `yaml:"topic_prefix"`
}

// MQTTBrokerConfig contains MQTT broker connection details.
type MQTTBrokerConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	TLS      bool   `yaml:"tls"`
	ClientID string `yaml:"client_id"`
}

// MQTTAuthConfig contains MQTT authentication credentials.
type MQTTAuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// MQTTReconnectConfig contains MQTT reconnection settings.
type MQTTReconnectConfig struct {
	InitialDelay int `yaml:"initial_delay"`
	MaxDelay     int `yaml:"max_delay"`
	MaxAttempts  int `yaml:"max_attempts"`
}

// InfluxDBConfig contains InfluxDB connection settings.
type InfluxDBConfig struct {
	Enabled       bool   `yaml:"enabled"`
	URL           string `yaml:"url"`
	Token         string `yaml:"token"`
	Org           string `yaml:"org"`
	Bucket        string `yaml:"bucket"`
	BatchSize     int    `yaml:"batch_size"`
	FlushInterval int    `yaml:"flush_interval"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"`

	// Format is "json", "text" or "auto" (text on a terminal, JSON otherwise).
	Format string `yaml:"format"`

	// Output is "stdout", "stderr", "file" or "none".
	Output string            `yaml:"output"`
	File   FileLoggingConfig `yaml:"file"`
}

// FileLoggingConfig contains file-based logging settings.
type FileLoggingConfig struct {
	Path string `yaml:"path"`
}

// HotkeyConfig contains the global start/stop trigger settings.
type HotkeyConfig struct {
	Enabled bool   `yaml:"enabled"`
	Signal  string `yaml:"signal"`
}

// UIConfig selects the front end.
type UIConfig struct {
	// Mode is "auto", "tui" or "headless".
	Mode string `yaml:"mode"`
}

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults), skipped when the file does not exist
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern: FINGER_SECTION_KEY
// For example: FINGER_BOTS_DIR, FINGER_MQTT_HOST
func Load(path string) (*Config, error) {
	// Start with defaults
	cfg := defaultConfig()

	// Read and parse YAML file
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("reading config file: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	// Apply environment variable overrides
	applyEnvOverrides(cfg)

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// Default returns the built-in configuration.
func Default() *Config {
	return defaultConfig()
}

// defaultConfig returns a Config with sensible defaults.
func defaultConfig() *Config {
	return &Config{
		Bots: BotsConfig{
			Dir:       "./bots",
			EntryFile: "main.lua",
		},
		Platform: PlatformConfig{
			Kind:          "xdotool",
			XdotoolBinary: "xdotool",
			ImportBinary:  "import",
		},
		Scheduler: SchedulerConfig{
			SettleDelay:     200 * time.Millisecond,
			PassInterval:    100 * time.Millisecond,
			DefaultCooldown: 5 * time.Second,
		},
		Settings: SettingsConfig{
			Backend: "file",
			Path:    "./settings.json",
		},
		Database: DatabaseConfig{
			Path:        "./data/finger.db",
			WALMode:     true,
			BusyTimeout: 5,
		},
		MQTT: MQTTConfig{
			Broker: MQTTBrokerConfig{
				Host:     "localhost",
				Port:     1883,
				ClientID: "finger",
			},
			QoS: 1,
			Reconnect: MQTTReconnectConfig{
				InitialDelay: 1,
				MaxDelay:     60,
				MaxAttempts:  0,
			},
			TopicPrefix: "finger",
		},
		InfluxDB: InfluxDBConfig{
			URL:           "http://localhost:8086",
			Org:           "finger",
			Bucket:        "finger",
			BatchSize:     100,
			FlushInterval: 10,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "auto",
			Output: "file",
			File:   FileLoggingConfig{Path: "./logs/app.log"},
		},
		Hotkey: HotkeyConfig{
			Enabled: true,
			Signal:  "SIGUSR1",
		},
		UI: UIConfig{
			Mode: "auto",
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables follow the pattern: FINGER_SECTION_KEY
func applyEnvOverrides(cfg *Config) {
	// Bots
	if v := os.Getenv("FINGER_BOTS_DIR"); v != "" {
		cfg.Bots.Dir = v
	}

	// Platform
	if v := os.Getenv("FINGER_PLATFORM_KIND"); v != "" {
		cfg.Platform.Kind = v
	}

	// Settings
	if v := os.Getenv("FINGER_SETTINGS_BACKEND"); v != "" {
		cfg.Settings.Backend = v
	}
	if v := os.Getenv("FINGER_SETTINGS_PATH"); v != "" {
		cfg.Settings.Path = v
	}

	// Database
	if v := os.Getenv("FINGER_DATABASE_PATH"); v != "" {
		cfg.Database.Path = v
	}

	// MQTT
	if v := os.Getenv("FINGER_MQTT_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.MQTT.Enabled = b
		}
	}
	if v := os.Getenv("FINGER_MQTT_HOST"); v != "" {
		cfg.MQTT.Broker.Host = v
	}
	if v := os.Getenv("FINGER_MQTT_USERNAME"); v != "" {
		cfg.MQTT.Auth.Username = v
	}
	if v := os.Getenv("FINGER_MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Auth.Password = v
	}

	// InfluxDB
	if v := os.Getenv("FINGER_INFLUXDB_TOKEN"); v != "" {
		cfg.InfluxDB.Token = v
	}

	// Logging
	if v := os.Getenv("FINGER_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}

	// UI
	if v := os.Getenv("FINGER_UI_MODE"); v != "" {
		cfg.UI.Mode = v
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []string

	if c.Bots.Dir == "" {
		errs = append(errs, "bots.dir is required")
	}
	if c.Bots.EntryFile == "" {
		errs = append(errs, "bots.entry_file is required")
	}

	switch c.Platform.Kind {
	case "xdotool", "stub":
	default:
		errs = append(errs, "platform.kind must be xdotool or stub")
	}

	if c.Scheduler.SettleDelay < 0 {
		errs = append(errs, "scheduler.settle_delay must not be negative")
	}
	if c.Scheduler.PassInterval <= 0 {
		errs = append(errs, "scheduler.pass_interval must be positive")
	}
	if c.Scheduler.DefaultCooldown <= 0 {
		errs = append(errs, "scheduler.default_cooldown must be positive")
	}
	if c.Scheduler.RescanInterval < 0 {
		errs = append(errs, "scheduler.rescan_interval must not be negative")
	}

	switch c.Settings.Backend {
	case "file":
		if c.Settings.Path == "" {
			errs = append(errs, "settings.path is required for the file backend")
		}
	case "sqlite":
	default:
		errs = append(errs, "settings.backend must be file or sqlite")
	}
	if c.UsesDatabase() && c.Database.Path == "" {
		errs = append(errs, "database.path is required")
	}

	if c.MQTT.Enabled {
		if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
			errs = append(errs, "mqtt.qos must be 0, 1, or 2")
		}
		if c.MQTT.TopicPrefix == "" {
			errs = append(errs, "mqtt.topic_prefix is required")
		}
	}

	if c.InfluxDB.Enabled && c.InfluxDB.URL == "" {
		errs = append(errs, "influxdb.url is required when enabled")
	}

	switch c.Logging.Format {
	case "json", "text", "auto":
	default:
		errs = append(errs, "logging.format must be json, text or auto")
	}
	if c.Logging.Output == "file" && c.Logging.File.Path == "" {
		errs = append(errs, "logging.file.path is required for file output")
	}

	switch c.UI.Mode {
	case "auto", "tui", "headless":
	default:
		errs = append(errs, "ui.mode must be auto, tui or headless")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// UsesDatabase reports whether any component needs the SQLite database.
func (c *Config) UsesDatabase() bool {
	return c.Settings.Backend == "sqlite" || c.Database.TickHistory
}

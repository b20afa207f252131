package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const appName = "mediaplayer"

const (
	defaultReadyTimeout       = time.Second
	defaultPollInterval       = 100 * time.Millisecond
	defaultForegroundDeadline = 5 * time.Second
	defaultMailboxSize        = 32
	defaultTitle              = "Media playback"
	defaultChannelName        = "Media playback"
	defaultChannelDescription = "Shows when media is playing in the background"
	defaultIcon               = "audio-x-generic"
	defaultPlayerName         = "mediaplayer"
	defaultLogLevel           = "info"
)

type Config struct {
	Playback      PlaybackConfig      `koanf:"playback"`
	Background    BackgroundConfig    `koanf:"background"`
	MPRIS         MPRISConfig         `koanf:"mpris"`
	Notifications NotificationsConfig `koanf:"notifications"`
	Resume        ResumeConfig        `koanf:"resume"`
	Logging       LoggingConfig       `koanf:"logging"`
}

// PlaybackConfig holds playback controller timings.
type PlaybackConfig struct {
	ReadyTimeout time.Duration `koanf:"ready_timeout"` // max wait for a loaded item to become ready (default: 1s)
	PollInterval time.Duration `koanf:"poll_interval"` // position refresh while playing (default: 100ms)
}

// BackgroundConfig holds the background playback service settings.
type BackgroundConfig struct {
	AutoEnable         bool          `koanf:"auto_enable"`         // enable background mode when playback starts
	ForegroundDeadline time.Duration `koanf:"foreground_deadline"` // time a started service has to post its notification (default: 5s)
	MailboxSize        int           `koanf:"mailbox_size"`        // pending intents per service (1-1024, default: 32)
	DefaultTitle       string        `koanf:"default_title"`
	ChannelName        string        `koanf:"channel_name"`
	ChannelDescription string        `koanf:"channel_description"`
	Icon               string        `koanf:"icon"` // icon name or path shown in the notification
}

// MPRISConfig holds the D-Bus transport control session settings.
type MPRISConfig struct {
	Enabled    *bool  `koanf:"enabled"`     // default: true
	PlayerName string `koanf:"player_name"` // bus name suffix (default: "mediaplayer")
}

// NotificationsConfig holds desktop notification settings.
type NotificationsConfig struct {
	Enabled *bool `koanf:"enabled"` // default: true
}

// ResumeConfig controls whether files resume where they were left off.
type ResumeConfig struct {
	Enabled *bool `koanf:"enabled"` // default: true
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `koanf:"level"`  // debug, info, warn, error (default: info)
	Pretty bool   `koanf:"pretty"` // human-readable console output
	File   string `koanf:"file"`   // log file path (default: XDG state dir)
}

// Load reads the config files from the default locations.
func Load() (*Config, error) {
	return LoadFrom(getConfigPaths()...)
}

// LoadFrom reads the given TOML files in order (last wins). Missing files are skipped.
func LoadFrom(paths ...string) (*Config, error) {
	k := koanf.New(".")

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
				return nil, err
			}
		}
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}

	cfg.Logging.Level = strings.ToLower(strings.TrimSpace(cfg.Logging.Level))
	if cfg.Logging.File != "" {
		cfg.Logging.File = expandPath(cfg.Logging.File)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate rejects values that cannot be defaulted sensibly.
func (c *Config) Validate() error {
	switch c.Logging.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %s (must be one of: debug, info, warn, error)", c.Logging.Level)
	}
	if c.Playback.ReadyTimeout < 0 {
		return fmt.Errorf("invalid ready timeout: %v (must be >= 0)", c.Playback.ReadyTimeout)
	}
	return nil
}

func getConfigPaths() []string {
	paths := []string{}

	// 1. $XDG_CONFIG_HOME/mediaplayer/config.toml
	if xdg.ConfigHome != "" {
		paths = append(paths, filepath.Join(xdg.ConfigHome, appName, "config.toml"))
	}

	// 2. ./config.toml (pwd, highest priority)
	paths = append(paths, "config.toml")

	return paths
}

func expandPath(path string) string {
	if path != "" && path[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}

// GetPlaybackConfig returns the playback configuration with defaults applied.
func (c *Config) GetPlaybackConfig() PlaybackConfig {
	cfg := c.Playback

	if cfg.ReadyTimeout <= 0 {
		cfg.ReadyTimeout = defaultReadyTimeout
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = defaultPollInterval
	}
	// Polling slower than the readiness wait makes the position useless.
	if cfg.PollInterval > cfg.ReadyTimeout {
		cfg.PollInterval = defaultPollInterval
	}

	return cfg
}

// GetBackgroundConfig returns the background service configuration with defaults applied.
func (c *Config) GetBackgroundConfig() BackgroundConfig {
	cfg := c.Background

	if cfg.ForegroundDeadline <= 0 {
		cfg.ForegroundDeadline = defaultForegroundDeadline
	}
	if cfg.MailboxSize <= 0 || cfg.MailboxSize > 1024 {
		cfg.MailboxSize = defaultMailboxSize
	}
	if cfg.DefaultTitle == "" {
		cfg.DefaultTitle = defaultTitle
	}
	if cfg.ChannelName == "" {
		cfg.ChannelName = defaultChannelName
	}
	if cfg.ChannelDescription == "" {
		cfg.ChannelDescription = defaultChannelDescription
	}
	if cfg.Icon == "" {
		cfg.Icon = defaultIcon
	}

	return cfg
}

// MPRISEnabled returns true unless MPRIS was explicitly disabled.
func (c *Config) MPRISEnabled() bool {
	return c.MPRIS.Enabled == nil || *c.MPRIS.Enabled
}

// PlayerName returns the MPRIS player name.
func (c *Config) PlayerName() string {
	if c.MPRIS.PlayerName == "" {
		return defaultPlayerName
	}
	return c.MPRIS.PlayerName
}

// NotificationsEnabled returns true unless notifications were explicitly disabled.
func (c *Config) NotificationsEnabled() bool {
	return c.Notifications.Enabled == nil || *c.Notifications.Enabled
}

// ResumeEnabled returns true unless resuming was explicitly disabled.
func (c *Config) ResumeEnabled() bool {
	return c.Resume.Enabled == nil || *c.Resume.Enabled
}

// LogLevel returns the configured log level, or info when unset.
func (c *Config) LogLevel() string {
	if c.Logging.Level == "" {
		return defaultLogLevel
	}
	return c.Logging.Level
}

// LogFile returns the log file path, defaulting to the XDG state directory.
func (c *Config) LogFile() (string, error) {
	if c.Logging.File != "" {
		return c.Logging.File, nil
	}
	return xdg.StateFile(filepath.Join(appName, appName+".log"))
}

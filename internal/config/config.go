package config

import (
	"time"

	"github.com/kolejker/OsaltServer/internal/core"
)

// ChannelConfig describes the default chat channel.
type ChannelConfig struct {
	Name        string `mapstructure:"name" yaml:"name"`
	Description string `mapstructure:"description" yaml:"description"`
}

// Config holds server configuration values.
type Config struct {
	Addr              string        `mapstructure:"addr" yaml:"addr"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout" yaml:"read_header_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
	LogLevel          string        `mapstructure:"log_level" yaml:"log_level"`
	LogFormat         string        `mapstructure:"log_format" yaml:"log_format"`
	DatabasePath      string        `mapstructure:"database_path" yaml:"database_path"`
	TokenSecret       string        `mapstructure:"token_secret" yaml:"token_secret"`
	TokenIssuer       string        `mapstructure:"token_issuer" yaml:"token_issuer"`
	MaxBodyBytes      int64         `mapstructure:"max_body_bytes" yaml:"max_body_bytes"`
	CORSOrigins       []string      `mapstructure:"cors_origins" yaml:"cors_origins"`
	AdminToken        string        `mapstructure:"admin_token" yaml:"admin_token"`

	BroadcastMode    string        `mapstructure:"broadcast_mode" yaml:"broadcast_mode"`
	MaxPendingBytes  int           `mapstructure:"max_pending_bytes" yaml:"max_pending_bytes"`
	MOTD             string        `mapstructure:"motd" yaml:"motd"`
	ProtocolVersion  uint32        `mapstructure:"protocol_version" yaml:"protocol_version"`
	LoginPermissions uint32        `mapstructure:"login_permissions" yaml:"login_permissions"`
	DefaultChannel   ChannelConfig `mapstructure:"default_channel" yaml:"default_channel"`
	Profile          core.Profile  `mapstructure:"profile" yaml:"profile"`
}

// Default returns configuration with reasonable starter defaults.
func Default() Config {
	return Config{
		Addr:              "127.0.0.1:13381",
		ReadHeaderTimeout: 5 * time.Second,
		ShutdownTimeout:   5 * time.Second,
		LogLevel:          "info",
		LogFormat:         "console",
		DatabasePath:      "users.db",
		TokenSecret:       "change-me",
		TokenIssuer:       "osalt",
		MaxBodyBytes:      1 << 20,
		CORSOrigins:       []string{"*"},
		BroadcastMode:     string(core.BroadcastQueue),
		MaxPendingBytes:   1 << 20,
		ProtocolVersion:   19,
		LoginPermissions:  4,
		DefaultChannel: ChannelConfig{
			Name:        core.DefaultChannel.Name,
			Description: core.DefaultChannel.Description,
		},
		Profile: core.DefaultProfile(),
	}
}

// UpdateFrom overwrites non-zero values from other config into receiver.
// Only the values settable from the command line are considered.
func (c *Config) UpdateFrom(other Config) {
	if other.Addr != "" {
		c.Addr = other.Addr
	}
	if other.ReadHeaderTimeout != 0 {
		c.ReadHeaderTimeout = other.ReadHeaderTimeout
	}
	if other.ShutdownTimeout != 0 {
		c.ShutdownTimeout = other.ShutdownTimeout
	}
	if other.LogLevel != "" {
		c.LogLevel = other.LogLevel
	}
	if other.DatabasePath != "" {
		c.DatabasePath = other.DatabasePath
	}
	if other.BroadcastMode != "" {
		c.BroadcastMode = other.BroadcastMode
	}
}

// Channel returns the default channel as the engine models it.
func (c Config) Channel() core.Channel {
	return core.Channel{Name: c.DefaultChannel.Name, Description: c.DefaultChannel.Description}
}

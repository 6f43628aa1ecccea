package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	envConfigDefaultPath = "OSALT_CONFIG_DEFAULT_PATH"
	defaultConfigName    = "config.yaml"
)

// Load builds configuration from defaults, optional config file, env vars, and returns the resolved path.
// Precedence: defaults < config file < env vars < caller overrides.
func Load(logger *zerolog.Logger, explicitPath string) (Config, string, error) {
	cfg := Default()

	v := viper.New()
	v.SetConfigType("yaml")
	setDefaults(v, cfg)

	v.SetEnvPrefix("OSALT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	configPath := resolveConfigPath(explicitPath)
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) || errors.Is(err, os.ErrNotExist) {
			if writeErr := writeDefaultConfig(configPath, cfg); writeErr != nil && logger != nil {
				logger.Warn().Err(writeErr).Str("path", configPath).Msg("failed to write default config")
			} else if logger != nil {
				logger.Info().Str("path", configPath).Msg("created default config")
			}
			// try reading again in case it was just written
			if readErr := v.ReadInConfig(); readErr != nil && logger != nil {
				logger.Warn().Err(readErr).Str("path", configPath).Msg("failed to read config after writing default")
			}
		} else {
			return cfg, configPath, fmt.Errorf("read config: %w", err)
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, configPath, fmt.Errorf("unmarshal config: %w", err)
	}

	return cfg, configPath, nil
}

// setDefaults registers every key so env vars bind even when the config
// file omits them.
func setDefaults(v *viper.Viper, cfg Config) {
	v.SetDefault("addr", cfg.Addr)
	v.SetDefault("read_header_timeout", cfg.ReadHeaderTimeout)
	v.SetDefault("shutdown_timeout", cfg.ShutdownTimeout)
	v.SetDefault("log_level", cfg.LogLevel)
	v.SetDefault("log_format", cfg.LogFormat)
	v.SetDefault("database_path", cfg.DatabasePath)
	v.SetDefault("token_secret", cfg.TokenSecret)
	v.SetDefault("token_issuer", cfg.TokenIssuer)
	v.SetDefault("max_body_bytes", cfg.MaxBodyBytes)
	v.SetDefault("cors_origins", cfg.CORSOrigins)
	v.SetDefault("admin_token", cfg.AdminToken)
	v.SetDefault("broadcast_mode", cfg.BroadcastMode)
	v.SetDefault("max_pending_bytes", cfg.MaxPendingBytes)
	v.SetDefault("motd", cfg.MOTD)
	v.SetDefault("protocol_version", cfg.ProtocolVersion)
	v.SetDefault("login_permissions", cfg.LoginPermissions)
	v.SetDefault("default_channel.name", cfg.DefaultChannel.Name)
	v.SetDefault("default_channel.description", cfg.DefaultChannel.Description)
	v.SetDefault("profile.timezone", cfg.Profile.Timezone)
	v.SetDefault("profile.country_id", cfg.Profile.CountryID)
	v.SetDefault("profile.permissions", cfg.Profile.Permissions)
	v.SetDefault("profile.longitude", cfg.Profile.Longitude)
	v.SetDefault("profile.latitude", cfg.Profile.Latitude)
	v.SetDefault("profile.rank", cfg.Profile.Rank)
	v.SetDefault("profile.ranked_score", cfg.Profile.RankedScore)
	v.SetDefault("profile.accuracy", cfg.Profile.Accuracy)
	v.SetDefault("profile.playcount", cfg.Profile.Playcount)
	v.SetDefault("profile.total_score", cfg.Profile.TotalScore)
	v.SetDefault("profile.pp", cfg.Profile.PP)
}

func resolveConfigPath(explicitPath string) string {
	if explicitPath != "" {
		return explicitPath
	}

	if base := os.Getenv(envConfigDefaultPath); base != "" {
		if err := os.MkdirAll(base, 0o755); err == nil {
			return filepath.Join(base, defaultConfigName)
		}
	}

	cwd, err := os.Getwd()
	if err != nil {
		return defaultConfigName
	}
	return filepath.Join(cwd, defaultConfigName)
}

func writeDefaultConfig(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/kolejker/OsaltServer/internal/app"
	"github.com/kolejker/OsaltServer/internal/config"
	"github.com/kolejker/OsaltServer/internal/log"
)

type rootOptions struct {
	configPath string
	overrides  config.Config
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:           "osalt",
		Short:         "Bancho protocol chat and presence server",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServer(cmd.Context(), opts)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "path to config.yaml")
	flags.StringVar(&opts.overrides.Addr, "addr", "", "HTTP listen address")
	flags.StringVar(&opts.overrides.LogLevel, "log-level", "", "log level (debug, info, warn, error)")
	flags.StringVar(&opts.overrides.DatabasePath, "db", "", "sqlite database path")
	flags.StringVar(&opts.overrides.BroadcastMode, "broadcast-mode", "", "broadcast delivery (queue, inline)")

	rootCmd.AddCommand(newUsersCmd(opts))

	return rootCmd
}

// loadConfig resolves configuration and builds the logger it names.
func loadConfig(opts *rootOptions) (config.Config, *zerolog.Logger, error) {
	bootstrap := log.New("info", "console")

	cfg, path, err := config.Load(bootstrap, opts.configPath)
	if err != nil {
		return cfg, bootstrap, err
	}
	cfg.UpdateFrom(opts.overrides)

	logger := log.New(cfg.LogLevel, cfg.LogFormat)
	logger.Debug().Str("path", path).Msg("config loaded")
	return cfg, logger, nil
}

func runServer(ctx context.Context, opts *rootOptions) error {
	cfg, logger, err := loadConfig(opts)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := app.New(&cfg, logger)
	if err != nil {
		return err
	}

	if err := application.Run(ctx); err != nil {
		logger.Error().Err(err).Msg("server exited with error")
		return err
	}
	logger.Info().Msg("server stopped")
	return nil
}

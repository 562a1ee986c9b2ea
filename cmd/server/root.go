package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/chatroom-server/internal/app"
	"github.com/vovakirdan/chatroom-server/internal/config"
	chatlog "github.com/vovakirdan/chatroom-server/internal/log"
)

var (
	flagConfig   string
	flagAddr     string
	flagLogLevel string
	flagDBPath   string
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "chat-server",
		Short:         "Real-time chat room server",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runServe,
	}

	root.PersistentFlags().StringVarP(&flagConfig, "config", "c", "", "path to config.yaml")
	root.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "log level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&flagDBPath, "db", "", "SQLite database path")
	root.Flags().StringVar(&flagAddr, "addr", "", "HTTP listen address")

	serve := &cobra.Command{
		Use:   "serve",
		Short: "Run the chat server (default)",
		RunE:  runServe,
	}
	serve.Flags().StringVar(&flagAddr, "addr", "", "HTTP listen address")

	root.AddCommand(
		serve,
		newBanCmd(),
		newTokenCmd(),
	)

	return root
}

// loadConfig resolves configuration and applies command-line overrides.
func loadConfig() (*config.Config, *zerolog.Logger, error) {
	bootLogger := chatlog.New("info", "console")

	cfg, path, err := config.Load(bootLogger, flagConfig)
	if err != nil {
		return nil, nil, err
	}
	cfg.UpdateFrom(config.Config{
		Addr:         flagAddr,
		LogLevel:     flagLogLevel,
		DatabasePath: flagDBPath,
	})

	logger := chatlog.New(cfg.LogLevel, cfg.LogFormat)
	logger.Debug().Str("config_path", path).Msg("configuration loaded")
	return &cfg, logger, nil
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := app.New(cfg, logger)
	if err != nil {
		return err
	}

	logger.Info().Str("addr", cfg.Addr).Str("default_room", cfg.DefaultRoom).Msg("starting chat server")
	if err := application.Run(ctx); err != nil {
		logger.Error().Err(err).Msg("server exited with error")
		return err
	}
	logger.Info().Msg("server stopped")
	return nil
}

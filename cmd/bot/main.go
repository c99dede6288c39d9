package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/xaenox/notes-bot/internal/bot"
	"github.com/xaenox/notes-bot/internal/notes"
	"github.com/xaenox/notes-bot/internal/storage"
	"github.com/xaenox/notes-bot/internal/telegram"
	"github.com/xaenox/notes-bot/pkg/config"
)

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:          "notes-bot",
		Short:        "Telegram bot that keeps per-chat notes",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), configPath)
		},
	}
	cmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file path (optional).")

	cmd.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Run the bot (default)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), configPath)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			return migrate(cmd.Context(), configPath)
		},
	})

	return cmd
}

func load(path string) (*config.Config, *zap.Logger, error) {
	envFile := config.LoadDotEnv()

	cfg, err := config.LoadConfig(path)
	if err != nil {
		return nil, nil, err
	}

	logger, err := newLogger(cfg.Logging)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build logger: %w", err)
	}
	if envFile != "" {
		logger.Info("Loaded environment file", zap.String("path", envFile))
	}
	return cfg, logger, nil
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	zcfg := zap.NewProductionConfig()
	if cfg.Dev {
		zcfg = zap.NewDevelopmentConfig()
	}

	if cfg.Level != "" {
		level, err := zapcore.ParseLevel(cfg.Level)
		if err != nil {
			return nil, err
		}
		zcfg.Level = zap.NewAtomicLevelAt(level)
	}
	return zcfg.Build()
}

func storageConfig(cfg config.DatabaseConfig) storage.DatabaseConfig {
	return storage.DatabaseConfig{
		Driver:   cfg.Driver,
		Host:     cfg.Host,
		Port:     cfg.Port,
		User:     cfg.User,
		Password: cfg.Password,
		DBName:   cfg.DBName,
		SSLMode:  cfg.SSLMode,
		Path:     cfg.Path,
	}
}

func openStorage(ctx context.Context, cfg *config.Config, logger *zap.Logger) (storage.Storage, error) {
	if cfg.Database.Driver == config.DriverMemory {
		logger.Info("Using in-memory storage")
		return storage.NewMemoryStorage(), nil
	}

	store, err := storage.NewSQLStorage(ctx, storageConfig(cfg.Database), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	if err := store.Migrate(ctx); err != nil {
		store.Close()
		return nil, err
	}
	return store, nil
}

func serve(ctx context.Context, path string) error {
	cfg, logger, err := load(path)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if err := cfg.RequireToken(); err != nil {
		logger.Error("Invalid configuration", zap.Error(err))
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := openStorage(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to open storage", zap.Error(err))
		return err
	}
	defer store.Close()

	settings, err := storage.NewCachedSettings(store, cfg.Notes.SettingsCacheSize)
	if err != nil {
		return fmt.Errorf("failed to create settings cache: %w", err)
	}

	api, err := tgbotapi.NewBotAPI(cfg.Telegram.Token)
	if err != nil {
		logger.Error("Failed to create bot", zap.Error(err))
		return fmt.Errorf("failed to create bot: %w", err)
	}
	api.Debug = cfg.Telegram.Debug
	logger.Info("Authorized", zap.String("username", api.Self.UserName))

	sender := telegram.NewSender(api, logger)
	roles := telegram.NewRoles(api, cfg.Bot.RoleCacheTTL, logger)
	links := telegram.DeepLinker{BotUsername: api.Self.UserName}

	service := notes.NewService(store, settings, roles, cfg.Notes.MaxPerChat, logger)
	dispatcher := notes.NewDispatcher(store, settings, sender, links, notes.DispatcherConfig{
		NotifyOnFallback: cfg.Notes.NotifyOnFallback,
	}, logger)

	b := bot.New(api, sender, service, dispatcher, bot.Options{
		Workers:     cfg.Bot.Workers,
		PollTimeout: cfg.Telegram.Timeout,
	}, logger)

	if err := b.Start(ctx); err != nil {
		logger.Error("Bot error", zap.Error(err))
		return err
	}
	return nil
}

func migrate(ctx context.Context, path string) error {
	cfg, logger, err := load(path)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.Database.Driver == config.DriverMemory {
		return errors.New("database.driver is memory, nothing to migrate")
	}

	store, err := openStorage(ctx, cfg, logger)
	if err != nil {
		logger.Error("Migration failed", zap.Error(err))
		return err
	}
	return store.Close()
}

package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/basma-club/clubhub/internal/api"
	"github.com/basma-club/clubhub/internal/config"
	"github.com/basma-club/clubhub/internal/db"
	"github.com/basma-club/clubhub/internal/logger"
	"github.com/basma-club/clubhub/internal/mail"
	"github.com/basma-club/clubhub/internal/repository/dao"
	"github.com/basma-club/clubhub/internal/storage"
)

const defaultConfigPath = "./cmd/app/config.yml"

// Start runs the root command. Without a subcommand it serves the API.
func Start() error {
	return newRootCommand().ExecuteContext(context.Background())
}

func newRootCommand() *cobra.Command {
	var configPath string

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context(), configPath)
		},
	}

	root := &cobra.Command{
		Use:           "clubhub",
		Short:         "Club members, posts, meetings and points API",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          serveCmd.RunE,
	}
	root.PersistentFlags().StringVar(&configPath, "config", defaultConfigPath, "path to the YAML config file")

	root.AddCommand(serveCmd, newMigrateCommand(&configPath))
	return root
}

func newMigrateCommand(configPath *string) *cobra.Command {
	var reset bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database tables",
		RunE: func(_ *cobra.Command, _ []string) error {
			conf, err := setup(*configPath)
			if err != nil {
				return err
			}

			gormDB, err := openDB(conf)
			if err != nil {
				return err
			}

			if reset {
				zap.L().Warn("dropping every table before migrating")
				err = dao.ResetTables(gormDB)
			} else {
				err = dao.InitTables(gormDB)
			}
			if err != nil {
				return fmt.Errorf("failed to migrate -> %w", err)
			}

			zap.L().Info("migration done", zap.Bool("reset", reset))
			return nil
		},
	}
	cmd.Flags().BoolVar(&reset, "reset", false, "drop all tables first")

	return cmd
}

func setup(configPath string) (*config.AppConfig, error) {
	conf, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize config -> %w", err)
	}

	if err = logger.Init(conf.API.Environment); err != nil {
		return nil, fmt.Errorf("failed to initialize logger -> %w", err)
	}
	if err = logger.SetLevel(conf.API.LogLevel); err != nil {
		return nil, fmt.Errorf("failed to set log level -> %w", err)
	}

	return conf, nil
}

func openDB(conf *config.AppConfig) (*gorm.DB, error) {
	var (
		gormDB *gorm.DB
		err    error
	)

	switch dbURL := os.Getenv("DATABASE_URL"); {
	case dbURL != "":
		gormDB, err = db.OpenPostgresWithURL(dbURL)
	case conf.Database != nil && conf.Database.Driver == "sqlite":
		gormDB, err = db.OpenSQLite(conf.Database.SQLitePath)
	default:
		gormDB, err = db.OpenPostgres(conf.Postgres)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database -> %w", err)
	}

	return gormDB, nil
}

func serve(ctx context.Context, configPath string) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	conf, err := setup(configPath)
	if err != nil {
		return err
	}
	defer func() { _ = zap.L().Sync() }()

	gormDB, err := openDB(conf)
	if err != nil {
		return err
	}
	if err = dao.InitTables(gormDB); err != nil {
		return fmt.Errorf("failed to migrate -> %w", err)
	}

	images, closeImages, err := storage.NewGCS(ctx, conf.Storage)
	if err != nil {
		return fmt.Errorf("failed to initialize storage -> %w", err)
	}
	defer func() {
		if err := closeImages(); err != nil {
			zap.L().Warn("closing storage client", zap.Error(err))
		}
	}()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	s := api.NewServer(conf, gormDB, api.Dependencies{
		Images:   images,
		Mailer:   mail.NewSendGridClient(conf.Mail),
		Registry: registry,
	})

	config.Watch(configPath, func(next *config.AppConfig) {
		reload(s, next)
	}, func(err error) {
		zap.L().Warn("config reload failed", zap.Error(err))
	})

	if err = s.Run(ctx); err != nil {
		return fmt.Errorf("failed to run the server -> %w", err)
	}

	return nil
}

// reload applies the settings that can change without a restart: the log
// level and the allowed browser origins.
func reload(s *api.Server, next *config.AppConfig) {
	s.Origins.Set(next.API.AllowedCORSDomains)

	if err := logger.SetLevel(next.API.LogLevel); err != nil {
		zap.L().Warn("config reload: invalid log level", zap.Error(err))
		return
	}
	zap.L().Info("config reloaded",
		zap.String("log_level", next.API.LogLevel),
		zap.Strings("allowed_cors_domains", next.API.AllowedCORSDomains),
	)
}

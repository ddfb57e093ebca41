package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"whoisbot/internal/config"
	"whoisbot/internal/handler"
	"whoisbot/internal/logging"
	"whoisbot/internal/middleware"
	"whoisbot/internal/ratelimit"
	"whoisbot/internal/repository/postgres"
	"whoisbot/internal/scheduler"
	"whoisbot/internal/service"
	"whoisbot/internal/telegram"

	"github.com/avast/retry-go/v4"
	"github.com/golang-migrate/migrate/v4"
	postgresdb "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	tele "gopkg.in/telebot.v3"
)

const purgeInterval = 24 * time.Hour

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load configuration
	cfg, err := config.Load(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting whois bot")

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("Bot stopped with error", zap.Error(err))
		os.Exit(1)
	}

	logger.Info("Bot stopped gracefully")
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	// Connect to database with retries
	db, err := connectDatabase(ctx, cfg.DSN(), logger)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	logger.Info("Database connection established")

	// Run migrations
	if err := runMigrations(db, logger); err != nil {
		return err
	}

	// Initialize repositories and services
	userRepo := postgres.NewUserRepo(db)
	registryService := service.NewRegistryService(userRepo)
	retentionService := service.NewRetentionService(userRepo, cfg.RetentionDays, logger)

	// Start the MTProto client used for lookups
	client := telegram.NewClient(cfg.Telegram, cfg.BotToken, logger)

	startCtx, cancelStart := context.WithTimeout(ctx, cfg.Telegram.StartTimeout)
	err = client.Start(startCtx)
	cancelStart()
	if err != nil {
		return fmt.Errorf("failed to start telegram client: %w", err)
	}
	defer func() {
		if err := client.Stop(); err != nil {
			logger.Error("Failed to stop telegram client", zap.Error(err))
		}
	}()

	logger.Info("Telegram client connected")

	directory := telegram.NewDirectory(client.API, logger)
	getter := service.NewUserGetter(
		directory,
		ratelimit.NewCooldown(cfg.Telegram.LookupCooldown),
		logger,
		service.WithFloodWaitRetry(cfg.Telegram.FloodWaitRetry),
	)

	// Initialize Telegram bot
	bot, err := tele.NewBot(tele.Settings{
		Token:  cfg.BotToken,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
		OnError: func(err error, c tele.Context) {
			logger.Error("Bot handler error", zap.Error(err))
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create bot: %w", err)
	}

	bot.Use(middleware.RememberSender(registryService, logger))

	h := handler.NewHandler(bot, getter, registryService, logger)
	h.RegisterHandlers()

	logger.Info("Handlers registered")

	// Schedule cleanup of stale users
	sched, err := scheduler.New(logger)
	if err != nil {
		return err
	}
	if err := sched.Every("purge_stale_users", purgeInterval, retentionService.PurgeStale); err != nil {
		return err
	}
	sched.Start()

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Bot started successfully")
		bot.Start()

		if gCtx.Err() == nil {
			return errors.New("telegram bot poller stopped unexpectedly")
		}
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()

		// bot.Stop blocks unless the poller is still running
		if ctx.Err() != nil {
			logger.Info("Shutdown signal received, stopping bot...")
			bot.Stop()
		}

		if err := sched.Stop(); err != nil {
			logger.Error("Failed to stop scheduler", zap.Error(err))
		}
		return nil
	})

	return g.Wait()
}

// connectDatabase connects to PostgreSQL with retries
func connectDatabase(ctx context.Context, dsn string, logger *zap.Logger) (*sql.DB, error) {
	const (
		maxRetries = 30
		retryDelay = 2 * time.Second
	)

	return retry.DoWithData(
		func() (*sql.DB, error) {
			db, err := sql.Open("postgres", dsn)
			if err != nil {
				return nil, err
			}

			if err := db.PingContext(ctx); err != nil {
				db.Close()
				return nil, err
			}

			db.SetMaxOpenConns(25)
			db.SetMaxIdleConns(5)
			db.SetConnMaxLifetime(5 * time.Minute)

			return db, nil
		},
		retry.Context(ctx),
		retry.Attempts(maxRetries),
		retry.Delay(retryDelay),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			logger.Warn("Failed to connect to database",
				zap.Uint("attempt", n+1),
				zap.Error(err),
			)
		}),
	)
}

// runMigrations runs database migrations
func runMigrations(db *sql.DB, logger *zap.Logger) error {
	driver, err := postgresdb.WithInstance(db, &postgresdb.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		"file://migrations",
		"postgres",
		driver,
	)
	if err != nil {
		return fmt.Errorf("failed to create migration instance: %w", err)
	}

	err = m.Up()
	switch {
	case errors.Is(err, migrate.ErrNoChange):
		logger.Info("No new migrations to apply")
	case err != nil:
		return fmt.Errorf("failed to run migrations: %w", err)
	default:
		logger.Info("Migrations applied successfully")
	}

	return nil
}

package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/skouter/recruit-api/internal/config"
	"github.com/skouter/recruit-api/internal/platform/postgres"
	"github.com/skouter/recruit-api/internal/platform/rabbitmq"
	"github.com/skouter/recruit-api/internal/platform/redisq"
	"github.com/skouter/recruit-api/internal/queue"
	"github.com/skouter/recruit-api/internal/service/auth"
	"github.com/skouter/recruit-api/internal/store"
	"github.com/skouter/recruit-api/internal/task"
	"golang.org/x/crypto/bcrypt"
)

// application holds all shared application dependencies to simplify
// management and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB
	redis  *redis.Client

	// Stores
	taskStore store.TaskStore
	userStore store.UserStore
	jobStore  store.JobStore

	// Services
	jwtService       auth.JWTService
	passwordVerifier auth.PasswordVerifier
	submission       *task.SubmissionService
	status           *task.StatusService

	// Queue plumbing
	publisher  queue.Publisher
	subscriber *redisq.EventSubscriber
	reconciler *task.Reconciler
}

// newApplication creates a new application instance with all dependencies
// initialized. It accepts the core dependencies that must be established
// before application wiring: configuration, logger, and database connection.
func newApplication(
	ctx context.Context,
	cfg *config.Config,
	logger *slog.Logger,
	db *sql.DB,
) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	var err error
	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	logger.Info("JWT authentication service initialized",
		"token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes)

	app.passwordVerifier = auth.NewBcryptVerifier()

	app.taskStore = postgres.NewPostgresTaskStore(db, logger)
	app.userStore = postgres.NewPostgresUserStore(db, bcrypt.DefaultCost, logger)
	app.jobStore = postgres.NewPostgresJobStore(db, logger)

	// The callback channel always rides on Redis pub/sub, regardless of the
	// descriptor queue driver, so the Redis client is unconditional.
	app.redis = redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := app.redis.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	logger.Info("Redis connection established", "addr", cfg.Redis.Addr)

	app.publisher, err = setupPublisher(cfg, app.redis, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize task publisher: %w", err)
	}

	app.submission, err = task.NewSubmissionService(app.taskStore, app.jobStore, app.publisher, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create submission service: %w", err)
	}

	app.status, err = task.NewStatusService(app.taskStore, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create status service: %w", err)
	}

	callbackHandler, err := task.NewCallbackHandler(app.status, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create callback handler: %w", err)
	}

	app.subscriber = redisq.NewEventSubscriber(
		app.redis,
		cfg.Queue.CallbackChannel,
		callbackHandler,
		logger,
	)
	if err := app.subscriber.Start(ctx); err != nil {
		return nil, fmt.Errorf("failed to subscribe to callback channel: %w", err)
	}
	logger.Info("Worker callback subscriber started", "channel", cfg.Queue.CallbackChannel)

	app.reconciler = task.NewReconciler(app.taskStore, app.status, task.ReconcilerConfig{
		PendingTaskAge: time.Duration(cfg.Task.PendingTaskAgeMinutes) * time.Minute,
		SweepInterval:  time.Duration(cfg.Task.SweepIntervalMinutes) * time.Minute,
	}, logger)
	app.reconciler.Start(ctx)

	logger.Info("Application initialized successfully")
	return app, nil
}

// setupPublisher builds the descriptor publisher selected by the queue
// driver configuration.
func setupPublisher(
	cfg *config.Config,
	redisClient *redis.Client,
	logger *slog.Logger,
) (queue.Publisher, error) {
	switch cfg.Queue.Driver {
	case "amqp":
		return rabbitmq.NewPublisher(cfg.Queue.AMQPURL, cfg.Queue.ChannelPrefix, logger)
	default:
		return redisq.NewPublisher(redisClient, cfg.Queue.ChannelPrefix, logger), nil
	}
}

// Run starts the application server, handling lifecycle and cleanup.
func (app *application) Run(ctx context.Context) error {
	router := app.setupRouter()

	if err := app.startHTTPServer(ctx, router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	if app.reconciler != nil {
		app.reconciler.Stop()
	}

	if app.subscriber != nil {
		app.subscriber.Stop()
	}

	if app.publisher != nil {
		if err := app.publisher.Close(); err != nil {
			app.logger.Error("Error closing task publisher", "error", err)
		}
	}

	if app.redis != nil {
		if err := app.redis.Close(); err != nil {
			app.logger.Error("Error closing redis client", "error", err)
		}
	}

	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("Error closing database connection", "error", err)
		}
	}

	app.logger.Info("Application shutdown completed")
}

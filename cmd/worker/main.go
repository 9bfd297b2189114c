// Package main implements the development worker. It consumes task
// descriptors from the queue, runs them against the Gemini API, and reports
// progress and terminal outcomes back on the callback channel.
//
// Production deployments substitute a dedicated worker service; this binary
// exists so the full task lifecycle can be exercised locally with nothing
// but Redis (or RabbitMQ) and an API key.
package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"github.com/skouter/recruit-api/internal/config"
	"github.com/skouter/recruit-api/internal/domain"
	"github.com/skouter/recruit-api/internal/platform/gemini"
	"github.com/skouter/recruit-api/internal/platform/logger"
	"github.com/skouter/recruit-api/internal/platform/rabbitmq"
	"github.com/skouter/recruit-api/internal/platform/redisq"
	"github.com/skouter/recruit-api/internal/queue"
)

// descriptorConsumer is the behavior shared by the Redis and RabbitMQ
// descriptor consumers.
type descriptorConsumer interface {
	Start(ctx context.Context, kinds ...domain.TaskKind) error
	Descriptors() <-chan queue.Descriptor
	Stop()
}

var allKinds = []domain.TaskKind{
	domain.TaskKindAnalysis,
	domain.TaskKindGeneration,
	domain.TaskKindEvaluation,
	domain.TaskKindChat,
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	workerLogger := logger.Setup(cfg.Server).With(slog.String("component", "worker"))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Fatalf("Failed to connect to redis: %v", err)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			workerLogger.Error("failed to close redis client", "error", err)
		}
	}()

	consumer, err := setupConsumer(cfg, redisClient, workerLogger)
	if err != nil {
		log.Fatalf("Failed to initialize descriptor consumer: %v", err)
	}

	executor, err := gemini.NewExecutor(ctx, workerLogger, cfg.LLM)
	if err != nil {
		log.Fatalf("Failed to initialize gemini executor: %v", err)
	}

	reporter := redisq.NewEventReporter(redisClient, cfg.Queue.CallbackChannel, workerLogger)

	if err := consumer.Start(ctx, allKinds...); err != nil {
		log.Fatalf("Failed to start descriptor consumer: %v", err)
	}
	defer consumer.Stop()

	workerLogger.Info("worker started",
		"queue_driver", cfg.Queue.Driver,
		"model", cfg.LLM.ModelName)

	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	for {
		select {
		case <-shutdownCh:
			workerLogger.Info("shutting down worker")
			return
		case descriptor, ok := <-consumer.Descriptors():
			if !ok {
				workerLogger.Info("descriptor channel closed, stopping")
				return
			}
			process(ctx, descriptor, executor, reporter, workerLogger)
		}
	}
}

// setupConsumer builds the descriptor consumer selected by the queue driver
// configuration.
func setupConsumer(
	cfg *config.Config,
	redisClient *redis.Client,
	workerLogger *slog.Logger,
) (descriptorConsumer, error) {
	if cfg.Queue.Driver == "amqp" {
		return rabbitmq.NewConsumer(cfg.Queue.AMQPURL, cfg.Queue.ChannelPrefix, workerLogger)
	}
	return redisq.NewTaskConsumer(redisClient, cfg.Queue.ChannelPrefix, workerLogger), nil
}

// process runs one descriptor end to end: an initial progress report moves
// the task to RUNNING, then the executor's outcome is reported as the
// terminal event. Report failures are logged but never crash the worker;
// the server's reconciliation sweep catches tasks whose reports were lost.
func process(
	ctx context.Context,
	descriptor queue.Descriptor,
	executor *gemini.Executor,
	reporter *redisq.EventReporter,
	workerLogger *slog.Logger,
) {
	log := workerLogger.With(
		slog.String("task_id", descriptor.TaskID.String()),
		slog.String("kind", string(descriptor.Kind)))
	log.Info("processing task")

	if err := reporter.Report(ctx, queue.CallbackEvent{
		TaskID:   descriptor.TaskID,
		Event:    queue.EventProgress,
		Progress: 10,
	}); err != nil {
		log.Error("failed to report initial progress", "error", err)
	}

	result, err := executor.Execute(ctx, descriptor)
	if err != nil {
		log.Error("task execution failed", "error", err)
		if reportErr := reporter.Report(ctx, queue.CallbackEvent{
			TaskID: descriptor.TaskID,
			Event:  queue.EventFailed,
			Error:  err.Error(),
		}); reportErr != nil {
			log.Error("failed to report task failure", "error", reportErr)
		}
		return
	}

	if err := reporter.Report(ctx, queue.CallbackEvent{
		TaskID: descriptor.TaskID,
		Event:  queue.EventCompleted,
		Result: result,
	}); err != nil {
		log.Error("failed to report task completion", "error", err)
		return
	}

	log.Info("task completed")
}

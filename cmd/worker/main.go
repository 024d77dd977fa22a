package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"
	"github.com/studyflow/studyflow-api/internal/config"
	"github.com/studyflow/studyflow-api/internal/database"
	"github.com/studyflow/studyflow-api/internal/logger"
	"github.com/studyflow/studyflow-api/internal/planner"
	"github.com/studyflow/studyflow-api/internal/queue"
	"github.com/studyflow/studyflow-api/internal/services/extract"
	"github.com/studyflow/studyflow-api/internal/workers"
	"go.uber.org/zap"
)

func main() {
	debugFlag := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	debugMode := cfg.WorkerDebugMode || *debugFlag

	zapLogger, err := logger.NewProductionLogger(debugMode)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() {
		_ = zapLogger.Sync()
	}()

	zapLogger.Info("starting_worker",
		zap.Bool("debug_mode", debugMode),
		zap.String("plan_cron", cfg.PlanCron),
		zap.Int("plan_horizon_days", cfg.PlanHorizonDays),
	)

	db, err := database.New(cfg.DatabaseURL)
	if err != nil {
		zapLogger.Fatal("failed_to_connect_to_database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			zapLogger.Warn("failed_to_close_database_connection", zap.Error(err))
		}
	}()
	zapLogger.Info("connected_to_database")

	taskRepo := database.NewTaskRepository(db)
	blockRepo := database.NewTimeBlockRepository(db)
	prefRepo := database.NewPlanPreferenceRepository(db)

	jobQueue, err := queue.NewRabbitMQQueue(cfg.RabbitMQURL)
	if err != nil {
		zapLogger.Fatal("failed_to_connect_to_rabbitmq", zap.Error(err))
	}
	defer func() {
		if err := jobQueue.Close(); err != nil {
			zapLogger.Warn("failed_to_close_rabbitmq_connection", zap.Error(err))
		}
	}()
	zapLogger.Info("connected_to_rabbitmq", zap.Int("prefetch", cfg.RabbitMQPrefetch))

	// The LLM extractor falls back to regex extraction on any LLM failure,
	// so a missing API key just means pattern extraction for every document.
	var textExtractor extract.Extractor = extract.PatternExtractor{}
	if cfg.OpenAIKey != "" {
		textExtractor = extract.NewLLMExtractor(cfg.OpenAIKey, cfg.AIBaseURL, cfg.AIModel, zapLogger)
		zapLogger.Info("llm_extractor_initialized", zap.String("model", cfg.AIModel))
	} else {
		zapLogger.Info("llm_not_configured_using_pattern_extraction")
	}

	schedulePlanner := planner.New()
	schedulePlanner.HorizonDays = cfg.PlanHorizonDays

	documentExtractor := workers.NewDocumentExtractor(textExtractor, taskRepo, zapLogger)
	planRunner := workers.NewPlanRunner(schedulePlanner, prefRepo, taskRepo, blockRepo, zapLogger)
	dispatcher := workers.NewDispatcher(documentExtractor, planRunner, zapLogger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	msgChan, errChan, err := jobQueue.Consume(ctx, cfg.RabbitMQPrefetch)
	if err != nil {
		zapLogger.Fatal("failed_to_start_consuming", zap.Error(err))
	}

	zapLogger.Info("worker_started")

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgChan:
				if !ok {
					zapLogger.Info("message_channel_closed")
					return
				}
				if err := dispatcher.ProcessJob(ctx, msg); err != nil {
					zapLogger.Error("failed_to_process_job",
						zap.String("job_id", msg.GetJob().ID.String()),
						zap.String("job_type", string(msg.GetJob().Type)),
						zap.Error(err),
					)
				}
			}
		}
	}()

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case err, ok := <-errChan:
				if !ok {
					return
				}
				zapLogger.Error("queue_error", zap.Error(err))
			}
		}
	}()

	// Weekly auto-plan: enqueue a plan_generation job for every user who
	// opted in, on the configured cron schedule.
	scheduler := cron.New()
	_, err = scheduler.AddFunc(cfg.PlanCron, func() {
		enqueueAutoPlans(ctx, prefRepo, jobQueue, zapLogger)
	})
	if err != nil {
		zapLogger.Fatal("invalid_plan_cron_expression",
			zap.String("plan_cron", cfg.PlanCron),
			zap.Error(err),
		)
	}
	scheduler.Start()
	defer scheduler.Stop()
	zapLogger.Info("auto_plan_scheduler_started", zap.String("schedule", cfg.PlanCron))

	<-sigChan
	zapLogger.Info("shutdown_signal_received")
	cancel()
	zapLogger.Info("worker_stopped")
}

func enqueueAutoPlans(ctx context.Context, prefRepo database.PlanPreferenceRepositoryInterface, jobQueue queue.JobQueue, zapLogger *zap.Logger) {
	prefs, err := prefRepo.GetAutoPlanUsers(ctx)
	if err != nil {
		zapLogger.Error("failed_to_list_auto_plan_users", zap.Error(err))
		return
	}

	enqueued := 0
	for _, pref := range prefs {
		job := queue.NewJob(queue.JobTypePlanGeneration, pref.UserID)
		if err := jobQueue.Enqueue(ctx, job); err != nil {
			zapLogger.Error("failed_to_enqueue_plan_generation_job",
				zap.String("user_id", pref.UserID.String()),
				zap.Error(err),
			)
			continue
		}
		enqueued++
	}

	zapLogger.Info("auto_plan_jobs_enqueued",
		zap.Int("users", len(prefs)),
		zap.Int("enqueued", enqueued),
	)
}

package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"

	"github.com/erinpaul2002/careops-backend/config"
	"github.com/erinpaul2002/careops-backend/cron"
	"github.com/erinpaul2002/careops-backend/database"
	"github.com/erinpaul2002/careops-backend/database/persist"
	"github.com/erinpaul2002/careops-backend/handlers"
	"github.com/erinpaul2002/careops-backend/routes"
	"github.com/erinpaul2002/careops-backend/services/availability"
	"github.com/erinpaul2002/careops-backend/services/booking"
	"github.com/erinpaul2002/careops-backend/services/calendar"
	"github.com/erinpaul2002/careops-backend/services/idempotency"
	"github.com/erinpaul2002/careops-backend/services/notification"
	"github.com/erinpaul2002/careops-backend/services/scheduler"
	"github.com/erinpaul2002/careops-backend/utils"
)

func main() {
	config.LoadConfig()
	utils.InitializeLogger()
	logger := utils.GetLogger()

	// Persistence and the idempotency ledger degrade gracefully: without
	// Mongo or Redis the engine still runs fully in memory, which is what
	// local development uses.
	var persister persist.Persister = &persist.Nop{}
	var ledger idempotency.Ledger = idempotency.NewMemoryLedger()
	if config.IsProduction() {
		database.InitDB()
		persister = persist.NewMongoPersister(database.MongoClient, "careops", logger)

		utils.InitIdempotencyCache()
		ledger = idempotency.NewRedisLedger(utils.GetIdempotencyClient())
	}

	store := database.NewStore(persister, logger)

	availabilitySvc := &availability.DefaultAvailabilityService{Store: store}
	bookingSvc := &booking.DefaultBookingService{
		Store:        store,
		Availability: availabilitySvc,
		Calendar:     &calendar.LogSync{Logger: logger},
		Logger:       logger,
	}

	// Reminder delivery rides on asynq in production; the scheduler loop
	// enqueues tasks and the cron consumer drains them. Development logs
	// reminders instead of opening a queue connection.
	var messenger notification.Messenger = &notification.LogMessenger{Logger: logger}
	if config.IsProduction() {
		asynqClient := asynq.NewClient(asynq.RedisClientOpt{
			Addr:     config.AppConfig.RedisAddr,
			Password: config.AppConfig.RedisPassword,
			DB:       config.AppConfig.RedisQueueDB,
		})
		defer asynqClient.Close()
		messenger = notification.NewAsynqMessenger(asynqClient)
	}

	worker := scheduler.NewWorker(store, ledger, messenger, logger)
	if config.AppConfig.WorkerPollSeconds > 0 {
		worker.PollInterval = time.Duration(config.AppConfig.WorkerPollSeconds) * time.Second
	}
	if config.AppConfig.WorkerBatchSize > 0 {
		worker.BatchSize = config.AppConfig.WorkerBatchSize
	}
	worker.Start()

	if config.IsProduction() {
		cron.InitReminderWorker()
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())

	handlerBundle := handlers.NewHandlerBundle(store, availabilitySvc, bookingSvc, ledger)
	routes.RegisterRoutes(router, handlerBundle)

	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	worker.Stop()
	persister.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}

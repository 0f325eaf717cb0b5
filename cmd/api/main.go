package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/norvik-erp/jobcard-api/internal/config"
	"github.com/norvik-erp/jobcard-api/internal/database"
	"github.com/norvik-erp/jobcard-api/internal/http/handler"
	"github.com/norvik-erp/jobcard-api/internal/http/middleware"
	"github.com/norvik-erp/jobcard-api/internal/http/router"
	"github.com/norvik-erp/jobcard-api/internal/jobs"
	"github.com/norvik-erp/jobcard-api/internal/logger"
	"github.com/norvik-erp/jobcard-api/internal/repository"
	"github.com/norvik-erp/jobcard-api/internal/service"
	"go.uber.org/zap"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logger.NewLogger(&cfg.Logging, &cfg.App)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	log.Info("Starting application",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Environment),
		zap.Int("port", cfg.App.Port),
	)

	db, err := database.NewDatabase(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	// Initialize repositories
	jobCardRepo := repository.NewJobCardRepository(db)
	branchRepo := repository.NewBranchRepository(db)
	userRepo := repository.NewUserRepository(db)
	customerRepo := repository.NewCustomerRepository(db)

	// Initialize services
	jobNumberService := service.NewJobNumberService(log)
	inventoryService := service.NewInventoryService(log)
	invoiceService := service.NewInvoiceService(log)
	manufacturingService := service.NewManufacturingService(inventoryService, log)
	jobCardService := service.NewJobCardService(
		db,
		jobCardRepo,
		branchRepo,
		userRepo,
		customerRepo,
		jobNumberService,
		inventoryService,
		invoiceService,
		manufacturingService,
		log,
	)

	// Initialize handlers
	jobCardHandler := handler.NewJobCardHandler(jobCardService, log)

	// Initialize and start scheduler for background jobs
	var scheduler *jobs.Scheduler
	if cfg.Jobs.Enabled {
		scheduler = jobs.NewScheduler(log)
		overdueSweep := jobs.NewOverdueSweep(db, jobCardRepo, log)
		if err := scheduler.AddJob("overdue-sweep", cfg.Jobs.OverdueSweepSchedule, func() {
			overdueSweep.Run(context.Background())
		}); err != nil {
			return fmt.Errorf("failed to schedule overdue sweep: %w", err)
		}
		scheduler.Start()
	}

	rateLimiter := middleware.NewRateLimiter(&cfg.RateLimit, log)
	rt := router.NewRouter(cfg, log, db, rateLimiter, jobCardHandler)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      rt.Setup(),
		ReadTimeout:  cfg.Server.ReadTimeoutDuration(),
		WriteTimeout: cfg.Server.WriteTimeoutDuration(),
	}

	// Start server in goroutine
	serverErrors := make(chan error, 1)
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		serverErrors <- srv.ListenAndServe()
	}()

	// Wait for interrupt signal
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdown:
		log.Info("Shutdown signal received", zap.String("signal", sig.String()))

		if scheduler != nil {
			ctx := scheduler.Stop()
			<-ctx.Done()
			log.Info("Scheduler stopped")
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Error("Failed to shutdown gracefully", zap.Error(err))
			return err
		}

		log.Info("Server stopped gracefully")
	}

	return nil
}

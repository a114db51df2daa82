package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"eta-worker-service/internal/domain/entity"
	domainRepo "eta-worker-service/internal/domain/repository"
	"eta-worker-service/internal/infrastructure/config"
	"eta-worker-service/internal/infrastructure/oauth"
	"eta-worker-service/internal/infrastructure/persistence"
	"eta-worker-service/internal/infrastructure/scheduler"
	"eta-worker-service/internal/interface/repository"
	"eta-worker-service/internal/usecase"
	"eta-worker-service/pkg/logger"
	"eta-worker-service/pkg/metrics"
	"eta-worker-service/pkg/utils"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.NewLogger().Fatal("Failed to load config", "error", err)
	}

	// Create logger
	zapLog := logger.NewLoggerWithLevel(cfg.LogLevel)
	defer zapLog.Sync()
	log := zapLog.With("service", "eta-worker", "version", cfg.AppVersion)
	log.Info("Starting ETA Worker")

	// Set up context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m := metrics.NewMetrics("eta_worker")

	// Set up trip store
	var tripRepo domainRepo.TripRepository
	var mongoClient *mongo.Client

	switch cfg.StoreDriver {
	case config.StoreFirebase:
		log.Info("Connecting to Firebase Realtime Database", "url", cfg.FirebaseDatabaseURL)
		credentials, err := cfg.FirebaseCredentials()
		if err != nil {
			log.Fatal("Failed to load Firebase credentials", "error", err)
		}
		firebaseOAuth, err := oauth.NewFirebaseOAuth(ctx, credentials, log)
		if err != nil {
			log.Fatal("Failed to set up Firebase OAuth", "error", err)
		}
		httpClient, err := persistence.NewFirebaseHTTPClient(ctx, firebaseOAuth.GetTokenSource(), cfg.ProviderTimeout)
		if err != nil {
			log.Fatal("Failed to create Firebase client", "error", err)
		}
		tripRepo = repository.NewFirebaseTripRepository(httpClient, cfg.FirebaseDatabaseURL, cfg.TripsCollection, log)
	default:
		log.Info("Connecting to MongoDB")
		mongoClient, err = persistence.NewMongoClient(ctx, cfg.MongoURI, cfg.MongoUser, cfg.MongoPassword)
		if err != nil {
			log.Fatal("Failed to connect to MongoDB", "error", err)
		}
		db := persistence.GetDatabase(mongoClient, cfg.MongoDB)
		tripRepo = repository.NewMongoTripRepository(db, cfg.TripsCollection, log)
	}

	// Set up airport table
	airportRepo := repository.NewStaticAirportRepository(entity.DefaultAirports)
	if cfg.PostgresURI != "" {
		gormDB, err := gorm.Open(postgres.Open(cfg.PostgresURI), &gorm.Config{})
		if err != nil {
			log.Fatal("Failed to connect to PostgreSQL", "error", err)
		}
		airportRepo = repository.NewGormAirportRepository(gormDB, airportRepo, log)
	}

	// Set up flight provider
	tracker := repository.NewAviationEdgeRepository(
		cfg.AviationEdgeBaseURL,
		cfg.AviationEdgeKey,
		cfg.ProviderTimeout,
		cfg.ProviderRatePerMinute,
		airportRepo,
		m,
		log,
	)

	location := utils.RegionLocation(cfg.RegionUTCOffset)
	worker := usecase.NewETAWorker(
		tripRepo,
		tracker,
		usecase.NewETAProjector(location, cfg.ETABuffer),
		usecase.TripFilter{Window: cfg.RefreshWindow, Cadence: cfg.RefreshCadence},
		location,
		cfg.WorkerConcurrency,
		m,
		log,
	)

	var sched scheduler.Scheduler = scheduler.NewIntervalScheduler(cfg.PollInterval, log)
	if cfg.CronSpec != "" {
		cronSched, err := scheduler.NewCronScheduler(cfg.CronSpec, location, log)
		if err != nil {
			log.Fatal("Invalid ETA_CRON", "spec", cfg.CronSpec, "error", err)
		}
		sched = cronSched
	}

	// Start the worker in a goroutine
	workerDone := make(chan struct{})
	go func() {
		defer close(workerDone)
		if err := worker.Start(ctx, sched); err != nil {
			log.Error("ETA worker error", "error", err)
		}
	}()

	// Set up HTTP server for metrics
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("Healthy"))
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      mux,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	// Start HTTP server in a goroutine
	go func() {
		log.Info("Starting HTTP server", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server error", "error", err)
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	log.Info("Received signal", "signal", sig)

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error", "error", err)
	}

	cancel() // Stop scheduling; the batch in flight finishes

	select {
	case <-workerDone:
	case <-shutdownCtx.Done():
		log.Warn("Timed out waiting for the ETA worker to stop")
	}

	// Disconnect from MongoDB
	if mongoClient != nil {
		if err := mongoClient.Disconnect(shutdownCtx); err != nil {
			log.Error("MongoDB disconnect error", "error", err)
		}
	}

	log.Info("ETA Worker stopped")
}

package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/medvisit/visitflow/internal/config"
	"github.com/medvisit/visitflow/internal/registration"
	"github.com/medvisit/visitflow/internal/repository"
	"github.com/medvisit/visitflow/internal/scheduling"
	"github.com/medvisit/visitflow/internal/service"
	"github.com/medvisit/visitflow/pkg/database"
	"github.com/medvisit/visitflow/pkg/logger"
	"github.com/medvisit/visitflow/pkg/metrics"
	"github.com/medvisit/visitflow/pkg/tracer"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}
	defer log.Sync()

	log.Info("starting visitflow",
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
	)

	tp, err := tracer.Init(cfg.Tracing)
	if err != nil {
		log.Fatal("failed to initialize tracing", zap.Error(err))
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = tp.Shutdown(ctx)
	}()

	db, err := database.Connect(cfg.Database)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	if err := database.Migrate(db, log); err != nil {
		log.Fatal("failed to run migrations", zap.Error(err))
	}

	collector := metrics.NewCollector(cfg.App.Name)
	if err := database.InstrumentQueries(db, collector); err != nil {
		log.Fatal("failed to instrument database", zap.Error(err))
	}
	watchConnections(db, collector, log)

	loc, err := time.LoadLocation(cfg.Scheduling.DefaultTimeZone)
	if err != nil {
		log.Fatal("invalid default time zone", zap.Error(err))
	}

	apptRepo := repository.NewAppointmentRepository(db)
	historySvc := service.NewHistoryService(repository.NewHistoryRepository(db), collector, log)
	defer historySvc.Shutdown()

	svc := service.NewAppointmentService(
		apptRepo,
		repository.NewTherapistRepository(db),
		repository.NewCatalogRepository(db),
		repository.NewPatientRepository(db),
		repository.NewMedicalRecordRepository(db),
		historySvc,
		registration.NewAllocator(db, apptRepo.MaxRegistrationSuffix),
		repository.NewTxManager(db),
		collector,
		scheduling.Defaults{
			DurationMins: cfg.Scheduling.DefaultVisitDurationMins,
			BufferMins:   cfg.Scheduling.DefaultBufferMins,
			MaxDaily:     cfg.Scheduling.DefaultMaxDailyVisits,
			Location:     loc,
		},
		log,
	)
	_ = svc // consumed by the transport layer of the embedding deployment

	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.MetricsHandler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		sqlDB, err := db.DB()
		if err != nil || sqlDB.Ping() != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	srv := &http.Server{
		Addr:              cfg.App.MetricsAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		log.Info("metrics endpoint listening", zap.String("addr", cfg.App.MetricsAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("metrics server failed", zap.Error(err))
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
}

// watchConnections samples the pool size into the connections gauge.
func watchConnections(db *gorm.DB, collector *metrics.Collector, log *zap.Logger) {
	sqlDB, err := db.DB()
	if err != nil {
		log.Warn("connection gauge disabled", zap.Error(err))
		return
	}
	go func() {
		ticker := time.NewTicker(15 * time.Second)
		defer ticker.Stop()
		for range ticker.C {
			collector.DBConnections.Set(float64(sqlDB.Stats().OpenConnections))
		}
	}()
}

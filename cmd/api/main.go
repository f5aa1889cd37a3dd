package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"visadesk_backend/internal/adapters"
	"visadesk_backend/internal/adapters/storage"
	"visadesk_backend/internal/appointments"
	"visadesk_backend/internal/auth"
	"visadesk_backend/internal/billing"
	"visadesk_backend/internal/cases"
	"visadesk_backend/internal/clients"
	"visadesk_backend/internal/documents"
	"visadesk_backend/internal/email"
	"visadesk_backend/internal/events"
	apphttp "visadesk_backend/internal/http"
	"visadesk_backend/internal/http/router"
	"visadesk_backend/internal/leads"
	"visadesk_backend/internal/notification"
	"visadesk_backend/internal/scheduler"
	"visadesk_backend/migrations"
	"visadesk_backend/platform/config"
	"visadesk_backend/platform/db"
	"visadesk_backend/platform/logger"
	"visadesk_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting api server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := withRetry(ctx, log, "database migrations", 5, 2*time.Second, func() error {
		return db.RunMigrations(ctx, cfg, migrations.FS)
	}); err != nil {
		log.Error("failed to run database migrations", "error", err)
		panic("failed to run database migrations: " + err.Error())
	}
	log.Info("database migrations complete")

	var pool *pgxpool.Pool
	if err := withRetry(ctx, log, "database connection", 5, 2*time.Second, func() error {
		p, err := db.NewPool(ctx, cfg)
		if err != nil {
			return err
		}
		pool = p
		return nil
	}); err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()
	log.Info("database connection established")

	eventBus := events.NewInMemoryBus(log)
	val := validator.New()

	reminderScheduler, closeScheduler := initReminderScheduler(cfg, log)
	if closeScheduler != nil {
		defer closeScheduler()
	}

	storageSvc := initStorage(ctx, cfg, log)

	var sender email.Sender = email.NoopSender{}
	if cfg.GetEmailEnabled() {
		sender = email.NewSMTPSender(cfg)
		log.Info("smtp email sender initialized", "host", cfg.GetSMTPHost())
	} else {
		log.Warn("email delivery disabled; outbound mail is dropped")
	}

	// Composition root. Notification subscribes to domain events before the
	// modules that publish them start serving requests.
	notificationModule := notification.NewModule(pool, eventBus, sender, log)

	authModule := auth.NewModule(pool, cfg, val, log)
	clientsModule := clients.NewModule(pool, val, log)

	clientDirectory := adapters.NewClientDirectory(clientsModule.Service())
	casesModule := cases.NewModule(pool, clientDirectory, eventBus, val, log)

	leadsModule := leads.NewModule(pool, clientsModule.Service(), eventBus, val, log)
	appointmentsModule := appointments.NewModule(pool, reminderScheduler, eventBus, val, log)
	billingModule := billing.NewModule(pool, cfg, eventBus, val, log)
	documentsModule := documents.NewModule(pool, casesModule.Repository(), storageSvc, cfg.GetCaseDocumentsBucket(), val, log)

	app := &apphttp.App{
		Config:   cfg,
		Logger:   log,
		Health:   pool,
		EventBus: eventBus,
		Modules: []apphttp.Module{
			authModule,
			clientsModule,
			casesModule,
			leadsModule,
			appointmentsModule,
			billingModule,
			documentsModule,
			notificationModule,
		},
	}

	engine := router.New(app)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	srvErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		srvErr <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, gracefully shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("server shutdown error", "error", err)
		}
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			panic("server error: " + err.Error())
		}
	}
}

func initReminderScheduler(cfg config.SchedulerConfig, log *logger.Logger) (scheduler.ReminderScheduler, func()) {
	if cfg.GetRedisURL() == "" {
		log.Warn("REDIS_URL not configured; appointment reminders disabled")
		return nil, nil
	}

	reminderClient, err := scheduler.NewClient(cfg)
	if err != nil {
		log.Error("failed to initialize reminder scheduler client", "error", err)
		return nil, nil
	}

	return reminderClient, func() {
		_ = reminderClient.Close()
	}
}

func initStorage(ctx context.Context, cfg *config.Config, log *logger.Logger) storage.Service {
	if !cfg.IsMinIOEnabled() {
		log.Warn("MinIO not configured; document uploads disabled")
		return nil
	}

	storageSvc, err := storage.NewMinIOService(cfg)
	if err != nil {
		log.Error("failed to initialize storage service", "error", err)
		panic("failed to initialize storage service: " + err.Error())
	}

	bucket := cfg.GetCaseDocumentsBucket()
	if err := withRetry(ctx, log, "ensure case documents bucket", 5, 2*time.Second, func() error {
		return storageSvc.EnsureBucketExists(ctx, bucket)
	}); err != nil {
		log.Error("failed to ensure storage bucket exists", "error", err, "bucket", bucket)
		panic("failed to ensure storage bucket exists: " + err.Error())
	}
	log.Info("storage service initialized", "bucket", bucket)

	return storageSvc
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return fmt.Errorf("%s: invalid retry attempts", name)
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return errors.New(name + ": " + lastErr.Error())
}

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"conferencecentral/config"
	_ "conferencecentral/docs"
	"conferencecentral/internal/adapters/auth"
	"conferencecentral/internal/adapters/email"
	"conferencecentral/internal/adapters/queue"
	httpdelivery "conferencecentral/internal/delivery/http"
	"conferencecentral/internal/delivery/http/controllers"
	"conferencecentral/internal/domain"
	"conferencecentral/internal/repository/cache"
	"conferencecentral/internal/repository/postgres"
	"conferencecentral/internal/services"
)

const (
	shutdownTimeout = 10 * time.Second
	memoryQueueSize = 256
)

func init() {
	var skipMigrations bool

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API, the task worker and the announcement refresher",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), skipMigrations)
		},
	}
	serveCmd.Flags().BoolVar(&skipMigrations, "skip-migrations", false, "Do not apply pending database migrations on start")

	rootCmd.AddCommand(serveCmd)
}

// announcementCache is a cache backend that can be probed and released.
type announcementCache interface {
	domain.Cache
	Health(ctx context.Context) error
	Close() error
}

// workerQueue is a task queue that also runs its own consumer.
type workerQueue interface {
	domain.TaskQueue
	Run(ctx context.Context, handler domain.TaskHandler) error
}

func runServe(ctx context.Context, skipMigrations bool) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := config.NewLogger()
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := postgres.Open(ctx, cfg.DBUrl)
	if err != nil {
		return err
	}
	defer db.Close()
	if !skipMigrations {
		if err := postgres.Migrate(ctx, db); err != nil {
			return err
		}
	}

	announcementStore, err := openCache(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer announcementStore.Close()

	tasks, err := openQueue(ctx, cfg, logger)
	if err != nil {
		return err
	}

	mailer, err := email.NewMailer(ctx, email.MailerConfig{
		Provider:    cfg.EmailProvider,
		FromAddress: cfg.EmailFromAddress,
		FromName:    cfg.EmailFromName,
		SES: email.SESConfig{
			Region:          cfg.AWSRegion,
			AccessKeyID:     cfg.AWSAccessKeyID,
			SecretAccessKey: cfg.AWSSecretAccessKey,
		},
	}, logger)
	if err != nil {
		return fmt.Errorf("create mailer: %w", err)
	}

	profileRepo := postgres.NewProfileRepository(db)
	conferenceRepo := postgres.NewConferenceRepository(db)
	sessionRepo := postgres.NewSessionRepository(db)
	tx := postgres.NewTransactor(db)

	profileSvc := services.NewProfileService(profileRepo, tx, cfg.RequestTimeout)
	conferenceSvc := services.NewConferenceService(conferenceRepo, profileRepo, tx, tasks, logger, cfg.RequestTimeout)
	sessionSvc := services.NewSessionService(sessionRepo, conferenceRepo, tasks, logger, cfg.RequestTimeout)
	registrationSvc := services.NewRegistrationService(profileRepo, conferenceRepo, sessionRepo, tx, cfg.RequestTimeout)
	announcementSvc := services.NewAnnouncementService(conferenceRepo, announcementStore, logger)
	emailSvc := services.NewEmailService(mailer, email.NewTemplateRenderer(), logger)
	dispatcher := services.NewTaskDispatcher(emailSvc, announcementSvc, logger)

	if cfg.TaskKeyHash == "" {
		logger.Warn("TASK_KEY_HASH is not set; task and cron routes will reject every request")
	}
	router := httpdelivery.NewRouter(httpdelivery.RouterDeps{
		Logger:         logger,
		Verifier:       auth.NewJWTVerifier(cfg.JWTSecret),
		TaskKeys:       auth.NewTaskKeyChecker(cfg.TaskKeyHash),
		AllowedOrigins: cfg.CORSAllowedOrigins,
		HealthChecks: []httpdelivery.HealthCheck{
			{Name: "postgres", Check: db.PingContext},
			{Name: "cache", Check: announcementStore.Health},
		},
		Profiles:      controllers.NewProfileController(logger, profileSvc),
		Conferences:   controllers.NewConferenceController(logger, conferenceSvc),
		Sessions:      controllers.NewSessionController(logger, sessionSvc),
		Registrations: controllers.NewRegistrationController(logger, registrationSvc),
		Announcements: controllers.NewAnnouncementController(logger, announcementSvc),
		Tasks:         controllers.NewTaskController(logger, dispatcher, announcementSvc),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("starting conferencecentral", "addr", srv.Addr, "env", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown: %w", err)
		}
		logger.Info("http server stopped")
		return nil
	})
	g.Go(func() error {
		return tasks.Run(ctx, dispatcher)
	})
	g.Go(func() error {
		return services.RunAnnouncementRefresh(ctx, announcementSvc, cfg.AnnouncementInterval, logger)
	})
	return g.Wait()
}

func openCache(ctx context.Context, cfg *config.Config, logger *slog.Logger) (announcementCache, error) {
	if cfg.RedisURL == "" {
		logger.Info("REDIS_URL not set; using in-memory announcement cache")
		return cache.NewMemory(), nil
	}
	rc, err := cache.NewRedis(ctx, cfg.RedisURL)
	if err != nil {
		return nil, err
	}
	return rc, nil
}

func openQueue(ctx context.Context, cfg *config.Config, logger *slog.Logger) (workerQueue, error) {
	switch cfg.TaskQueue {
	case "sqs":
		q, err := queue.NewSQS(ctx, queue.SQSConfig{
			QueueURL:        cfg.SQSQueueURL,
			Region:          cfg.AWSRegion,
			AccessKeyID:     cfg.AWSAccessKeyID,
			SecretAccessKey: cfg.AWSSecretAccessKey,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("create sqs queue: %w", err)
		}
		return q, nil
	case "memory", "":
		return queue.NewMemory(memoryQueueSize, logger), nil
	default:
		return nil, fmt.Errorf("unknown TASK_QUEUE %q (want memory or sqs)", cfg.TaskQueue)
	}
}

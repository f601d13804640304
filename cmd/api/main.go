package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/doctaba/telehealth-api/internal/config"
	"github.com/doctaba/telehealth-api/internal/email"
	appointmentHandler "github.com/doctaba/telehealth-api/internal/handler/appointment"
	authHandler "github.com/doctaba/telehealth-api/internal/handler/auth"
	documentHandler "github.com/doctaba/telehealth-api/internal/handler/document"
	"github.com/doctaba/telehealth-api/internal/handler/health"
	messageHandler "github.com/doctaba/telehealth-api/internal/handler/message"
	promHandler "github.com/doctaba/telehealth-api/internal/handler/prometheus"
	userHandler "github.com/doctaba/telehealth-api/internal/handler/user"
	videoHandler "github.com/doctaba/telehealth-api/internal/handler/video"
	"github.com/doctaba/telehealth-api/internal/repository"
	"github.com/doctaba/telehealth-api/internal/repository/memory"
	"github.com/doctaba/telehealth-api/internal/repository/postgres"
	redisRepo "github.com/doctaba/telehealth-api/internal/repository/redis"
	"github.com/doctaba/telehealth-api/internal/router"
	appointmentService "github.com/doctaba/telehealth-api/internal/service/appointment"
	authService "github.com/doctaba/telehealth-api/internal/service/auth"
	documentService "github.com/doctaba/telehealth-api/internal/service/document"
	eventService "github.com/doctaba/telehealth-api/internal/service/event"
	messageService "github.com/doctaba/telehealth-api/internal/service/message"
	userService "github.com/doctaba/telehealth-api/internal/service/user"
	videoService "github.com/doctaba/telehealth-api/internal/service/video"
	"github.com/doctaba/telehealth-api/internal/session"
	"github.com/doctaba/telehealth-api/internal/worker"
	"github.com/doctaba/telehealth-api/pkg/auth"
	"github.com/doctaba/telehealth-api/pkg/logger"
	"github.com/doctaba/telehealth-api/pkg/messaging"
	redisBroker "github.com/doctaba/telehealth-api/pkg/messaging/redis"
	"github.com/doctaba/telehealth-api/pkg/metrics"
	"github.com/doctaba/telehealth-api/pkg/security"
)

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("server failed")
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	appLogger := logger.New(logger.Config{Level: cfg.Log.Level, Console: cfg.Log.Console})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize storage
	store, db, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	hasher := security.NewBcryptHasher(cfg.Auth.BcryptCost)
	if cfg.Storage.Seed {
		if err := repository.Seed(ctx, store, hasher.Hash); err != nil {
			return fmt.Errorf("failed to seed store: %w", err)
		}
		log.Info().Msg("demo data seeded")
	}

	var redisClient *goredis.Client
	if cfg.UsesRedis() {
		redisClient, err = redisRepo.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return err
		}
		defer redisClient.Close()
	}

	m := metrics.New("doctaba", prometheus.DefaultRegisterer)

	sessionRepo := openSessions(cfg, db, redisClient)
	broker := openBroker(cfg, redisClient, appLogger)
	defer broker.Close()

	events := eventService.NewEventService(broker, cfg.Events.Channel, m)

	// Initialize services
	authSvc, err := authService.NewService(store.Users(), hasher, auth.NewIdentityVerifier(cfg.Auth.ExternalSecret, cfg.Auth.ExternalIssuer))
	if err != nil {
		return err
	}
	appointmentSvc := appointmentService.NewService(store.Appointments(), store.Users(), events)
	messageSvc := messageService.NewService(store.Messages(), events)

	sessions := session.NewManager(sessionRepo, session.Config{
		CookieName: cfg.Session.CookieName,
		Secret:     []byte(cfg.Session.Secret),
		TTL:        cfg.Session.TTL,
		Secure:     cfg.Session.Secure,
	}, m)

	handlers := router.Handlers{
		Health:      health.NewHandler(store),
		Auth:        authHandler.NewHandler(authSvc, sessions),
		User:        userHandler.NewHandler(userService.NewService(store.Users())),
		Appointment: appointmentHandler.NewHandler(appointmentSvc),
		Message:     messageHandler.NewHandler(messageSvc),
		Document:    documentHandler.NewHandler(documentService.NewService(store.Documents())),
		Video:       videoHandler.NewHandler(videoService.NewService(appointmentSvc, cfg.Video.Domain)),
	}
	if cfg.Metrics.Enabled {
		handlers.Metrics = promHandler.New(prometheus.DefaultGatherer, m)
	}

	// Setup router
	r, err := router.NewRouter(router.RouterConfig{
		Mode:           cfg.Server.Mode,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		RateLimit:      rate.Limit(cfg.RateLimit.RequestsPerSecond),
		RateBurst:      cfg.RateLimit.Burst,
		RateLimited:    cfg.RateLimit.Enabled,
		MaxBodyBytes:   cfg.Server.MaxBodyBytes,
		MetricsPath:    cfg.Metrics.Path,
	}, sessions, handlers)
	if err != nil {
		return err
	}

	// Start background workers
	workerCtx, cancelWorkers := context.WithCancel(context.Background())
	defer cancelWorkers()

	if cfg.Session.Driver == "postgres" {
		go worker.NewSessionSweeper(sessionRepo, cfg.Session.SweepInterval, m).Start(workerCtx)
	}

	mailer := email.NewNoopService()
	if cfg.SMTP.Enabled {
		mailer = email.NewSMTPService(email.SMTPConfig{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			Username: cfg.SMTP.Username,
			Password: cfg.SMTP.Password,
			From:     cfg.SMTP.From,
		})
	}
	if err := worker.NewBookingNotifier(events, store.Users(), mailer).Start(workerCtx); err != nil {
		return fmt.Errorf("failed to start booking notifier: %w", err)
	}

	// Create server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r.Engine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info().Int("port", cfg.Server.Port).Str("storage", cfg.Storage.Driver).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	select {
	case err := <-serverErr:
		return fmt.Errorf("failed to start server: %w", err)
	case <-ctx.Done():
	}
	log.Info().Msg("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	cancelWorkers()

	log.Info().Msg("server exited properly")
	return nil
}

func openStore(ctx context.Context, cfg *config.Config) (repository.Store, *sqlx.DB, error) {
	if cfg.Storage.Driver == "memory" {
		log.Warn().Msg("using in-memory storage; data is lost on restart")
		return memory.NewStore(), nil, nil
	}

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	db, err := postgres.NewDB(connectCtx, cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := postgres.Migrate(ctx, db); err != nil {
		db.Close()
		return nil, nil, err
	}
	return postgres.NewStore(db), db, nil
}

// openSessions picks the session backend. Config validation guarantees db is
// set for the postgres driver and redisClient for the redis driver.
func openSessions(cfg *config.Config, db *sqlx.DB, redisClient *goredis.Client) repository.SessionRepository {
	switch cfg.Session.Driver {
	case "redis":
		return redisRepo.NewSessionRepository(redisClient)
	case "memory":
		return memory.NewSessionRepository(cfg.Session.SweepInterval)
	default:
		return postgres.NewSessionRepository(db)
	}
}

func openBroker(cfg *config.Config, redisClient *goredis.Client, l zerolog.Logger) messaging.Broker {
	if cfg.Events.Driver == "redis" {
		return redisBroker.NewRedisBroker(redisClient, redisBroker.Config{
			MaxFailures: 5,
			Interval:    time.Minute,
			Timeout:     30 * time.Second,
		}, l)
	}
	return messaging.NewMemoryBroker(100)
}

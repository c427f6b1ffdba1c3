package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/EliteTRENT/movie-explorer/internal/core/port"
	"github.com/EliteTRENT/movie-explorer/internal/infra/billing"
	"github.com/EliteTRENT/movie-explorer/internal/infra/config"
	"github.com/EliteTRENT/movie-explorer/internal/infra/database"
	kafkainfra "github.com/EliteTRENT/movie-explorer/internal/infra/kafka"
	"github.com/EliteTRENT/movie-explorer/internal/infra/logger"
	"github.com/EliteTRENT/movie-explorer/internal/infra/push"
	redisinfra "github.com/EliteTRENT/movie-explorer/internal/infra/redis"
	"github.com/EliteTRENT/movie-explorer/internal/infra/security"
	"github.com/EliteTRENT/movie-explorer/internal/infra/telemetry"
	postgresrepo "github.com/EliteTRENT/movie-explorer/internal/repository/postgres"
	redisrepo "github.com/EliteTRENT/movie-explorer/internal/repository/redis"
	"github.com/EliteTRENT/movie-explorer/internal/transport/http/routes"
	"github.com/EliteTRENT/movie-explorer/internal/usecase"
)

const revocationPruneInterval = time.Hour

type Application struct {
	cfg       *config.AppConfig
	engine    *gin.Engine
	logger    *zap.Logger
	pool      *pgxpool.Pool
	redis     *redisinfra.Client
	authority *usecase.TokenAuthority
	producer  *kafkainfra.Producer
}

func New(ctx context.Context, cfg *config.AppConfig) (*Application, error) {
	log, err := logger.New(cfg.App.Env)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	metrics, err := telemetry.Attach(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("init telemetry: %w", err)
	}

	pool, err := database.NewPostgresPool(ctx, cfg.Postgres, log)
	if err != nil {
		return nil, fmt.Errorf("init postgres: %w", err)
	}

	redisClient, err := redisinfra.NewClient(cfg.Redis, log)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("init redis: %w", err)
	}

	codec, err := security.NewTokenCodec(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.AccessTokenTTL)
	if err != nil {
		pool.Close()
		_ = redisClient.Close()
		return nil, fmt.Errorf("init token codec: %w", err)
	}

	repos := postgresrepo.NewRepositories(pool)
	revocationCache := redisrepo.NewRevocationCache(redisClient.Client(), cfg.Redis.RevocationPrefix)

	var producer *kafkainfra.Producer
	var eventPublisher port.EventPublisher
	if len(cfg.Kafka.Brokers) > 0 {
		producer, err = kafkainfra.NewProducer(cfg.Kafka, log)
		if err != nil {
			log.Warn("failed to init kafka producer, using stub publisher", zap.Error(err))
			eventPublisher = kafkainfra.NewStubPublisher(log)
		} else {
			eventPublisher = kafkainfra.NewEventPublisher(producer, cfg.App, log)
			log.Info("kafka event publisher initialized", zap.Strings("brokers", cfg.Kafka.Brokers))
		}
	} else {
		log.Info("kafka brokers not configured, using stub publisher")
		eventPublisher = kafkainfra.NewStubPublisher(log)
	}

	authority, err := usecase.NewTokenAuthority(codec, repos.Principals, repos.Revocations, revocationCache, eventPublisher, log)
	if err != nil {
		pool.Close()
		_ = redisClient.Close()
		return nil, fmt.Errorf("init token authority: %w", err)
	}
	authority.WithMetrics(metrics)

	paymentProvider, err := billing.NewStripeClient(cfg.Billing, log)
	if err != nil {
		pool.Close()
		_ = redisClient.Close()
		return nil, fmt.Errorf("init payment provider: %w", err)
	}

	ledger, err := usecase.NewSubscriptionLedger(cfg.Billing, repos.Subscriptions, repos.Principals, paymentProvider, eventPublisher, log)
	if err != nil {
		pool.Close()
		_ = redisClient.Close()
		return nil, fmt.Errorf("init subscription ledger: %w", err)
	}

	pushProvider, err := push.NewFCMClient(cfg.Push, log)
	if err != nil {
		pool.Close()
		_ = redisClient.Close()
		return nil, fmt.Errorf("init push provider: %w", err)
	}

	dispatcher, err := usecase.NewNotificationDispatcher(pushProvider, cfg.Notify, log)
	if err != nil {
		pool.Close()
		_ = redisClient.Close()
		return nil, fmt.Errorf("init notification dispatcher: %w", err)
	}
	dispatcher.WithMetrics(metrics)

	registration, err := usecase.NewRegistrationService(repos.Principals, ledger, security.DefaultPasswordValidator(), eventPublisher, log)
	if err != nil {
		pool.Close()
		_ = redisClient.Close()
		return nil, fmt.Errorf("init registration service: %w", err)
	}

	catalog, err := usecase.NewCatalogService(repos.Movies, repos.Principals, ledger, dispatcher, eventPublisher, log)
	if err != nil {
		pool.Close()
		_ = redisClient.Close()
		return nil, fmt.Errorf("init catalog service: %w", err)
	}

	engine := routes.Register(routes.Dependencies{
		Config:     cfg,
		Logger:     log,
		Principals: repos.Principals,
		Pool:       pool,
		Cache:      redisClient,
		Services: routes.ServiceSet{
			Authority:    authority,
			Registration: registration,
			Ledger:       ledger,
			Catalog:      catalog,
			Dispatcher:   dispatcher,
		},
	})

	return &Application{
		cfg:       cfg,
		engine:    engine,
		logger:    log,
		pool:      pool,
		redis:     redisClient,
		authority: authority,
		producer:  producer,
	}, nil
}

func (a *Application) Run(ctx context.Context) error {
	defer func() {
		_ = a.logger.Sync()
	}()
	defer func() {
		if a.pool != nil {
			a.pool.Close()
		}
	}()
	defer func() {
		if a.redis != nil {
			_ = a.redis.Close()
		}
	}()
	defer func() {
		if a.producer != nil {
			if err := a.producer.Close(); err != nil {
				a.logger.Warn("close kafka producer", zap.Error(err))
			}
		}
	}()

	go a.pruneRevocations(ctx)

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", a.cfg.App.Host, a.cfg.App.Port),
		Handler:           a.engine,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	a.logger.Info("starting catalog API",
		zap.String("env", a.cfg.App.Env),
		zap.String("address", srv.Addr),
	)

	serverErrCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrCh <- fmt.Errorf("run server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown server: %w", err)
		}
		return nil
	case err := <-serverErrCh:
		return err
	}
}

// pruneRevocations periodically removes deny-list rows whose tokens have
// already expired.
func (a *Application) pruneRevocations(ctx context.Context) {
	ticker := time.NewTicker(revocationPruneInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			pruneCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
			removed, err := a.authority.PruneExpiredRevocations(pruneCtx)
			cancel()
			if err != nil {
				a.logger.Warn("prune expired revocations failed", zap.Error(err))
				continue
			}
			if removed > 0 {
				a.logger.Info("pruned expired revocations", zap.Int("removed", removed))
			}
		}
	}
}

package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/EliteTRENT/movie-explorer/internal/core/port"
	"github.com/EliteTRENT/movie-explorer/internal/infra/config"
	appRedis "github.com/EliteTRENT/movie-explorer/internal/infra/redis"
	"github.com/EliteTRENT/movie-explorer/internal/transport/http/handlers"
	"github.com/EliteTRENT/movie-explorer/internal/transport/http/middleware"
	"github.com/EliteTRENT/movie-explorer/internal/usecase"
)

// ServiceSet groups the services the HTTP layer depends on.
type ServiceSet struct {
	Authority    *usecase.TokenAuthority
	Registration *usecase.RegistrationService
	Ledger       *usecase.SubscriptionLedger
	Catalog      *usecase.CatalogService
	Dispatcher   *usecase.NotificationDispatcher
}

// Dependencies encapsulates the objects required to register routes.
type Dependencies struct {
	Config     *config.AppConfig
	Logger     *zap.Logger
	Services   ServiceSet
	Principals port.PrincipalRepository
	Pool       *pgxpool.Pool
	Cache      *appRedis.Client
}

// Register configures the Gin engine with routes and middleware.
func Register(deps Dependencies) *gin.Engine {
	if deps.Config.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(deps.Logger))
	r.Use(middleware.CORS(deps.Config.App.AllowedOrigins))

	if metrics, err := middleware.NewHTTPMetrics(middleware.HTTPMetricsOptions{}); err != nil {
		deps.Logger.Warn("http metrics disabled", zap.Error(err))
	} else {
		r.Use(metrics.Handler())
	}

	healthHandler := handlers.NewHealthHandler(deps.Pool, deps.Cache)
	r.GET("/healthz", healthHandler.Status)
	r.GET("/readyz", healthHandler.Readiness)

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api/v1")
	{
		authGroup := api.Group("/auth")
		authHandler := handlers.NewAuthHandler(deps.Services.Authority, deps.Services.Registration)
		authHandler.RegisterRoutes(authGroup)

		deviceGroup := api.Group("/devices")
		deviceHandler := handlers.NewDeviceHandler(deps.Services.Registration, deps.Services.Authority)
		deviceHandler.RegisterRoutes(deviceGroup)

		subscriptionGroup := api.Group("/subscriptions")
		subscriptionHandler := handlers.NewSubscriptionHandler(deps.Services.Ledger, deps.Services.Authority)
		subscriptionHandler.RegisterRoutes(subscriptionGroup)

		movieGroup := api.Group("/movies")
		movieHandler := handlers.NewMovieHandler(deps.Services.Catalog, deps.Services.Authority)
		movieHandler.RegisterRoutes(movieGroup)

		if deps.Services.Dispatcher != nil {
			notificationGroup := api.Group("/notifications")
			notificationHandler := handlers.NewNotificationHandler(
				deps.Services.Dispatcher,
				deps.Principals,
				deps.Services.Authority,
				deps.Logger,
			)
			notificationHandler.RegisterRoutes(notificationGroup)
		}
	}

	return r
}

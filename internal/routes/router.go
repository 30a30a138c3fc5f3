package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"neighbornet/internal/config"
	"neighbornet/internal/delivery/http/handler"
	"neighbornet/internal/domain/device"
	"neighbornet/internal/infrastructure/database/postgres"
	"neighbornet/internal/logger"
	"neighbornet/internal/middleware"
	"neighbornet/internal/realtime"
	providerUsecase "neighbornet/internal/usecase/provider"
	sessionUsecase "neighbornet/internal/usecase/session"
	speedtestUsecase "neighbornet/internal/usecase/speedtest"
	trustUsecase "neighbornet/internal/usecase/trust"
)

// Engine bundles the assembled services so main can hand them to the MQTT
// ingestion client as well.
type Engine struct {
	Router    *gin.Engine
	Providers *providerUsecase.Service
	Speedtest *speedtestUsecase.Service
	Sessions  *sessionUsecase.Service
	Trust     *trustUsecase.Service
	Hub       *realtime.Hub
	Devices   device.Repository
}

func SetupRoutes(cfg *config.Config, db *postgres.DB) *Engine {
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Middleware in order: recovery, request ID, logging, security headers,
	// CORS, request size limit, general rate limit.
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.SecurityHeadersMiddleware())
	router.Use(middleware.CORSMiddleware(&cfg.CORS))
	router.Use(middleware.RequestSizeLimitMiddleware(middleware.DefaultMaxRequestSize))
	router.Use(middleware.RateLimitMiddleware(cfg.RateLimit.GeneralRPS, cfg.RateLimit.GeneralBurst))

	router.GET("/health", func(c *gin.Context) {
		if err := db.Health(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":  "unhealthy",
				"message": "Database connection failed",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"message": "Service is running",
		})
	})

	hub := realtime.NewHub()
	wsGateway := realtime.NewWSGateway(hub)
	sseGateway := realtime.NewSSEGateway(hub, cfg.Engine.HeartbeatInterval)

	deviceRepository := postgres.NewDeviceRepository(db)
	availabilityRepository := postgres.NewAvailabilityRepository(db)
	speedtestRepository := postgres.NewSpeedtestRepository(db)
	trustRepository := postgres.NewTrustRepository(db)
	sessionRepository := postgres.NewSessionRepository(db)

	trustService := trustUsecase.NewService(trustRepository)
	providerService := providerUsecase.NewService(
		availabilityRepository,
		deviceRepository,
		trustService,
		hub,
		providerUsecase.Weights{
			Speed:     cfg.Engine.RankingWeights.Speed,
			Battery:   cfg.Engine.RankingWeights.Battery,
			Trust:     cfg.Engine.RankingWeights.Trust,
			Proximity: cfg.Engine.RankingWeights.Proximity,
		},
		cfg.Engine.NearbyRadiusKm,
	)
	speedtestService := speedtestUsecase.NewService(
		speedtestRepository,
		deviceRepository,
		cfg.Engine.BandwidthWindowSize,
		cfg.Engine.MaxSpeedtestSamples,
	)
	sessionService := sessionUsecase.NewService(sessionRepository, deviceRepository, hub)

	providerHandler := handler.NewProviderHandler(providerService)
	speedtestHandler := handler.NewSpeedtestHandler(speedtestService)
	sessionHandler := handler.NewSessionHandler(sessionService)
	trustHandler := handler.NewTrustHandler(trustService)
	realtimeHandler := handler.NewRealtimeHandler(wsGateway, sseGateway)

	v1 := router.Group("/api/v1")
	{
		speedtestHandler.RegisterPublicRoutes(v1)

		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware(cfg))
		{
			providerHandler.RegisterRoutes(protected)
			speedtestHandler.RegisterRoutes(protected)
			sessionHandler.RegisterRoutes(protected)
			trustHandler.RegisterRoutes(protected)
			realtimeHandler.RegisterRoutes(protected)
		}
	}

	logger.Info("All routes initialized")

	return &Engine{
		Router:    router,
		Providers: providerService,
		Speedtest: speedtestService,
		Sessions:  sessionService,
		Trust:     trustService,
		Hub:       hub,
		Devices:   deviceRepository,
	}
}

package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/opsignal/breachwatch/api/handlers"
	"github.com/opsignal/breachwatch/api/middleware"
	"github.com/opsignal/breachwatch/api/websocket"
	"github.com/opsignal/breachwatch/internal/auth"
	"github.com/opsignal/breachwatch/internal/engine"
	"github.com/opsignal/breachwatch/internal/events"
	"github.com/opsignal/breachwatch/internal/metrics"
	"github.com/opsignal/breachwatch/internal/store"
	"github.com/opsignal/breachwatch/pkg/config"
	"github.com/opsignal/breachwatch/pkg/database"
	"github.com/opsignal/breachwatch/pkg/database/queries"
)

const maxRequestBody = 1 << 20 // 1 MiB

type Server struct {
	router      *gin.Engine
	httpServer  *http.Server
	config      config.APIConfig
	db          *database.DB
	authService *auth.Service
	engine      *engine.Engine
	sampleStore store.SampleStore
	publisher   *events.Publisher
	bus         *events.EventBus
	wsHub       *websocket.Hub
	wsBridge    *websocket.EventBridge
}

type Deps struct {
	DB          *database.DB
	Engine      *engine.Engine
	SampleStore store.SampleStore
	Publisher   *events.Publisher
	Bus         *events.EventBus
	WSConfig    *config.WebSocketConfig
}

func NewServer(cfg config.APIConfig, deps Deps) *Server {
	if cfg.JWTSecret == "" || cfg.JWTSecret == "change-me-in-production" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	authService := auth.NewService(cfg.JWTSecret, cfg.JWTDuration, cfg.JWTIssuer, cfg.APIKeyHash)
	wsHub := websocket.NewHub(deps.WSConfig)

	s := &Server{
		router:      router,
		config:      cfg,
		db:          deps.DB,
		authService: authService,
		engine:      deps.Engine,
		sampleStore: deps.SampleStore,
		publisher:   deps.Publisher,
		bus:         deps.Bus,
		wsHub:       wsHub,
	}

	s.setupMiddleware()
	s.setupRoutes()

	go wsHub.Run()

	// Forward engine events to WebSocket clients
	if deps.Bus != nil {
		s.wsBridge = websocket.NewEventBridge(wsHub, deps.Bus.SubscribeAll())
		s.wsBridge.Start()
	}

	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(gin.Recovery())
	s.router.Use(middleware.SecurityHeaders())
	s.router.Use(middleware.CORS(s.config.CORSOrigins))
	s.router.Use(middleware.RequestLogger())
	s.router.Use(middleware.TraceID())
	s.router.Use(middleware.RequestSizeLimit(maxRequestBody))

	rateLimiter := middleware.NewRateLimiter(s.config.RateLimit, time.Minute)
	s.router.Use(middleware.RateLimit(rateLimiter))
}

func (s *Server) setupRoutes() {
	recordRepo := queries.NewPredictionRecordRepository(s.db.DB)

	healthHandler := handlers.NewHealthHandler(s.db)
	authHandler := handlers.NewAuthHandler(s.authService)
	predictionHandler := handlers.NewPredictionHandler(s.engine, recordRepo)
	sampleHandler := handlers.NewSampleHandler(s.sampleStore, s.publisher)

	// Public routes
	s.router.GET("/health", healthHandler.Health)
	s.router.GET("/health/ready", healthHandler.Ready)
	s.router.GET("/health/live", healthHandler.Live)
	s.router.GET("/metrics", gin.WrapH(metrics.Get().Handler()))

	// Auth routes
	s.router.POST("/auth/token", middleware.AuthRateLimiter(), authHandler.Token)

	// WebSocket route
	s.router.GET("/ws", websocket.ServeWebSocket(s.wsHub))

	// Protected routes
	protected := s.router.Group("/api/v1")
	protected.Use(middleware.JWTAuth(s.authService))
	{
		protected.POST("/predictions", predictionHandler.Predict)
		protected.GET("/predictions/:metric/records", predictionHandler.Records)
		protected.PUT("/records/:id/outcome", predictionHandler.RecordOutcome)

		protected.POST("/samples/:metric", sampleHandler.Ingest)
		protected.GET("/samples/:metric/window", sampleHandler.Window)
	}
}

func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.config.Port)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.wsBridge != nil {
		s.wsBridge.Stop()
	}

	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) Router() *gin.Engine {
	return s.router
}

func (s *Server) WebSocketHub() *websocket.Hub {
	return s.wsHub
}

package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"go.opentelemetry.io/otel/trace"

	"github.com/decisionflow-ai/decisionflow/internal/platform/cache"
	"github.com/decisionflow-ai/decisionflow/internal/platform/config"
	"github.com/decisionflow-ai/decisionflow/internal/platform/database"
	"github.com/decisionflow-ai/decisionflow/internal/platform/logger"
	"github.com/decisionflow-ai/decisionflow/internal/platform/messaging/kafka"
	"github.com/decisionflow-ai/decisionflow/internal/platform/metrics"
	"github.com/decisionflow-ai/decisionflow/internal/platform/telemetry"
	"github.com/decisionflow-ai/decisionflow/internal/workflow/adapters/http/handlers"
	"github.com/decisionflow-ai/decisionflow/internal/workflow/adapters/repository/postgres"
	"github.com/decisionflow-ai/decisionflow/internal/workflow/app/service"
	"github.com/decisionflow-ai/decisionflow/internal/workflow/domain/service/governance"
	"github.com/decisionflow-ai/decisionflow/pkg/middleware"
)

// Server represents the workflow service server
type Server struct {
	config     *config.Config
	logger     logger.Logger
	telemetry  *telemetry.Telemetry
	httpServer *http.Server
	db         *database.DB
	redis      *cache.RedisCache
	publisher  *kafka.EventPublisher
	metrics    *metrics.Metrics
	lifecycle  *service.LifecycleService
}

// Option is a server configuration option
type Option func(*Server)

// WithConfig sets the server config
func WithConfig(cfg *config.Config) Option {
	return func(s *Server) {
		s.config = cfg
	}
}

// WithLogger sets the server logger
func WithLogger(logger logger.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithTelemetry sets the server telemetry
func WithTelemetry(t *telemetry.Telemetry) Option {
	return func(s *Server) {
		s.telemetry = t
	}
}

// New creates a new server instance
func New(opts ...Option) (*Server, error) {
	s := &Server{}

	for _, opt := range opts {
		opt(s)
	}

	if err := s.initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize server: %w", err)
	}

	return s, nil
}

func (s *Server) initialize() error {
	db, err := database.New(s.config.Database)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	s.db = db

	redisCache, err := cache.NewRedisCache(cache.Config{
		Host:      s.config.Redis.Host,
		Port:      s.config.Redis.Port,
		Password:  s.config.Redis.Password,
		DB:        s.config.Redis.DB,
		KeyPrefix: s.config.Service.Name,
	})
	if err != nil {
		s.logger.Warn("Redis unavailable, snapshot cache disabled", "error", err)
	} else {
		s.redis = redisCache
	}

	publisher, err := kafka.NewEventPublisher(&kafka.Config{
		Brokers: s.config.Kafka.Brokers,
	})
	if err != nil {
		s.logger.Warn("Kafka unavailable, lifecycle events disabled", "error", err)
	} else {
		s.publisher = publisher
	}

	if s.config.Telemetry.MetricsEnabled {
		s.metrics = metrics.NewMetrics("decisionflow")
		s.metrics.Register()
	}

	definitionRepo := postgres.NewDefinitionRepository(db)
	versionRepo := postgres.NewVersionRepository(db)
	auditRepo := postgres.NewPublishAuditRepository(db)
	uow := postgres.NewUnitOfWork(db)

	registries := postgres.NewRegistries(db)
	governanceValidator := governance.NewValidator(
		registries,
		registries.Agents(),
		registries.ParamSets(),
		registries,
		registries.Connectors(),
		registries,
		registries,
	)

	var eventPublisher service.EventPublisher
	if s.publisher != nil {
		eventPublisher = s.publisher
	}
	var snapshotCache service.SnapshotCache
	if s.redis != nil {
		snapshotCache = s.redis
	}

	s.lifecycle = service.NewLifecycleService(
		definitionRepo,
		versionRepo,
		auditRepo,
		uow,
		governanceValidator,
		eventPublisher,
		snapshotCache,
		s.metrics,
		s.logger,
	)

	s.setupHTTPServer()
	return nil
}

func (s *Server) setupHTTPServer() {
	router := mux.NewRouter()

	internalPaths := []string{"/health/live", "/health/ready", "/metrics"}

	router.Use(middleware.RequestID)
	if s.telemetry != nil {
		router.Use(tracing(s.telemetry.Tracer()))
	}
	if s.metrics != nil {
		router.Use(s.metrics.HTTPMetricsMiddleware())
	}
	router.Use(middleware.Logging(&middleware.LoggingConfig{
		Logger:    s.logger,
		SkipPaths: internalPaths,
	}))
	router.Use(middleware.RecoveryWithLogger(s.logger))
	router.Use(middleware.CORSWithOrigins(s.config.HTTP.CORSOrigins...))

	rateLimitConfig := middleware.DefaultRateLimitConfig()
	rateLimitConfig.RequestsPerMinute = s.config.HTTP.RateLimitPerMinute
	rateLimitConfig.SkipPaths = internalPaths
	router.Use(middleware.RateLimit(rateLimitConfig))

	authConfig := middleware.DefaultAuthConfig()
	authConfig.JWTSecret = []byte(s.config.Auth.JWTSecret)
	router.Use(middleware.Auth(authConfig))

	// Health checks
	router.HandleFunc("/health/live", s.handleLiveness).Methods("GET")
	router.HandleFunc("/health/ready", s.handleReadiness).Methods("GET")

	// Metrics endpoint
	if s.metrics != nil {
		router.Handle("/metrics", s.metrics.Handler()).Methods("GET")
	}

	// API routes
	apiRouter := router.PathPrefix("/api/v1").Subrouter()

	workflowHandler := handlers.NewWorkflowHandler(s.lifecycle, s.logger)
	workflowHandler.RegisterRoutes(apiRouter)

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.HTTP.Port),
		Handler:      router,
		ReadTimeout:  s.config.HTTP.ReadTimeout,
		WriteTimeout: s.config.HTTP.WriteTimeout,
		IdleTimeout:  s.config.HTTP.IdleTimeout,
	}
}

// tracing wraps every request in a span named after method and path.
func tracing(tracer trace.Tracer) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, span := tracer.Start(r.Context(), r.Method+" "+r.URL.Path)
			defer span.End()
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Start starts the server
func (s *Server) Start() error {
	s.logger.Info("Starting HTTP server", "port", s.config.HTTP.Port)
	return s.httpServer.ListenAndServe()
}

// Handler returns the HTTP handler for the server
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down server")

	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Error("HTTP server shutdown error", "error", err)
	}

	if s.publisher != nil {
		if err := s.publisher.Close(); err != nil {
			s.logger.Error("Kafka publisher close error", "error", err)
		}
	}

	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			s.logger.Error("Redis close error", "error", err)
		}
	}

	if s.db != nil {
		if err := s.db.Close(); err != nil {
			s.logger.Error("Database close error", "error", err)
		}
	}

	return nil
}

// Health check handlers
func (s *Server) handleLiveness(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, `{"status":"alive"}`)
}

func (s *Server) handleReadiness(w http.ResponseWriter, r *http.Request) {
	if err := s.db.HealthCheck(r.Context()); err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		fmt.Fprintf(w, `{"status":"not ready","error":"%s"}`, err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, `{"status":"ready"}`)
}

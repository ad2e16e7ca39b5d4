package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	apihttp "github.com/GriffinCanCode/specfn/internal/api/http"
	"github.com/GriffinCanCode/specfn/internal/api/middleware"
	"github.com/GriffinCanCode/specfn/internal/catalog"
	"github.com/GriffinCanCode/specfn/internal/dispatch"
	"github.com/GriffinCanCode/specfn/internal/infrastructure/config"
	"github.com/GriffinCanCode/specfn/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/specfn/internal/infrastructure/tracing"
	"github.com/GriffinCanCode/specfn/internal/logging"
	"github.com/GriffinCanCode/specfn/internal/numeric"
	"github.com/GriffinCanCode/specfn/internal/precision"
	"github.com/GriffinCanCode/specfn/internal/symbolic"
)

// Server wraps the HTTP server and dependencies
type Server struct {
	router     *gin.Engine
	httpServer *http.Server
	dispatcher *dispatch.Dispatcher
	logger     *logging.Logger
	config     *config.Config
	metrics    *monitoring.Metrics
	registry   *prometheus.Registry
	tracer     *tracing.Tracer
}

// Option customises NewServer.
type Option func(*options)

type options struct {
	logger *logging.Logger
}

// WithLogger replaces the logger built from the logging config.
func WithLogger(l *logging.Logger) Option {
	return func(o *options) { o.logger = l }
}

// NewServer creates a new server instance
func NewServer(cfg *config.Config, opts ...Option) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	logger := o.logger
	if logger == nil {
		var err error
		logger, err = logging.New(logging.Config{
			Level:       cfg.Logging.Level,
			Development: cfg.Logging.Development,
			OutputPaths: []string{"stdout"},
			Service:     "specfn",
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create logger: %w", err)
		}
	}

	logger.Info("Initializing specfn server",
		zap.String("addr", cfg.Server.Addr()),
		zap.Uint("default_precision", cfg.Precision.Default),
		zap.Uint("max_precision", cfg.Precision.Max),
	)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := monitoring.NewMetrics(registry)

	cat, err := buildCatalog(cfg.Rules.File)
	if err != nil {
		return nil, err
	}
	metrics.SetCatalogSize(cat.Len(), cat.Rules().Len())
	logger.Info("Catalog loaded",
		zap.Int("functions", cat.Len()),
		zap.Int("rules", cat.Rules().Len()),
		zap.String("rule_file", cfg.Rules.File),
	)

	dopts := []dispatch.Option{
		dispatch.WithLogger(logger),
		dispatch.WithMetrics(metrics),
		dispatch.WithTracker(precision.NewTracker(cfg.Precision.Default, cfg.Precision.Max)),
		dispatch.WithMaxDepth(cfg.Eval.MaxRewriteDepth),
	}
	if cfg.Eval.SerializeNumeric {
		dopts = append(dopts, dispatch.WithSerializedNumeric())
	}
	dispatcher := dispatch.New(cat, symbolic.NewClosedForms(), numeric.NewTiered(), dopts...)

	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	tracer := tracing.New("specfn", logger.Named("trace").Logger)

	router.Use(gin.Recovery())
	router.Use(monitoring.Middleware(metrics))
	router.Use(tracing.HTTPMiddleware(tracer))
	router.Use(middleware.CORS(middleware.DefaultCORSConfig()))
	router.Use(middleware.EvalID())
	if cfg.RateLimit.Enabled {
		logger.Info("Rate limiting enabled",
			zap.Int("rps", cfg.RateLimit.RequestsPerSecond),
			zap.Int("burst", cfg.RateLimit.Burst),
		)
		rl := middleware.DefaultRateLimitConfig()
		rl.RequestsPerSecond = cfg.RateLimit.RequestsPerSecond
		rl.Burst = cfg.RateLimit.Burst
		router.Use(middleware.RateLimit(rl))
	}

	apihttp.NewHandlers(dispatcher, metrics, logger).Register(router)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry})))

	logger.Info("Server initialized successfully")

	return &Server{
		router: router,
		httpServer: &http.Server{
			Addr:              cfg.Server.Addr(),
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
		dispatcher: dispatcher,
		logger:     logger,
		config:     cfg,
		metrics:    metrics,
		registry:   registry,
		tracer:     tracer,
	}, nil
}

func buildCatalog(ruleFile string) (*catalog.Catalog, error) {
	b := catalog.NewBuilder()
	if err := catalog.RegisterBuiltins(b); err != nil {
		return nil, fmt.Errorf("failed to register built-in functions: %w", err)
	}
	if ruleFile != "" {
		if err := b.LoadRuleFile(ruleFile); err != nil {
			return nil, fmt.Errorf("failed to load rules: %w", err)
		}
	}
	return b.Build()
}

// Handler returns the router, for tests and embedding.
func (s *Server) Handler() http.Handler { return s.router }

// Dispatcher returns the server's dispatcher.
func (s *Server) Dispatcher() *dispatch.Dispatcher { return s.dispatcher }

// Run starts the HTTP server and blocks until it stops. A graceful Shutdown
// makes Run return nil.
func (s *Server) Run() error {
	s.logger.Info("Starting HTTP server", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests and waits for in-flight ones.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down server...")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Error("Graceful shutdown failed", zap.Error(err))
		return fmt.Errorf("failed to shut down: %w", err)
	}
	s.tracer.Close()
	// Sync logger before exit
	_ = s.logger.Sync()
	return nil
}

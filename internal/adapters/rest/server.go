// Package rest exposes the user commands and queries over HTTP. Handlers
// build requests through their factories, dispatch them and map the failure
// taxonomy onto status codes.
package rest

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/andrescamacho/mediator-go/internal/application/mediator"
	"github.com/andrescamacho/mediator-go/internal/infrastructure/config"
)

// Options carries the optional collaborators of the server
type Options struct {
	Logger zerolog.Logger

	// Gatherer backs the metrics endpoint; nil disables it
	Gatherer    prometheus.Gatherer
	MetricsPath string

	// Health reports readiness of dependencies (e.g. the database)
	Health func(ctx context.Context) error

	// Breakers reports circuit breaker states on the health endpoint
	Breakers interface{ States() map[string]string }
}

// Server is the HTTP transport in front of the mediator
type Server struct {
	sender         mediator.Sender
	router         *gin.Engine
	httpServer     *http.Server
	requestTimeout time.Duration
	opts           Options
	started        time.Time
}

// NewServer wires routes and middleware. sender is usually a *mediator.Live
// so reloaded pipelines take effect without restarting the server.
func NewServer(cfg config.ServerConfig, sender mediator.Sender, opts Options) *Server {
	router := gin.New()
	router.Use(gin.Recovery(), RequestID(), RequestLogger(opts.Logger))

	s := &Server{
		sender:         sender,
		router:         router,
		requestTimeout: cfg.RequestTimeout,
		opts:           opts,
		started:        time.Now(),
	}
	s.httpServer = &http.Server{
		Addr:         cfg.Address,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	s.registerRoutes()

	return s
}

func (s *Server) registerRoutes() {
	users := s.router.Group("/users")
	users.POST("", s.createUser)
	users.GET("", s.listUsers)
	users.GET("/:id", s.getUser)

	s.router.GET("/healthz", s.health)

	if s.opts.Gatherer != nil {
		path := s.opts.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		s.router.GET(path, gin.WrapH(promhttp.HandlerFor(s.opts.Gatherer, promhttp.HandlerOpts{})))
	}
}

// Handler returns the router, for tests and embedding
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves until Shutdown is called
func (s *Server) Start() error {
	s.opts.Logger.Info().Str("address", s.httpServer.Addr).Msg("http server listening")
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting connections and waits for in-flight requests
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// dispatchContext bounds one request's dispatch by the configured timeout
func (s *Server) dispatchContext(c *gin.Context) (context.Context, context.CancelFunc) {
	if s.requestTimeout <= 0 {
		return context.WithCancel(c.Request.Context())
	}
	return context.WithTimeout(c.Request.Context(), s.requestTimeout)
}

func (s *Server) health(c *gin.Context) {
	body := gin.H{
		"status": "ok",
		"uptime": time.Since(s.started).Round(time.Second).String(),
	}
	status := http.StatusOK

	if s.opts.Health != nil {
		if err := s.opts.Health(c.Request.Context()); err != nil {
			status = http.StatusServiceUnavailable
			body["status"] = "degraded"
			body["error"] = err.Error()
		}
	}
	if s.opts.Breakers != nil {
		body["circuit_breakers"] = s.opts.Breakers.States()
	}

	c.JSON(status, body)
}

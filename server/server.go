package server

import (
	"context"
	"crypto/tls"
	stderrors "errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/kbukum/nativefetch/auth"
	"github.com/kbukum/nativefetch/bridge/ipc"
	"github.com/kbukum/nativefetch/errors"
	"github.com/kbukum/nativefetch/host"
	"github.com/kbukum/nativefetch/logger"
	"github.com/kbukum/nativefetch/server/endpoint"
	"github.com/kbukum/nativefetch/server/middleware"
)

// Server exposes a host.Dispatcher over HTTP: POST /ipc/{command} with JSON
// arguments. It speaks HTTP/1.1 and h2c on one port.
type Server struct {
	httpServer  *http.Server
	engine      *gin.Engine
	dispatcher  *host.Dispatcher
	config      Config
	log         *logger.Logger
	serviceName string
	validator   auth.TokenValidator
	checker     endpoint.HealthChecker

	mu       sync.Mutex
	listener net.Listener
}

// Option customizes a Server.
type Option func(*Server)

// WithTokenValidator requires a bearer token on every IPC command.
func WithTokenValidator(v auth.TokenValidator) Option {
	return func(s *Server) { s.validator = v }
}

// WithHealthChecker reports component health on /health and /ready.
func WithHealthChecker(c endpoint.HealthChecker) Option {
	return func(s *Server) { s.checker = c }
}

// WithLogger replaces the component logger.
func WithLogger(l *logger.Logger) Option {
	return func(s *Server) { s.log = l }
}

// WithServiceName sets the name reported by /health.
func WithServiceName(name string) Option {
	return func(s *Server) { s.serviceName = name }
}

// New creates a server dispatching to d.
func New(cfg Config, d *host.Dispatcher, opts ...Option) (*Server, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if zerolog.GlobalLevel() <= zerolog.DebugLevel {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		engine:      gin.New(),
		dispatcher:  d,
		config:      cfg,
		log:         logger.WithComponent("server"),
		serviceName: "nativefetch",
	}
	for _, opt := range opts {
		opt(s)
	}
	s.routes()

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      s.Handler(),
		ReadTimeout:  time.Duration(cfg.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.IdleTimeout) * time.Second,
	}
	return s, nil
}

func (s *Server) routes() {
	s.engine.GET("/health", endpoint.Health(s.serviceName, s.checker))
	s.engine.GET("/ready", endpoint.Readiness(s.serviceName, s.checker))
	s.engine.GET("/version", endpoint.Version())

	group := s.engine.Group(strings.TrimSuffix(ipc.PathPrefix, "/"))
	if s.validator != nil {
		group.Use(middleware.Auth(middleware.AuthConfig{Validator: s.validator, CommandParam: "cmd"}))
	}
	if s.config.RateLimit > 0 {
		group.Use(middleware.RateLimit(middleware.RateLimitConfig{
			RequestsPerMinute: s.config.RateLimit,
			KeyFunc:           middleware.SubjectKey,
		}))
	}
	group.POST("/*cmd", s.handleCommand)
}

// Handler returns the full handler: middleware, Gin routes and h2c.
func (s *Server) Handler() http.Handler {
	chain := middleware.Chain(
		middleware.Recovery(s.log),
		middleware.RequestID(),
		middleware.RequestLogger(s.log),
		middleware.CORS(&s.config.CORS),
		middleware.BodySizeLimit(s.config.MaxBodySize),
	)
	h2s := &http2.Server{
		MaxConcurrentStreams: 250,
		IdleTimeout:          time.Duration(s.config.IdleTimeout) * time.Second,
	}
	return h2c.NewHandler(chain(s.engine), h2s)
}

// GinEngine returns the underlying Gin engine for extra routes.
func (s *Server) GinEngine() *gin.Engine {
	return s.engine
}

func (s *Server) handleCommand(c *gin.Context) {
	cmd := strings.TrimPrefix(c.Param("cmd"), "/")
	args, err := io.ReadAll(c.Request.Body)
	if err != nil {
		var maxErr *http.MaxBytesError
		if stderrors.As(err, &maxErr) {
			s.respondError(c, errors.New(errors.ErrCodeInvalidArgs,
				fmt.Sprintf("Arguments exceed %d bytes.", maxErr.Limit), http.StatusRequestEntityTooLarge))
			return
		}
		s.respondError(c, errors.InvalidArgs(cmd, err.Error()))
		return
	}

	ctx := otel.GetTextMapPropagator().Extract(c.Request.Context(), propagation.HeaderCarrier(c.Request.Header))
	result, err := s.dispatcher.Dispatch(ctx, cmd, args)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// respondError writes err as an error body. Context errors mean the caller
// went away or ran out of time.
func (s *Server) respondError(c *gin.Context, err error) {
	var appErr *errors.AppError
	switch {
	case stderrors.Is(err, context.Canceled), stderrors.Is(err, context.DeadlineExceeded):
		appErr = errors.Canceled(0).WithCause(err)
	default:
		appErr = errors.Wrap(err)
	}
	if appErr.HTTPStatus >= http.StatusInternalServerError {
		s.log.WithContext(c.Request.Context()).Error("Command failed", logger.ErrorFields(c.Param("cmd"), err))
	}
	c.AbortWithStatusJSON(errors.StatusOf(appErr), appErr.ToResponse())
}

// Start binds the port and begins serving. It returns once the listener is
// bound; serving continues in a goroutine.
func (s *Server) Start(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("server failed to bind %s: %w", s.httpServer.Addr, err)
	}

	scheme := "http"
	if s.config.TLS.IsEnabled() {
		tlsCfg, err := s.config.TLS.BuildServer()
		if err != nil {
			_ = listener.Close()
			return err
		}
		tlsCfg.NextProtos = []string{"h2", "http/1.1"}
		s.httpServer.TLSConfig = tlsCfg
		listener = tls.NewListener(listener, tlsCfg)
		scheme = "https"
	}

	s.mu.Lock()
	s.listener = listener
	s.mu.Unlock()

	go func() {
		if err := s.httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
			s.log.Error("Server error", logger.ErrorFields("serve", err))
		}
	}()

	s.log.Info("IPC server started", map[string]interface{}{
		"addr":   listener.Addr().String(),
		"scheme": scheme,
		"auth":   s.validator != nil,
	})
	return nil
}

// Stop gracefully shuts down the server with a 5-second deadline.
func (s *Server) Stop(ctx context.Context) error {
	s.log.Info("Shutting down IPC server")

	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}
	return nil
}

// Addr returns the bound address once started, else the configured one.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.httpServer.Addr
}

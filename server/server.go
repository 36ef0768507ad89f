package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/kbukum/fileproxy/logger"
	"github.com/kbukum/fileproxy/server/middleware"
)

const shutdownTimeout = 5 * time.Second

// Server serves a Gin engine, plus any extra http.Handler mounts, behind a
// net/http middleware chain.
type Server struct {
	httpServer  *http.Server
	engine      *gin.Engine
	mux         *http.ServeMux
	middlewares []middleware.Middleware
	config      Config
	log         *logger.Logger
	listenAddr  string
}

// New creates a server. Redirects for trailing slashes and fixed paths are
// disabled so unmatched paths always reach NoRoute.
func New(cfg Config, log *logger.Logger) *Server {
	if zerolog.GlobalLevel() <= zerolog.DebugLevel {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.RedirectTrailingSlash = false
	engine.RedirectFixedPath = false
	engine.MaxMultipartMemory = cfg.MultipartMemoryBytes()

	mux := http.NewServeMux()
	mux.Handle("/", engine)

	return &Server{
		httpServer: &http.Server{
			Addr:              fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       time.Duration(cfg.ReadTimeout) * time.Second,
			WriteTimeout:      time.Duration(cfg.WriteTimeout) * time.Second,
			IdleTimeout:       time.Duration(cfg.IdleTimeout) * time.Second,
		},
		engine: engine,
		mux:    mux,
		config: cfg,
		log:    log.WithComponent("server"),
	}
}

// GinEngine returns the engine for route registration.
func (s *Server) GinEngine() *gin.Engine { return s.engine }

// Config returns the server configuration.
func (s *Server) Config() Config { return s.config }

// Handle mounts handler at pattern on the root mux, alongside Gin.
func (s *Server) Handle(pattern string, handler http.Handler) {
	s.mux.Handle(pattern, handler)
}

// Use appends net/http middleware; the first added is outermost.
func (s *Server) Use(mws ...middleware.Middleware) {
	s.middlewares = append(s.middlewares, mws...)
}

// ApplyMiddleware installs the standard chain: recovery, request id, CORS
// for allowedOrigins, body size limit and request logging.
func (s *Server) ApplyMiddleware(allowedOrigins []string) {
	s.Use(
		middleware.Recovery(s.log),
		middleware.RequestID(),
		middleware.CORS(allowedOrigins),
		middleware.BodySizeLimit(s.config.MaxBodyBytes()),
		middleware.RequestLogger(s.log),
	)
}

// Handler returns the mux wrapped in the middleware chain, without h2c.
// The serverless adapter and tests use it directly.
func (s *Server) Handler() http.Handler {
	return middleware.Chain(s.middlewares...)(s.mux)
}

// Start binds the listener and serves in the background. With a TLS
// certificate configured it serves HTTPS with HTTP/2 negotiated over ALPN;
// otherwise cleartext with h2c.
func (s *Server) Start(_ context.Context) error {
	tlsCfg, err := s.config.TLS.ServerConfig()
	if err != nil {
		return fmt.Errorf("server tls: %w", err)
	}
	if tlsCfg != nil {
		s.httpServer.TLSConfig = tlsCfg
		s.httpServer.Handler = s.Handler()
	} else {
		h2s := &http2.Server{
			MaxConcurrentStreams: 250,
			IdleTimeout:          time.Duration(s.config.IdleTimeout) * time.Second,
		}
		s.httpServer.Handler = h2c.NewHandler(s.Handler(), h2s)
	}

	listener, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("server failed to bind %s: %w", s.httpServer.Addr, err)
	}
	s.listenAddr = listener.Addr().String()

	go func() {
		var err error
		if tlsCfg != nil {
			err = s.httpServer.ServeTLS(listener, "", "")
		} else {
			err = s.httpServer.Serve(listener)
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error("server error", logger.Fields(logger.FieldError, err.Error()))
		}
	}()

	s.log.Info("HTTP server started", logger.Fields("addr", s.listenAddr, "tls", tlsCfg != nil))
	return nil
}

// Stop drains in-flight requests for up to five seconds.
func (s *Server) Stop(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	s.log.Info("HTTP server stopped")
	return nil
}

// Addr returns the bound address once started, else the configured one.
func (s *Server) Addr() string {
	if s.listenAddr != "" {
		return s.listenAddr
	}
	return s.httpServer.Addr
}

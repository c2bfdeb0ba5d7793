// Package api provides the HTTP control surface of an LBMS node
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/ZentaChain/lbms-node/pkg/node"
	"github.com/ZentaChain/lbms-node/pkg/storage"
)

var log = logrus.WithField("component", "api")

// MessageStore is the read side of the message history
type MessageStore interface {
	RecentMessages(limit, offset int) ([]*storage.StoredMessage, error)
	CountMessages() (int, error)
	Stations() ([]*storage.Station, error)
}

// Server represents the HTTP API server
type Server struct {
	node       *node.Node
	history    MessageStore
	router     *gin.Engine
	config     *Config
	limiter    *RateLimiter
	httpServer *http.Server
}

// Config holds server configuration
type Config struct {
	Port         int           `yaml:"port"`
	EnableCORS   bool          `yaml:"enable_cors"`
	RateLimit    int           `yaml:"rate_limit"` // Requests per minute
	MaxPageSize  int           `yaml:"max_page_size"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// DefaultConfig returns default server configuration
func DefaultConfig() *Config {
	return &Config{
		Port:         8080,
		EnableCORS:   true,
		RateLimit:    100,
		MaxPageSize:  500,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
}

// NewServer creates a new HTTP API server. history may be nil, in which
// case the history endpoints answer 503.
func NewServer(n *node.Node, history MessageStore, config *Config) *Server {
	if config == nil {
		config = DefaultConfig()
	}

	gin.SetMode(gin.ReleaseMode)

	server := &Server{
		node:    n,
		history: history,
		router:  gin.New(),
		config:  config,
	}

	server.setupMiddleware()
	server.setupRoutes()

	return server
}

// setupMiddleware configures middleware
func (s *Server) setupMiddleware() {
	if s.config.EnableCORS {
		s.router.Use(CORSMiddleware())
	}

	if s.config.RateLimit > 0 {
		s.limiter = NewRateLimiter(s.config.RateLimit)
		s.router.Use(RateLimitMiddleware(s.limiter))
	}

	s.router.Use(LoggingMiddleware())
	s.router.Use(gin.Recovery())
}

// setupRoutes configures API routes
func (s *Server) setupRoutes() {
	v1 := s.router.Group("/api/v1")
	{
		messages := v1.Group("/messages")
		{
			messages.POST("", s.handleSend)
			messages.GET("", s.handleHistory)
		}

		v1.POST("/decode", s.handleDecode)
		v1.GET("/status", s.handleStatus)
		v1.GET("/stations", s.handleStations)

		radio := v1.Group("/radio")
		{
			radio.GET("/config", s.handleRadioConfig)
			radio.PUT("/config", s.handleUpdateRadioConfig)
		}
	}

	// Health check endpoint (outside versioning)
	s.router.GET("/health", s.handleHealth)
}

// Handler exposes the router for embedding and tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Start(ctx context.Context) error {
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithField("port", s.config.Port).Info("HTTP API server starting")
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		s.stopLimiter()
		return fmt.Errorf("api server: %w", err)
	case <-ctx.Done():
	}

	log.Info("Shutting down HTTP API server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	s.stopLimiter()
	return s.httpServer.Shutdown(shutdownCtx)
}

func (s *Server) stopLimiter() {
	if s.limiter != nil {
		s.limiter.Stop()
	}
}

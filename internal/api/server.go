// Package api exposes the ordering assistant over HTTP and websockets.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"cantina/internal/assistant"
	"cantina/internal/models"
	"cantina/internal/monitoring"
	"cantina/internal/session"
)

// Server is the HTTP front end of the assistant
type Server struct {
	Router    *gin.Engine
	assistant *assistant.Assistant
	sessions  *session.Store
	catalog   assistant.Catalog
	orders    OrderHistory
	metrics   *monitoring.MetricsCollector
	log       *zap.Logger
	jwtSecret string
}

// ItemFinder looks a single menu item up by name. Catalogs that do not
// implement it are scanned instead.
type ItemFinder interface {
	FindByName(ctx context.Context, name string) (*models.MenuItem, error)
}

// OrderHistory reads archived orders
type OrderHistory interface {
	GetOrder(ctx context.Context, id uint) (*models.Order, error)
	ListBySession(ctx context.Context, sessionID string) ([]models.Order, error)
}

// Option configures a Server
type Option func(*Server)

// WithMetrics exposes the monitor snapshot on /api/v1/stats.
func WithMetrics(metrics *monitoring.MetricsCollector) Option {
	return func(s *Server) { s.metrics = metrics }
}

// WithLogger sets the request logger.
func WithLogger(log *zap.Logger) Option {
	return func(s *Server) { s.log = log }
}

// WithOrderHistory serves archived orders on /api/v1/orders/:id and
// /api/v1/sessions/:id/orders.
func WithOrderHistory(orders OrderHistory) Option {
	return func(s *Server) { s.orders = orders }
}

// WithJWTSecret requires a bearer token signed with secret on /api and /ws.
func WithJWTSecret(secret string) Option {
	return func(s *Server) { s.jwtSecret = secret }
}

// NewServer creates a new API server instance
func NewServer(a *assistant.Assistant, sessions *session.Store, catalog assistant.Catalog, opts ...Option) *Server {
	s := &Server{
		Router:    gin.New(),
		assistant: a,
		sessions:  sessions,
		catalog:   catalog,
		log:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.Router.Use(gin.Recovery(), requestLogger(s.log))
	s.setupRoutes()
	return s
}

// setupRoutes configures all API endpoints
func (s *Server) setupRoutes() {
	s.Router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "Cantina ordering assistant is running"})
	})

	v1 := s.Router.Group("/api/v1")
	ws := s.Router.Group("/ws")
	if s.jwtSecret != "" {
		v1.Use(AuthMiddleware(s.jwtSecret))
		ws.Use(AuthMiddleware(s.jwtSecret))
	}
	{
		v1.GET("/menu", s.GetMenu)
		v1.GET("/menu/:name", s.GetMenuItem)
		v1.GET("/stats", s.GetStats)

		v1.POST("/sessions", s.CreateSession)
		v1.GET("/sessions/:id", s.GetSession)
		v1.DELETE("/sessions/:id", s.DeleteSession)
		v1.POST("/sessions/:id/messages", s.PostMessage)

		if s.orders != nil {
			v1.GET("/sessions/:id/orders", s.ListSessionOrders)
			v1.GET("/orders/:id", s.GetOrder)
		}
	}
	ws.GET("", s.handleWebSocket)
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string, shutdownTimeout time.Duration) error {
	return Serve(ctx, &http.Server{Addr: addr, Handler: s.Router}, shutdownTimeout, s.log)
}

// Serve runs srv until ctx is cancelled.
func Serve(ctx context.Context, srv *http.Server, shutdownTimeout time.Duration, log *zap.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		log.Info("Listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}

func requestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Debug("Request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("elapsed", time.Since(start)),
		)
	}
}

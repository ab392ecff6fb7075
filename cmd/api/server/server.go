package server

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	ginhandler "wallet-account-service/internal/adapter/gin/handler"
	ginrouter "wallet-account-service/internal/adapter/gin/router"
	"wallet-account-service/internal/config"
)

// Server wraps the HTTP server exposing the core operations.
type Server struct {
	Config *config.Config
	Logger *zap.Logger
	HTTP   *http.Server
}

// New creates a new server instance
func New(
	cfg *config.Config,
	l *zap.Logger,
	accountHandler *ginhandler.AccountHandler,
	walletHandler *ginhandler.WalletHandler,
) *Server {
	router := ginrouter.SetupRouter(accountHandler, walletHandler, l)

	return &Server{
		Config: cfg,
		Logger: l,
		HTTP: &http.Server{
			Addr:              ":" + cfg.App.HTTPPort,
			Handler:           router,
			ReadHeaderTimeout: 2 * time.Second,
			ReadTimeout:       10 * time.Second,
			WriteTimeout:      10 * time.Second,
			IdleTimeout:       120 * time.Second,
		},
	}
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	s.Logger.Info("HTTP server running", zap.String("address", s.HTTP.Addr))
	if err := s.HTTP.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.HTTP.Shutdown(ctx)
}

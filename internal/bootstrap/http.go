package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/workspace-secretary/secretary-go/config"
	httpx "github.com/workspace-secretary/secretary-go/internal/http"
)

// StartHTTPServer creates and starts the HTTP server in a background
// goroutine. Returns the server instance for graceful shutdown.
func StartHTTPServer(cfg config.HTTPConfig, services *ServiceContainer, logger *slog.Logger) *http.Server {
	if logger == nil {
		logger = slog.Default()
	}

	handler := httpx.NewRouter(httpx.RouterServices{
		Jobs:   services.Jobs,
		Logger: logger,
	})

	addr := cfg.Addr
	if addr == "" {
		addr = ":8080"
	}

	// No WriteTimeout: the event stream endpoint holds its response
	// open for the life of the client connection.
	server := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		logger.Info("starting HTTP server", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server failed", "error", err)
		}
	}()

	return server
}

// ShutdownHTTPServer gracefully shuts down the HTTP server within the
// configured timeout.
func ShutdownHTTPServer(ctx context.Context, server *http.Server, timeout time.Duration, logger *slog.Logger) {
	if server == nil {
		return
	}
	if logger == nil {
		logger = slog.Default()
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown failed", "error", err)
		return
	}
	logger.Info("HTTP server stopped")
}

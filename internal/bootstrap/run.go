package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/workspace-secretary/secretary-go/config"
	"github.com/workspace-secretary/secretary-go/internal/mail"
)

// RunDeps groups dependencies for running the enabled services.
type RunDeps struct {
	Config      *config.AppConfig
	Services    *ServiceContainer
	MailFactory mail.Factory // optional, see ExecutorDeps
	Logger      *slog.Logger
}

// RunServicesWithShutdown starts all enabled services and blocks until
// a shutdown signal arrives or a service fails, then stops everything
// gracefully. In-flight jobs are run to a terminal status before the
// executor exits.
func RunServicesWithShutdown(deps RunDeps) error {
	if deps.Config == nil || deps.Services == nil {
		return errors.New("config and services are required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	enabled, err := deps.Config.GetEnabledServices()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errCh := make(chan error, len(enabled))

	var httpServer *http.Server
	if enabled[config.ServiceModeHTTP] {
		httpServer = StartHTTPServer(deps.Config.HTTP, deps.Services, logger)
	}

	var executorDone chan struct{}
	if enabled[config.ServiceModeExecutor] {
		executorDone = make(chan struct{})
		go func() {
			defer close(executorDone)
			runErr := RunExecutor(ctx, ExecutorDeps{
				Config:      deps.Config,
				Services:    deps.Services,
				MailFactory: deps.MailFactory,
				Logger:      logger,
			})
			if runErr != nil && !errors.Is(runErr, context.Canceled) {
				errCh <- runErr
			}
		}()
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	var runErr error
	select {
	case <-quit:
		logger.Info("shutting down services...")
	case err := <-errCh:
		logger.Error("service error", "error", err)
		runErr = err
	}
	cancel()

	shutdownTimeout := deps.Config.HTTP.ShutdownTimeout
	ShutdownHTTPServer(context.Background(), httpServer, shutdownTimeout, logger)

	if executorDone != nil {
		select {
		case <-executorDone:
			logger.Info("executor stopped")
		case <-time.After(shutdownTimeout):
			logger.Warn("timeout waiting for executor to stop")
		}
	}

	return runErr
}

package server

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
)

const shutdownGrace = 5 * time.Second

// GracefulShutdown blocks until SIGINT or SIGTERM, then drains the API
// server. In-flight requests get shutdownGrace to finish; a second signal
// forces immediate exit.
func GracefulShutdown(srv *http.Server, logger *zap.Logger, done chan bool) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()
	logger.Info("Signal received, draining API server", zap.Duration("grace", shutdownGrace))

	stop() // restore default handling so a second signal kills the process

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("API server forced to shut down", zap.Error(err))
	}

	logger.Info("API server stopped")
	done <- true
}

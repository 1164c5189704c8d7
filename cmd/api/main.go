package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	"github.com/Notifuse/visualeditor/config"
	"github.com/Notifuse/visualeditor/internal/app"
	"github.com/Notifuse/visualeditor/pkg/logger"
)

// osExit is a variable to allow mocking os.Exit in tests
var osExit = os.Exit

// For testing purposes - allows us to mock the signal channel
var signalNotify = signal.Notify

// NewAppFunc defines the function signature for creating a new app
type NewAppFunc func(cfg *config.Config, opts ...app.AppOption) app.AppInterface

// shutdownTimeout bounds the final autosave and the in-flight requests
const shutdownTimeout = 30 * time.Second

// runServer contains the core server logic, extracted for testability
func runServer(cfg *config.Config, appLogger logger.Logger, newApp NewAppFunc) error {
	appInstance := newApp(cfg, app.WithLogger(appLogger))

	if err := appInstance.Initialize(); err != nil {
		appLogger.WithField("error", err.Error()).Error("Failed to initialize application")
		return err
	}

	shutdown := make(chan os.Signal, 1)
	signalNotify(shutdown, os.Interrupt, syscall.SIGTERM)

	serverError := make(chan error, 1)
	go func() {
		appLogger.Info("Server started successfully")
		serverError <- appInstance.Start()
	}()

	startCtx, cancelStart := context.WithTimeout(context.Background(), 10*time.Second)
	started := appInstance.WaitForServerStart(startCtx)
	cancelStart()
	if !started {
		appLogger.Warn("Server did not report a start within 10s")
	}

	select {
	case err := <-serverError:
		if app.IsServerClosed(err) {
			return nil
		}
		appLogger.WithField("error", err.Error()).Error("Server error")
		return err
	case sig := <-shutdown:
		appLogger.WithField("signal", sig.String()).Info("Shutdown signal received - starting graceful shutdown")

		appInstance.SetShutdownTimeout(shutdownTimeout)
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout+5*time.Second)
		defer cancel()

		if err := appInstance.Shutdown(ctx); err != nil {
			appLogger.WithField("error", err.Error()).Error("Error during graceful shutdown")
			return err
		}

		if err := <-serverError; !app.IsServerClosed(err) {
			appLogger.WithField("error", err.Error()).Error("Server stopped with an error")
			return err
		}

		appLogger.Info("Server shut down gracefully")
		return nil
	}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLogger := logger.NewLoggerWithLevel(cfg.LogLevel)
	appLogger.Info(fmt.Sprintf("Starting visual editor API on %s:%d", cfg.Server.Host, cfg.Server.Port))

	if err := runServer(cfg, appLogger, app.NewApp); err != nil {
		osExit(1)
	}
}

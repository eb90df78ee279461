package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"cdr.dev/slog/v3"
	"github.com/joho/godotenv"

	"authz-service/internal/app"
	"authz-service/internal/config"
	"authz-service/pkg/logger"
)

const (
	envFilePath      = ".env"
	serverAddrPrefix = ":"
)

var shutdownSignals = []os.Signal{
	syscall.SIGINT,
	syscall.SIGTERM,
}

func main() {
	envErr := godotenv.Load(envFilePath)

	cfg, err := config.Load()
	if err != nil {
		logger.New(os.Stderr, "info").Fatal(context.Background(), "failed to load configuration", logger.Error(err))
	}

	log := logger.New(os.Stderr, cfg.Log.Level)
	if envErr != nil {
		log.Debug(context.Background(), ".env file not found, using environment variables")
	}

	ctx, stop := signal.NotifyContext(context.Background(), shutdownSignals...)
	defer stop()

	application, err := app.InitializeService(ctx, cfg, log)
	if err != nil {
		log.Fatal(ctx, "failed to initialize service", logger.Error(err))
	}
	defer application.Close()

	background := make(chan struct{})
	go func() {
		defer close(background)
		application.Service.Run(ctx)
	}()

	serverErr := make(chan error, 1)
	go func() {
		log.Info(ctx, "starting HTTP server",
			slog.F("port", cfg.Server.Port),
			slog.F("grant_table_source", cfg.GrantTable.Source),
			slog.F("fingerprint", application.Service.Engine().Fingerprint()),
		)
		serverErr <- application.Server.Start(serverAddrPrefix + cfg.Server.Port)
	}()

	select {
	case <-ctx.Done():
	case err := <-serverErr:
		if err != nil {
			log.Error(ctx, "server error", logger.Error(err))
		}
		stop()
	}

	log.Info(context.Background(), "shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := application.Server.Shutdown(shutdownCtx); err != nil {
		log.Error(shutdownCtx, "server forced to shutdown", logger.Error(err))
	}
	<-background

	log.Info(context.Background(), "server exited gracefully")
}

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/deppfellow/natours/internal/config"
	"github.com/deppfellow/natours/internal/handler"
	"github.com/deppfellow/natours/internal/lib/render"
	"github.com/deppfellow/natours/internal/logger"
	"github.com/deppfellow/natours/internal/repository"
	"github.com/deppfellow/natours/internal/router"
	"github.com/deppfellow/natours/internal/server"
	"github.com/deppfellow/natours/internal/service"
	"github.com/rs/zerolog"
)

const shutdownTimeout = 30 * time.Second

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	loggerService := logger.NewLoggerService(cfg.Observability)
	log := logger.NewLoggerWithService(cfg.Observability, loggerService)

	code := run(cfg, &log, loggerService)

	loggerService.Shutdown()
	os.Exit(code)
}

// run wires the application and serves until SIGINT or SIGTERM. It returns
// the process exit code.
func run(cfg *config.Config, log *zerolog.Logger, loggerService *logger.LoggerService) int {
	srv, err := server.New(cfg, log, loggerService)
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize server")
		return 1
	}

	repos := repository.NewRepositories(srv)

	services, err := service.NewService(srv, repos)
	if err != nil {
		log.Error().Err(err).Msg("could not create services")
		return 1
	}

	renderer, err := render.New()
	if err != nil {
		log.Error().Err(err).Msg("could not load page templates")
		return 1
	}

	handlers := handler.NewHandlers(srv, services)
	r := router.NewRouter(srv, handlers, services, renderer)

	srv.SetupHTTPServer(r)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- srv.Start()
	}()

	exitCode := 0
	select {
	case err := <-serveErr:
		if err != nil {
			log.Error().Err(err).Msg("server stopped unexpectedly")
			exitCode = 1
		}
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received, draining in-flight requests")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
		return 1
	}

	log.Info().Msg("server exited properly")
	return exitCode
}

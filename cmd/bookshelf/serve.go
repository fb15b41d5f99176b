package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"bookshelf/internal/bookshelf"
	"bookshelf/internal/config"
	"bookshelf/internal/logger"
	"bookshelf/internal/server"
	"bookshelf/internal/telemetry"
	"bookshelf/pkg/eventstore"
)

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the HTTP server",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Load configuration from `FILE`",
			},
			&cli.StringFlag{
				Name:  "port",
				Usage: "Override the listen port",
			},
		},
		Action: serve,
	}
}

func serve(c *cli.Context) error {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if c.IsSet("port") {
		cfg.Server.Port = c.String("port")
	}

	format, _ := logger.ParseLogFormat(cfg.Logging.Format)
	log := logger.New(logger.Config{Level: cfg.Logging.Level, Format: format, Output: os.Stdout})

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Setup(ctx, cfg)
	if err != nil {
		return err
	}

	svc := bookshelf.NewService(bookshelf.NewStore(), eventstore.NewEventStore())
	srv := server.New(cfg, bookshelf.NewHandler(svc), log)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case err = <-errCh:
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if shutdownErr := srv.Shutdown(shutdownCtx); shutdownErr != nil {
		log.Error().Err(shutdownErr).Msg("Server shutdown failed")
	}
	if tracingErr := shutdownTracing(shutdownCtx); tracingErr != nil {
		log.Warn().Err(tracingErr).Msg("Tracer shutdown failed")
	}
	return err
}

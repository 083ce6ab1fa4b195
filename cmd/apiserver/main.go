// Command apiserver serves the MolScope web application.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/turtacn/MolScope/internal/config"
	"github.com/turtacn/MolScope/internal/infrastructure/monitoring/logging"
)

// Injected via ldflags.
var version = "dev"

func main() {
	configPath := flag.String("config", "", "path to configuration file (default: environment only)")
	port := flag.Int("port", 0, "HTTP port (overrides config)")
	flag.Parse()

	cfg, err := config.LoadOrDefault(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "apiserver: %v\n", err)
		os.Exit(1)
	}
	if *port > 0 {
		cfg.Server.Port = *port
	}

	logger, err := logging.NewLogger(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "apiserver: logger: %v\n", err)
		os.Exit(1)
	}
	logging.SetDefault(logger)
	defer func() { _ = logging.Sync(logger) }()

	logger.Info("starting MolScope API server",
		logging.String("version", version),
		logging.String("addr", cfg.Server.Addr()),
		logging.String("session_backend", cfg.Session.Backend))

	a, err := newApp(cfg, logger)
	if err != nil {
		logger.Fatal("startup failed", logging.Err(err))
	}

	if *configPath != "" {
		err := config.Watch(*configPath, a.applyReload, func(err error) {
			a.metrics.ConfigReloadsTotal.WithLabelValues("error").Inc()
			logger.Warn("configuration reload rejected", logging.Err(err))
		})
		if err != nil {
			logger.Warn("configuration watch disabled", logging.Err(err))
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := a.Run(ctx); err != nil {
		logger.Error("server stopped with error", logging.Err(err))
		os.Exit(1)
	}
	logger.Info("server stopped")
}

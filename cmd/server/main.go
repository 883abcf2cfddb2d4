package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"task-petri-flow/internal/api"
	"task-petri-flow/internal/config"
	"task-petri-flow/internal/engine"
	"task-petri-flow/internal/models"
	"task-petri-flow/internal/registry"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "task-petri-flow: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	cfg, err := config.FromFlags("server", args)
	if err != nil {
		return err
	}
	logger := cfg.NewLogger(os.Stderr)
	slog.SetDefault(logger)

	network, err := loadNetwork(cfg.Network)
	if err != nil {
		return err
	}
	logger.Info("network loaded",
		slog.String("network", network.ID),
		slog.Int("places", len(network.Places())),
		slog.Int("transitions", len(network.Transitions())),
	)

	tasks := registry.NewManager()
	metrics := &engine.BasicMetrics{}
	eng, err := engine.NewEngine(network, tasks, cfg.Motion, engine.NewLoggingObserver(logger), metrics)
	if err != nil {
		return err
	}

	server := api.NewServer(eng, tasks, metrics, logger)

	// Set up graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	scheduler := engine.NewScheduler(eng, cfg.Motion.FrameInterval)
	scheduler.Start(ctx)
	defer scheduler.Stop()

	logger.Info("task petri flow server starting")
	if err := server.StartServer(ctx, cfg.Server.Port); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	logger.Info("server stopped")
	return nil
}

// loadNetwork reads the definition file at path, or the built-in network when path is empty
func loadNetwork(path string) (*models.Network, error) {
	if path == "" {
		return models.DefaultNetwork()
	}
	parser, err := models.NewDefinitionParser()
	if err != nil {
		return nil, err
	}
	return parser.ParseFile(path)
}

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/subosito/gotenv"
	"go.uber.org/zap"

	"github.com/docuprep/docverify/internal/config"
	"github.com/docuprep/docverify/internal/container"
	httpserver "github.com/docuprep/docverify/internal/interfaces/http"
	"github.com/docuprep/docverify/pkg/logger"
)

func main() {
	// Load .env if present; real env vars take precedence
	_ = gotenv.Load()

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:      cfg.Logger.Level,
		OutputPath: cfg.Logger.OutputPath,
		Format:     cfg.Logger.Format,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	log.Info("Starting document verification engine",
		zap.String("version", "1.0.0"),
		zap.Int("port", cfg.Server.Port))

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	c, err := container.NewContainer(cfg, log)
	if err != nil {
		log.Fatal("Failed to create container", zap.Error(err))
	}

	if err := c.Start(ctx); err != nil {
		log.Fatal("Failed to start container", zap.Error(err))
	}
	defer func() {
		if err := c.Close(); err != nil {
			log.Error("Container shutdown error", zap.Error(err))
		}
	}()

	services := c.Services()
	server := httpserver.NewServer(
		httpserver.ServerConfig{
			Host:         cfg.Server.Host,
			Port:         cfg.Server.Port,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
		},
		httpserver.Services{
			Document:   services.Document,
			Status:     services.Status,
			Request:    services.Request,
			Suggestion: services.Suggestion,
			Provider:   services.Provider,
		},
		c.Reporter(),
		func() (bool, interface{}) {
			health := c.Health()
			return health.Overall, health
		},
		logger.NewKV(log),
	)

	if err := server.Start(ctx); err != nil {
		log.Error("Server exited with error", zap.Error(err))
		os.Exit(1)
	}

	log.Info("Shutdown complete")
}

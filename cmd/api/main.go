package main

import (
	"log"
	"log/slog"
	"strconv"

	"github.com/joho/godotenv"

	httpadapter "github.com/WiserTogether/api-envelope/internal/adapters/http"
	"github.com/WiserTogether/api-envelope/internal/config"
	"github.com/WiserTogether/api-envelope/internal/pkg/logger"
)

func main() {
	// 1. Environment (.env - опционально, для локальной разработки)
	_ = godotenv.Load()

	// 2. Configuration
	cfg, err := config.Load("configs", "config")
	if err != nil {
		log.Fatal("Failed to load config: ", err)
	}

	// 3. Logger
	logger.Setup(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})

	slog.Info("Starting api-envelope server",
		slog.String("version", cfg.App.Version),
		slog.String("environment", cfg.App.Environment),
	)

	// 4. Router
	router := httpadapter.NewRouter(&httpadapter.RouterConfig{
		Logger:            slog.Default(),
		Version:           cfg.App.Version,
		BuildTime:         cfg.App.BuildTime,
		Environment:       cfg.App.Environment,
		AllowedOrigins:    cfg.CORS.AllowedOrigins,
		EnvelopeSkipPaths: cfg.Envelope.SkipPaths,
	})

	// 5. Server с graceful shutdown
	server := httpadapter.NewServer(&httpadapter.ServerConfig{
		Host:            cfg.Server.Host,
		Port:            strconv.Itoa(cfg.Server.Port),
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		IdleTimeout:     cfg.Server.IdleTimeout,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
		Logger:          slog.Default(),
	}, router)

	if err := server.Run(); err != nil {
		log.Fatal("Server error: ", err)
	}
}

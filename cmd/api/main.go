package main

import (
	"log/slog"
	"os"

	"github.com/launchlift/launchlift/internal/api"
	"github.com/launchlift/launchlift/internal/config"
	"github.com/launchlift/launchlift/internal/domain"
	"github.com/launchlift/launchlift/pkg/database"
	"github.com/launchlift/launchlift/pkg/kafka"
)

func main() {
	// Load configuration
	cfg := config.LoadConfig()

	// Initialize database clients
	db, err := database.NewClients(cfg.Database.URL, cfg.Redis.Addr)
	if err != nil {
		slog.Error("Failed to initialize database clients", "error", err)
		os.Exit(1)
	}
	defer db.DB.Close()
	slog.Info("Connected to databases")

	if err := db.CreateTables(); err != nil {
		slog.Error("Failed to prepare schema", "error", err)
		os.Exit(1)
	}

	// Initialize Kafka producer
	producer, err := kafka.NewProducer(cfg.Kafka.Broker, cfg.Kafka.RetryMax, cfg.Kafka.RetryBackoff)
	if err != nil {
		slog.Error("Failed to create Kafka producer", "error", err)
		os.Exit(1)
	}
	defer producer.Close()
	slog.Info("Connected to Kafka")

	store := domain.NewPostgresStore(db.DB)

	// Create and start server
	server, err := api.NewServer(cfg, db, producer, store)
	if err != nil {
		slog.Error("Failed to create server", "error", err)
		os.Exit(1)
	}
	if err := server.Start(); err != nil {
		slog.Error("Server error", "error", err)
		os.Exit(1)
	}
}

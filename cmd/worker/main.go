package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/launchlift/launchlift/internal/config"
	"github.com/launchlift/launchlift/internal/domain"
	"github.com/launchlift/launchlift/internal/worker"
	"github.com/launchlift/launchlift/pkg/database"
	"github.com/launchlift/launchlift/pkg/kafka"
)

func main() {
	cfg := config.LoadConfig()

	db, err := database.NewClients(cfg.Database.URL, cfg.Redis.Addr)
	if err != nil {
		slog.Error("Failed to initialize database clients", "error", err)
		os.Exit(1)
	}
	defer db.DB.Close()
	slog.Info("Connected to databases")

	consumer, err := kafka.NewConsumer(cfg.Kafka.Broker, cfg.Kafka.Group)
	if err != nil {
		slog.Error("Failed to create Kafka consumer", "error", err)
		os.Exit(1)
	}
	defer consumer.Close()
	slog.Info("Connected to Kafka")

	emailCfg, err := worker.LoadEmailConfig()
	if err != nil {
		slog.Error("Failed to load email configuration", "error", err)
		os.Exit(1)
	}

	store := domain.NewPostgresStore(db.DB)
	w := worker.NewWorker(cfg, db, store, worker.NewSMTPSender(emailCfg), consumer)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		slog.Error("Worker error", "error", err)
		os.Exit(1)
	}
}

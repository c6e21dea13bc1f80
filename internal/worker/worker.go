// Package worker consumes matching-workflow events and turns them into
// notification emails.
package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/IBM/sarama"

	"github.com/launchlift/launchlift/internal/config"
	"github.com/launchlift/launchlift/internal/domain"
	"github.com/launchlift/launchlift/internal/models"
	"github.com/launchlift/launchlift/pkg/database"
)

const (
	deliverySent   = "sent"
	deliveryFailed = "failed"
)

type Worker struct {
	cfg      *config.Config
	db       *database.Clients
	store    domain.Store
	sender   EmailSender
	consumer sarama.ConsumerGroup
	ready    chan bool
}

func NewWorker(cfg *config.Config, db *database.Clients, store domain.Store, sender EmailSender, consumer sarama.ConsumerGroup) *Worker {
	return &Worker{
		cfg:      cfg,
		db:       db,
		store:    store,
		sender:   sender,
		consumer: consumer,
		ready:    make(chan bool),
	}
}

func (w *Worker) Start(ctx context.Context) error {
	topics := []string{w.cfg.Kafka.Topic}
	slog.Info("Starting notification worker", "topics", topics)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		for err := range w.consumer.Errors() {
			slog.Error("Kafka consumer error received", "error", err)
		}
	}()

	go func() {
		for {
			if err := w.consumer.Consume(ctx, topics, w); err != nil {
				slog.Error("Error from consumer.Consume", "error", err)
			}
			if ctx.Err() != nil {
				return
			}
			// Reset the ready channel after a new session is created
			w.ready = make(chan bool)
		}
	}()

	<-w.ready // Wait till the consumer has been set up
	slog.Info("Worker setup complete; consumer ready")

	select {
	case sig := <-sigChan:
		slog.Info("Received shutdown signal", "signal", sig)
	case <-ctx.Done():
		slog.Info("Context cancelled; shutting down worker")
	}
	return nil
}

// Setup is run at the beginning of a new session, before ConsumeClaim.
func (w *Worker) Setup(sarama.ConsumerGroupSession) error {
	close(w.ready)
	return nil
}

// Cleanup is run at the end of a session, once all ConsumeClaim goroutines have exited.
func (w *Worker) Cleanup(sarama.ConsumerGroupSession) error {
	return nil
}

// ConsumeClaim must start a consumer loop of ConsumerGroupClaim's Messages().
func (w *Worker) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for message := range claim.Messages() {
		if err := w.ProcessEvent(session.Context(), message.Value); err != nil {
			slog.Error("Failed to process event", "error", err, "offset", message.Offset)
		}
		session.MarkMessage(message, "")
	}
	return nil
}

// ProcessEvent handles one workflow event with bounded retries and records
// the delivery outcome in Redis.
func (w *Worker) ProcessEvent(ctx context.Context, raw []byte) error {
	var event models.WorkflowEvent
	if err := json.Unmarshal(raw, &event); err != nil {
		return fmt.Errorf("failed to parse event: %w", err)
	}

	var err error
	for attempt := 1; attempt <= w.cfg.Kafka.RetryMax; attempt++ {
		err = w.handle(ctx, event)
		if err == nil {
			break
		}
		slog.Error("Event handling failed", "event_id", event.ID, "type", event.Type, "attempt", attempt, "error", err)
		time.Sleep(w.cfg.Kafka.RetryBackoff)
	}

	status := deliverySent
	if err != nil {
		status = deliveryFailed
	}
	redisKey := deliveryKey(event.ID)
	if redisErr := w.db.Redis.Set(ctx, redisKey, status, 0).Err(); redisErr != nil {
		slog.Error("Failed to record delivery status", "event_id", event.ID, "error", redisErr)
	}
	if err != nil {
		return fmt.Errorf("event %s ultimately failed: %w", event.ID, err)
	}
	slog.Info("Event processed", "event_id", event.ID, "type", event.Type)
	return nil
}

func (w *Worker) handle(ctx context.Context, event models.WorkflowEvent) error {
	switch event.Type {
	case models.EventSendEmail:
		return w.sender.Send(event.Email)
	case models.EventIntroRequested:
		return w.sendIntroEmail(ctx, event)
	case models.EventFounderApproved:
		return w.sendApprovalEmail(ctx, event)
	default:
		slog.Info("Skipping unknown event type", "type", event.Type)
		return nil
	}
}

// sendIntroEmail tells a founder that an investor wants to connect.
func (w *Worker) sendIntroEmail(ctx context.Context, event models.WorkflowEvent) error {
	founder, err := w.store.Founder(ctx, event.FounderID)
	if err != nil {
		return err
	}
	if founder == nil {
		slog.Info("Intro event references unknown founder; skipping", "founder_id", event.FounderID)
		return nil
	}

	fundName := "An investor"
	if investor, err := w.store.Investor(ctx, event.InvestorID); err == nil && investor != nil {
		fundName = investor.FundName
	}

	return w.sender.Send(models.EmailPayload{
		Recipient: founder.Email,
		Subject:   fmt.Sprintf("%s wants an intro to %s", fundName, founder.StartupName),
		Body:      fmt.Sprintf("%s requested an introduction to %s on Launch & Lift. Log in to respond.", fundName, founder.StartupName),
	})
}

// sendApprovalEmail tells a founder their profile went live.
func (w *Worker) sendApprovalEmail(ctx context.Context, event models.WorkflowEvent) error {
	founder, err := w.store.Founder(ctx, event.FounderID)
	if err != nil {
		return err
	}
	if founder == nil {
		slog.Info("Approval event references unknown founder; skipping", "founder_id", event.FounderID)
		return nil
	}

	return w.sender.Send(models.EmailPayload{
		Recipient: founder.Email,
		Subject:   "Your profile is approved",
		Body:      fmt.Sprintf("%s is now visible to matched investors on Launch & Lift.", founder.StartupName),
	})
}

func deliveryKey(eventID string) string {
	return fmt.Sprintf("delivery:%s", eventID)
}

package worker

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"

	"github.com/launchlift/launchlift/internal/config"
	"github.com/launchlift/launchlift/internal/domain"
	"github.com/launchlift/launchlift/internal/models"
	"github.com/launchlift/launchlift/pkg/database"
)

type fakeSender struct {
	sent []models.EmailPayload
	err  error
}

func (f *fakeSender) Send(payload models.EmailPayload) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, payload)
	return nil
}

func setupWorker(t *testing.T) (*Worker, *domain.MemoryStore, *fakeSender, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	assert.NoError(t, err)
	t.Cleanup(mr.Close)

	cfg := &config.Config{
		Kafka: config.KafkaConfig{Topic: "test-topic", RetryMax: 3, RetryBackoff: time.Millisecond},
	}
	clients := &database.Clients{
		Redis: redis.NewClient(&redis.Options{Addr: mr.Addr()}),
	}
	store := domain.NewMemoryStore()
	sender := &fakeSender{}
	return NewWorker(cfg, clients, store, sender, nil), store, sender, mr
}

func seedFounder(t *testing.T, store *domain.MemoryStore) {
	t.Helper()
	assert.NoError(t, store.CreateFounder(context.Background(), models.FounderProfile{
		ID:          "fdr-1",
		Email:       "maya@novapay.io",
		StartupName: "NovaPay",
	}))
	assert.NoError(t, store.CreateInvestor(context.Background(), models.InvestorProfile{
		ID:       "inv-1",
		FundName: "Altitude Capital",
	}))
}

func encode(t *testing.T, event models.WorkflowEvent) []byte {
	t.Helper()
	raw, err := json.Marshal(event)
	assert.NoError(t, err)
	return raw
}

func TestProcessSendEmailEvent(t *testing.T) {
	w, _, sender, mr := setupWorker(t)

	err := w.ProcessEvent(context.Background(), encode(t, models.WorkflowEvent{
		ID:   "evt-1",
		Type: models.EventSendEmail,
		Email: models.EmailPayload{
			Recipient: "maya@novapay.io",
			Subject:   "Your verification code",
			Body:      "123456",
		},
	}))
	assert.NoError(t, err)
	assert.Len(t, sender.sent, 1)
	assert.Equal(t, "maya@novapay.io", sender.sent[0].Recipient)

	status, err := mr.Get("delivery:evt-1")
	assert.NoError(t, err)
	assert.Equal(t, "sent", status)
}

func TestProcessIntroEventComposesEmail(t *testing.T) {
	w, store, sender, _ := setupWorker(t)
	seedFounder(t, store)

	err := w.ProcessEvent(context.Background(), encode(t, models.WorkflowEvent{
		ID:         "evt-2",
		Type:       models.EventIntroRequested,
		InvestorID: "inv-1",
		FounderID:  "fdr-1",
	}))
	assert.NoError(t, err)
	assert.Len(t, sender.sent, 1)
	assert.Equal(t, "maya@novapay.io", sender.sent[0].Recipient)
	assert.Contains(t, sender.sent[0].Subject, "Altitude Capital")
	assert.Contains(t, sender.sent[0].Subject, "NovaPay")
}

func TestProcessIntroEventUnknownInvestorFallsBack(t *testing.T) {
	w, store, sender, _ := setupWorker(t)
	seedFounder(t, store)

	err := w.ProcessEvent(context.Background(), encode(t, models.WorkflowEvent{
		ID:         "evt-3",
		Type:       models.EventIntroRequested,
		InvestorID: "inv-ghost",
		FounderID:  "fdr-1",
	}))
	assert.NoError(t, err)
	assert.Len(t, sender.sent, 1)
	assert.Contains(t, sender.sent[0].Subject, "An investor")
}

func TestProcessIntroEventUnknownFounderSkips(t *testing.T) {
	w, _, sender, mr := setupWorker(t)

	err := w.ProcessEvent(context.Background(), encode(t, models.WorkflowEvent{
		ID:        "evt-4",
		Type:      models.EventIntroRequested,
		FounderID: "fdr-ghost",
	}))
	assert.NoError(t, err)
	assert.Empty(t, sender.sent)

	// skipping still counts as handled
	status, err := mr.Get("delivery:evt-4")
	assert.NoError(t, err)
	assert.Equal(t, "sent", status)
}

func TestProcessApprovalEvent(t *testing.T) {
	w, store, sender, _ := setupWorker(t)
	seedFounder(t, store)

	err := w.ProcessEvent(context.Background(), encode(t, models.WorkflowEvent{
		ID:        "evt-5",
		Type:      models.EventFounderApproved,
		FounderID: "fdr-1",
	}))
	assert.NoError(t, err)
	assert.Len(t, sender.sent, 1)
	assert.Equal(t, "Your profile is approved", sender.sent[0].Subject)
	assert.Contains(t, sender.sent[0].Body, "NovaPay")
}

func TestProcessEventExhaustsRetriesAndRecordsFailure(t *testing.T) {
	w, _, sender, mr := setupWorker(t)
	sender.err = errors.New("smtp unavailable")

	err := w.ProcessEvent(context.Background(), encode(t, models.WorkflowEvent{
		ID:    "evt-6",
		Type:  models.EventSendEmail,
		Email: models.EmailPayload{Recipient: "maya@novapay.io"},
	}))
	assert.Error(t, err)

	status, getErr := mr.Get("delivery:evt-6")
	assert.NoError(t, getErr)
	assert.Equal(t, "failed", status)
}

func TestProcessEventUnknownTypeIsNoOp(t *testing.T) {
	w, _, sender, _ := setupWorker(t)

	err := w.ProcessEvent(context.Background(), encode(t, models.WorkflowEvent{
		ID:   "evt-7",
		Type: "workflow.unknown",
	}))
	assert.NoError(t, err)
	assert.Empty(t, sender.sent)
}

func TestProcessEventRejectsMalformedPayload(t *testing.T) {
	w, _, _, _ := setupWorker(t)

	err := w.ProcessEvent(context.Background(), []byte("{not json"))
	assert.Error(t, err)
}

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/IBM/sarama"
	"github.com/alicebob/miniredis/v2"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"golang.org/x/crypto/bcrypt"

	"github.com/launchlift/launchlift/internal/auth"
	"github.com/launchlift/launchlift/internal/config"
	"github.com/launchlift/launchlift/internal/domain"
	"github.com/launchlift/launchlift/internal/models"
	"github.com/launchlift/launchlift/pkg/database"
)

const testSecret = "test-secret"

// MockProducer simulates Kafka producer for testing
type MockProducer struct {
	sarama.SyncProducer
	messages []*sarama.ProducerMessage
}

func (m *MockProducer) SendMessage(msg *sarama.ProducerMessage) (partition int32, offset int64, err error) {
	m.messages = append(m.messages, msg)
	return 0, 0, nil
}

func (m *MockProducer) Close() error { return nil }

func (m *MockProducer) events(t *testing.T) []models.WorkflowEvent {
	t.Helper()
	out := make([]models.WorkflowEvent, 0, len(m.messages))
	for _, msg := range m.messages {
		raw, err := msg.Value.Encode()
		assert.NoError(t, err)
		var event models.WorkflowEvent
		assert.NoError(t, json.Unmarshal(raw, &event))
		out = append(out, event)
	}
	return out
}

func setupTestServer(t *testing.T) (*Server, *domain.MemoryStore, *MockProducer, sqlmock.Sqlmock) {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	assert.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })

	mr, err := miniredis.Run()
	assert.NoError(t, err)
	t.Cleanup(mr.Close)

	cfg := &config.Config{
		Server: config.ServerConfig{
			MaxRequests:    1000,
			RequestTimeout: time.Minute,
		},
		Kafka:   config.KafkaConfig{Topic: "test-topic"},
		JWT:     config.JWTConfig{Secret: testSecret, Expiration: time.Hour},
		Verify:  config.VerifyConfig{CodeTTL: 10 * time.Minute, ResetTTL: time.Hour},
		Notify:  config.NotifyConfig{Capacity: 4, AutoDismiss: time.Minute, RemovalDelay: time.Millisecond},
		Storage: config.StorageConfig{DeckDir: t.TempDir(), MaxSize: 1 << 20},
	}
	clients := &database.Clients{
		DB:    sqlx.NewDb(mockDB, "sqlmock"),
		Redis: redis.NewClient(&redis.Options{Addr: mr.Addr()}),
	}

	store := domain.NewMemoryStore()
	producer := &MockProducer{}
	server, err := NewServer(cfg, clients, producer, store)
	assert.NoError(t, err)
	t.Cleanup(server.relay.Close)

	return server, store, producer, mock
}

// seedParticipants loads one pending founder and two investors. The
// founder's match scores straddle the default bulk-intro threshold.
func seedParticipants(t *testing.T, store *domain.MemoryStore) {
	t.Helper()
	ctx := context.Background()

	assert.NoError(t, store.CreateInvestor(ctx, models.InvestorProfile{
		ID: "inv-1", UserID: "user-investor", FundName: "Altitude Capital",
	}))
	assert.NoError(t, store.CreateInvestor(ctx, models.InvestorProfile{
		ID: "inv-2", FundName: "Harbor Ridge Ventures",
	}))
	assert.NoError(t, store.CreateFounder(ctx, models.FounderProfile{
		ID:          "fdr-1",
		UserID:      "user-founder",
		StartupName: "NovaPay",
		Sector:      "Fintech",
		Geography:   "Europe",
		Stage:       "Seed",
		Status:      models.FounderStatusPending,
		Matches: []models.Match{
			{InvestorID: "inv-1", Score: 69},
			{InvestorID: "inv-2", Score: 70},
			{InvestorID: "inv-ghost", Score: 85},
		},
	}))
}

func mintToken(t *testing.T, userID string, role models.Role) string {
	t.Helper()
	token, err := auth.GenerateToken(userID, role, []byte(testSecret), time.Hour)
	assert.NoError(t, err)
	return token
}

func doRequest(t *testing.T, s *Server, method, path, token string, body any) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		assert.NoError(t, err)
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequest(method, path, reader)
	assert.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := s.app.Test(req, 5000)
	assert.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, out any) {
	t.Helper()
	defer resp.Body.Close()
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

func TestLoginEndpoint(t *testing.T) {
	server, _, _, mock := setupTestServer(t)

	hash, err := bcrypt.GenerateFromPassword([]byte("correct-horse"), bcrypt.MinCost)
	assert.NoError(t, err)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, email, password_hash, role, name, otp_only, created_at FROM users WHERE email = $1")).
		WithArgs("maya@novapay.io").
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "password_hash", "role", "name", "otp_only", "created_at"}).
			AddRow("user-founder", "maya@novapay.io", string(hash), "founder", "Maya", false, time.Now()))

	resp := doRequest(t, server, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    "maya@novapay.io",
		"password": "correct-horse",
		"role":     "founder",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body LoginResponse
	decodeBody(t, resp, &body)
	assert.NotEmpty(t, body.Token)
	assert.Equal(t, "Bearer", body.TokenType)
	assert.Equal(t, models.RoleFounder, body.Identity.Role)
}

func TestLoginRejectsBadPassword(t *testing.T) {
	server, _, _, mock := setupTestServer(t)

	hash, err := bcrypt.GenerateFromPassword([]byte("correct-horse"), bcrypt.MinCost)
	assert.NoError(t, err)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, email, password_hash, role, name, otp_only, created_at FROM users WHERE email = $1")).
		WithArgs("maya@novapay.io").
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "password_hash", "role", "name", "otp_only", "created_at"}).
			AddRow("user-founder", "maya@novapay.io", string(hash), "founder", "Maya", false, time.Now()))

	resp := doRequest(t, server, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    "maya@novapay.io",
		"password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	var body struct {
		RequiresOTP bool `json:"requires_otp"`
	}
	decodeBody(t, resp, &body)
	assert.False(t, body.RequiresOTP)
}

func TestProtectedRouteWithoutTokenPointsAtLogin(t *testing.T) {
	server, _, _, _ := setupTestServer(t)

	resp := doRequest(t, server, http.MethodGet, "/api/founder/profile", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	var body struct {
		Redirect string `json:"redirect"`
		ReturnTo string `json:"return_to"`
	}
	decodeBody(t, resp, &body)
	assert.Equal(t, "/login", body.Redirect)
	assert.Equal(t, "/api/founder/profile", body.ReturnTo)
}

func TestWrongRoleRedirectsHome(t *testing.T) {
	server, store, _, _ := setupTestServer(t)
	seedParticipants(t, store)

	token := mintToken(t, "user-investor", models.RoleInvestor)
	resp := doRequest(t, server, http.MethodGet, "/api/founder/profile", token, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	var body struct {
		Redirect string `json:"redirect"`
	}
	decodeBody(t, resp, &body)
	assert.Equal(t, "/", body.Redirect)
}

func TestFounderProfileLockedUntilApproved(t *testing.T) {
	server, store, _, _ := setupTestServer(t)
	seedParticipants(t, store)

	founderToken := mintToken(t, "user-founder", models.RoleFounder)
	resp := doRequest(t, server, http.MethodGet, "/api/founder/profile", founderToken, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		MatchesLocked bool                  `json:"matches_locked"`
		Profile       models.FounderProfile `json:"profile"`
	}
	decodeBody(t, resp, &body)
	assert.True(t, body.MatchesLocked)
	assert.Len(t, body.Profile.Matches, 3, "match data is present even while locked")

	adminToken := mintToken(t, "user-admin", models.RoleAdmin)
	resp = doRequest(t, server, http.MethodPost, "/api/admin/founders/fdr-1/approve", adminToken, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = doRequest(t, server, http.MethodGet, "/api/founder/profile", founderToken, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	decodeBody(t, resp, &body)
	assert.False(t, body.MatchesLocked)
}

func TestMarketplaceListingReplace(t *testing.T) {
	server, store, _, _ := setupTestServer(t)
	seedParticipants(t, store)
	token := mintToken(t, "user-founder", models.RoleFounder)

	resp := doRequest(t, server, http.MethodPut, "/api/founder/listing", token, map[string]any{
		"raise_amount": 1_000_000,
		"min_ticket":   25_000,
		"industry":     "Fintech",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = doRequest(t, server, http.MethodPut, "/api/founder/listing", token, map[string]any{
		"raise_amount": 2_500_000,
		"min_ticket":   50_000,
		"industry":     "Fintech",
		"use_of_funds": "Hiring and compliance",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	listing, err := store.MarketplaceListing(context.Background(), "fdr-1")
	assert.NoError(t, err)
	assert.NotNil(t, listing)
	assert.Equal(t, int64(2_500_000), listing.RaiseAmount)
	assert.Equal(t, "Hiring and compliance", listing.UseOfFunds)
	assert.Equal(t, "active", listing.Status)
}

func TestListingRejectsNonPositiveRaise(t *testing.T) {
	server, store, _, _ := setupTestServer(t)
	seedParticipants(t, store)
	token := mintToken(t, "user-founder", models.RoleFounder)

	resp := doRequest(t, server, http.MethodPut, "/api/founder/listing", token, map[string]any{
		"raise_amount": 0,
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	listing, err := store.MarketplaceListing(context.Background(), "fdr-1")
	assert.NoError(t, err)
	assert.Nil(t, listing)
}

func TestRequestIntroIsIdempotent(t *testing.T) {
	server, store, producer, _ := setupTestServer(t)
	seedParticipants(t, store)
	token := mintToken(t, "user-investor", models.RoleInvestor)

	for i := 0; i < 2; i++ {
		resp := doRequest(t, server, http.MethodPost, "/api/investor/interest/fdr-1", token, nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		resp.Body.Close()
	}

	interests, err := store.InterestList(context.Background(), "inv-1")
	assert.NoError(t, err)
	assert.Equal(t, []string{"fdr-1"}, interests)

	events := producer.events(t)
	assert.Len(t, events, 2)
	assert.Equal(t, models.EventIntroRequested, events[0].Type)
	assert.Equal(t, "inv-1", events[0].InvestorID)
	assert.Equal(t, "fdr-1", events[0].FounderID)
}

func TestRequestIntroUnknownFounder(t *testing.T) {
	server, store, producer, _ := setupTestServer(t)
	seedParticipants(t, store)
	token := mintToken(t, "user-investor", models.RoleInvestor)

	resp := doRequest(t, server, http.MethodPost, "/api/investor/interest/fdr-ghost", token, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
	assert.Empty(t, producer.messages)
}

func TestApproveFounderPublishesOnce(t *testing.T) {
	server, store, producer, _ := setupTestServer(t)
	seedParticipants(t, store)
	token := mintToken(t, "user-admin", models.RoleAdmin)

	for i := 0; i < 2; i++ {
		resp := doRequest(t, server, http.MethodPost, "/api/admin/founders/fdr-1/approve", token, nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		resp.Body.Close()
	}

	founder, err := store.Founder(context.Background(), "fdr-1")
	assert.NoError(t, err)
	assert.True(t, founder.Approved())

	events := producer.events(t)
	assert.Len(t, events, 1, "repeat approval is a no-op")
	assert.Equal(t, models.EventFounderApproved, events[0].Type)
}

func TestBulkIntroThresholdInclusive(t *testing.T) {
	server, store, producer, _ := setupTestServer(t)
	seedParticipants(t, store)
	token := mintToken(t, "user-admin", models.RoleAdmin)

	// Scores 69, 70, and an unresolvable 85: default threshold 70 selects
	// exactly the score-70 match.
	resp := doRequest(t, server, http.MethodPost, "/api/admin/founders/fdr-1/bulk-intro", token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Count    int            `json:"count"`
		Selected []models.Match `json:"selected"`
	}
	decodeBody(t, resp, &body)
	assert.Equal(t, 1, body.Count)
	assert.Equal(t, "inv-2", body.Selected[0].InvestorID)
	assert.Len(t, producer.events(t), 1)

	resp = doRequest(t, server, http.MethodPost, "/api/admin/founders/fdr-1/bulk-intro", token, map[string]int{
		"threshold": 60,
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	decodeBody(t, resp, &body)
	assert.Equal(t, 2, body.Count)
}

func TestInvestorFoundersAnnotatesBestScore(t *testing.T) {
	server, store, _, _ := setupTestServer(t)
	seedParticipants(t, store)
	assert.NoError(t, store.UpdateFounderStatus(context.Background(), "fdr-1", models.FounderStatusApproved))
	token := mintToken(t, "user-investor", models.RoleInvestor)

	resp := doRequest(t, server, http.MethodGet, "/api/investor/founders", token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Founders []struct {
			ID             string `json:"id"`
			BestMatchScore int    `json:"best_match_score"`
		} `json:"founders"`
	}
	decodeBody(t, resp, &body)
	assert.Len(t, body.Founders, 1)
	assert.Equal(t, "fdr-1", body.Founders[0].ID)
	// inv-ghost's 85 does not resolve; the best known score wins.
	assert.Equal(t, 70, body.Founders[0].BestMatchScore)
}

func TestInvestorFoundersFilterExcludesMismatches(t *testing.T) {
	server, store, _, _ := setupTestServer(t)
	seedParticipants(t, store)
	assert.NoError(t, store.UpdateFounderStatus(context.Background(), "fdr-1", models.FounderStatusApproved))
	token := mintToken(t, "user-investor", models.RoleInvestor)

	resp := doRequest(t, server, http.MethodGet, "/api/investor/founders?sector=Climate", token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Founders []json.RawMessage `json:"founders"`
	}
	decodeBody(t, resp, &body)
	assert.Empty(t, body.Founders)
}

func TestPublicStartupsListsApprovedOnly(t *testing.T) {
	server, store, _, _ := setupTestServer(t)
	seedParticipants(t, store)

	resp := doRequest(t, server, http.MethodGet, "/api/startups", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Startups []struct {
			ID          string `json:"id"`
			StartupName string `json:"startup_name"`
		} `json:"startups"`
	}
	decodeBody(t, resp, &body)
	assert.Empty(t, body.Startups, "pending founders stay hidden")

	assert.NoError(t, store.UpdateFounderStatus(context.Background(), "fdr-1", models.FounderStatusApproved))
	resp = doRequest(t, server, http.MethodGet, "/api/startups", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	decodeBody(t, resp, &body)
	assert.Len(t, body.Startups, 1)
	assert.Equal(t, "NovaPay", body.Startups[0].StartupName)
}

func TestNotificationsListAndDismiss(t *testing.T) {
	server, store, _, _ := setupTestServer(t)
	seedParticipants(t, store)
	founderToken := mintToken(t, "user-founder", models.RoleFounder)

	resp := doRequest(t, server, http.MethodPut, "/api/founder/listing", founderToken, map[string]any{
		"raise_amount": 1_000_000,
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = doRequest(t, server, http.MethodGet, "/api/notifications", founderToken, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Notifications []struct {
			ID    string `json:"id"`
			Title string `json:"title"`
		} `json:"notifications"`
	}
	decodeBody(t, resp, &body)
	assert.Len(t, body.Notifications, 1)
	assert.Equal(t, "Listing published", body.Notifications[0].Title)

	resp = doRequest(t, server, http.MethodPost, "/api/notifications/"+body.Notifications[0].ID+"/dismiss", founderToken, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp.Body.Close()

	resp = doRequest(t, server, http.MethodGet, "/api/notifications", founderToken, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	decodeBody(t, resp, &body)
	assert.Empty(t, body.Notifications)
}

func TestRecordInvestmentValidation(t *testing.T) {
	server, store, _, _ := setupTestServer(t)
	seedParticipants(t, store)
	token := mintToken(t, "user-admin", models.RoleAdmin)

	resp := doRequest(t, server, http.MethodPost, "/api/admin/investments", token, map[string]any{
		"investor_id": "inv-1",
		"amount":      100_000,
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	resp = doRequest(t, server, http.MethodPost, "/api/admin/investments", token, map[string]any{
		"investor_id": "inv-1",
		"founder_id":  "fdr-1",
		"amount":      100_000,
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	entries, err := store.Portfolio(context.Background(), "inv-1")
	assert.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestSuccessFeeRequestReplaces(t *testing.T) {
	server, store, _, _ := setupTestServer(t)
	seedParticipants(t, store)
	token := mintToken(t, "user-founder", models.RoleFounder)

	resp := doRequest(t, server, http.MethodPost, "/api/founder/success-fee", token, map[string]any{
		"round_label":   "Seed extension",
		"target_amount": 500_000,
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = doRequest(t, server, http.MethodPost, "/api/founder/success-fee", token, map[string]any{
		"round_label":   "Series A",
		"target_amount": 4_000_000,
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	req, err := store.SuccessFeeRequest(context.Background(), "fdr-1")
	assert.NoError(t, err)
	assert.NotNil(t, req)
	assert.Equal(t, "Series A", req.RoundLabel)
	assert.Equal(t, int64(4_000_000), req.TargetAmount)
}

func TestSaveBenchmarkNotesEndpoint(t *testing.T) {
	server, store, _, _ := setupTestServer(t)
	seedParticipants(t, store)
	token := mintToken(t, "user-founder", models.RoleFounder)

	resp := doRequest(t, server, http.MethodPut, "/api/founder/benchmarks/notes", token, map[string]any{
		"notes": map[string]string{"bm-growth": "Strong cohort retention"},
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	founder, err := store.Founder(context.Background(), "fdr-1")
	assert.NoError(t, err)
	assert.Equal(t, map[string]string{"bm-growth": "Strong cohort retention"}, founder.BenchmarkNotes)
}

func TestUploadDeckRejectsBadBase64(t *testing.T) {
	server, store, _, _ := setupTestServer(t)
	seedParticipants(t, store)
	token := mintToken(t, "user-founder", models.RoleFounder)

	resp := doRequest(t, server, http.MethodPost, "/api/founder/deck", token, map[string]string{
		"deck": "%%%not-base64%%%",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	resp = doRequest(t, server, http.MethodPost, "/api/founder/deck", token, map[string]string{
		"deck": "cGl0Y2ggZGVjayBjb250ZW50",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		DeckURL string `json:"deck_url"`
	}
	decodeBody(t, resp, &body)
	assert.NotEmpty(t, body.DeckURL)
}

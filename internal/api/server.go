package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/IBM/sarama"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	jwtware "github.com/gofiber/jwt/v3"
	"github.com/google/uuid"

	"github.com/launchlift/launchlift/internal/auth"
	"github.com/launchlift/launchlift/internal/config"
	"github.com/launchlift/launchlift/internal/content"
	"github.com/launchlift/launchlift/internal/domain"
	"github.com/launchlift/launchlift/internal/guard"
	"github.com/launchlift/launchlift/internal/models"
	"github.com/launchlift/launchlift/internal/notify"
	"github.com/launchlift/launchlift/internal/storage"
	"github.com/launchlift/launchlift/pkg/database"
)

type Server struct {
	app      *fiber.App
	cfg      *config.Config
	db       *database.Clients
	producer sarama.SyncProducer
	store    domain.Store
	authn    *auth.Service
	relay    *notify.Relay
	content  *content.Client
	decks    storage.Storage
}

func NewServer(cfg *config.Config, db *database.Clients, producer sarama.SyncProducer, store domain.Store) (*Server, error) {
	deckStorage, err := storage.NewLocalStorage(cfg.Storage.DeckDir, cfg.Storage.MaxSize)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize deck storage: %w", err)
	}

	app := fiber.New()

	// Middleware
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${ip} ${method} ${path} ${status}\n",
	}))
	app.Use(limiter.New(limiter.Config{
		Max:        cfg.Server.MaxRequests,
		Expiration: cfg.Server.RequestTimeout,
	}))

	server := &Server{
		app:      app,
		cfg:      cfg,
		db:       db,
		producer: producer,
		store:    store,
		authn:    auth.NewService(db, producer, cfg),
		relay:    notify.NewRelay(cfg.Notify.Capacity, cfg.Notify.AutoDismiss, cfg.Notify.RemovalDelay),
		content:  content.NewClient(cfg.Content.PortfolioURL),
		decks:    deckStorage,
	}

	server.setupRoutes()

	return server, nil
}

func (s *Server) setupRoutes() {
	api := s.app.Group("/api")

	// Public routes
	api.Post("/auth/login", s.handleLogin)
	api.Post("/auth/signup", s.handleSignup)
	api.Post("/auth/verify/send", s.handleSendVerification)
	api.Post("/auth/verify/confirm", s.handleVerifyCode)
	api.Post("/auth/password/reset-request", s.handlePasswordResetRequest)
	api.Post("/auth/password/reset", s.handlePasswordReset)
	api.Get("/portfolio", s.handlePublicPortfolio)
	api.Get("/startups", s.handlePublicStartups)

	// Protected routes. A missing or invalid token is an authentication
	// failure and points at the login view, preserving the requested
	// location.
	protected := api.Use(jwtware.New(jwtware.Config{
		SigningKey: []byte(s.cfg.JWT.Secret),
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error":     "authentication required",
				"redirect":  guard.LoginPath,
				"return_to": c.OriginalURL(),
			})
		},
	}))

	protected.Get("/notifications", s.handleListNotifications)
	protected.Post("/notifications/:id/dismiss", s.handleDismissNotification)
	protected.Get("/auth/profile", s.handleProfile)

	founder := protected.Group("/founder", guard.RequireRoles(models.RoleFounder))
	founder.Get("/profile", s.handleFounderProfile)
	founder.Put("/benchmarks/notes", s.handleSaveBenchmarkNotes)
	founder.Put("/listing", s.handleSetListing)
	founder.Post("/success-fee", s.handleSuccessFeeRequest)
	founder.Post("/deck", s.handleUploadDeck)

	investor := protected.Group("/investor", guard.RequireRoles(models.RoleInvestor))
	investor.Get("/founders", s.handleInvestorFounders)
	investor.Post("/interest/:founderID", s.handleRequestIntro)
	investor.Get("/interest", s.handleInterestList)
	investor.Get("/portfolio", s.handleInvestorPortfolio)

	admin := protected.Group("/admin", guard.RequireRoles(models.RoleAdmin))
	admin.Get("/founders", s.handleAdminFounders)
	admin.Post("/founders/:id/approve", s.handleApproveFounder)
	admin.Post("/founders/:id/bulk-intro", s.handleBulkIntro)
	admin.Post("/investments", s.handleRecordInvestment)
}

func (s *Server) Start() error {
	return s.app.Listen(s.cfg.Server.Port)
}

// publishEvent sends a workflow event to Kafka. The matching workflow is
// fire-and-forget from the caller's point of view; failures are logged and
// surfaced through the relay, never as a request error.
func (s *Server) publishEvent(event models.WorkflowEvent) {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}
	eventBytes, _ := json.Marshal(event)
	msg := &sarama.ProducerMessage{
		Topic: s.cfg.Kafka.Topic,
		Value: sarama.StringEncoder(eventBytes),
	}
	if _, _, err := s.producer.SendMessage(msg); err != nil {
		slog.Error("Failed to publish workflow event", "type", event.Type, "error", err)
		s.relay.Notify(notify.KindInfo, "Delivery delayed", "We could not queue the notification; it will not be retried.")
	}
}

// handlePublicPortfolio proxies the content collaborator's portfolio.
func (s *Server) handlePublicPortfolio(c *fiber.Ctx) error {
	items, err := s.content.FetchPortfolio(c.Context())
	if err != nil {
		slog.Error("Error fetching portfolio", "error", err)
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error": "Failed to fetch portfolio",
		})
	}
	return c.JSON(fiber.Map{"items": items})
}

// handlePublicStartups lists approved founders as the marketing teaser view.
func (s *Server) handlePublicStartups(c *fiber.Ctx) error {
	founders, err := s.store.FilterFounders(c.Context(), domain.FounderFilter{})
	if err != nil {
		slog.Error("Error fetching startups", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch startups",
		})
	}

	type teaser struct {
		ID          string `json:"id"`
		StartupName string `json:"startup_name"`
		Headline    string `json:"headline"`
		Sector      string `json:"sector"`
		Stage       string `json:"stage"`
	}
	teasers := make([]teaser, 0, len(founders))
	for _, f := range founders {
		teasers = append(teasers, teaser{
			ID:          f.ID,
			StartupName: f.StartupName,
			Headline:    f.Headline,
			Sector:      f.Sector,
			Stage:       f.Stage,
		})
	}
	return c.JSON(fiber.Map{"startups": teasers})
}

func (s *Server) handleListNotifications(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"notifications": s.relay.Active()})
}

func (s *Server) handleDismissNotification(c *fiber.Ctx) error {
	s.relay.Dismiss(c.Params("id"))
	return c.SendStatus(fiber.StatusNoContent)
}

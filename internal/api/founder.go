package api

import (
	"encoding/base64"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	jwtv4 "github.com/golang-jwt/jwt/v4"

	"github.com/launchlift/launchlift/internal/guard"
	"github.com/launchlift/launchlift/internal/models"
	"github.com/launchlift/launchlift/internal/notify"
)

func rawToken(c *fiber.Ctx) string {
	if token, ok := c.Locals("user").(*jwtv4.Token); ok && token != nil {
		return token.Raw
	}
	return ""
}

// founderForRequest resolves the authenticated principal to their founder
// profile. A nil return means the response has already been written.
func (s *Server) founderForRequest(c *fiber.Ctx) *models.FounderProfile {
	principal := guard.Principal(c)
	if principal == nil {
		c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error":    "authentication required",
			"redirect": guard.LoginPath,
		})
		return nil
	}

	founder, err := s.store.FounderByUserID(c.Context(), principal.ID)
	if err != nil {
		slog.Error("Error fetching founder profile", "user_id", principal.ID, "error", err)
		c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch founder profile",
		})
		return nil
	}
	if founder == nil {
		c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Founder profile not found",
		})
		return nil
	}
	return founder
}

// handleFounderProfile returns the founder dashboard payload. Match data is
// always present; matches_locked tells the client to render the lock
// indicator until the profile is approved.
func (s *Server) handleFounderProfile(c *fiber.Ctx) error {
	founder := s.founderForRequest(c)
	if founder == nil {
		return nil
	}

	listing, err := s.store.MarketplaceListing(c.Context(), founder.ID)
	if err != nil {
		slog.Error("Error fetching listing", "founder_id", founder.ID, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch founder profile",
		})
	}
	feeRequest, err := s.store.SuccessFeeRequest(c.Context(), founder.ID)
	if err != nil {
		slog.Error("Error fetching success-fee request", "founder_id", founder.ID, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch founder profile",
		})
	}

	return c.JSON(fiber.Map{
		"profile":             founder,
		"matches_locked":      !founder.Approved(),
		"marketplace_listing": listing,
		"success_fee_request": feeRequest,
	})
}

// handleSaveBenchmarkNotes replaces the founder's entire benchmark note
// map; the client sends the already-merged map.
func (s *Server) handleSaveBenchmarkNotes(c *fiber.Ctx) error {
	founder := s.founderForRequest(c)
	if founder == nil {
		return nil
	}

	var req struct {
		Notes map[string]string `json:"notes"`
	}
	if err := c.BodyParser(&req); err != nil || req.Notes == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Notes map is required",
		})
	}

	if err := s.store.SaveBenchmarkNotes(c.Context(), founder.ID, req.Notes); err != nil {
		slog.Error("Error saving benchmark notes", "founder_id", founder.ID, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to save notes",
		})
	}

	s.relay.Notify(notify.KindSuccess, "Notes saved", "Your benchmark notes were updated.")
	return c.JSON(fiber.Map{"saved": true})
}

// handleSetListing replaces the founder's marketplace listing. A storage
// failure is surfaced to the caller; the stored copy is never left partial.
func (s *Server) handleSetListing(c *fiber.Ctx) error {
	founder := s.founderForRequest(c)
	if founder == nil {
		return nil
	}

	var listing models.MarketplaceListing
	if err := c.BodyParser(&listing); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if listing.RaiseAmount <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Raise amount must be positive",
		})
	}
	listing.FounderID = founder.ID
	if listing.Status == "" {
		listing.Status = "active"
	}

	if err := s.store.SetMarketplaceListing(c.Context(), listing); err != nil {
		slog.Error("Error saving listing", "founder_id", founder.ID, "error", err)
		s.relay.Notify(notify.KindInfo, "Listing not saved", "We could not save your listing. Please retry.")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to save listing",
		})
	}

	s.relay.Notify(notify.KindSuccess, "Listing published", "Your marketplace listing is live.")
	return c.JSON(fiber.Map{"saved": true})
}

// handleSuccessFeeRequest replaces the founder's latest success-fee request.
func (s *Server) handleSuccessFeeRequest(c *fiber.Ctx) error {
	founder := s.founderForRequest(c)
	if founder == nil {
		return nil
	}

	var req models.SuccessFeeRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if req.TargetAmount <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Target amount must be positive",
		})
	}
	req.FounderID = founder.ID

	if err := s.store.RecordSuccessFeeRequest(c.Context(), req); err != nil {
		slog.Error("Error recording success-fee request", "founder_id", founder.ID, "error", err)
		s.relay.Notify(notify.KindInfo, "Request not saved", "We could not save your request. Please retry.")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to record request",
		})
	}

	s.relay.Notify(notify.KindSuccess, "Request received", "Your success-fee request was recorded.")
	return c.JSON(fiber.Map{"saved": true})
}

// handleUploadDeck stores a base64-encoded pitch deck and returns its path.
func (s *Server) handleUploadDeck(c *fiber.Ctx) error {
	founder := s.founderForRequest(c)
	if founder == nil {
		return nil
	}

	var req struct {
		Deck string `json:"deck"`
	}
	if err := c.BodyParser(&req); err != nil || req.Deck == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Deck data is required",
		})
	}

	data, err := base64.StdEncoding.DecodeString(req.Deck)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid base64-encoded deck data",
		})
	}

	path, err := s.decks.StoreDeck(c.Context(), founder.ID, data)
	if err != nil {
		slog.Error("Error storing deck", "founder_id", founder.ID, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to store deck",
		})
	}

	s.relay.Notify(notify.KindSuccess, "Deck uploaded", "Your pitch deck was stored.")
	return c.JSON(fiber.Map{"deck_url": path})
}

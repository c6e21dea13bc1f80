package api

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/launchlift/launchlift/internal/domain"
	"github.com/launchlift/launchlift/internal/guard"
	"github.com/launchlift/launchlift/internal/models"
	"github.com/launchlift/launchlift/internal/notify"
)

// investorForRequest resolves the authenticated principal to their
// investor profile. A nil return means the response was already written.
func (s *Server) investorForRequest(c *fiber.Ctx) *models.InvestorProfile {
	principal := guard.Principal(c)
	if principal == nil {
		c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error":    "authentication required",
			"redirect": guard.LoginPath,
		})
		return nil
	}

	investor, err := s.investorByUserID(c, principal.ID)
	if err != nil {
		slog.Error("Error fetching investor profile", "user_id", principal.ID, "error", err)
		c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch investor profile",
		})
		return nil
	}
	if investor == nil {
		c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Investor profile not found",
		})
		return nil
	}
	return investor
}

func (s *Server) investorByUserID(c *fiber.Ctx, userID string) (*models.InvestorProfile, error) {
	investors, err := s.store.Investors(c.Context())
	if err != nil {
		return nil, err
	}
	for i := range investors {
		if investors[i].UserID == userID {
			return &investors[i], nil
		}
	}
	return nil, nil
}

// handleInvestorFounders lists approved founders through the three-way
// stage/sector/geography filter, annotated with each founder's best match
// score for the dashboard sort.
func (s *Server) handleInvestorFounders(c *fiber.Ctx) error {
	filter := domain.FounderFilter{
		Stage:     c.Query("stage", domain.FilterAll),
		Sector:    c.Query("sector", domain.FilterAll),
		Geography: c.Query("geography", domain.FilterAll),
	}

	founders, err := s.store.FilterFounders(c.Context(), filter)
	if err != nil {
		slog.Error("Error filtering founders", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch founders",
		})
	}

	investors, err := s.store.Investors(c.Context())
	if err != nil {
		slog.Error("Error fetching investors", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch founders",
		})
	}
	known := domain.KnownInvestors(investors)

	type listed struct {
		models.FounderProfile
		BestMatchScore int `json:"best_match_score"`
	}
	items := make([]listed, 0, len(founders))
	for _, f := range founders {
		items = append(items, listed{FounderProfile: f, BestMatchScore: domain.BestMatchScore(f, known)})
	}
	return c.JSON(fiber.Map{"founders": items})
}

// handleRequestIntro records interest idempotently and kicks off the intro
// notification workflow.
func (s *Server) handleRequestIntro(c *fiber.Ctx) error {
	investor := s.investorForRequest(c)
	if investor == nil {
		return nil
	}

	founderID := c.Params("founderID")
	founder, err := s.store.Founder(c.Context(), founderID)
	if err != nil {
		slog.Error("Error fetching founder", "founder_id", founderID, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to request intro",
		})
	}
	if founder == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Founder not found",
		})
	}

	if err := s.store.AddInvestorInterest(c.Context(), investor.ID, founderID); err != nil {
		slog.Error("Error recording interest", "investor_id", investor.ID, "founder_id", founderID, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to request intro",
		})
	}

	s.publishEvent(models.WorkflowEvent{
		Type:       models.EventIntroRequested,
		InvestorID: investor.ID,
		FounderID:  founderID,
	})
	s.relay.Notify(notify.KindSuccess, "Intro sent", "We let "+founder.StartupName+" know you want to connect.")
	return c.JSON(fiber.Map{"requested": true})
}

func (s *Server) handleInterestList(c *fiber.Ctx) error {
	investor := s.investorForRequest(c)
	if investor == nil {
		return nil
	}

	founderIDs, err := s.store.InterestList(c.Context(), investor.ID)
	if err != nil {
		slog.Error("Error fetching interest list", "investor_id", investor.ID, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch interest list",
		})
	}
	return c.JSON(fiber.Map{"founder_ids": founderIDs})
}

func (s *Server) handleInvestorPortfolio(c *fiber.Ctx) error {
	investor := s.investorForRequest(c)
	if investor == nil {
		return nil
	}

	entries, err := s.store.Portfolio(c.Context(), investor.ID)
	if err != nil {
		slog.Error("Error fetching portfolio", "investor_id", investor.ID, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch portfolio",
		})
	}
	return c.JSON(fiber.Map{"investments": entries})
}

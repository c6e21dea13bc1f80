package api

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/launchlift/launchlift/internal/domain"
	"github.com/launchlift/launchlift/internal/models"
	"github.com/launchlift/launchlift/internal/notify"
)

// defaultBulkIntroThreshold is the inclusive match-score cutoff for the
// admin bulk-intro action.
const defaultBulkIntroThreshold = 70

func (s *Server) handleAdminFounders(c *fiber.Ctx) error {
	founders, err := s.store.Founders(c.Context())
	if err != nil {
		slog.Error("Error fetching founders", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch founders",
		})
	}
	return c.JSON(fiber.Map{"founders": founders})
}

// handleApproveFounder performs the one-way pending -> approved transition.
// Approving an already-approved founder is a safe no-op.
func (s *Server) handleApproveFounder(c *fiber.Ctx) error {
	founderID := c.Params("id")
	founder, err := s.store.Founder(c.Context(), founderID)
	if err != nil {
		slog.Error("Error fetching founder", "founder_id", founderID, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to approve founder",
		})
	}
	if founder == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Founder not found",
		})
	}

	alreadyApproved := founder.Approved()
	if err := s.store.UpdateFounderStatus(c.Context(), founderID, models.FounderStatusApproved); err != nil {
		slog.Error("Error approving founder", "founder_id", founderID, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to approve founder",
		})
	}

	if !alreadyApproved {
		s.publishEvent(models.WorkflowEvent{
			Type:      models.EventFounderApproved,
			FounderID: founderID,
		})
		s.relay.Notify(notify.KindSuccess, "Founder approved", founder.StartupName+" is now visible to investors.")
	}
	return c.JSON(fiber.Map{"status": models.FounderStatusApproved})
}

// handleBulkIntro selects every investor whose match score for the founder
// is at or above the threshold (inclusive) and queues an intro event for
// each. The selection is recomputed from current state on every call.
func (s *Server) handleBulkIntro(c *fiber.Ctx) error {
	founderID := c.Params("id")
	var req struct {
		Threshold *int `json:"threshold"`
	}
	if err := c.BodyParser(&req); err != nil && len(c.Body()) > 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	threshold := defaultBulkIntroThreshold
	if req.Threshold != nil {
		threshold = *req.Threshold
	}

	founder, err := s.store.Founder(c.Context(), founderID)
	if err != nil {
		slog.Error("Error fetching founder", "founder_id", founderID, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to run bulk intro",
		})
	}
	if founder == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Founder not found",
		})
	}

	investors, err := s.store.Investors(c.Context())
	if err != nil {
		slog.Error("Error fetching investors", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to run bulk intro",
		})
	}

	selected := domain.MatchesScoringAtLeast(*founder, domain.KnownInvestors(investors), threshold)
	for _, m := range selected {
		s.publishEvent(models.WorkflowEvent{
			Type:       models.EventIntroRequested,
			InvestorID: m.InvestorID,
			FounderID:  founderID,
		})
	}

	s.relay.Notify(notify.KindSuccess, "Intros queued",
		founder.StartupName+" was introduced to the selected investors.")
	return c.JSON(fiber.Map{"selected": selected, "count": len(selected)})
}

// handleRecordInvestment is the back-office action creating portfolio
// relations; repeats for the same pair replace the existing record.
func (s *Server) handleRecordInvestment(c *fiber.Ctx) error {
	var rel models.PortfolioRelation
	if err := c.BodyParser(&rel); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if rel.InvestorID == "" || rel.FounderID == "" || rel.Amount <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Investor, founder, and a positive amount are required",
		})
	}

	if err := s.store.RecordInvestment(c.Context(), rel); err != nil {
		slog.Error("Error recording investment", "investor_id", rel.InvestorID, "founder_id", rel.FounderID, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to record investment",
		})
	}

	s.relay.Notify(notify.KindSuccess, "Investment recorded", "The portfolio was updated.")
	return c.JSON(fiber.Map{"recorded": true})
}

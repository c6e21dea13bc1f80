package domain

import (
	"context"
	"time"

	"github.com/launchlift/launchlift/internal/models"
)

// Seed loads demo founders and investors into a store. Match scores and
// AI summaries are opaque, externally supplied values.
func Seed(ctx context.Context, store Store) error {
	investors := []models.InvestorProfile{
		{
			ID:         "inv-altitude",
			FundName:   "Altitude Capital",
			Thesis:     "Pre-seed and seed B2B SaaS with early revenue signal.",
			StageFocus: []string{"Pre-Seed", "Seed"},
		},
		{
			ID:         "inv-harbor",
			FundName:   "Harbor Ridge Ventures",
			Thesis:     "Fintech infrastructure across emerging markets.",
			StageFocus: []string{"Seed", "Series A"},
		},
		{
			ID:         "inv-meridian",
			FundName:   "Meridian Growth",
			Thesis:     "Climate and energy transition, Series A onwards.",
			StageFocus: []string{"Series A"},
		},
	}
	for _, inv := range investors {
		if err := store.CreateInvestor(ctx, inv); err != nil {
			return err
		}
	}

	founders := []models.FounderProfile{
		{
			ID:             "fdr-novapay",
			Email:          "maya@novapay.io",
			StartupName:    "NovaPay",
			Headline:       "Cross-border payroll for distributed teams",
			Sector:         "Fintech",
			Geography:      "Europe",
			Stage:          "Seed",
			TargetRaise:    2_000_000,
			Traction:       "140 paying customers, 18% MoM growth",
			TeamSize:       9,
			RevenueRunRate: 480_000,
			Status:         models.FounderStatusApproved,
			ReadinessScores: []models.ReadinessScore{
				{Label: "Team", Score: 82},
				{Label: "Market", Score: 74},
				{Label: "Traction", Score: 68},
			},
			Benchmarks: []models.BenchmarkRow{
				{ID: "bm-growth", Metric: "MoM growth", IndustryStandard: "12%", StartupValue: "18%"},
				{ID: "bm-burn", Metric: "Burn multiple", IndustryStandard: "2.0", StartupValue: "1.6"},
			},
			AISummary: "Strong early traction in a crowded segment; differentiated by compliance tooling.",
			Matches: []models.Match{
				{InvestorID: "inv-harbor", Score: 85},
				{InvestorID: "inv-altitude", Score: 70},
				{InvestorID: "inv-meridian", Score: 41},
			},
			CreatedAt: time.Date(2025, 11, 3, 0, 0, 0, 0, time.UTC),
		},
		{
			ID:             "fdr-gridloop",
			Email:          "sam@gridloop.energy",
			StartupName:    "GridLoop",
			Headline:       "Battery orchestration for commercial solar",
			Sector:         "Climate",
			Geography:      "North America",
			Stage:          "Series A",
			TargetRaise:    8_000_000,
			Traction:       "11 utility pilots, 2 converted to contracts",
			TeamSize:       22,
			RevenueRunRate: 1_900_000,
			Status:         models.FounderStatusPending,
			ReadinessScores: []models.ReadinessScore{
				{Label: "Team", Score: 77},
				{Label: "Market", Score: 88},
				{Label: "Traction", Score: 61},
			},
			Benchmarks: []models.BenchmarkRow{
				{ID: "bm-pilot", Metric: "Pilot conversion", IndustryStandard: "25%", StartupValue: "18%"},
			},
			AISummary: "Large market with regulatory tailwinds; conversion rate below peer median.",
			Matches: []models.Match{
				{InvestorID: "inv-meridian", Score: 91},
				{InvestorID: "inv-altitude", Score: 39},
			},
			CreatedAt: time.Date(2025, 12, 14, 0, 0, 0, 0, time.UTC),
		},
	}
	for _, f := range founders {
		if err := store.CreateFounder(ctx, f); err != nil {
			return err
		}
	}
	return nil
}

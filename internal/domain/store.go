// Package domain is the single source of truth for founders, investors,
// interest/portfolio relations, and per-founder extras. All reads are
// derived from current state; nothing is cached.
package domain

import (
	"context"

	"github.com/launchlift/launchlift/internal/models"
)

// FilterAll is the "no filter" value for any filter dimension.
const FilterAll = "All"

// FounderFilter is the investor dashboard's three-way AND predicate. Empty
// or FilterAll on any dimension disables that dimension.
type FounderFilter struct {
	Stage     string
	Sector    string
	Geography string
}

func (f FounderFilter) matches(p models.FounderProfile) bool {
	return dimensionMatches(f.Stage, p.Stage) &&
		dimensionMatches(f.Sector, p.Sector) &&
		dimensionMatches(f.Geography, p.Geography)
}

func dimensionMatches(want, got string) bool {
	return want == "" || want == FilterAll || want == got
}

// Store is the domain collection contract. Lookups for unknown ids return
// nil, not an error; mutations on unknown ids are no-ops. Errors are
// reserved for genuine storage failures.
type Store interface {
	CreateFounder(ctx context.Context, f models.FounderProfile) error
	Founder(ctx context.Context, id string) (*models.FounderProfile, error)
	FounderByUserID(ctx context.Context, userID string) (*models.FounderProfile, error)
	Founders(ctx context.Context) ([]models.FounderProfile, error)
	FilterFounders(ctx context.Context, filter FounderFilter) ([]models.FounderProfile, error)
	UpdateFounderStatus(ctx context.Context, id, status string) error
	SaveBenchmarkNotes(ctx context.Context, id string, notes map[string]string) error

	CreateInvestor(ctx context.Context, inv models.InvestorProfile) error
	Investor(ctx context.Context, id string) (*models.InvestorProfile, error)
	Investors(ctx context.Context) ([]models.InvestorProfile, error)

	AddInvestorInterest(ctx context.Context, investorID, founderID string) error
	InterestList(ctx context.Context, investorID string) ([]string, error)

	RecordInvestment(ctx context.Context, rel models.PortfolioRelation) error
	Portfolio(ctx context.Context, investorID string) ([]models.PortfolioRelation, error)

	SetMarketplaceListing(ctx context.Context, listing models.MarketplaceListing) error
	MarketplaceListing(ctx context.Context, founderID string) (*models.MarketplaceListing, error)
	RecordSuccessFeeRequest(ctx context.Context, req models.SuccessFeeRequest) error
	SuccessFeeRequest(ctx context.Context, founderID string) (*models.SuccessFeeRequest, error)
}

// BestMatchScore returns the highest match score among matches whose
// investor resolves in known. Defaults to 0 when nothing resolves.
func BestMatchScore(f models.FounderProfile, known map[string]bool) int {
	best := 0
	for _, m := range f.Matches {
		if known[m.InvestorID] && m.Score > best {
			best = m.Score
		}
	}
	return best
}

// MatchesScoringAtLeast selects matches with a resolvable investor scoring
// at or above threshold (inclusive). Recomputed from current state on
// every call.
func MatchesScoringAtLeast(f models.FounderProfile, known map[string]bool, threshold int) []models.Match {
	var selected []models.Match
	for _, m := range f.Matches {
		if known[m.InvestorID] && m.Score >= threshold {
			selected = append(selected, m)
		}
	}
	return selected
}

// KnownInvestors builds the resolution set match computations consult.
func KnownInvestors(investors []models.InvestorProfile) map[string]bool {
	known := make(map[string]bool, len(investors))
	for _, inv := range investors {
		known[inv.ID] = true
	}
	return known
}

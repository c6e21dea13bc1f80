package domain

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/launchlift/launchlift/internal/models"
)

// MemoryStore is the in-process Store used by tests and demo mode. Each
// instance is isolated; construct one per test case.
type MemoryStore struct {
	mu        sync.RWMutex
	founders  map[string]models.FounderProfile
	investors map[string]models.InvestorProfile
	interests map[string][]string // investor id -> founder ids, insertion order
	portfolio map[string][]models.PortfolioRelation
	listings  map[string]models.MarketplaceListing
	feeReqs   map[string]models.SuccessFeeRequest
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		founders:  make(map[string]models.FounderProfile),
		investors: make(map[string]models.InvestorProfile),
		interests: make(map[string][]string),
		portfolio: make(map[string][]models.PortfolioRelation),
		listings:  make(map[string]models.MarketplaceListing),
		feeReqs:   make(map[string]models.SuccessFeeRequest),
	}
}

func (s *MemoryStore) CreateFounder(ctx context.Context, f models.FounderProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if f.Status == "" {
		f.Status = models.FounderStatusPending
	}
	s.founders[f.ID] = f
	return nil
}

func (s *MemoryStore) Founder(ctx context.Context, id string) (*models.FounderProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if f, ok := s.founders[id]; ok {
		return &f, nil
	}
	return nil, nil
}

func (s *MemoryStore) FounderByUserID(ctx context.Context, userID string) (*models.FounderProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, f := range s.founders {
		if f.UserID == userID {
			return &f, nil
		}
	}
	return nil, nil
}

func (s *MemoryStore) Founders(ctx context.Context) ([]models.FounderProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	founders := make([]models.FounderProfile, 0, len(s.founders))
	for _, f := range s.founders {
		founders = append(founders, f)
	}
	sort.Slice(founders, func(i, j int) bool {
		if founders[i].CreatedAt.Equal(founders[j].CreatedAt) {
			return founders[i].ID < founders[j].ID
		}
		return founders[i].CreatedAt.Before(founders[j].CreatedAt)
	})
	return founders, nil
}

// FilterFounders returns approved founders matching the three-way AND
// predicate, recomputed from current state.
func (s *MemoryStore) FilterFounders(ctx context.Context, filter FounderFilter) ([]models.FounderProfile, error) {
	founders, _ := s.Founders(ctx)
	filtered := make([]models.FounderProfile, 0, len(founders))
	for _, f := range founders {
		if f.Approved() && filter.matches(f) {
			filtered = append(filtered, f)
		}
	}
	return filtered, nil
}

// UpdateFounderStatus replaces the status field only. Unknown ids are a
// no-op and an already-approved founder never reverts to pending.
func (s *MemoryStore) UpdateFounderStatus(ctx context.Context, id, status string) error {
	if status != models.FounderStatusPending && status != models.FounderStatusApproved {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.founders[id]
	if !ok {
		return nil
	}
	if f.Status == models.FounderStatusApproved && status == models.FounderStatusPending {
		return nil
	}
	f.Status = status
	s.founders[id] = f
	return nil
}

// SaveBenchmarkNotes replaces the entire note map; the caller already
// holds the merged map.
func (s *MemoryStore) SaveBenchmarkNotes(ctx context.Context, id string, notes map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.founders[id]
	if !ok {
		return nil
	}
	copied := make(map[string]string, len(notes))
	for k, v := range notes {
		copied[k] = v
	}
	f.BenchmarkNotes = copied
	s.founders[id] = f
	return nil
}

func (s *MemoryStore) CreateInvestor(ctx context.Context, inv models.InvestorProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.investors[inv.ID] = inv
	return nil
}

func (s *MemoryStore) Investor(ctx context.Context, id string) (*models.InvestorProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if inv, ok := s.investors[id]; ok {
		return &inv, nil
	}
	return nil, nil
}

func (s *MemoryStore) Investors(ctx context.Context) ([]models.InvestorProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	investors := make([]models.InvestorProfile, 0, len(s.investors))
	for _, inv := range s.investors {
		investors = append(investors, inv)
	}
	sort.Slice(investors, func(i, j int) bool { return investors[i].ID < investors[j].ID })
	return investors, nil
}

// AddInvestorInterest appends founderID to the investor's interest list
// unless already present.
func (s *MemoryStore) AddInvestorInterest(ctx context.Context, investorID, founderID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range s.interests[investorID] {
		if id == founderID {
			return nil
		}
	}
	s.interests[investorID] = append(s.interests[investorID], founderID)
	return nil
}

func (s *MemoryStore) InterestList(ctx context.Context, investorID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	list := s.interests[investorID]
	out := make([]string, len(list))
	copy(out, list)
	return out, nil
}

// RecordInvestment keeps at most one investment per (investor, founder)
// pair; a repeat replaces the existing record.
func (s *MemoryStore) RecordInvestment(ctx context.Context, rel models.PortfolioRelation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rel.InvestedAt.IsZero() {
		rel.InvestedAt = time.Now()
	}
	entries := s.portfolio[rel.InvestorID]
	for i, existing := range entries {
		if existing.FounderID == rel.FounderID {
			entries[i] = rel
			return nil
		}
	}
	s.portfolio[rel.InvestorID] = append(entries, rel)
	return nil
}

func (s *MemoryStore) Portfolio(ctx context.Context, investorID string) ([]models.PortfolioRelation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entries := s.portfolio[investorID]
	out := make([]models.PortfolioRelation, len(entries))
	copy(out, entries)
	return out, nil
}

// SetMarketplaceListing replaces the founder's current listing.
func (s *MemoryStore) SetMarketplaceListing(ctx context.Context, listing models.MarketplaceListing) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	listing.UpdatedAt = time.Now()
	s.listings[listing.FounderID] = listing
	return nil
}

func (s *MemoryStore) MarketplaceListing(ctx context.Context, founderID string) (*models.MarketplaceListing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if l, ok := s.listings[founderID]; ok {
		return &l, nil
	}
	return nil, nil
}

// RecordSuccessFeeRequest replaces the founder's latest request with a
// freshly timestamped record.
func (s *MemoryStore) RecordSuccessFeeRequest(ctx context.Context, req models.SuccessFeeRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	req.CreatedAt = time.Now()
	s.feeReqs[req.FounderID] = req
	return nil
}

func (s *MemoryStore) SuccessFeeRequest(ctx context.Context, founderID string) (*models.SuccessFeeRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if r, ok := s.feeReqs[founderID]; ok {
		return &r, nil
	}
	return nil, nil
}

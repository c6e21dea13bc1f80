package domain

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/launchlift/launchlift/internal/models"
)

// PostgresStore is the production Store. Founder and investor profiles are
// kept as JSONB documents with the mutable fields (status) in their own
// columns so contract-level updates touch nothing else.
type PostgresStore struct {
	db *sqlx.DB
}

func NewPostgresStore(db *sqlx.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type founderRow struct {
	ID        string    `db:"id"`
	Status    string    `db:"status"`
	CreatedAt time.Time `db:"created_at"`
	Data      []byte    `db:"data"`
}

func (r founderRow) profile() (models.FounderProfile, error) {
	var f models.FounderProfile
	if err := json.Unmarshal(r.Data, &f); err != nil {
		return f, fmt.Errorf("failed to decode founder %s: %w", r.ID, err)
	}
	f.ID = r.ID
	f.Status = r.Status
	f.CreatedAt = r.CreatedAt
	return f, nil
}

func (s *PostgresStore) CreateFounder(ctx context.Context, f models.FounderProfile) error {
	if f.Status == "" {
		f.Status = models.FounderStatusPending
	}
	data, err := json.Marshal(f)
	if err != nil {
		return fmt.Errorf("failed to encode founder: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		"INSERT INTO founders (id, user_id, data, status) VALUES ($1, $2, $3, $4)",
		f.ID, f.UserID, data, f.Status)
	if err != nil {
		return fmt.Errorf("failed to create founder: %w", err)
	}
	return nil
}

func (s *PostgresStore) Founder(ctx context.Context, id string) (*models.FounderProfile, error) {
	return s.founderWhere(ctx, "SELECT id, status, created_at, data FROM founders WHERE id = $1", id)
}

func (s *PostgresStore) FounderByUserID(ctx context.Context, userID string) (*models.FounderProfile, error) {
	return s.founderWhere(ctx, "SELECT id, status, created_at, data FROM founders WHERE user_id = $1", userID)
}

func (s *PostgresStore) founderWhere(ctx context.Context, query, arg string) (*models.FounderProfile, error) {
	var row founderRow
	if err := s.db.GetContext(ctx, &row, query, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch founder: %w", err)
	}
	f, err := row.profile()
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func (s *PostgresStore) Founders(ctx context.Context) ([]models.FounderProfile, error) {
	var rows []founderRow
	err := s.db.SelectContext(ctx, &rows,
		"SELECT id, status, created_at, data FROM founders ORDER BY created_at, id")
	if err != nil {
		return nil, fmt.Errorf("failed to list founders: %w", err)
	}
	founders := make([]models.FounderProfile, 0, len(rows))
	for _, row := range rows {
		f, err := row.profile()
		if err != nil {
			return nil, err
		}
		founders = append(founders, f)
	}
	return founders, nil
}

func (s *PostgresStore) FilterFounders(ctx context.Context, filter FounderFilter) ([]models.FounderProfile, error) {
	founders, err := s.Founders(ctx)
	if err != nil {
		return nil, err
	}
	filtered := make([]models.FounderProfile, 0, len(founders))
	for _, f := range founders {
		if f.Approved() && filter.matches(f) {
			filtered = append(filtered, f)
		}
	}
	return filtered, nil
}

func (s *PostgresStore) UpdateFounderStatus(ctx context.Context, id, status string) error {
	if status != models.FounderStatusPending && status != models.FounderStatusApproved {
		return nil
	}
	// Approved is terminal; a pending write only lands on a still-pending row.
	var err error
	if status == models.FounderStatusApproved {
		_, err = s.db.ExecContext(ctx,
			"UPDATE founders SET status = $1 WHERE id = $2", status, id)
	} else {
		_, err = s.db.ExecContext(ctx,
			"UPDATE founders SET status = $1 WHERE id = $2 AND status = $1", status, id)
	}
	if err != nil {
		return fmt.Errorf("failed to update founder status: %w", err)
	}
	return nil
}

func (s *PostgresStore) SaveBenchmarkNotes(ctx context.Context, id string, notes map[string]string) error {
	data, err := json.Marshal(notes)
	if err != nil {
		return fmt.Errorf("failed to encode notes: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		"UPDATE founders SET data = jsonb_set(data, '{benchmark_notes}', $1) WHERE id = $2",
		data, id)
	if err != nil {
		return fmt.Errorf("failed to save benchmark notes: %w", err)
	}
	return nil
}

func (s *PostgresStore) CreateInvestor(ctx context.Context, inv models.InvestorProfile) error {
	data, err := json.Marshal(inv)
	if err != nil {
		return fmt.Errorf("failed to encode investor: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		"INSERT INTO investors (id, user_id, data) VALUES ($1, $2, $3)",
		inv.ID, inv.UserID, data)
	if err != nil {
		return fmt.Errorf("failed to create investor: %w", err)
	}
	return nil
}

func (s *PostgresStore) Investor(ctx context.Context, id string) (*models.InvestorProfile, error) {
	var data []byte
	err := s.db.GetContext(ctx, &data, "SELECT data FROM investors WHERE id = $1", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch investor: %w", err)
	}
	var inv models.InvestorProfile
	if err := json.Unmarshal(data, &inv); err != nil {
		return nil, fmt.Errorf("failed to decode investor %s: %w", id, err)
	}
	return &inv, nil
}

func (s *PostgresStore) Investors(ctx context.Context) ([]models.InvestorProfile, error) {
	var rows [][]byte
	err := s.db.SelectContext(ctx, &rows, "SELECT data FROM investors ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to list investors: %w", err)
	}
	investors := make([]models.InvestorProfile, 0, len(rows))
	for _, data := range rows {
		var inv models.InvestorProfile
		if err := json.Unmarshal(data, &inv); err != nil {
			return nil, fmt.Errorf("failed to decode investor: %w", err)
		}
		investors = append(investors, inv)
	}
	return investors, nil
}

func (s *PostgresStore) AddInvestorInterest(ctx context.Context, investorID, founderID string) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO investor_interests (investor_id, founder_id) VALUES ($1, $2) ON CONFLICT DO NOTHING",
		investorID, founderID)
	if err != nil {
		return fmt.Errorf("failed to record interest: %w", err)
	}
	return nil
}

func (s *PostgresStore) InterestList(ctx context.Context, investorID string) ([]string, error) {
	var founderIDs []string
	err := s.db.SelectContext(ctx, &founderIDs,
		"SELECT founder_id FROM investor_interests WHERE investor_id = $1 ORDER BY created_at",
		investorID)
	if err != nil {
		return nil, fmt.Errorf("failed to list interests: %w", err)
	}
	return founderIDs, nil
}

func (s *PostgresStore) RecordInvestment(ctx context.Context, rel models.PortfolioRelation) error {
	if rel.InvestedAt.IsZero() {
		rel.InvestedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO portfolio_investments (investor_id, founder_id, amount, invested_at) VALUES ($1, $2, $3, $4)
		 ON CONFLICT (investor_id, founder_id) DO UPDATE SET amount = $3, invested_at = $4`,
		rel.InvestorID, rel.FounderID, rel.Amount, rel.InvestedAt)
	if err != nil {
		return fmt.Errorf("failed to record investment: %w", err)
	}
	return nil
}

func (s *PostgresStore) Portfolio(ctx context.Context, investorID string) ([]models.PortfolioRelation, error) {
	var entries []models.PortfolioRelation
	err := s.db.SelectContext(ctx, &entries,
		"SELECT investor_id, founder_id, amount, invested_at FROM portfolio_investments WHERE investor_id = $1 ORDER BY invested_at",
		investorID)
	if err != nil {
		return nil, fmt.Errorf("failed to list portfolio: %w", err)
	}
	return entries, nil
}

func (s *PostgresStore) SetMarketplaceListing(ctx context.Context, listing models.MarketplaceListing) error {
	listing.UpdatedAt = time.Now()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO marketplace_listings (founder_id, raise_amount, min_ticket, industry, use_of_funds, status, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (founder_id) DO UPDATE SET raise_amount = $2, min_ticket = $3, industry = $4, use_of_funds = $5, status = $6, updated_at = $7`,
		listing.FounderID, listing.RaiseAmount, listing.MinTicket, listing.Industry,
		listing.UseOfFunds, listing.Status, listing.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to save listing: %w", err)
	}
	return nil
}

func (s *PostgresStore) MarketplaceListing(ctx context.Context, founderID string) (*models.MarketplaceListing, error) {
	var listing models.MarketplaceListing
	err := s.db.GetContext(ctx, &listing,
		"SELECT founder_id, raise_amount, min_ticket, industry, use_of_funds, status, updated_at FROM marketplace_listings WHERE founder_id = $1",
		founderID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch listing: %w", err)
	}
	return &listing, nil
}

func (s *PostgresStore) RecordSuccessFeeRequest(ctx context.Context, req models.SuccessFeeRequest) error {
	req.CreatedAt = time.Now()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO success_fee_requests (founder_id, round_label, target_amount, committed, deck_url, notes, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (founder_id) DO UPDATE SET round_label = $2, target_amount = $3, committed = $4, deck_url = $5, notes = $6, created_at = $7`,
		req.FounderID, req.RoundLabel, req.TargetAmount, req.Committed, req.DeckURL, req.Notes, req.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to record success-fee request: %w", err)
	}
	return nil
}

func (s *PostgresStore) SuccessFeeRequest(ctx context.Context, founderID string) (*models.SuccessFeeRequest, error) {
	var req models.SuccessFeeRequest
	err := s.db.GetContext(ctx, &req,
		"SELECT founder_id, round_label, target_amount, committed, deck_url, notes, created_at FROM success_fee_requests WHERE founder_id = $1",
		founderID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch success-fee request: %w", err)
	}
	return &req, nil
}

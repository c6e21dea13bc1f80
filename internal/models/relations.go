package models

import "time"

// InterestRelation records that an investor has requested an introduction
// to a founder. Inserts are idempotent per (investor, founder) pair.
type InterestRelation struct {
	InvestorID string    `json:"investor_id" db:"investor_id"`
	FounderID  string    `json:"founder_id" db:"founder_id"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// PortfolioRelation records a completed investment. A founder appears at
// most once per investor.
type PortfolioRelation struct {
	InvestorID string    `json:"investor_id" db:"investor_id"`
	FounderID  string    `json:"founder_id" db:"founder_id"`
	Amount     int64     `json:"amount" db:"amount"`
	InvestedAt time.Time `json:"invested_at" db:"invested_at"`
}

// PortfolioEntry is one row from the external content collaborator.
type PortfolioEntry struct {
	Name        string `json:"name"`
	Sector      string `json:"sector"`
	Description string `json:"description"`
	URL         string `json:"url"`
}

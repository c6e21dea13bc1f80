package models

import "time"

// MarketplaceListing is a founder's live marketplace entry. At most one
// per founder; writes replace the current record.
type MarketplaceListing struct {
	FounderID   string    `json:"founder_id" db:"founder_id"`
	RaiseAmount int64     `json:"raise_amount" db:"raise_amount"`
	MinTicket   int64     `json:"min_ticket" db:"min_ticket"`
	Industry    string    `json:"industry" db:"industry"`
	UseOfFunds  string    `json:"use_of_funds" db:"use_of_funds"`
	Status      string    `json:"status" db:"status"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// SuccessFeeRequest is a founder's latest success-fee engagement request.
// At most one per founder; writes replace the current record.
type SuccessFeeRequest struct {
	FounderID    string    `json:"founder_id" db:"founder_id"`
	RoundLabel   string    `json:"round_label" db:"round_label"`
	TargetAmount int64     `json:"target_amount" db:"target_amount"`
	Committed    int64     `json:"committed" db:"committed"`
	DeckURL      string    `json:"deck_url" db:"deck_url"`
	Notes        string    `json:"notes" db:"notes"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

package models

// InvestorProfile describes one investor or fund. Read-only after intake.
type InvestorProfile struct {
	ID         string   `json:"id"`
	UserID     string   `json:"user_id"`
	FundName   string   `json:"fund_name"`
	Thesis     string   `json:"thesis"`
	StageFocus []string `json:"stage_focus"`
}

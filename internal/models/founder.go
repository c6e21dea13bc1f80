package models

import "time"

const (
	FounderStatusPending  = "pending"
	FounderStatusApproved = "approved"
)

// ReadinessScore is one 0-100 sub-metric of founder quality.
type ReadinessScore struct {
	Label string `json:"label"`
	Score int    `json:"score"`
}

// BenchmarkRow compares one founder metric with its industry standard.
type BenchmarkRow struct {
	ID               string `json:"id"`
	Metric           string `json:"metric"`
	IndustryStandard string `json:"industry_standard"`
	StartupValue     string `json:"startup_value"`
}

// Match is a scored association between a founder and an investor.
// Scores are externally supplied opaque values in [0, 100].
type Match struct {
	InvestorID string `json:"investor_id"`
	Score      int    `json:"score"`
}

// FounderProfile describes one startup raising capital. Status starts
// pending and only ever transitions to approved; investor-facing match
// visibility is gated on that transition.
type FounderProfile struct {
	ID              string            `json:"id"`
	UserID          string            `json:"user_id"`
	Email           string            `json:"email"`
	Phone           string            `json:"phone"`
	StartupName     string            `json:"startup_name"`
	Headline        string            `json:"headline"`
	Sector          string            `json:"sector"`
	Geography       string            `json:"geography"`
	Stage           string            `json:"stage"`
	TargetRaise     int64             `json:"target_raise"`
	Traction        string            `json:"traction"`
	TeamSize        int               `json:"team_size"`
	RevenueRunRate  int64             `json:"revenue_run_rate"`
	Status          string            `json:"status"`
	ReadinessScores []ReadinessScore  `json:"readiness_scores"`
	BenchmarkNotes  map[string]string `json:"benchmark_notes"`
	Benchmarks      []BenchmarkRow    `json:"benchmarks"`
	AISummary       string            `json:"ai_summary"`
	Matches         []Match           `json:"matches"`
	CreatedAt       time.Time         `json:"created_at"`
}

// Approved reports whether investor-facing match detail is unlocked.
func (f FounderProfile) Approved() bool {
	return f.Status == FounderStatusApproved
}

package model

import "time"

// MonthKey formats t as the ledger month key "YYYY-MM".
func MonthKey(t time.Time) string {
	return t.UTC().Format("2006-01")
}

// CostEntry is one append-only ledger row for a paid source usage.
type CostEntry struct {
	ID          string    `json:"id"`
	Month       string    `json:"month"`
	CompanyName string    `json:"company_name"`
	SourceID    string    `json:"source_id"`
	Tier        Tier      `json:"tier"`
	Amount      float64   `json:"amount"`
	CreatedAt   time.Time `json:"created_at"`
}

// MonthlyBudgetReport summarizes spend for one month.
type MonthlyBudgetReport struct {
	Month     string             `json:"month"`
	Limit     float64            `json:"limit"`
	Spent     float64            `json:"spent"`
	Remaining float64            `json:"remaining"`
	ByTier    map[Tier]float64   `json:"by_tier"`
	BySource  map[string]float64 `json:"by_source"`
	Entries   int                `json:"entries"`
	Companies int                `json:"companies"`
}

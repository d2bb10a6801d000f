package core

// CategoryAmount represents an amount aggregated by category name.
type CategoryAmount struct {
	Name   string `json:"name"`
	Amount Money  `json:"amount"`
}

// MonthOverview is a compact summary for a specific year+month.
type MonthOverview struct {
	Month      YearMonth        `json:"month"`
	Total      Money            `json:"total"`
	ByCategory []CategoryAmount `json:"byCategory"`
}

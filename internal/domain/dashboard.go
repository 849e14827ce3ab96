package domain

// StatusCount is one tile of the status dashboard.
type StatusCount struct {
	Status string `json:"status" db:"detailed_status"`
	Count  int    `json:"count" db:"count"`
	Rank   int    `json:"rank" db:"-"`
	Color  string `json:"color" db:"-"`
}

// YearCount totals jobs per financial year.
type YearCount struct {
	Year      string `json:"year" db:"year"`
	Pending   int    `json:"pending" db:"pending"`
	Completed int    `json:"completed" db:"completed"`
	Cancelled int    `json:"cancelled" db:"cancelled"`
}

// DashboardFilter narrows dashboard aggregates.
type DashboardFilter struct {
	Year     string `json:"year,omitempty"`
	Importer string `json:"importer,omitempty"`
}

// Dashboard is the payload of the status dashboard.
type Dashboard struct {
	StatusCounts []StatusCount `json:"status_counts"`
	YearCounts   []YearCount   `json:"year_counts"`
	TotalOpen    int           `json:"total_open"`
}

package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Invoice is the bill raised against a cleared job.
type Invoice struct {
	ID        int64           `json:"id" db:"id"`
	JobID     int64           `json:"job_id" db:"job_id"`
	BillNo    string          `json:"bill_no" db:"bill_no"`
	BillDate  string          `json:"bill_date" db:"bill_date"`
	Amount    decimal.Decimal `json:"amount" db:"amount"`
	Currency  string          `json:"currency" db:"currency"`
	CreatedAt time.Time       `json:"created_at" db:"created_at"`
}

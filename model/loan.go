// model/loan.go
package model

import "time"

type LoanStatus string

const (
	LoanActive   LoanStatus = "active"
	LoanReturned LoanStatus = "returned"
	LoanExpired  LoanStatus = "expired"
)

// Loan is a time-bounded grant of one copy of an item to one user.
// Status moves one way only: active -> returned, or active -> expired.
// Records are never deleted; terminal loans stay in the ledger for history.
type Loan struct {
	ID           string     `json:"id"`
	ItemID       string     `json:"item_id"`
	UserID       string     `json:"user_id"`
	Status       LoanStatus `json:"status"`
	CheckedOutAt time.Time  `json:"checked_out_at"`
	ExpiresAt    time.Time  `json:"expires_at"`
	ReturnedAt   *time.Time `json:"returned_at,omitempty"`
	Renewals     int        `json:"renewals"`
}

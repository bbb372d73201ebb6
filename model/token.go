// model/token.go
package model

import "time"

// AccessToken is an opaque bearer credential for downloading one item under
// one loan. Valid only while not revoked, not past expiry, and the bound
// loan is still active (the last check is the orchestrator's job).
type AccessToken struct {
	Token     string     `json:"token"`
	LoanID    string     `json:"loan_id"`
	UserID    string     `json:"user_id"`
	ItemID    string     `json:"item_id"`
	DeviceID  string     `json:"device_id,omitempty"`
	OriginID  string     `json:"origin_id,omitempty"`
	IssuedAt  time.Time  `json:"issued_at"`
	ExpiresAt time.Time  `json:"expires_at"`
	RevokedAt *time.Time `json:"revoked_at,omitempty"`
}

func (t *AccessToken) IsRevoked() bool { return t.RevokedAt != nil }

func (t *AccessToken) IsExpired(now time.Time) bool { return now.After(t.ExpiresAt) }

// models/challenge.go
package models

import "time"

// OTPChallenge binds a dispatched one-time code to its single verification
// attempt. Handle is the remote confirmation handle; it is single-use and a
// consumed or expired challenge must never be reusable.
type OTPChallenge struct {
	ID          string    `json:"id"`
	PhoneNumber string    `json:"phoneNumber"`
	Handle      string    `json:"-"`
	CreatedAt   time.Time `json:"createdAt"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

// Expired reports whether the challenge's verification window has closed.
func (c *OTPChallenge) Expired(now time.Time) bool {
	return !now.Before(c.ExpiresAt)
}

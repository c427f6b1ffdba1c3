package domain

import "time"

// TokenRevocation models a deny-listed session token identifier. A record's
// existence makes the matching token permanently invalid; once the token's
// own expiry passes the record is redundant and safe to garbage-collect.
type TokenRevocation struct {
	JTI       string
	ExpiresAt time.Time
	RevokedAt time.Time
}

// Expired reports whether the underlying token would be rejected on expiry
// grounds anyway, making the revocation record prunable.
func (r TokenRevocation) Expired(at time.Time) bool {
	return !r.ExpiresAt.After(at)
}

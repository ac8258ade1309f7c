package domain

import "time"

// SessionToken tracks the lifecycle of an issued opaque token. Only the
// SHA-256 digest of the token is persisted; the raw value leaves the process
// once, in the login response.
type SessionToken struct {
	Digest    string
	UserID    string
	IssuedAt  time.Time
	ExpiresAt time.Time
	RevokedAt *time.Time
}

// Expired reports whether the token is expired relative to now.
func (t SessionToken) Expired(now time.Time) bool {
	if t.ExpiresAt.IsZero() {
		return false
	}
	return now.UTC().After(t.ExpiresAt.UTC())
}

// Revoked reports whether the token has been explicitly revoked.
func (t SessionToken) Revoked() bool {
	return t.RevokedAt != nil
}

// Active reports whether the token is neither revoked nor expired.
func (t SessionToken) Active(now time.Time) bool {
	return !t.Revoked() && !t.Expired(now)
}

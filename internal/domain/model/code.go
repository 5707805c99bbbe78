package model

import (
	"time"
)

// CodeStatus is the derived state of a code at an observation instant.
// It is never persisted; Revoked, ExpiresAt and the wall clock fully determine it.
type CodeStatus string

const (
	StatusActive  CodeStatus = "active"
	StatusExpired CodeStatus = "expired"
	StatusRevoked CodeStatus = "revoked"
)

// CodeRecord is one issued access code. Records are appended on generation,
// mutated only by revocation (Revoked goes false->true, never back) and never
// physically deleted.
type CodeRecord struct {
	Code      string    `json:"code"`
	Note      string    `json:"note"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
	Revoked   bool      `json:"revoked"`
}

// Status derives the record state at the given instant. Revocation wins over
// expiry; a record whose expiry equals now exactly is already expired.
func (r *CodeRecord) Status(now time.Time) CodeStatus {
	if r.Revoked {
		return StatusRevoked
	}
	if !now.Before(r.ExpiresAt) {
		return StatusExpired
	}
	return StatusActive
}

// IsActive reports whether the record is neither revoked nor past expiry.
func (r *CodeRecord) IsActive(now time.Time) bool {
	return r.Status(now) == StatusActive
}

// RemainingSeconds returns whole seconds left until expiry, clamped at zero.
func (r *CodeRecord) RemainingSeconds(now time.Time) int64 {
	diff := r.ExpiresAt.Sub(now)
	if diff <= 0 {
		return 0
	}
	return int64(diff / time.Second)
}

// CodeCollection is the persisted set of all issued codes, in creation order.
type CodeCollection struct {
	Codes []CodeRecord `json:"codes"`
}

// EmptyCollection returns a collection with a non-nil, empty code list, the
// shape persisted on first run.
func EmptyCollection() CodeCollection {
	return CodeCollection{Codes: []CodeRecord{}}
}

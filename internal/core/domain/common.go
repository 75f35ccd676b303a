package domain

import "time"

// AuditFields records who created a record and who touched it last.
// The actor is the authenticated user ID, never a value taken from a request body.
type AuditFields struct {
	CreatedAt     time.Time `json:"createdAt"`
	CreatedBy     string    `json:"createdBy"`
	LastUpdatedAt time.Time `json:"lastUpdatedAt"`
	LastUpdatedBy string    `json:"lastUpdatedBy"`
}

// NewAuditFields stamps a record created by actor at at.
func NewAuditFields(actor string, at time.Time) AuditFields {
	return AuditFields{CreatedAt: at, CreatedBy: actor, LastUpdatedAt: at, LastUpdatedBy: actor}
}

// Touch records a later change by actor.
func (a *AuditFields) Touch(actor string, at time.Time) {
	a.LastUpdatedAt = at
	a.LastUpdatedBy = actor
}

package model

import "time"

// Awarding records a scholarship grant for an approved application.
// Creating one flips the application to GRANTED and triggers an
// AWARDING attestation.
type Awarding struct {
	ID            uint64    // awardings.id
	ApplicationID uint64    // awardings.application_id
	UserID        uint64    // awardings.user_id (the awarded applicant)
	GrantedBy     uint64    // awardings.granted_by (administrator)
	AmountCents   uint64    // awardings.amount_cents
	Remarks       *string   // awardings.remarks (nullable)
	CreatedAt     time.Time // awardings.created_at
}

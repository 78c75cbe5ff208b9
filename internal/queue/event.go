// Package queue defines message payloads exchanged over the message broker.
package queue

// ApplicationStatusEvent is published whenever an application enters a new
// status: at submission, on admin approval/rejection and on awarding.
// It carries enough for downstream consumers (notifications, analytics)
// without querying the primary database.  TxHash is present only when the
// triggering operation was attested on-chain.
type ApplicationStatusEvent struct {
	ApplicationID uint64 `json:"application_id"`
	UserID        uint64 `json:"user_id"`
	PeriodID      uint64 `json:"period_id"`
	Type          string `json:"application_type"`
	Status        string `json:"status"`
	Remarks       string `json:"remarks,omitempty"`
	AmountCents   uint64 `json:"amount_cents,omitempty"`
	TxHash        string `json:"tx_hash,omitempty"`
	OccurredAt    string `json:"occurred_at"`
}

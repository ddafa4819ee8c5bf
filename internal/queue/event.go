// Package queue defines message payloads exchanged over the message broker.
package queue

// Rental event kinds.
const (
	RentEventApplied  = "applied"
	RentEventApproved = "approved"
	RentEventDenied   = "denied"
)

// RentEvent is published when a rental is applied for or its approval
// state changes. It carries enough information for downstream consumers to
// log or notify without querying the primary database.
type RentEvent struct {
	Kind          string   `json:"kind"` // applied | approved | denied
	RentID        string   `json:"rent_id"`
	Title         string   `json:"title"`
	Team          string   `json:"team"`
	ApplicantID   string   `json:"applicant_id"`
	ApplicantName string   `json:"applicant_name"`
	StartDate     string   `json:"start_date"`
	EndDate       string   `json:"end_date"`
	Categories    []string `json:"categories"`
	OccurredAt    string   `json:"occurred_at"`
}

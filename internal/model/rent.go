package model

import "time"

// Approval states stored in rents.approved and videos.approved. Zero is
// pending; any update to a rent resets it to pending so the change gets
// re-reviewed.
const (
	ApprovalPending  = 0
	ApprovalApproved = 1
	ApprovalDenied   = 2
)

// Equipment groups the borrowed items of one category within a rental
// request, e.g. {Category: "카메라", Items: ["CAM-1", "CAM-2"]}.
type Equipment struct {
	Category string   `json:"category"`
	Items    []string `json:"items"`
}

// Rent is an equipment rental booking in the `rents` table. StartDate and
// EndDate are absolute instants with StartDate < EndDate; the half-open
// interval [StartDate, EndDate) is what conflict detection operates on.
//
// CombinedDate is the derived "<startRFC3339>#<endRFC3339>" string kept for
// API compatibility with older clients; range queries always use the real
// datetime columns.
type Rent struct {
	ID            string      `json:"id"`            // rents.id (UUID)
	StartDate     time.Time   `json:"startDate"`     // rents.start_date
	EndDate       time.Time   `json:"endDate"`       // rents.end_date
	Team          string      `json:"team"`          // rents.team
	Title         string      `json:"title"`         // rents.title
	ApplicantID   string      `json:"applicantId"`   // rents.applicant_id
	ApplicantName string      `json:"applicantName"` // rents.applicant_name
	Approved      int         `json:"approved"`      // rents.approved
	EquipmentList []Equipment `json:"equipmentList"` // rents.equipment (JSON column)
	CombinedDate  string      `json:"combinedDate"`  // rents.combined_date (derived)
	CreatedAt     time.Time   `json:"createdAt"`     // rents.created_at
	UpdatedAt     time.Time   `json:"updatedAt"`     // rents.updated_at
}

// CombinedDate renders the derived start#end string for a pair of instants.
func CombinedDate(start, end time.Time) string {
	return start.UTC().Format(time.RFC3339) + "#" + end.UTC().Format(time.RFC3339)
}

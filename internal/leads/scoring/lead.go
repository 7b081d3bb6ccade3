package scoring

import (
	"time"

	"lead_portal_backend/internal/leads/domain"

	"github.com/google/uuid"
)

// Lead is the read-only snapshot of a lead that the engine scores.
// Only the fields that feed a rule are carried.
type Lead struct {
	ID             uuid.UUID       `json:"id"`
	RoleInDecision string          `json:"role_in_decision,omitempty"`
	CompanySize    *int            `json:"company_size,omitempty"`
	Industry       string          `json:"industry,omitempty"`
	Location       domain.Location `json:"location"`
	LeadSource     string          `json:"lead_source,omitempty"`
	Status         domain.Status   `json:"status"`
	Notes          string          `json:"notes,omitempty"`
	NextFollowUp   *time.Time      `json:"next_follow_up,omitempty"`
	UpdatedAt      *time.Time      `json:"updated_at,omitempty"`
}

func (l Lead) hasUpdatedAt() bool {
	return l.UpdatedAt != nil && !l.UpdatedAt.IsZero()
}

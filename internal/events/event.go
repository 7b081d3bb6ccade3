// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"lead_portal_backend/platform/events"

	"github.com/google/uuid"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
)

// Re-export platform functions
var NewBaseEvent = events.NewBaseEvent

// =============================================================================
// Leads Domain Events
// =============================================================================

// LeadCreated is published when a new lead is created.
type LeadCreated struct {
	BaseEvent
	LeadID      uuid.UUID  `json:"leadId"`
	Email       string     `json:"email"`
	CompanyName string     `json:"companyName"`
	LeadSource  string     `json:"leadSource"`
	CreatedBy   *uuid.UUID `json:"createdBy,omitempty"`
}

func (e LeadCreated) EventName() string { return "leads.lead.created" }

// LeadUpdated is published after a lead's fields change.
type LeadUpdated struct {
	BaseEvent
	LeadID        uuid.UUID `json:"leadId"`
	ChangedFields []string  `json:"changedFields"`
}

func (e LeadUpdated) EventName() string { return "leads.lead.updated" }

// LeadDeleted is published when a lead is soft or hard deleted.
type LeadDeleted struct {
	BaseEvent
	LeadID uuid.UUID `json:"leadId"`
	Hard   bool      `json:"hard"`
}

func (e LeadDeleted) EventName() string { return "leads.lead.deleted" }

// LeadScored is published after a new score has been persisted.
// PreviousClassification is empty when the lead had never been scored.
type LeadScored struct {
	BaseEvent
	LeadID                 uuid.UUID `json:"leadId"`
	FirstName              string    `json:"firstName"`
	LastName               string    `json:"lastName"`
	CompanyName            string    `json:"companyName"`
	PreviousScore          int       `json:"previousScore"`
	Score                  int       `json:"score"`
	PreviousClassification string    `json:"previousClassification,omitempty"`
	Classification         string    `json:"classification"`
	Trigger                string    `json:"trigger"`
}

func (e LeadScored) EventName() string { return "leads.lead.scored" }

// Score triggers carried on LeadScored.
const (
	ScoreTriggerManual  = "manual"
	ScoreTriggerBulk    = "bulk"
	ScoreTriggerRescore = "rescore"
)

// EnteredTier reports whether this scoring moved the lead into tier.
func (e LeadScored) EnteredTier(tier string) bool {
	return e.Classification == tier && e.PreviousClassification != tier
}

package qualification

import (
	"encoding/json"

	"lead_portal_backend/internal/leads/domain"
	"lead_portal_backend/internal/leads/repository"
	"lead_portal_backend/internal/leads/scoring"
	"lead_portal_backend/internal/leads/transport"
)

// ToScoringLead projects a stored lead onto the fields the engine reads.
// A zero updated_at is passed as absent so the engine rejects it.
func ToScoringLead(lead repository.Lead) scoring.Lead {
	out := scoring.Lead{
		ID:             lead.ID,
		RoleInDecision: lead.RoleInDecision,
		CompanySize:    lead.CompanySize,
		Industry:       deref(lead.Industry),
		Location: domain.Location{
			City:    deref(lead.LocationCity),
			State:   deref(lead.LocationState),
			Country: deref(lead.LocationCountry),
		},
		LeadSource:   lead.LeadSource,
		Status:       domain.Status(lead.Status),
		Notes:        deref(lead.Notes),
		NextFollowUp: lead.NextFollowUp,
	}
	if !lead.UpdatedAt.IsZero() {
		updatedAt := lead.UpdatedAt
		out.UpdatedAt = &updatedAt
	}
	return out
}

func toBreakdown(result scoring.Result) transport.ScoreBreakdown {
	return transport.ScoreBreakdown{
		Demographics:  result.Demographics,
		SourceQuality: result.SourceQuality,
		Engagement:    result.Engagement,
		Decay:         result.Decay,
		Total:         result.Total,
	}
}

var emptyMetadata = json.RawMessage(`{}`)

func storedMetadata(lead repository.Lead) json.RawMessage {
	if len(lead.ScoringMetadata) == 0 {
		return emptyMetadata
	}
	return lead.ScoringMetadata
}

// storedClassification reads the tier from the last persisted snapshot.
// It is empty for leads that were never scored.
func storedClassification(lead repository.Lead) string {
	if len(lead.ScoringMetadata) == 0 {
		return ""
	}
	var snapshot struct {
		Classification string `json:"classification"`
	}
	if err := json.Unmarshal(lead.ScoringMetadata, &snapshot); err != nil {
		return ""
	}
	return snapshot.Classification
}

func deref(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}

package scoring

import (
	"time"

	"lead_portal_backend/internal/leads/domain"
)

// Priority ranks how urgently a recommendation should be acted on.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
)

// Recommendation is one action that would raise the lead score.
type Recommendation struct {
	Action                 string   `json:"action"`
	PotentialScoreIncrease int      `json:"potential_score_increase"`
	Priority               Priority `json:"priority"`
}

const (
	ActionScheduleFollowUp  = "Schedule follow-up"
	ActionAddNotes          = "Add sales notes"
	ActionMarkContacted     = "Update status to Contacted"
	ActionRefreshLeadRecord = "Update lead information"
)

type recommendationRule struct {
	action   string
	priority Priority
	applies  func(lead Lead, w *Weights, now time.Time) bool
	impact   func(w *Weights) int
}

// recommendationRules are evaluated in order; any subset may fire.
var recommendationRules = []recommendationRule{
	{
		action:   ActionScheduleFollowUp,
		priority: PriorityHigh,
		applies:  func(lead Lead, _ *Weights, _ time.Time) bool { return lead.NextFollowUp == nil },
		impact:   (*Weights).FollowUpScheduled,
	},
	{
		action:   ActionAddNotes,
		priority: PriorityMedium,
		applies:  func(lead Lead, _ *Weights, _ time.Time) bool { return !hasNotes(lead) },
		impact:   (*Weights).NotesAdded,
	},
	{
		action:   ActionMarkContacted,
		priority: PriorityHigh,
		applies:  func(lead Lead, _ *Weights, _ time.Time) bool { return lead.Status == domain.StatusNew },
		impact:   (*Weights).StatusContacted,
	},
	{
		action:   ActionRefreshLeadRecord,
		priority: PriorityHigh,
		applies:  isStale,
		impact:   func(w *Weights) int { return abs(w.NoUpdate30Days()) },
	},
}

// Recommend lists the improvement actions for lead. It never fails and
// does not look at the current score; a lead without updated_at simply
// gets no staleness recommendation.
func Recommend(lead Lead, w *Weights, now time.Time) []Recommendation {
	recommendations := make([]Recommendation, 0, len(recommendationRules))
	for _, rule := range recommendationRules {
		if !rule.applies(lead, w, now) {
			continue
		}
		recommendations = append(recommendations, Recommendation{
			Action:                 rule.action,
			PotentialScoreIncrease: rule.impact(w),
			Priority:               rule.priority,
		})
	}
	return recommendations
}

// PotentialIncrease sums the per-rule impacts. The sum ignores clamping.
func PotentialIncrease(recommendations []Recommendation) int {
	total := 0
	for _, rec := range recommendations {
		total += rec.PotentialScoreIncrease
	}
	return total
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

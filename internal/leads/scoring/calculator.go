package scoring

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"lead_portal_backend/internal/leads/domain"

	"golang.org/x/text/cases"
)

const (
	MinScore = -100
	MaxScore = 100

	day = 24 * time.Hour
)

// ErrIncompleteRecord is returned when a lead lacks the updated_at anchor
// needed for decay. Callers check it with errors.Is.
var ErrIncompleteRecord = errors.New("incomplete lead record: updated_at is required")

// Result is the per-category breakdown of a lead score.
// Total is the clamped sum of the four components; the components
// themselves are never clamped.
type Result struct {
	Demographics   int            `json:"demographics"`
	SourceQuality  int            `json:"source_quality"`
	Engagement     int            `json:"engagement"`
	Decay          int            `json:"decay"`
	Total          int            `json:"total"`
	Classification Classification `json:"classification"`
}

// Sum returns the unclamped sum of the components.
func (r Result) Sum() int {
	return r.Demographics + r.SourceQuality + r.Engagement + r.Decay
}

// Compute scores lead against w as of now. It has no side effects.
func Compute(lead Lead, w *Weights, now time.Time) (Result, error) {
	if !lead.hasUpdatedAt() {
		return Result{}, fmt.Errorf("lead %s: %w", lead.ID, ErrIncompleteRecord)
	}

	result := Result{
		Demographics:  demographicsScore(lead, w),
		SourceQuality: sourceQualityScore(lead, w),
		Engagement:    engagementScore(lead, w),
		Decay:         decayScore(lead, w, now),
	}
	result.Total = clampScore(result.Sum())
	result.Classification = Classify(result.Total)
	return result, nil
}

func demographicsScore(lead Lead, w *Weights) int {
	score := w.Weight(CategoryRoleInDecision, lead.RoleInDecision)

	if size, ok := companySizeTier(lead.CompanySize); ok {
		score += w.Weight(CategoryCompanySize, size)
	}

	score += w.Weight(CategoryIndustry, lead.Industry)

	if !lead.Location.IsEmpty() {
		if inTargetRegion(lead.Location, w.foldedTargetRegions) {
			score += w.Weight(CategoryLocation, LocationTargetRegion)
		} else {
			score += w.Weight(CategoryLocation, LocationNonTarget)
		}
	}

	return score
}

// companySizeTier buckets a head count. Absent or non-positive sizes have no tier.
func companySizeTier(size *int) (string, bool) {
	if size == nil || *size <= 0 {
		return "", false
	}
	switch {
	case *size > 500:
		return SizeLarge, true
	case *size >= 50:
		return SizeMedium, true
	default:
		return SizeSmall, true
	}
}

// inTargetRegion reports whether any location field contains one of the
// (already case-folded) region names.
func inTargetRegion(loc domain.Location, foldedRegions []string) bool {
	if len(foldedRegions) == 0 {
		return false
	}

	// Casers keep state, so each call gets its own.
	fold := cases.Fold()
	fields := []string{fold.String(loc.City), fold.String(loc.State), fold.String(loc.Country)}

	for _, region := range foldedRegions {
		for _, field := range fields {
			if field != "" && strings.Contains(field, region) {
				return true
			}
		}
	}
	return false
}

func sourceQualityScore(lead Lead, w *Weights) int {
	return w.Weight(CategoryLeadSource, lead.LeadSource)
}

func engagementScore(lead Lead, w *Weights) int {
	// Every lead earns the base score for existing at all.
	score := w.BaseScore()

	if hasNotes(lead) {
		score += w.NotesAdded()
	}
	if lead.NextFollowUp != nil {
		score += w.FollowUpScheduled()
	}
	if lead.Status == domain.StatusContacted {
		score += w.StatusContacted()
	}

	return score
}

// decayScore applies the stale and cold-status penalties independently;
// a stale cold lead takes both.
func decayScore(lead Lead, w *Weights, now time.Time) int {
	score := 0

	if isStale(lead, w, now) {
		score += w.NoUpdate30Days()
	}
	if domain.IsColdStatus(lead.Status) {
		score += w.StatusCold()
	}

	return score
}

// isStale counts whole days since the last update, so a lead updated
// exactly stale_after_days ago is not yet stale.
func isStale(lead Lead, w *Weights, now time.Time) bool {
	if !lead.hasUpdatedAt() {
		return false
	}
	elapsed := now.Sub(*lead.UpdatedAt)
	if elapsed <= 0 {
		return false
	}
	return int(elapsed/day) > w.StaleAfterDays()
}

func hasNotes(lead Lead) bool {
	return strings.TrimSpace(lead.Notes) != ""
}

func clampScore(value int) int {
	if value < MinScore {
		return MinScore
	}
	if value > MaxScore {
		return MaxScore
	}
	return value
}

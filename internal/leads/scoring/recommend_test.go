package scoring

import (
	"testing"
	"time"

	"lead_portal_backend/internal/leads/domain"

	"github.com/google/go-cmp/cmp"
)

func TestRecommend_BareNewLead(t *testing.T) {
	lead := Lead{Status: domain.StatusNew, UpdatedAt: timePtr(testNow)}

	got := Recommend(lead, DefaultWeights(), testNow)

	want := []Recommendation{
		{Action: ActionScheduleFollowUp, PotentialScoreIncrease: 10, Priority: PriorityHigh},
		{Action: ActionAddNotes, PotentialScoreIncrease: 10, Priority: PriorityMedium},
		{Action: ActionMarkContacted, PotentialScoreIncrease: 15, Priority: PriorityHigh},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected recommendations (-want +got):\n%s", diff)
	}
	if total := PotentialIncrease(got); total != 35 {
		t.Fatalf("expected potential increase 35, got %d", total)
	}
}

func TestRecommend_StaleLeadGetsRefresh(t *testing.T) {
	lead := Lead{
		Status:       domain.StatusQualified,
		Notes:        "Budget approved",
		NextFollowUp: timePtr(testNow.Add(24 * time.Hour)),
		UpdatedAt:    timePtr(testNow.Add(-40 * day)),
	}

	got := Recommend(lead, DefaultWeights(), testNow)

	want := []Recommendation{
		{Action: ActionRefreshLeadRecord, PotentialScoreIncrease: 10, Priority: PriorityHigh},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected recommendations (-want +got):\n%s", diff)
	}
}

func TestRecommend_FullyWorkedLeadHasNone(t *testing.T) {
	lead := Lead{
		Status:       domain.StatusContacted,
		Notes:        "Called twice",
		NextFollowUp: timePtr(testNow.Add(24 * time.Hour)),
		UpdatedAt:    timePtr(testNow),
	}

	got := Recommend(lead, DefaultWeights(), testNow)
	if got == nil {
		t.Fatalf("expected empty non-nil slice")
	}
	if len(got) != 0 {
		t.Fatalf("expected no recommendations, got %v", got)
	}
}

func TestRecommend_IncompleteLeadSkipsStaleness(t *testing.T) {
	lead := Lead{
		Status:       domain.StatusContacted,
		Notes:        "n",
		NextFollowUp: timePtr(testNow),
	}

	if got := Recommend(lead, DefaultWeights(), testNow); len(got) != 0 {
		t.Fatalf("expected no recommendations without updated_at, got %v", got)
	}
}

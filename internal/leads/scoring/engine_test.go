package scoring

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"lead_portal_backend/internal/leads/domain"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
)

func TestEngine_ScoreStampsMetadata(t *testing.T) {
	engine := NewEngine(nil, WithClock(FixedClock{At: testNow}))
	lead := hotReferralLead()

	scored, err := engine.Score(lead)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if scored.LeadID != lead.ID {
		t.Fatalf("expected lead id %s, got %s", lead.ID, scored.LeadID)
	}
	if scored.Score != 100 {
		t.Fatalf("expected score 100, got %d", scored.Score)
	}
	if !scored.Metadata.LastCalculated.Equal(testNow) {
		t.Fatalf("expected last calculated %s, got %s", testNow, scored.Metadata.LastCalculated)
	}
	if scored.Metadata.Classification != TierHot {
		t.Fatalf("expected Hot, got %s", scored.Metadata.Classification)
	}
	if scored.Metadata.Breakdown.Total != scored.Score {
		t.Fatalf("expected breakdown total to match score")
	}
}

func TestEngine_BatchKeepsIncompleteLeadsInPlace(t *testing.T) {
	engine := NewEngine(nil, WithClock(FixedClock{At: testNow}), WithBatchWorkers(2))

	incomplete := hotReferralLead()
	incomplete.UpdatedAt = nil
	leads := []Lead{hotReferralLead(), incomplete, hotReferralLead()}

	items := engine.BatchScore(context.Background(), leads)

	if len(items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(items))
	}
	for i, item := range items {
		if item.LeadID != leads[i].ID {
			t.Fatalf("expected item %d to belong to lead %s, got %s", i, leads[i].ID, item.LeadID)
		}
	}
	if !items[0].OK() || !items[2].OK() {
		t.Fatalf("expected first and last leads to score, got %v / %v", items[0].Err, items[2].Err)
	}
	if !items[1].Incomplete() {
		t.Fatalf("expected second lead to be incomplete, got %v", items[1].Err)
	}
	if failed := CountFailures(items); failed != 1 {
		t.Fatalf("expected 1 failure, got %d", failed)
	}
}

func TestEngine_BatchMatchesIndividualScores(t *testing.T) {
	engine := NewEngine(nil, WithClock(FixedClock{At: testNow}), WithBatchWorkers(3))

	var leads []Lead
	for i := 0; i < 25; i++ {
		lead := hotReferralLead()
		lead.CompanySize = intPtr(i * 40)
		if i%3 == 0 {
			lead.Status = domain.StatusLost
		}
		if i%4 == 0 {
			lead.UpdatedAt = timePtr(testNow.Add(-60 * day))
		}
		leads = append(leads, lead)
	}

	items := engine.BatchScore(context.Background(), leads)
	for i, item := range items {
		single, err := engine.Score(leads[i])
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if diff := cmp.Diff(single, item.Scored); diff != "" {
			t.Fatalf("lead %d differs between batch and single scoring (-single +batch):\n%s", i, diff)
		}
	}
}

func TestEngine_BatchStopsOnCancelledContext(t *testing.T) {
	engine := NewEngine(nil, WithClock(FixedClock{At: testNow}))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	leads := []Lead{hotReferralLead(), hotReferralLead()}
	items := engine.BatchScore(ctx, leads)

	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	for _, item := range items {
		if !errors.Is(item.Err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", item.Err)
		}
		if item.LeadID == uuid.Nil {
			t.Fatalf("expected lead id to be carried on cancelled item")
		}
	}
}

func TestEngine_BatchEmpty(t *testing.T) {
	items := NewEngine(nil).BatchScore(context.Background(), nil)
	if len(items) != 0 {
		t.Fatalf("expected no items, got %d", len(items))
	}
}

func TestLoadWeightsFile_LayersOverDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "weights.yaml")
	content := []byte(`
lead_source:
  Referral: 45
  Podcast: 12
status_cold: -20
target_regions:
  - Bavaria
stale_after_days: 14
`)
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("write weights file: %v", err)
	}

	w, err := LoadWeightsFile(path)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got := w.Weight(CategoryLeadSource, "Referral"); got != 45 {
		t.Fatalf("expected overridden Referral 45, got %d", got)
	}
	if got := w.Weight(CategoryLeadSource, "Podcast"); got != 12 {
		t.Fatalf("expected new Podcast 12, got %d", got)
	}
	if got := w.Weight(CategoryLeadSource, "Website"); got != 10 {
		t.Fatalf("expected default Website 10 to survive, got %d", got)
	}
	if got := w.StatusCold(); got != -20 {
		t.Fatalf("expected status_cold -20, got %d", got)
	}
	if got := w.BaseScore(); got != 5 {
		t.Fatalf("expected default base score 5, got %d", got)
	}
	if diff := cmp.Diff([]string{"Bavaria"}, w.TargetRegions()); diff != "" {
		t.Fatalf("unexpected regions (-want +got):\n%s", diff)
	}
	if got := w.StaleAfterDays(); got != 14 {
		t.Fatalf("expected stale after 14 days, got %d", got)
	}
}

func TestLoadWeightsFile_MissingFileUsesDefaults(t *testing.T) {
	w, err := LoadWeightsFile(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if diff := cmp.Diff(DefaultWeightsConfig(), w.Config()); diff != "" {
		t.Fatalf("expected defaults (-want +got):\n%s", diff)
	}
}

func TestLoadWeightsFile_RejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.yaml")
	if err := os.WriteFile(path, []byte("lead_source: [not, a, map"), 0o600); err != nil {
		t.Fatalf("write weights file: %v", err)
	}
	if _, err := LoadWeightsFile(path); err == nil {
		t.Fatalf("expected parse error")
	}
}

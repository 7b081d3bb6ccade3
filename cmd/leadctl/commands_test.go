package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"lead_portal_backend/internal/leads/scoring"
	"lead_portal_backend/platform/config"

	"gopkg.in/yaml.v3"
)

func run(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCmd(&config.Config{ScoringBatchWorkers: 2})

	var stdout, stderr bytes.Buffer
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestScoreReadsStdin(t *testing.T) {
	input := `[
		{"id":"11111111-1111-1111-1111-111111111111","role_in_decision":"Decision Maker","lead_source":"Referral","status":"New","updated_at":"2026-03-01T00:00:00Z"},
		{"id":"22222222-2222-2222-2222-222222222222","status":"New"}
	]`

	stdout, stderr, err := run(t, input, "score", "--at", "2026-03-02T00:00:00Z", "--recommend")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 output lines, got %d: %s", len(lines), stdout)
	}

	var first scoreOutput
	if err := json.Unmarshal([]byte(lines[0]), &first); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if first.LeadScore == nil || first.Breakdown == nil || first.Classification == "" {
		t.Fatalf("expected scored first lead, got %+v", first)
	}
	if len(first.Recommendations) == 0 {
		t.Fatalf("expected recommendations for a lead without notes or follow-up")
	}

	var second scoreOutput
	if err := json.Unmarshal([]byte(lines[1]), &second); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if second.LeadScore != nil || second.Error == "" {
		t.Fatalf("expected incomplete second lead, got %+v", second)
	}
	if !strings.Contains(stderr, "1 of 2") {
		t.Fatalf("expected failure summary, got %q", stderr)
	}
}

func TestScoreRejectsBadInput(t *testing.T) {
	if _, _, err := run(t, `{"not":"an array"}`, "score"); err == nil {
		t.Fatalf("expected decode error")
	}
	if _, _, err := run(t, `[]`, "score", "--at", "yesterday"); err == nil {
		t.Fatalf("expected invalid --at error")
	}
}

func TestWeightsPrintsEffectiveTable(t *testing.T) {
	stdout, _, err := run(t, "", "weights", "--regions", "Ontario,Quebec")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var cfg scoring.WeightsConfig
	if err := yaml.Unmarshal([]byte(stdout), &cfg); err != nil {
		t.Fatalf("decode yaml: %v", err)
	}
	if cfg.RoleInDecision["Decision Maker"] != 30 {
		t.Fatalf("expected default role weights, got %v", cfg.RoleInDecision)
	}
	if len(cfg.TargetRegions) != 2 || cfg.TargetRegions[1] != "Quebec" {
		t.Fatalf("expected overridden regions, got %v", cfg.TargetRegions)
	}
}

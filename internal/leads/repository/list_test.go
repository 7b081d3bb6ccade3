package repository

import (
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestBuildLeadListWhereDefaultsToLiveLeads(t *testing.T) {
	where, args, next := buildLeadListWhere(ListParams{})
	if where != "deleted_at IS NULL" {
		t.Fatalf("expected only the soft delete filter, got %q", where)
	}
	if len(args) != 0 {
		t.Fatalf("expected no args, got %d", len(args))
	}
	if next != 1 {
		t.Fatalf("expected next placeholder 1, got %d", next)
	}
}

func TestBuildLeadListWhereNumbersPlaceholdersInOrder(t *testing.T) {
	status := "New"
	industry := "Soft_ware"
	tier := "Hot"
	converted := false
	assignee := uuid.New()

	where, args, next := buildLeadListWhere(ListParams{
		Status:         &status,
		AssignedTo:     &assignee,
		IsConverted:    &converted,
		Industry:       &industry,
		Classification: &tier,
		Search:         "acme",
	})

	for _, fragment := range []string{
		"status = $1",
		"assigned_to = $2",
		"is_converted = $3",
		"industry ILIKE $4",
		"scoring_metadata->>'classification' = $5",
		"email ILIKE $6",
	} {
		if !strings.Contains(where, fragment) {
			t.Fatalf("expected %q in %q", fragment, where)
		}
	}
	if len(args) != 6 || next != 7 {
		t.Fatalf("expected 6 args and next placeholder 7, got %d and %d", len(args), next)
	}
	if args[3] != `%Soft\_ware%` {
		t.Fatalf("expected escaped industry pattern, got %v", args[3])
	}
}

func TestMapLeadSortColumnWhitelist(t *testing.T) {
	cases := map[string]string{
		"":                  "created_at",
		"lead_score":        "lead_score",
		"company":           "company_name",
		"last_name":         "last_name",
		"email; DROP TABLE": "created_at",
	}
	for input, want := range cases {
		if got := mapLeadSortColumn(input); got != want {
			t.Fatalf("expected %q for %q, got %q", want, input, got)
		}
	}
}

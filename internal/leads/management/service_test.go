package management

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"lead_portal_backend/internal/events"
	"lead_portal_backend/internal/leads/repository"
	"lead_portal_backend/internal/leads/transport"
	"lead_portal_backend/platform/apperr"
	"lead_portal_backend/platform/phone"

	"github.com/google/uuid"
)

var fixedNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

type testRepo struct {
	leads     map[uuid.UUID]repository.Lead
	lastList  repository.ListParams
	listTotal int
	updates   int
}

func newTestRepo() *testRepo {
	return &testRepo{leads: make(map[uuid.UUID]repository.Lead)}
}

func (r *testRepo) Create(_ context.Context, params repository.CreateLeadParams) (repository.Lead, error) {
	for _, lead := range r.leads {
		if lead.Email == params.Email {
			return repository.Lead{}, repository.ErrDuplicateEmail
		}
	}
	lead := repository.Lead{
		ID:             uuid.New(),
		FirstName:      params.FirstName,
		LastName:       params.LastName,
		Email:          params.Email,
		Phone:          params.Phone,
		CompanyName:    params.CompanyName,
		RoleInDecision: params.RoleInDecision,
		LeadSource:     params.LeadSource,
		Status:         params.Status,
		Priority:       params.Priority,
		Tags:           params.Tags,
		Notes:          params.Notes,
		IsConverted:    params.IsConverted,
		ConvertedAt:    params.ConvertedAt,
		CreatedBy:      params.CreatedBy,
		CreatedAt:      fixedNow,
		UpdatedAt:      fixedNow,
	}
	r.leads[lead.ID] = lead
	return lead, nil
}

func (r *testRepo) GetByID(_ context.Context, id uuid.UUID) (repository.Lead, error) {
	lead, ok := r.leads[id]
	if !ok {
		return repository.Lead{}, repository.ErrNotFound
	}
	return lead, nil
}

func (r *testRepo) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]repository.Lead, error) {
	out := []repository.Lead{}
	for _, id := range ids {
		if lead, err := r.GetByID(ctx, id); err == nil {
			out = append(out, lead)
		}
	}
	return out, nil
}

func (r *testRepo) List(_ context.Context, params repository.ListParams) ([]repository.Lead, int, error) {
	r.lastList = params
	return []repository.Lead{}, r.listTotal, nil
}

func (r *testRepo) Update(_ context.Context, id uuid.UUID, params repository.UpdateLeadParams) (repository.Lead, error) {
	lead, ok := r.leads[id]
	if !ok {
		return repository.Lead{}, repository.ErrNotFound
	}
	r.updates++
	if params.Status != nil {
		lead.Status = *params.Status
	}
	if params.Priority != nil {
		lead.Priority = *params.Priority
	}
	if params.Phone != nil {
		lead.Phone = params.Phone
	}
	if params.IsConverted != nil {
		lead.IsConverted = *params.IsConverted
	}
	if params.ConvertedAtSet {
		lead.ConvertedAt = params.ConvertedAt
	}
	r.leads[id] = lead
	return lead, nil
}

func (r *testRepo) SoftDelete(_ context.Context, id uuid.UUID) error {
	if _, ok := r.leads[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.leads, id)
	return nil
}

func (r *testRepo) HardDelete(ctx context.Context, id uuid.UUID) error {
	return r.SoftDelete(ctx, id)
}

func (r *testRepo) BulkSoftDelete(_ context.Context, ids []uuid.UUID) ([]uuid.UUID, error) {
	deleted := []uuid.UUID{}
	for _, id := range ids {
		if _, ok := r.leads[id]; ok {
			delete(r.leads, id)
			deleted = append(deleted, id)
		}
	}
	return deleted, nil
}

func (r *testRepo) GetStats(context.Context) (repository.LeadStats, error) {
	return repository.LeadStats{
		Overview:           repository.LeadOverview{TotalLeads: 3, NewLeads: 2},
		StatusDistribution: []repository.Bucket{{Key: "New", Count: 2}, {Key: "Lost", Count: 1}},
	}, nil
}

type testBus struct {
	mu        sync.Mutex
	published []events.Event
}

func (b *testBus) Publish(_ context.Context, event events.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.published = append(b.published, event)
}

func (b *testBus) PublishSync(ctx context.Context, event events.Event) error {
	b.Publish(ctx, event)
	return nil
}

func (b *testBus) Subscribe(string, events.Handler) {}

func (b *testBus) names() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	names := make([]string, len(b.published))
	for i, event := range b.published {
		names[i] = event.EventName()
	}
	return names
}

func newTestService() (*Service, *testRepo, *testBus) {
	repo := newTestRepo()
	bus := &testBus{}
	svc := New(repo, bus, phone.NewNormalizer("US"))
	svc.now = func() time.Time { return fixedNow }
	return svc, repo, bus
}

func validCreateRequest() transport.CreateLeadRequest {
	return transport.CreateLeadRequest{
		FirstName:   " Ada ",
		LastName:    "Lovelace",
		Email:       "  Ada@Example.COM ",
		Phone:       "(201) 555-0123",
		CompanyName: "Analytical <b>Engines</b>",
		LeadSource:  "Referral",
		Notes:       "<script>x</script>Met at the expo",
		Tags:        []string{"vip", "VIP", " "},
	}
}

func TestCreateNormalizesInputAndAppliesDefaults(t *testing.T) {
	svc, _, bus := newTestService()

	lead, err := svc.Create(context.Background(), validCreateRequest(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if lead.Email != "ada@example.com" {
		t.Fatalf("expected lower-cased email, got %q", lead.Email)
	}
	if lead.FirstName != "Ada" {
		t.Fatalf("expected trimmed first name, got %q", lead.FirstName)
	}
	if lead.Phone == nil || *lead.Phone != "+12015550123" {
		t.Fatalf("expected E.164 phone, got %v", lead.Phone)
	}
	if lead.CompanyName != "Analytical Engines" {
		t.Fatalf("expected HTML stripped company, got %q", lead.CompanyName)
	}
	if lead.Status != "New" || lead.Priority != "Medium" || lead.RoleInDecision != "Influencer" {
		t.Fatalf("expected defaults New/Medium/Influencer, got %s/%s/%s", lead.Status, lead.Priority, lead.RoleInDecision)
	}
	if len(lead.Tags) != 1 || lead.Tags[0] != "vip" {
		t.Fatalf("expected deduplicated tags [vip], got %v", lead.Tags)
	}
	if names := bus.names(); len(names) != 1 || names[0] != "leads.lead.created" {
		t.Fatalf("expected one created event, got %v", names)
	}
}

func TestCreateDuplicateEmailIsConflict(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	if _, err := svc.Create(ctx, validCreateRequest(), nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, err := svc.Create(ctx, validCreateRequest(), nil)
	if !apperr.Is(err, apperr.KindConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestCreateConvertedStampsConversion(t *testing.T) {
	svc, _, _ := newTestService()
	req := validCreateRequest()
	req.IsConverted = true

	lead, err := svc.Create(context.Background(), req, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if lead.Status != "Converted" || lead.ConvertedAt == nil || !lead.ConvertedAt.Equal(fixedNow) {
		t.Fatalf("expected Converted with converted_at %v, got %s %v", fixedNow, lead.Status, lead.ConvertedAt)
	}
}

func TestUpdateToConvertedOnlyStampsOnce(t *testing.T) {
	svc, repo, _ := newTestService()
	ctx := context.Background()
	created, _ := svc.Create(ctx, validCreateRequest(), nil)

	status := "Converted"
	lead, err := svc.Update(ctx, created.ID, transport.UpdateLeadRequest{Status: &status})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !lead.IsConverted || lead.ConvertedAt == nil {
		t.Fatalf("expected converted lead, got %+v", lead)
	}

	first := *lead.ConvertedAt
	svc.now = func() time.Time { return fixedNow.Add(48 * time.Hour) }
	lead, err = svc.Update(ctx, created.ID, transport.UpdateLeadRequest{Status: &status})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !lead.ConvertedAt.Equal(first) {
		t.Fatalf("expected converted_at to stay %v, got %v", first, lead.ConvertedAt)
	}
	if repo.updates != 2 {
		t.Fatalf("expected 2 updates, got %d", repo.updates)
	}
}

func TestUpdateRejectsEmptyPayload(t *testing.T) {
	svc, _, _ := newTestService()
	_, err := svc.Update(context.Background(), uuid.New(), transport.UpdateLeadRequest{})
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestUpdateUnknownLeadIsNotFound(t *testing.T) {
	svc, _, _ := newTestService()
	priority := "High"
	_, err := svc.Update(context.Background(), uuid.New(), transport.UpdateLeadRequest{Priority: &priority})
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestListAppliesPagingDefaultsAndFilters(t *testing.T) {
	svc, repo, _ := newTestService()
	repo.listTotal = 25

	resp, err := svc.List(context.Background(), transport.ListLeadsRequest{
		Page:           3,
		Status:         "New",
		Classification: "Hot",
		Search:         "  acme ",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if repo.lastList.Limit != 10 || repo.lastList.Offset != 20 {
		t.Fatalf("expected limit 10 offset 20, got %d %d", repo.lastList.Limit, repo.lastList.Offset)
	}
	if repo.lastList.Status == nil || *repo.lastList.Status != "New" {
		t.Fatalf("expected status filter New, got %v", repo.lastList.Status)
	}
	if repo.lastList.Classification == nil || *repo.lastList.Classification != "Hot" {
		t.Fatalf("expected classification filter Hot, got %v", repo.lastList.Classification)
	}
	if repo.lastList.Priority != nil {
		t.Fatalf("expected no priority filter, got %v", *repo.lastList.Priority)
	}
	if repo.lastList.Search != "acme" {
		t.Fatalf("expected trimmed search, got %q", repo.lastList.Search)
	}

	want := transport.Pagination{CurrentPage: 3, PerPage: 10, TotalItems: 25, TotalPages: 3, HasNextPage: false, HasPrevPage: true}
	if resp.Pagination != want {
		t.Fatalf("expected %+v, got %+v", want, resp.Pagination)
	}
}

func TestListRejectsMalformedAssignee(t *testing.T) {
	svc, _, _ := newTestService()
	_, err := svc.List(context.Background(), transport.ListLeadsRequest{AssignedTo: "nope"})
	if !apperr.Is(err, apperr.KindBadRequest) {
		t.Fatalf("expected bad request, got %v", err)
	}
}

func TestNewPagination(t *testing.T) {
	tests := []struct {
		name                   string
		page, limit, total     int
		wantPages              int
		wantNext, wantPrevious bool
	}{
		{name: "empty", page: 1, limit: 10, total: 0, wantPages: 0},
		{name: "single page", page: 1, limit: 10, total: 10, wantPages: 1},
		{name: "first of many", page: 1, limit: 10, total: 11, wantPages: 2, wantNext: true},
		{name: "beyond last", page: 5, limit: 10, total: 11, wantPages: 2, wantPrevious: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewPagination(tt.page, tt.limit, tt.total)
			if got.TotalPages != tt.wantPages || got.HasNextPage != tt.wantNext || got.HasPrevPage != tt.wantPrevious {
				t.Fatalf("expected pages=%d next=%v prev=%v, got %+v", tt.wantPages, tt.wantNext, tt.wantPrevious, got)
			}
		})
	}
}

func TestBulkUpdateReportsEachLead(t *testing.T) {
	svc, _, bus := newTestService()
	ctx := context.Background()
	created, _ := svc.Create(ctx, validCreateRequest(), nil)
	missing := uuid.New()

	priority := "Urgent"
	resp, err := svc.BulkUpdate(ctx, transport.BulkUpdateRequest{
		LeadIDs:    []uuid.UUID{created.ID, missing, created.ID},
		UpdateData: transport.UpdateLeadRequest{Priority: &priority},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if resp.Total != 2 || resp.Succeeded != 1 || resp.Failed != 1 {
		t.Fatalf("expected 2 total 1 ok 1 failed, got %+v", resp)
	}
	if resp.Results[1].ID != missing || resp.Results[1].Message != "lead not found" {
		t.Fatalf("expected missing lead reported, got %+v", resp.Results[1])
	}
	if names := bus.names(); len(names) != 2 || names[1] != "leads.lead.updated" {
		t.Fatalf("expected created then updated events, got %v", names)
	}
}

func TestBulkUpdateRejectsSharedEmail(t *testing.T) {
	svc, _, _ := newTestService()
	email := "shared@example.com"
	_, err := svc.BulkUpdate(context.Background(), transport.BulkUpdateRequest{
		LeadIDs:    []uuid.UUID{uuid.New(), uuid.New()},
		UpdateData: transport.UpdateLeadRequest{Email: &email},
	})
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestBulkDeleteReportsEachLead(t *testing.T) {
	svc, repo, _ := newTestService()
	ctx := context.Background()
	created, _ := svc.Create(ctx, validCreateRequest(), nil)
	missing := uuid.New()

	resp, err := svc.BulkDelete(ctx, transport.BulkIDsRequest{LeadIDs: []uuid.UUID{missing, created.ID}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Succeeded != 1 || resp.Failed != 1 {
		t.Fatalf("expected 1 ok 1 failed, got %+v", resp)
	}
	if resp.Results[0].Success || !resp.Results[1].Success {
		t.Fatalf("expected results in request order, got %+v", resp.Results)
	}
	if _, err := repo.GetByID(ctx, created.ID); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected lead to be gone, got %v", err)
	}
}

func TestStatsMapsDistributions(t *testing.T) {
	svc, _, _ := newTestService()
	stats, err := svc.Stats(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.Overview.TotalLeads != 3 || len(stats.StatusDistribution) != 2 {
		t.Fatalf("unexpected stats %+v", stats)
	}
	if stats.StatusDistribution[0].Value != "New" || stats.StatusDistribution[0].Count != 2 {
		t.Fatalf("expected New=2 first, got %+v", stats.StatusDistribution[0])
	}
	if stats.IndustryDistribution == nil {
		t.Fatalf("expected empty slice for industries, got nil")
	}
}

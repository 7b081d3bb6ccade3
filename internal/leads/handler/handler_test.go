package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"lead_portal_backend/internal/leads/transport"
	"lead_portal_backend/platform/apperr"
	"lead_portal_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type testLeadService struct {
	created  transport.CreateLeadRequest
	listReq  transport.ListLeadsRequest
	getErr   error
	bulkReq  transport.BulkIDsRequest
	deleteID uuid.UUID
}

func (s *testLeadService) Create(_ context.Context, req transport.CreateLeadRequest, _ *uuid.UUID) (transport.LeadResponse, error) {
	s.created = req
	return transport.LeadResponse{ID: uuid.New(), Email: req.Email}, nil
}

func (s *testLeadService) GetByID(_ context.Context, id uuid.UUID) (transport.LeadResponse, error) {
	if s.getErr != nil {
		return transport.LeadResponse{}, s.getErr
	}
	return transport.LeadResponse{ID: id}, nil
}

func (s *testLeadService) Update(_ context.Context, id uuid.UUID, _ transport.UpdateLeadRequest) (transport.LeadResponse, error) {
	return transport.LeadResponse{ID: id}, nil
}

func (s *testLeadService) SoftDelete(_ context.Context, id uuid.UUID) error {
	s.deleteID = id
	return nil
}

func (s *testLeadService) HardDelete(_ context.Context, id uuid.UUID) error {
	s.deleteID = id
	return nil
}

func (s *testLeadService) List(_ context.Context, req transport.ListLeadsRequest) (transport.LeadListResponse, error) {
	s.listReq = req
	return transport.LeadListResponse{Items: []transport.LeadResponse{}}, nil
}

func (s *testLeadService) Stats(context.Context) (transport.LeadStatsResponse, error) {
	return transport.LeadStatsResponse{}, nil
}

func (s *testLeadService) BulkUpdate(context.Context, transport.BulkUpdateRequest) (transport.BulkResponse, error) {
	return transport.BulkResponse{}, nil
}

func (s *testLeadService) BulkDelete(_ context.Context, req transport.BulkIDsRequest) (transport.BulkResponse, error) {
	s.bulkReq = req
	return transport.BulkResponse{Total: len(req.LeadIDs)}, nil
}

type testScoringService struct {
	scoringErr error
	rescoreErr error
}

func (s *testScoringService) Scoring(_ context.Context, id uuid.UUID) (transport.ScoringResponse, error) {
	if s.scoringErr != nil {
		return transport.ScoringResponse{}, s.scoringErr
	}
	return transport.ScoringResponse{LeadID: id, Classification: "Hot"}, nil
}

func (s *testScoringService) Recommendations(_ context.Context, id uuid.UUID) (transport.RecommendationsResponse, error) {
	return transport.RecommendationsResponse{LeadID: id, Recommendations: []transport.RecommendationResponse{}}, nil
}

func (s *testScoringService) Score(_ context.Context, id uuid.UUID) (transport.ScoreLeadResponse, error) {
	return transport.ScoreLeadResponse{LeadID: id, LeadScore: 70, Classification: "Hot"}, nil
}

func (s *testScoringService) BulkScore(_ context.Context, ids []uuid.UUID) (transport.BulkScoreResponse, error) {
	return transport.BulkScoreResponse{ScoredCount: len(ids)}, nil
}

func (s *testScoringService) RequestRescore(context.Context) (transport.RescoreResponse, error) {
	if s.rescoreErr != nil {
		return transport.RescoreResponse{}, s.rescoreErr
	}
	return transport.RescoreResponse{TaskID: "t1", Queue: "default"}, nil
}

func newTestRouter(t *testing.T, leads *testLeadService, scoring *testScoringService) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	val := validator.New()
	if err := transport.RegisterValidations(val); err != nil {
		t.Fatalf("register validations: %v", err)
	}

	engine := gin.New()
	h := New(leads, scoring, val)
	h.RegisterRoutes(engine.Group("/api/v1/leads"), func(c *gin.Context) { c.Next() })
	return engine
}

func perform(engine *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec
}

func TestCreateValidatesBody(t *testing.T) {
	leads := &testLeadService{}
	engine := newTestRouter(t, leads, &testScoringService{})

	rec := perform(engine, http.MethodPost, "/api/v1/leads", `{"first_name":"Ada"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"field":"email"`) {
		t.Fatalf("expected email field error, got %s", rec.Body.String())
	}

	rec = perform(engine, http.MethodPost, "/api/v1/leads",
		`{"first_name":"Ada","last_name":"Lovelace","email":"ada@example.com","company_name":"AE","lead_source":"Referral"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if leads.created.Email != "ada@example.com" {
		t.Fatalf("expected request passed to service, got %+v", leads.created)
	}
}

func TestMalformedJSONIsBadRequest(t *testing.T) {
	engine := newTestRouter(t, &testLeadService{}, &testScoringService{})
	rec := perform(engine, http.MethodPost, "/api/v1/leads", `{"first_name":`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestGetByIDRejectsInvalidUUID(t *testing.T) {
	engine := newTestRouter(t, &testLeadService{}, &testScoringService{})
	rec := perform(engine, http.MethodGet, "/api/v1/leads/not-a-uuid", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestGetByIDMapsNotFound(t *testing.T) {
	engine := newTestRouter(t, &testLeadService{getErr: apperr.NotFound("lead not found")}, &testScoringService{})
	rec := perform(engine, http.MethodGet, "/api/v1/leads/"+uuid.NewString(), "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestListBindsQuery(t *testing.T) {
	leads := &testLeadService{}
	engine := newTestRouter(t, leads, &testScoringService{})

	rec := perform(engine, http.MethodGet, "/api/v1/leads?page=2&limit=25&status=Qualified&sort_by=lead_score&sort_order=asc&is_converted=false", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if leads.listReq.Page != 2 || leads.listReq.Limit != 25 || leads.listReq.Status != "Qualified" {
		t.Fatalf("unexpected bound request %+v", leads.listReq)
	}
	if leads.listReq.IsConverted == nil || *leads.listReq.IsConverted {
		t.Fatalf("expected is_converted=false, got %v", leads.listReq.IsConverted)
	}

	rec = perform(engine, http.MethodGet, "/api/v1/leads?limit=500", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for limit over 100, got %d", rec.Code)
	}
}

func TestStaticRoutesWinOverID(t *testing.T) {
	leads := &testLeadService{}
	engine := newTestRouter(t, leads, &testScoringService{})

	if rec := perform(engine, http.MethodGet, "/api/v1/leads/stats", ""); rec.Code != http.StatusOK {
		t.Fatalf("expected stats 200, got %d", rec.Code)
	}

	id := uuid.New()
	rec := perform(engine, http.MethodPost, "/api/v1/leads/bulk/delete", `{"lead_ids":["`+id.String()+`"]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected bulk delete 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if len(leads.bulkReq.LeadIDs) != 1 || leads.bulkReq.LeadIDs[0] != id {
		t.Fatalf("unexpected bulk request %+v", leads.bulkReq)
	}
}

func TestBulkScoreRequiresIDs(t *testing.T) {
	engine := newTestRouter(t, &testLeadService{}, &testScoringService{})
	rec := perform(engine, http.MethodPost, "/api/v1/leads/bulk/score", `{"lead_ids":[]}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestScoringMapsUnprocessable(t *testing.T) {
	scoring := &testScoringService{scoringErr: apperr.Unprocessable("lead has no updated_at and cannot be scored")}
	engine := newTestRouter(t, &testLeadService{}, scoring)

	rec := perform(engine, http.MethodGet, "/api/v1/leads/"+uuid.NewString()+"/scoring", "")
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
}

func TestScoreReturnsResult(t *testing.T) {
	engine := newTestRouter(t, &testLeadService{}, &testScoringService{})
	rec := perform(engine, http.MethodPost, "/api/v1/leads/"+uuid.NewString()+"/score", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var body transport.ScoreLeadResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.LeadScore != 70 || body.Classification != "Hot" {
		t.Fatalf("unexpected body %+v", body)
	}
}

func TestRescoreStatuses(t *testing.T) {
	engine := newTestRouter(t, &testLeadService{}, &testScoringService{})
	if rec := perform(engine, http.MethodPost, "/api/v1/leads/rescore", ""); rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", rec.Code)
	}

	engine = newTestRouter(t, &testLeadService{}, &testScoringService{rescoreErr: apperr.Unavailable("background rescoring is not configured")})
	if rec := perform(engine, http.MethodPost, "/api/v1/leads/rescore", ""); rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
}

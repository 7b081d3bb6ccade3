// Package management handles lead CRUD operations.
// This is a vertically sliced feature package containing service logic
// for creating, reading, updating, listing and deleting leads.
package management

import (
	"context"
	"errors"
	"strings"
	"time"

	"lead_portal_backend/internal/events"
	"lead_portal_backend/internal/leads/domain"
	"lead_portal_backend/internal/leads/repository"
	"lead_portal_backend/internal/leads/transport"
	"lead_portal_backend/platform/apperr"
	"lead_portal_backend/platform/phone"
	"lead_portal_backend/platform/sanitize"

	"github.com/google/uuid"
)

const (
	defaultPage  = 1
	defaultLimit = 10
	maxLimit     = 100

	msgLeadNotFound   = "lead not found"
	msgDuplicateEmail = "a lead with this email already exists"
)

// Repository defines the data access interface needed by the management service.
// This is a consumer-driven interface - only what management needs.
type Repository interface {
	repository.LeadReader
	repository.LeadWriter
	repository.StatsReader
}

// Service handles lead management operations (CRUD).
type Service struct {
	repo     Repository
	eventBus events.Bus
	phones   *phone.Normalizer
	now      func() time.Time
}

// New creates a new lead management service.
func New(repo Repository, eventBus events.Bus, phones *phone.Normalizer) *Service {
	if phones == nil {
		phones = phone.NewNormalizer(phone.DefaultRegion)
	}
	return &Service{
		repo:     repo,
		eventBus: eventBus,
		phones:   phones,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Create creates a new lead.
func (s *Service) Create(ctx context.Context, req transport.CreateLeadRequest, actorID *uuid.UUID) (transport.LeadResponse, error) {
	params := repository.CreateLeadParams{
		FirstName:            sanitize.Line(req.FirstName),
		LastName:             sanitize.Line(req.LastName),
		Email:                sanitize.Email(req.Email),
		Phone:                optionalString(s.phones.E164(req.Phone)),
		JobTitle:             optionalString(sanitize.Line(req.JobTitle)),
		CompanyName:          sanitize.Line(req.CompanyName),
		CompanyWebsite:       optionalString(strings.TrimSpace(req.CompanyWebsite)),
		RoleInDecision:       req.RoleInDecision,
		Industry:             optionalString(sanitize.Line(req.Industry)),
		CompanySize:          req.CompanySize,
		AnnualRevenue:        req.AnnualRevenue,
		LeadSource:           sanitize.Line(req.LeadSource),
		Status:               req.Status,
		Priority:             req.Priority,
		Tags:                 sanitize.Tags(req.Tags),
		Notes:                optionalString(sanitize.Text(req.Notes)),
		AssignedTo:           req.AssignedTo,
		NextFollowUp:         req.NextFollowUp,
		DealStage:            optionalString(sanitize.Line(req.DealStage)),
		AccountID:            req.AccountID,
		SourceCampaign:       optionalString(sanitize.Line(req.SourceCampaign)),
		CommunicationChannel: optionalString(req.CommunicationChannel),
		IsConverted:          req.IsConverted,
		CreatedBy:            actorID,
	}

	if params.RoleInDecision == "" {
		params.RoleInDecision = domain.DefaultRole
	}
	if params.Status == "" {
		params.Status = string(domain.StatusNew)
	}
	if params.Priority == "" {
		params.Priority = string(domain.PriorityMedium)
	}
	if req.Location != nil {
		params.LocationCity, params.LocationState, params.LocationCountry = locationColumns(*req.Location)
	}

	// A lead created as converted carries both the flag and the status.
	if params.IsConverted || params.Status == string(domain.StatusConverted) {
		convertedAt := s.now()
		params.IsConverted = true
		params.Status = string(domain.StatusConverted)
		params.ConvertedAt = &convertedAt
	}

	lead, err := s.repo.Create(ctx, params)
	if err != nil {
		return transport.LeadResponse{}, mapRepoError(err)
	}

	s.eventBus.Publish(ctx, events.LeadCreated{
		BaseEvent:   events.NewBaseEvent(),
		LeadID:      lead.ID,
		Email:       lead.Email,
		CompanyName: lead.CompanyName,
		LeadSource:  lead.LeadSource,
		CreatedBy:   lead.CreatedBy,
	})

	return ToLeadResponse(lead), nil
}

// GetByID retrieves a lead by ID.
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (transport.LeadResponse, error) {
	lead, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return transport.LeadResponse{}, mapRepoError(err)
	}
	return ToLeadResponse(lead), nil
}

// Update applies a partial update to a lead.
func (s *Service) Update(ctx context.Context, id uuid.UUID, req transport.UpdateLeadRequest) (transport.LeadResponse, error) {
	params := s.buildUpdateParams(req)
	if params.IsEmpty() {
		return transport.LeadResponse{}, apperr.Validation("no fields to update")
	}

	lead, err := s.update(ctx, id, params)
	if err != nil {
		return transport.LeadResponse{}, err
	}
	return ToLeadResponse(lead), nil
}

func (s *Service) update(ctx context.Context, id uuid.UUID, params repository.UpdateLeadParams) (repository.Lead, error) {
	if err := s.applyConversion(ctx, id, &params); err != nil {
		return repository.Lead{}, err
	}

	lead, err := s.repo.Update(ctx, id, params)
	if err != nil {
		return repository.Lead{}, mapRepoError(err)
	}

	s.eventBus.Publish(ctx, events.LeadUpdated{
		BaseEvent:     events.NewBaseEvent(),
		LeadID:        lead.ID,
		ChangedFields: params.ChangedFields(),
	})

	return lead, nil
}

// applyConversion keeps status, is_converted and converted_at consistent.
// converted_at is only stamped on the transition, so re-saving a converted
// lead keeps its original conversion time.
func (s *Service) applyConversion(ctx context.Context, id uuid.UUID, params *repository.UpdateLeadParams) error {
	toConverted := params.Status != nil && *params.Status == string(domain.StatusConverted)
	flagged := params.IsConverted != nil && *params.IsConverted
	unflagged := params.IsConverted != nil && !*params.IsConverted

	switch {
	case toConverted || flagged:
		current, err := s.repo.GetByID(ctx, id)
		if err != nil {
			return mapRepoError(err)
		}

		converted := true
		status := string(domain.StatusConverted)
		params.IsConverted = &converted
		params.Status = &status
		if !current.IsConverted {
			convertedAt := s.now()
			params.ConvertedAt = &convertedAt
			params.ConvertedAtSet = true
		}
	case unflagged:
		params.ConvertedAt = nil
		params.ConvertedAtSet = true
	}
	return nil
}

func (s *Service) buildUpdateParams(req transport.UpdateLeadRequest) repository.UpdateLeadParams {
	params := repository.UpdateLeadParams{
		FirstName:            sanitize.LinePtr(req.FirstName),
		LastName:             sanitize.LinePtr(req.LastName),
		JobTitle:             sanitize.LinePtr(req.JobTitle),
		CompanyName:          sanitize.LinePtr(req.CompanyName),
		CompanyWebsite:       req.CompanyWebsite,
		RoleInDecision:       req.RoleInDecision,
		Industry:             sanitize.LinePtr(req.Industry),
		CompanySize:          req.CompanySize,
		AnnualRevenue:        req.AnnualRevenue,
		LeadSource:           sanitize.LinePtr(req.LeadSource),
		Status:               req.Status,
		Priority:             req.Priority,
		Notes:                sanitize.TextPtr(req.Notes),
		DealStage:            sanitize.LinePtr(req.DealStage),
		SourceCampaign:       sanitize.LinePtr(req.SourceCampaign),
		CommunicationChannel: req.CommunicationChannel,
		IsConverted:          req.IsConverted,
	}

	if req.Email != nil {
		email := sanitize.Email(*req.Email)
		params.Email = &email
	}
	if req.Phone != nil {
		params.Phone = s.phones.E164Ptr(req.Phone)
	}
	if req.Location != nil {
		params.LocationSet = true
		params.LocationCity, params.LocationState, params.LocationCountry = locationColumns(*req.Location)
	}
	if req.Tags != nil {
		params.TagsSet = true
		params.Tags = sanitize.Tags(req.Tags)
	}
	if req.AssignedTo.Set {
		params.AssignedToSet = true
		params.AssignedTo = req.AssignedTo.Value
	}
	if req.NextFollowUp.Set {
		params.NextFollowUpSet = true
		params.NextFollowUp = req.NextFollowUp.Value
	}
	if req.AccountID.Set {
		params.AccountIDSet = true
		params.AccountID = req.AccountID.Value
	}

	return params
}

// SoftDelete hides a lead from every read path.
func (s *Service) SoftDelete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.SoftDelete(ctx, id); err != nil {
		return mapRepoError(err)
	}
	s.publishDeleted(ctx, id, false)
	return nil
}

// HardDelete permanently removes a lead.
func (s *Service) HardDelete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.HardDelete(ctx, id); err != nil {
		return mapRepoError(err)
	}
	s.publishDeleted(ctx, id, true)
	return nil
}

func (s *Service) publishDeleted(ctx context.Context, id uuid.UUID, hard bool) {
	s.eventBus.Publish(ctx, events.LeadDeleted{
		BaseEvent: events.NewBaseEvent(),
		LeadID:    id,
		Hard:      hard,
	})
}

// List retrieves a filtered, sorted and paginated list of leads.
func (s *Service) List(ctx context.Context, req transport.ListLeadsRequest) (transport.LeadListResponse, error) {
	page := req.Page
	if page < 1 {
		page = defaultPage
	}
	limit := req.Limit
	if limit < 1 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	params := repository.ListParams{
		Status:         optionalString(req.Status),
		Priority:       optionalString(req.Priority),
		CompanyName:    optionalString(strings.TrimSpace(req.CompanyName)),
		LeadSource:     optionalString(strings.TrimSpace(req.LeadSource)),
		IsConverted:    req.IsConverted,
		Industry:       optionalString(strings.TrimSpace(req.Industry)),
		RoleInDecision: optionalString(req.RoleInDecision),
		Classification: optionalString(req.Classification),
		Search:         strings.TrimSpace(req.Search),
		Offset:         (page - 1) * limit,
		Limit:          limit,
		SortBy:         req.SortBy,
		SortOrder:      req.SortOrder,
	}

	if req.AssignedTo != "" {
		assignee, err := uuid.Parse(req.AssignedTo)
		if err != nil {
			return transport.LeadListResponse{}, apperr.BadRequest("invalid assigned_to")
		}
		params.AssignedTo = &assignee
	}

	leads, total, err := s.repo.List(ctx, params)
	if err != nil {
		return transport.LeadListResponse{}, err
	}

	items := make([]transport.LeadResponse, len(leads))
	for i, lead := range leads {
		items[i] = ToLeadResponse(lead)
	}

	return transport.LeadListResponse{
		Items:      items,
		Pagination: NewPagination(page, limit, total),
	}, nil
}

// NewPagination derives the page envelope for a result of total items.
func NewPagination(page, limit, total int) transport.Pagination {
	totalPages := 0
	if limit > 0 {
		totalPages = (total + limit - 1) / limit
	}
	return transport.Pagination{
		CurrentPage: page,
		PerPage:     limit,
		TotalItems:  total,
		TotalPages:  totalPages,
		HasNextPage: page < totalPages,
		HasPrevPage: page > 1,
	}
}

// Stats returns dashboard counts and distributions.
func (s *Service) Stats(ctx context.Context) (transport.LeadStatsResponse, error) {
	stats, err := s.repo.GetStats(ctx)
	if err != nil {
		return transport.LeadStatsResponse{}, err
	}
	return ToStatsResponse(stats), nil
}

// BulkUpdate applies the same update to every id and reports each outcome.
func (s *Service) BulkUpdate(ctx context.Context, req transport.BulkUpdateRequest) (transport.BulkResponse, error) {
	params := s.buildUpdateParams(req.UpdateData)
	if params.IsEmpty() {
		return transport.BulkResponse{}, apperr.Validation("no fields to update")
	}

	ids := uniqueIDs(req.LeadIDs)
	// Emails are unique, so one address can never apply to several leads.
	if params.Email != nil && len(ids) > 1 {
		return transport.BulkResponse{}, apperr.Validation("email cannot be bulk updated")
	}

	results := make([]transport.BulkResult, 0, len(ids))
	for _, id := range ids {
		if _, err := s.update(ctx, id, params); err != nil {
			results = append(results, transport.BulkResult{ID: id, Success: false, Message: errorMessage(err)})
			continue
		}
		results = append(results, transport.BulkResult{ID: id, Success: true, Message: "lead updated"})
	}

	return newBulkResponse(results), nil
}

// BulkDelete soft deletes every id and reports each outcome.
func (s *Service) BulkDelete(ctx context.Context, req transport.BulkIDsRequest) (transport.BulkResponse, error) {
	ids := uniqueIDs(req.LeadIDs)

	deleted, err := s.repo.BulkSoftDelete(ctx, ids)
	if err != nil {
		return transport.BulkResponse{}, err
	}

	deletedSet := make(map[uuid.UUID]struct{}, len(deleted))
	for _, id := range deleted {
		deletedSet[id] = struct{}{}
		s.publishDeleted(ctx, id, false)
	}

	results := make([]transport.BulkResult, 0, len(ids))
	for _, id := range ids {
		if _, ok := deletedSet[id]; ok {
			results = append(results, transport.BulkResult{ID: id, Success: true, Message: "lead deleted"})
			continue
		}
		results = append(results, transport.BulkResult{ID: id, Success: false, Message: msgLeadNotFound})
	}

	return newBulkResponse(results), nil
}

func newBulkResponse(results []transport.BulkResult) transport.BulkResponse {
	resp := transport.BulkResponse{Total: len(results), Results: results}
	for _, result := range results {
		if result.Success {
			resp.Succeeded++
		} else {
			resp.Failed++
		}
	}
	return resp
}

func mapRepoError(err error) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return apperr.NotFound(msgLeadNotFound)
	case errors.Is(err, repository.ErrDuplicateEmail):
		return apperr.Conflict(msgDuplicateEmail)
	default:
		return err
	}
}

// errorMessage exposes typed messages and hides internal failures.
func errorMessage(err error) string {
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return "internal error"
}

func uniqueIDs(ids []uuid.UUID) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(ids))
	seen := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func optionalString(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}

func locationColumns(loc transport.LocationRequest) (city, state, country *string) {
	return optionalString(sanitize.Line(loc.City)),
		optionalString(sanitize.Line(loc.State)),
		optionalString(sanitize.Line(loc.Country))
}

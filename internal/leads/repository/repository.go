package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound       = errors.New("lead not found")
	ErrDuplicateEmail = errors.New("a lead with this email already exists")
)

const pgUniqueViolation = "23505"

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

type Lead struct {
	ID                   uuid.UUID
	FirstName            string
	LastName             string
	Email                string
	Phone                *string
	JobTitle             *string
	CompanyName          string
	CompanyWebsite       *string
	RoleInDecision       string
	Industry             *string
	CompanySize          *int
	AnnualRevenue        *float64
	LeadSource           string
	Status               string
	Priority             string
	LocationCity         *string
	LocationState        *string
	LocationCountry      *string
	Tags                 []string
	Notes                *string
	AssignedTo           *uuid.UUID
	NextFollowUp         *time.Time
	DealStage            *string
	AccountID            *uuid.UUID
	SourceCampaign       *string
	CommunicationChannel *string
	IsConverted          bool
	ConvertedAt          *time.Time
	CreatedBy            *uuid.UUID
	LeadScore            int
	ScoringMetadata      json.RawMessage
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

const leadColumns = `id, first_name, last_name, email, phone, job_title, company_name, company_website,
	role_in_decision, industry, company_size, annual_revenue, lead_source, status, priority,
	location_city, location_state, location_country, tags, notes, assigned_to, next_follow_up,
	deal_stage, account_id, source_campaign, communication_channel, is_converted, converted_at,
	created_by, lead_score, scoring_metadata, created_at, updated_at`

func scanLead(row pgx.Row) (Lead, error) {
	var lead Lead
	err := row.Scan(
		&lead.ID, &lead.FirstName, &lead.LastName, &lead.Email, &lead.Phone, &lead.JobTitle, &lead.CompanyName, &lead.CompanyWebsite,
		&lead.RoleInDecision, &lead.Industry, &lead.CompanySize, &lead.AnnualRevenue, &lead.LeadSource, &lead.Status, &lead.Priority,
		&lead.LocationCity, &lead.LocationState, &lead.LocationCountry, &lead.Tags, &lead.Notes, &lead.AssignedTo, &lead.NextFollowUp,
		&lead.DealStage, &lead.AccountID, &lead.SourceCampaign, &lead.CommunicationChannel, &lead.IsConverted, &lead.ConvertedAt,
		&lead.CreatedBy, &lead.LeadScore, &lead.ScoringMetadata, &lead.CreatedAt, &lead.UpdatedAt,
	)
	return lead, err
}

func collectLeads(rows pgx.Rows) ([]Lead, error) {
	defer rows.Close()

	leads := make([]Lead, 0)
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, err
		}
		leads = append(leads, lead)
	}

	if rows.Err() != nil {
		return nil, rows.Err()
	}

	return leads, nil
}

type CreateLeadParams struct {
	FirstName            string
	LastName             string
	Email                string
	Phone                *string
	JobTitle             *string
	CompanyName          string
	CompanyWebsite       *string
	RoleInDecision       string
	Industry             *string
	CompanySize          *int
	AnnualRevenue        *float64
	LeadSource           string
	Status               string
	Priority             string
	LocationCity         *string
	LocationState        *string
	LocationCountry      *string
	Tags                 []string
	Notes                *string
	AssignedTo           *uuid.UUID
	NextFollowUp         *time.Time
	DealStage            *string
	AccountID            *uuid.UUID
	SourceCampaign       *string
	CommunicationChannel *string
	IsConverted          bool
	ConvertedAt          *time.Time
	CreatedBy            *uuid.UUID
}

func (r *Repository) Create(ctx context.Context, params CreateLeadParams) (Lead, error) {
	tags := params.Tags
	if tags == nil {
		tags = []string{}
	}

	row := r.pool.QueryRow(ctx, `
		INSERT INTO leads (
			first_name, last_name, email, phone, job_title, company_name, company_website,
			role_in_decision, industry, company_size, annual_revenue, lead_source, status, priority,
			location_city, location_state, location_country, tags, notes, assigned_to, next_follow_up,
			deal_stage, account_id, source_campaign, communication_channel, is_converted, converted_at, created_by
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27, $28)
		RETURNING `+leadColumns,
		params.FirstName, params.LastName, params.Email, params.Phone, params.JobTitle, params.CompanyName, params.CompanyWebsite,
		params.RoleInDecision, params.Industry, params.CompanySize, params.AnnualRevenue, params.LeadSource, params.Status, params.Priority,
		params.LocationCity, params.LocationState, params.LocationCountry, tags, params.Notes, params.AssignedTo, params.NextFollowUp,
		params.DealStage, params.AccountID, params.SourceCampaign, params.CommunicationChannel, params.IsConverted, params.ConvertedAt, params.CreatedBy,
	)

	lead, err := scanLead(row)
	if err != nil {
		return Lead{}, translateWriteError(err)
	}
	return lead, nil
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (Lead, error) {
	lead, err := scanLead(r.pool.QueryRow(ctx, `
		SELECT `+leadColumns+`
		FROM leads WHERE id = $1 AND deleted_at IS NULL
	`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Lead{}, ErrNotFound
	}
	return lead, err
}

// GetByIDs returns the non-deleted leads among ids, in no particular order.
func (r *Repository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]Lead, error) {
	if len(ids) == 0 {
		return []Lead{}, nil
	}

	rows, err := r.pool.Query(ctx, `
		SELECT `+leadColumns+`
		FROM leads WHERE id = ANY($1::uuid[]) AND deleted_at IS NULL
	`, ids)
	if err != nil {
		return nil, err
	}
	return collectLeads(rows)
}

type UpdateLeadParams struct {
	FirstName            *string
	LastName             *string
	Email                *string
	Phone                *string
	JobTitle             *string
	CompanyName          *string
	CompanyWebsite       *string
	RoleInDecision       *string
	Industry             *string
	CompanySize          *int
	AnnualRevenue        *float64
	LeadSource           *string
	Status               *string
	Priority             *string
	LocationSet          bool
	LocationCity         *string
	LocationState        *string
	LocationCountry      *string
	Tags                 []string
	TagsSet              bool
	Notes                *string
	AssignedTo           *uuid.UUID
	AssignedToSet        bool
	NextFollowUp         *time.Time
	NextFollowUpSet      bool
	DealStage            *string
	AccountID            *uuid.UUID
	AccountIDSet         bool
	SourceCampaign       *string
	CommunicationChannel *string
	IsConverted          *bool
	ConvertedAt          *time.Time
	ConvertedAtSet       bool
}

type columnUpdate struct {
	enabled bool
	column  string
	value   interface{}
}

func (p UpdateLeadParams) columns() []columnUpdate {
	return []columnUpdate{
		{p.FirstName != nil, "first_name", p.FirstName},
		{p.LastName != nil, "last_name", p.LastName},
		{p.Email != nil, "email", p.Email},
		{p.Phone != nil, "phone", p.Phone},
		{p.JobTitle != nil, "job_title", p.JobTitle},
		{p.CompanyName != nil, "company_name", p.CompanyName},
		{p.CompanyWebsite != nil, "company_website", p.CompanyWebsite},
		{p.RoleInDecision != nil, "role_in_decision", p.RoleInDecision},
		{p.Industry != nil, "industry", p.Industry},
		{p.CompanySize != nil, "company_size", p.CompanySize},
		{p.AnnualRevenue != nil, "annual_revenue", p.AnnualRevenue},
		{p.LeadSource != nil, "lead_source", p.LeadSource},
		{p.Status != nil, "status", p.Status},
		{p.Priority != nil, "priority", p.Priority},
		{p.LocationSet, "location_city", p.LocationCity},
		{p.LocationSet, "location_state", p.LocationState},
		{p.LocationSet, "location_country", p.LocationCountry},
		{p.TagsSet, "tags", nonNilTags(p.Tags)},
		{p.Notes != nil, "notes", p.Notes},
		{p.AssignedToSet, "assigned_to", p.AssignedTo},
		{p.NextFollowUpSet, "next_follow_up", p.NextFollowUp},
		{p.DealStage != nil, "deal_stage", p.DealStage},
		{p.AccountIDSet, "account_id", p.AccountID},
		{p.SourceCampaign != nil, "source_campaign", p.SourceCampaign},
		{p.CommunicationChannel != nil, "communication_channel", p.CommunicationChannel},
		{p.IsConverted != nil, "is_converted", p.IsConverted},
		{p.ConvertedAtSet, "converted_at", p.ConvertedAt},
	}
}

// ChangedFields lists the columns the update touches.
func (p UpdateLeadParams) ChangedFields() []string {
	changed := make([]string, 0)
	for _, field := range p.columns() {
		if field.enabled {
			changed = append(changed, field.column)
		}
	}
	return changed
}

// IsEmpty reports whether the update touches no column.
func (p UpdateLeadParams) IsEmpty() bool {
	return len(p.ChangedFields()) == 0
}

// Update applies a partial update and always bumps updated_at, since any
// edit counts as activity on the lead.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, params UpdateLeadParams) (Lead, error) {
	setClauses := []string{}
	args := []interface{}{}
	argIdx := 1

	for _, field := range params.columns() {
		if !field.enabled {
			continue
		}
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", field.column, argIdx))
		args = append(args, field.value)
		argIdx++
	}

	setClauses = append(setClauses, "updated_at = now()")
	args = append(args, id)

	query := fmt.Sprintf(`
		UPDATE leads SET %s
		WHERE id = $%d AND deleted_at IS NULL
		RETURNING %s
	`, strings.Join(setClauses, ", "), argIdx, leadColumns)

	lead, err := scanLead(r.pool.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return Lead{}, ErrNotFound
	}
	if err != nil {
		return Lead{}, translateWriteError(err)
	}
	return lead, nil
}

func (r *Repository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE leads SET deleted_at = now(), updated_at = now()
		WHERE id = $1 AND deleted_at IS NULL
	`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// HardDelete removes the row, including leads that were soft deleted before.
func (r *Repository) HardDelete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM leads WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// BulkSoftDelete soft deletes every live lead in ids and returns the ids it deleted.
func (r *Repository) BulkSoftDelete(ctx context.Context, ids []uuid.UUID) ([]uuid.UUID, error) {
	if len(ids) == 0 {
		return []uuid.UUID{}, nil
	}

	rows, err := r.pool.Query(ctx, `
		UPDATE leads SET deleted_at = now(), updated_at = now()
		WHERE id = ANY($1::uuid[]) AND deleted_at IS NULL
		RETURNING id
	`, ids)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[uuid.UUID])
}

func translateWriteError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return ErrDuplicateEmail
	}
	return err
}

func nonNilTags(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}

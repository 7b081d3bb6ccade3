package transport

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Request DTOs
type LocationRequest struct {
	City    string `json:"city" validate:"max=100"`
	State   string `json:"state" validate:"max=100"`
	Country string `json:"country" validate:"max=100"`
}

type CreateLeadRequest struct {
	FirstName            string           `json:"first_name" validate:"required,min=1,max=100"`
	LastName             string           `json:"last_name" validate:"required,min=1,max=100"`
	Email                string           `json:"email" validate:"required,email,max=254"`
	Phone                string           `json:"phone,omitempty" validate:"omitempty,phone_format"`
	JobTitle             string           `json:"job_title,omitempty" validate:"max=150"`
	CompanyName          string           `json:"company_name" validate:"required,min=1,max=200"`
	CompanyWebsite       string           `json:"company_website,omitempty" validate:"omitempty,url,max=255"`
	RoleInDecision       string           `json:"role_in_decision,omitempty" validate:"lead_role"`
	Industry             string           `json:"industry,omitempty" validate:"max=100"`
	CompanySize          *int             `json:"company_size,omitempty" validate:"omitempty,min=0"`
	AnnualRevenue        *float64         `json:"annual_revenue,omitempty" validate:"omitempty,min=0"`
	LeadSource           string           `json:"lead_source" validate:"required,min=1,max=100"`
	Status               string           `json:"status,omitempty" validate:"lead_status"`
	Priority             string           `json:"priority,omitempty" validate:"lead_priority"`
	Location             *LocationRequest `json:"location,omitempty"`
	Tags                 []string         `json:"tags,omitempty" validate:"max=50,dive,max=50"`
	Notes                string           `json:"notes,omitempty" validate:"max=5000"`
	AssignedTo           *uuid.UUID       `json:"assigned_to,omitempty"`
	NextFollowUp         *time.Time       `json:"next_follow_up,omitempty"`
	DealStage            string           `json:"deal_stage,omitempty" validate:"max=100"`
	AccountID            *uuid.UUID       `json:"account_id,omitempty"`
	SourceCampaign       string           `json:"source_campaign,omitempty" validate:"max=200"`
	CommunicationChannel string           `json:"communication_channel,omitempty" validate:"lead_channel"`
	IsConverted          bool             `json:"is_converted,omitempty"`
}

type UpdateLeadRequest struct {
	FirstName            *string          `json:"first_name,omitempty" validate:"omitempty,min=1,max=100"`
	LastName             *string          `json:"last_name,omitempty" validate:"omitempty,min=1,max=100"`
	Email                *string          `json:"email,omitempty" validate:"omitempty,email,max=254"`
	Phone                *string          `json:"phone,omitempty" validate:"omitempty,phone_format"`
	JobTitle             *string          `json:"job_title,omitempty" validate:"omitempty,max=150"`
	CompanyName          *string          `json:"company_name,omitempty" validate:"omitempty,min=1,max=200"`
	CompanyWebsite       *string          `json:"company_website,omitempty" validate:"omitempty,url,max=255"`
	RoleInDecision       *string          `json:"role_in_decision,omitempty" validate:"omitempty,lead_role"`
	Industry             *string          `json:"industry,omitempty" validate:"omitempty,max=100"`
	CompanySize          *int             `json:"company_size,omitempty" validate:"omitempty,min=0"`
	AnnualRevenue        *float64         `json:"annual_revenue,omitempty" validate:"omitempty,min=0"`
	LeadSource           *string          `json:"lead_source,omitempty" validate:"omitempty,min=1,max=100"`
	Status               *string          `json:"status,omitempty" validate:"omitempty,lead_status"`
	Priority             *string          `json:"priority,omitempty" validate:"omitempty,lead_priority"`
	Location             *LocationRequest `json:"location,omitempty"`
	Tags                 []string         `json:"tags,omitempty" validate:"omitempty,max=50,dive,max=50"`
	Notes                *string          `json:"notes,omitempty" validate:"omitempty,max=5000"`
	AssignedTo           OptionalUUID     `json:"assigned_to,omitempty" validate:"-"`
	NextFollowUp         OptionalTime     `json:"next_follow_up,omitempty" validate:"-"`
	DealStage            *string          `json:"deal_stage,omitempty" validate:"omitempty,max=100"`
	AccountID            OptionalUUID     `json:"account_id,omitempty" validate:"-"`
	SourceCampaign       *string          `json:"source_campaign,omitempty" validate:"omitempty,max=200"`
	CommunicationChannel *string          `json:"communication_channel,omitempty" validate:"omitempty,lead_channel"`
	IsConverted          *bool            `json:"is_converted,omitempty"`
}

type ListLeadsRequest struct {
	Page           int    `form:"page" validate:"omitempty,min=1"`
	Limit          int    `form:"limit" validate:"omitempty,min=1,max=100"`
	Status         string `form:"status" validate:"omitempty,lead_status"`
	Priority       string `form:"priority" validate:"omitempty,lead_priority"`
	AssignedTo     string `form:"assigned_to" validate:"omitempty,uuid"`
	CompanyName    string `form:"company" validate:"omitempty,max=200"`
	LeadSource     string `form:"lead_source" validate:"omitempty,max=100"`
	IsConverted    *bool  `form:"is_converted"`
	Industry       string `form:"industry" validate:"omitempty,max=100"`
	RoleInDecision string `form:"role_in_decision" validate:"omitempty,lead_role"`
	Classification string `form:"classification" validate:"omitempty,oneof=Hot Warm Cold Disqualified"`
	Search         string `form:"search" validate:"omitempty,max=100"`
	SortBy         string `form:"sort_by" validate:"omitempty,oneof=created_at updated_at first_name last_name company company_name lead_score"`
	SortOrder      string `form:"sort_order" validate:"omitempty,oneof=asc desc"`
}

type BulkUpdateRequest struct {
	LeadIDs    []uuid.UUID       `json:"lead_ids" validate:"required,min=1,max=100,dive,required"`
	UpdateData UpdateLeadRequest `json:"update_data"`
}

type BulkIDsRequest struct {
	LeadIDs []uuid.UUID `json:"lead_ids" validate:"required,min=1,max=100,dive,required"`
}

// Response DTOs
type LocationResponse struct {
	City    *string `json:"city,omitempty"`
	State   *string `json:"state,omitempty"`
	Country *string `json:"country,omitempty"`
}

type LeadResponse struct {
	ID                   uuid.UUID        `json:"id"`
	FirstName            string           `json:"first_name"`
	LastName             string           `json:"last_name"`
	FullName             string           `json:"full_name"`
	Email                string           `json:"email"`
	Phone                *string          `json:"phone,omitempty"`
	JobTitle             *string          `json:"job_title,omitempty"`
	CompanyName          string           `json:"company_name"`
	CompanyWebsite       *string          `json:"company_website,omitempty"`
	RoleInDecision       string           `json:"role_in_decision"`
	Industry             *string          `json:"industry,omitempty"`
	CompanySize          *int             `json:"company_size,omitempty"`
	AnnualRevenue        *float64         `json:"annual_revenue,omitempty"`
	LeadSource           string           `json:"lead_source"`
	Status               string           `json:"status"`
	Priority             string           `json:"priority"`
	Location             LocationResponse `json:"location"`
	Tags                 []string         `json:"tags"`
	Notes                *string          `json:"notes,omitempty"`
	AssignedTo           *uuid.UUID       `json:"assigned_to,omitempty"`
	NextFollowUp         *time.Time       `json:"next_follow_up,omitempty"`
	DealStage            *string          `json:"deal_stage,omitempty"`
	AccountID            *uuid.UUID       `json:"account_id,omitempty"`
	SourceCampaign       *string          `json:"source_campaign,omitempty"`
	CommunicationChannel *string          `json:"communication_channel,omitempty"`
	IsConverted          bool             `json:"is_converted"`
	ConvertedAt          *time.Time       `json:"converted_at,omitempty"`
	CreatedBy            *uuid.UUID       `json:"created_by,omitempty"`
	LeadScore            int              `json:"lead_score"`
	ScoringMetadata      json.RawMessage  `json:"scoring_metadata"`
	CreatedAt            time.Time        `json:"created_at"`
	UpdatedAt            time.Time        `json:"updated_at"`
}

type Pagination struct {
	CurrentPage int  `json:"current_page"`
	PerPage     int  `json:"per_page"`
	TotalItems  int  `json:"total_items"`
	TotalPages  int  `json:"total_pages"`
	HasNextPage bool `json:"has_next_page"`
	HasPrevPage bool `json:"has_prev_page"`
}

type LeadListResponse struct {
	Items      []LeadResponse `json:"items"`
	Pagination Pagination     `json:"pagination"`
}

type StatsOverview struct {
	TotalLeads     int     `json:"total_leads"`
	ConvertedLeads int     `json:"converted_leads"`
	NewLeads       int     `json:"new_leads"`
	ContactedLeads int     `json:"contacted_leads"`
	QualifiedLeads int     `json:"qualified_leads"`
	LostLeads      int     `json:"lost_leads"`
	AverageScore   float64 `json:"average_score"`
}

type DistributionEntry struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

type LeadStatsResponse struct {
	Overview                   StatsOverview       `json:"overview"`
	StatusDistribution         []DistributionEntry `json:"status_distribution"`
	PriorityDistribution       []DistributionEntry `json:"priority_distribution"`
	IndustryDistribution       []DistributionEntry `json:"industry_distribution"`
	ClassificationDistribution []DistributionEntry `json:"classification_distribution"`
}

// BulkResult is the per-id outcome of a bulk operation.
type BulkResult struct {
	ID      uuid.UUID `json:"id"`
	Success bool      `json:"success"`
	Message string    `json:"message"`
}

type BulkResponse struct {
	Total     int          `json:"total"`
	Succeeded int          `json:"succeeded"`
	Failed    int          `json:"failed"`
	Results   []BulkResult `json:"results"`
}

// Scoring DTOs
type ScoringResponse struct {
	LeadID          uuid.UUID       `json:"lead_id"`
	CurrentScore    int             `json:"current_score"`
	Classification  string          `json:"classification"`
	Breakdown       ScoreBreakdown  `json:"breakdown"`
	ScoringMetadata json.RawMessage `json:"scoring_metadata"`
}

type ScoreBreakdown struct {
	Demographics  int `json:"demographics"`
	SourceQuality int `json:"source_quality"`
	Engagement    int `json:"engagement"`
	Decay         int `json:"decay"`
	Total         int `json:"total"`
}

type RecommendationResponse struct {
	Action                 string `json:"action"`
	PotentialScoreIncrease int    `json:"potential_score_increase"`
	Priority               string `json:"priority"`
}

type RecommendationsResponse struct {
	LeadID                 uuid.UUID                `json:"lead_id"`
	CurrentScore           int                      `json:"current_score"`
	Recommendations        []RecommendationResponse `json:"recommendations"`
	PotentialScoreIncrease int                      `json:"potential_score_increase"`
}

type ScoreLeadResponse struct {
	LeadID                 uuid.UUID      `json:"lead_id"`
	PreviousScore          int            `json:"previous_score"`
	LeadScore              int            `json:"lead_score"`
	PreviousClassification string         `json:"previous_classification,omitempty"`
	Classification         string         `json:"classification"`
	Breakdown              ScoreBreakdown `json:"breakdown"`
	LastCalculated         time.Time      `json:"last_calculated"`
}

type BulkScoreItem struct {
	ID             uuid.UUID `json:"id"`
	LeadScore      *int      `json:"lead_score,omitempty"`
	Classification string    `json:"classification,omitempty"`
	Success        bool      `json:"success"`
	Message        string    `json:"message"`
}

type BulkScoreResponse struct {
	ScoredCount int             `json:"scored_count"`
	FailedCount int             `json:"failed_count"`
	Leads       []BulkScoreItem `json:"leads"`
}

type RescoreResponse struct {
	TaskID string `json:"task_id"`
	Queue  string `json:"queue"`
}

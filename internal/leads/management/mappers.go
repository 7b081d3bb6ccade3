package management

import (
	"encoding/json"
	"strings"

	"lead_portal_backend/internal/leads/repository"
	"lead_portal_backend/internal/leads/transport"
)

var emptyMetadata = json.RawMessage(`{}`)

// ToLeadResponse converts a repository lead to its API shape.
func ToLeadResponse(lead repository.Lead) transport.LeadResponse {
	tags := lead.Tags
	if tags == nil {
		tags = []string{}
	}

	metadata := lead.ScoringMetadata
	if len(metadata) == 0 {
		metadata = emptyMetadata
	}

	return transport.LeadResponse{
		ID:             lead.ID,
		FirstName:      lead.FirstName,
		LastName:       lead.LastName,
		FullName:       strings.TrimSpace(lead.FirstName + " " + lead.LastName),
		Email:          lead.Email,
		Phone:          lead.Phone,
		JobTitle:       lead.JobTitle,
		CompanyName:    lead.CompanyName,
		CompanyWebsite: lead.CompanyWebsite,
		RoleInDecision: lead.RoleInDecision,
		Industry:       lead.Industry,
		CompanySize:    lead.CompanySize,
		AnnualRevenue:  lead.AnnualRevenue,
		LeadSource:     lead.LeadSource,
		Status:         lead.Status,
		Priority:       lead.Priority,
		Location: transport.LocationResponse{
			City:    lead.LocationCity,
			State:   lead.LocationState,
			Country: lead.LocationCountry,
		},
		Tags:                 tags,
		Notes:                lead.Notes,
		AssignedTo:           lead.AssignedTo,
		NextFollowUp:         lead.NextFollowUp,
		DealStage:            lead.DealStage,
		AccountID:            lead.AccountID,
		SourceCampaign:       lead.SourceCampaign,
		CommunicationChannel: lead.CommunicationChannel,
		IsConverted:          lead.IsConverted,
		ConvertedAt:          lead.ConvertedAt,
		CreatedBy:            lead.CreatedBy,
		LeadScore:            lead.LeadScore,
		ScoringMetadata:      metadata,
		CreatedAt:            lead.CreatedAt,
		UpdatedAt:            lead.UpdatedAt,
	}
}

// ToStatsResponse converts repository aggregates to the stats payload.
func ToStatsResponse(stats repository.LeadStats) transport.LeadStatsResponse {
	return transport.LeadStatsResponse{
		Overview: transport.StatsOverview{
			TotalLeads:     stats.Overview.TotalLeads,
			ConvertedLeads: stats.Overview.ConvertedLeads,
			NewLeads:       stats.Overview.NewLeads,
			ContactedLeads: stats.Overview.ContactedLeads,
			QualifiedLeads: stats.Overview.QualifiedLeads,
			LostLeads:      stats.Overview.LostLeads,
			AverageScore:   stats.Overview.AverageScore,
		},
		StatusDistribution:         toDistribution(stats.StatusDistribution),
		PriorityDistribution:       toDistribution(stats.PriorityDistribution),
		IndustryDistribution:       toDistribution(stats.IndustryDistribution),
		ClassificationDistribution: toDistribution(stats.ClassificationDistribution),
	}
}

func toDistribution(buckets []repository.Bucket) []transport.DistributionEntry {
	entries := make([]transport.DistributionEntry, len(buckets))
	for i, bucket := range buckets {
		entries[i] = transport.DistributionEntry{Value: bucket.Key, Count: bucket.Count}
	}
	return entries
}

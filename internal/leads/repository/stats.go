package repository

import (
	"context"
	"fmt"
)

// LeadOverview aggregates headline counts over live leads.
type LeadOverview struct {
	TotalLeads     int
	ConvertedLeads int
	NewLeads       int
	ContactedLeads int
	QualifiedLeads int
	LostLeads      int
	AverageScore   float64
}

// Bucket is one group of a distribution.
type Bucket struct {
	Key   string
	Count int
}

// LeadStats is the payload behind the stats endpoint.
type LeadStats struct {
	Overview                   LeadOverview
	StatusDistribution         []Bucket
	PriorityDistribution       []Bucket
	IndustryDistribution       []Bucket
	ClassificationDistribution []Bucket
}

const industryDistributionLimit = 10

// GetStats returns overview counts and distributions for live leads.
func (r *Repository) GetStats(ctx context.Context) (LeadStats, error) {
	var stats LeadStats

	err := r.pool.QueryRow(ctx, `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE is_converted),
			COUNT(*) FILTER (WHERE status = 'New'),
			COUNT(*) FILTER (WHERE status = 'Contacted'),
			COUNT(*) FILTER (WHERE status = 'Qualified'),
			COUNT(*) FILTER (WHERE status = 'Lost'),
			COALESCE(AVG(lead_score), 0)::float8
		FROM leads
		WHERE deleted_at IS NULL
	`).Scan(
		&stats.Overview.TotalLeads,
		&stats.Overview.ConvertedLeads,
		&stats.Overview.NewLeads,
		&stats.Overview.ContactedLeads,
		&stats.Overview.QualifiedLeads,
		&stats.Overview.LostLeads,
		&stats.Overview.AverageScore,
	)
	if err != nil {
		return LeadStats{}, err
	}

	if stats.StatusDistribution, err = r.distribution(ctx, "status", 0); err != nil {
		return LeadStats{}, err
	}
	if stats.PriorityDistribution, err = r.distribution(ctx, "priority", 0); err != nil {
		return LeadStats{}, err
	}
	if stats.IndustryDistribution, err = r.distribution(ctx, "industry", industryDistributionLimit); err != nil {
		return LeadStats{}, err
	}
	if stats.ClassificationDistribution, err = r.distribution(ctx, "scoring_metadata->>'classification'", 0); err != nil {
		return LeadStats{}, err
	}

	return stats, nil
}

// distribution groups live leads by expr. expr is always a constant from
// this file, never user input. A limit of 0 returns every group.
func (r *Repository) distribution(ctx context.Context, expr string, limit int) ([]Bucket, error) {
	query := fmt.Sprintf(`
		SELECT %[1]s AS key, COUNT(*) AS count
		FROM leads
		WHERE deleted_at IS NULL AND %[1]s IS NOT NULL AND %[1]s <> ''
		GROUP BY key
		ORDER BY count DESC, key ASC
	`, expr)
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	buckets := make([]Bucket, 0)
	for rows.Next() {
		var bucket Bucket
		if err := rows.Scan(&bucket.Key, &bucket.Count); err != nil {
			return nil, err
		}
		buckets = append(buckets, bucket)
	}

	if rows.Err() != nil {
		return nil, rows.Err()
	}

	return buckets, nil
}

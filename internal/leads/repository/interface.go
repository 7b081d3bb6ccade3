package repository

import (
	"context"

	"github.com/google/uuid"
)

// =====================================
// Segregated Interfaces (Interface Segregation Principle)
// =====================================

// LeadReader provides read-only access to lead data.
type LeadReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (Lead, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]Lead, error)
	List(ctx context.Context, params ListParams) ([]Lead, int, error)
}

// LeadWriter provides write operations for lead management.
type LeadWriter interface {
	Create(ctx context.Context, params CreateLeadParams) (Lead, error)
	Update(ctx context.Context, id uuid.UUID, params UpdateLeadParams) (Lead, error)
	SoftDelete(ctx context.Context, id uuid.UUID) error
	HardDelete(ctx context.Context, id uuid.UUID) error
	BulkSoftDelete(ctx context.Context, ids []uuid.UUID) ([]uuid.UUID, error)
}

// StatsReader provides dashboard aggregates.
type StatsReader interface {
	GetStats(ctx context.Context) (LeadStats, error)
}

// ScoreWriter persists scoring results.
type ScoreWriter interface {
	UpdateScore(ctx context.Context, update ScoreUpdate) error
	UpdateScores(ctx context.Context, updates []ScoreUpdate) (int, error)
}

// LeadPager walks every live lead in stable id order.
type LeadPager interface {
	ListPage(ctx context.Context, after uuid.UUID, limit int) ([]Lead, error)
}

// LeadsRepository is the full repository surface.
type LeadsRepository interface {
	LeadReader
	LeadWriter
	StatsReader
	ScoreWriter
	LeadPager
}

var _ LeadsRepository = (*Repository)(nil)

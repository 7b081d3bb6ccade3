package repository

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ScoreUpdate is one persisted scoring result.
type ScoreUpdate struct {
	LeadID   uuid.UUID
	Score    int
	Metadata json.RawMessage
}

// UpdateScore writes the score and its metadata. updated_at is left alone:
// it anchors the staleness decay, and a recalculation is not activity.
func (r *Repository) UpdateScore(ctx context.Context, update ScoreUpdate) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE leads SET lead_score = $2, scoring_metadata = $3
		WHERE id = $1 AND deleted_at IS NULL
	`, update.LeadID, update.Score, update.Metadata)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateScores persists many results in one round trip. Leads deleted in
// the meantime are skipped; the returned count covers rows actually written.
func (r *Repository) UpdateScores(ctx context.Context, updates []ScoreUpdate) (int, error) {
	if len(updates) == 0 {
		return 0, nil
	}

	batch := &pgx.Batch{}
	for _, update := range updates {
		batch.Queue(`
			UPDATE leads SET lead_score = $2, scoring_metadata = $3
			WHERE id = $1 AND deleted_at IS NULL
		`, update.LeadID, update.Score, update.Metadata)
	}

	results := r.pool.SendBatch(ctx, batch)
	defer results.Close()

	written := 0
	for i := 0; i < len(updates); i++ {
		tag, err := results.Exec()
		if err != nil {
			return written, err
		}
		written += int(tag.RowsAffected())
	}
	return written, nil
}

// ListPage returns up to limit live leads with ids greater than after,
// ordered by id. Pass uuid.Nil to start from the beginning.
func (r *Repository) ListPage(ctx context.Context, after uuid.UUID, limit int) ([]Lead, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+leadColumns+`
		FROM leads
		WHERE deleted_at IS NULL AND id > $1
		ORDER BY id
		LIMIT $2
	`, after, limit)
	if err != nil {
		return nil, err
	}
	return collectLeads(rows)
}

package qualification

import (
	"context"
	"time"

	"lead_portal_backend/internal/events"
	"lead_portal_backend/internal/leads/repository"
	"lead_portal_backend/internal/leads/scoring"

	"github.com/google/uuid"
)

const DefaultRescorePageSize = 200

// RescoreReport summarises one full rescore run.
type RescoreReport struct {
	StartedAt      time.Time      `json:"started_at"`
	FinishedAt     time.Time      `json:"finished_at"`
	Pages          int            `json:"pages"`
	Scanned        int            `json:"scanned"`
	Scored         int            `json:"scored"`
	Incomplete     int            `json:"incomplete"`
	Failed         int            `json:"failed"`
	Classification map[string]int `json:"classification"`
	IncompleteIDs  []uuid.UUID    `json:"incomplete_ids,omitempty"`
}

// RescoreAll walks every live lead in id order, page by page, and rescores
// it. Work done before a cancellation or error stays persisted; the report
// covers the pages that completed.
func (s *Service) RescoreAll(ctx context.Context, pageSize int) (RescoreReport, error) {
	if pageSize <= 0 {
		pageSize = DefaultRescorePageSize
	}

	report := RescoreReport{
		StartedAt:      time.Now().UTC(),
		Classification: make(map[string]int),
	}
	after := uuid.Nil

	for {
		if err := ctx.Err(); err != nil {
			report.FinishedAt = time.Now().UTC()
			return report, err
		}

		page, err := s.repo.ListPage(ctx, after, pageSize)
		if err != nil {
			report.FinishedAt = time.Now().UTC()
			return report, err
		}
		if len(page) == 0 {
			break
		}

		outcome, err := s.scoreAndPersist(ctx, page, events.ScoreTriggerRescore)
		if err != nil {
			report.FinishedAt = time.Now().UTC()
			return report, err
		}
		report.add(page, outcome)

		after = page[len(page)-1].ID
		if len(page) < pageSize {
			break
		}
	}

	report.FinishedAt = time.Now().UTC()
	s.log.BatchScored(events.ScoreTriggerRescore, report.Scanned, report.Failed+report.Incomplete,
		float64(report.FinishedAt.Sub(report.StartedAt).Milliseconds()))
	return report, nil
}

func (r *RescoreReport) add(page []repository.Lead, outcome map[uuid.UUID]scoring.BatchItem) {
	r.Pages++
	r.Scanned += len(page)
	for _, lead := range page {
		item := outcome[lead.ID]
		switch {
		case item.OK():
			r.Scored++
			r.Classification[string(item.Scored.Metadata.Classification)]++
		case item.Incomplete():
			r.Incomplete++
			r.IncompleteIDs = append(r.IncompleteIDs, lead.ID)
		default:
			r.Failed++
		}
	}
}

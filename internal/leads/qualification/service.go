// Package qualification scores leads against the rule engine and keeps the
// stored score, classification and scoring snapshot up to date.
package qualification

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"lead_portal_backend/internal/events"
	"lead_portal_backend/internal/leads/repository"
	"lead_portal_backend/internal/leads/scoring"
	"lead_portal_backend/internal/leads/transport"
	"lead_portal_backend/platform/apperr"
	"lead_portal_backend/platform/logger"

	"github.com/google/uuid"
)

const (
	msgLeadNotFound = "lead not found"
	msgIncomplete   = "lead has no updated_at and cannot be scored"
	msgScored       = "lead scored"
)

// Repository is the data access the qualification service needs.
type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (repository.Lead, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]repository.Lead, error)
	repository.ScoreWriter
	repository.LeadPager
}

// RescoreEnqueuer hands a full rescore to the background worker.
type RescoreEnqueuer interface {
	EnqueueRescoreAll(ctx context.Context) (taskID string, queue string, err error)
}

// Service orchestrates scoring: load, compute, persist, announce.
type Service struct {
	repo     Repository
	engine   *scoring.Engine
	eventBus events.Bus
	log      *logger.Logger
	enqueuer RescoreEnqueuer
}

// New creates a qualification service.
func New(repo Repository, engine *scoring.Engine, eventBus events.Bus, log *logger.Logger) *Service {
	return &Service{repo: repo, engine: engine, eventBus: eventBus, log: log}
}

// SetRescoreEnqueuer enables POST /rescore. Without one the endpoint
// reports the dependency as unavailable.
func (s *Service) SetRescoreEnqueuer(enqueuer RescoreEnqueuer) {
	s.enqueuer = enqueuer
}

// Scoring returns the live breakdown next to the stored score.
func (s *Service) Scoring(ctx context.Context, id uuid.UUID) (transport.ScoringResponse, error) {
	lead, err := s.load(ctx, id)
	if err != nil {
		return transport.ScoringResponse{}, err
	}

	result, err := s.engine.Compute(ToScoringLead(lead))
	if err != nil {
		return transport.ScoringResponse{}, mapScoringError(err)
	}

	return transport.ScoringResponse{
		LeadID:          lead.ID,
		CurrentScore:    lead.LeadScore,
		Classification:  string(result.Classification),
		Breakdown:       toBreakdown(result),
		ScoringMetadata: storedMetadata(lead),
	}, nil
}

// Recommendations lists the actions that would raise the lead's score.
func (s *Service) Recommendations(ctx context.Context, id uuid.UUID) (transport.RecommendationsResponse, error) {
	lead, err := s.load(ctx, id)
	if err != nil {
		return transport.RecommendationsResponse{}, err
	}

	recs := s.engine.Recommend(ToScoringLead(lead))
	out := make([]transport.RecommendationResponse, len(recs))
	for i, rec := range recs {
		out[i] = transport.RecommendationResponse{
			Action:                 rec.Action,
			PotentialScoreIncrease: rec.PotentialScoreIncrease,
			Priority:               string(rec.Priority),
		}
	}

	return transport.RecommendationsResponse{
		LeadID:                 lead.ID,
		CurrentScore:           lead.LeadScore,
		Recommendations:        out,
		PotentialScoreIncrease: scoring.PotentialIncrease(recs),
	}, nil
}

// Score recomputes one lead, persists the result and publishes LeadScored.
func (s *Service) Score(ctx context.Context, id uuid.UUID) (transport.ScoreLeadResponse, error) {
	lead, err := s.load(ctx, id)
	if err != nil {
		return transport.ScoreLeadResponse{}, err
	}

	scored, err := s.engine.Score(ToScoringLead(lead))
	if err != nil {
		return transport.ScoreLeadResponse{}, mapScoringError(err)
	}

	update, err := toScoreUpdate(scored)
	if err != nil {
		return transport.ScoreLeadResponse{}, err
	}
	if err := s.repo.UpdateScore(ctx, update); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return transport.ScoreLeadResponse{}, apperr.NotFound(msgLeadNotFound)
		}
		return transport.ScoreLeadResponse{}, err
	}

	s.announce(ctx, lead, scored, events.ScoreTriggerManual)

	return transport.ScoreLeadResponse{
		LeadID:                 lead.ID,
		PreviousScore:          lead.LeadScore,
		LeadScore:              scored.Score,
		PreviousClassification: storedClassification(lead),
		Classification:         string(scored.Metadata.Classification),
		Breakdown:              toBreakdown(scored.Metadata.Breakdown),
		LastCalculated:         scored.Metadata.LastCalculated,
	}, nil
}

// BulkScore scores the given leads in one batch. Unknown ids and leads
// that cannot be scored are reported per item and do not fail the call.
func (s *Service) BulkScore(ctx context.Context, ids []uuid.UUID) (transport.BulkScoreResponse, error) {
	start := time.Now()
	ids = uniqueIDs(ids)

	found, err := s.repo.GetByIDs(ctx, ids)
	if err != nil {
		return transport.BulkScoreResponse{}, err
	}
	byID := make(map[uuid.UUID]repository.Lead, len(found))
	for _, lead := range found {
		byID[lead.ID] = lead
	}

	// Score in request order so the response mirrors the input.
	leads := make([]repository.Lead, 0, len(found))
	for _, id := range ids {
		if lead, ok := byID[id]; ok {
			leads = append(leads, lead)
		}
	}

	outcome, err := s.scoreAndPersist(ctx, leads, events.ScoreTriggerBulk)
	if err != nil {
		return transport.BulkScoreResponse{}, err
	}

	resp := transport.BulkScoreResponse{Leads: make([]transport.BulkScoreItem, 0, len(ids))}
	for _, id := range ids {
		item, ok := outcome[id]
		if !ok {
			resp.Leads = append(resp.Leads, transport.BulkScoreItem{ID: id, Success: false, Message: msgLeadNotFound})
			resp.FailedCount++
			continue
		}
		if !item.OK() {
			resp.Leads = append(resp.Leads, transport.BulkScoreItem{ID: id, Success: false, Message: itemMessage(item)})
			resp.FailedCount++
			continue
		}
		score := item.Scored.Score
		resp.Leads = append(resp.Leads, transport.BulkScoreItem{
			ID:             id,
			LeadScore:      &score,
			Classification: string(item.Scored.Metadata.Classification),
			Success:        true,
			Message:        msgScored,
		})
		resp.ScoredCount++
	}

	s.log.BatchScored(events.ScoreTriggerBulk, len(ids), resp.FailedCount, float64(time.Since(start).Milliseconds()))
	return resp, nil
}

// RequestRescore enqueues a background rescore of every live lead.
func (s *Service) RequestRescore(ctx context.Context) (transport.RescoreResponse, error) {
	if s.enqueuer == nil {
		return transport.RescoreResponse{}, apperr.Unavailable("background rescoring is not configured")
	}

	taskID, queue, err := s.enqueuer.EnqueueRescoreAll(ctx)
	if err != nil {
		return transport.RescoreResponse{}, apperr.Wrap(apperr.KindUnavailable, "could not enqueue rescore", err)
	}
	return transport.RescoreResponse{TaskID: taskID, Queue: queue}, nil
}

// scoreAndPersist batch scores leads, writes every successful result and
// publishes LeadScored for each. It returns the batch items keyed by lead.
func (s *Service) scoreAndPersist(ctx context.Context, leads []repository.Lead, trigger string) (map[uuid.UUID]scoring.BatchItem, error) {
	inputs := make([]scoring.Lead, len(leads))
	for i, lead := range leads {
		inputs[i] = ToScoringLead(lead)
	}

	items := s.engine.BatchScore(ctx, inputs)

	updates := make([]repository.ScoreUpdate, 0, len(items))
	byID := make(map[uuid.UUID]scoring.BatchItem, len(items))
	for _, item := range items {
		byID[item.LeadID] = item
		if !item.OK() {
			continue
		}
		update, err := toScoreUpdate(item.Scored)
		if err != nil {
			return nil, err
		}
		updates = append(updates, update)
	}

	if _, err := s.repo.UpdateScores(ctx, updates); err != nil {
		return nil, err
	}

	for _, lead := range leads {
		if item := byID[lead.ID]; item.OK() {
			s.announce(ctx, lead, item.Scored, trigger)
		}
	}
	return byID, nil
}

func (s *Service) announce(ctx context.Context, lead repository.Lead, scored scoring.Scored, trigger string) {
	classification := string(scored.Metadata.Classification)
	s.log.ScoringEvent(lead.ID.String(), scored.Score, classification)

	s.eventBus.Publish(ctx, events.LeadScored{
		BaseEvent:              events.NewBaseEvent(),
		LeadID:                 lead.ID,
		FirstName:              lead.FirstName,
		LastName:               lead.LastName,
		CompanyName:            lead.CompanyName,
		PreviousScore:          lead.LeadScore,
		Score:                  scored.Score,
		PreviousClassification: storedClassification(lead),
		Classification:         classification,
		Trigger:                trigger,
	})
}

func (s *Service) load(ctx context.Context, id uuid.UUID) (repository.Lead, error) {
	lead, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return repository.Lead{}, apperr.NotFound(msgLeadNotFound)
		}
		return repository.Lead{}, err
	}
	return lead, nil
}

func mapScoringError(err error) error {
	if errors.Is(err, scoring.ErrIncompleteRecord) {
		return apperr.Wrap(apperr.KindUnprocessable, msgIncomplete, err)
	}
	return err
}

func itemMessage(item scoring.BatchItem) string {
	switch {
	case item.Incomplete():
		return msgIncomplete
	case errors.Is(item.Err, context.Canceled), errors.Is(item.Err, context.DeadlineExceeded):
		return "scoring cancelled"
	default:
		return "scoring failed"
	}
}

func toScoreUpdate(scored scoring.Scored) (repository.ScoreUpdate, error) {
	metadata, err := json.Marshal(scored.Metadata)
	if err != nil {
		return repository.ScoreUpdate{}, err
	}
	return repository.ScoreUpdate{LeadID: scored.LeadID, Score: scored.Score, Metadata: metadata}, nil
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

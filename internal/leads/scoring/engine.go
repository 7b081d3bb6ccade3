// Package scoring is the rule-based lead scoring engine. It turns a lead
// snapshot into a bounded score, a tier and improvement recommendations.
// The engine does no I/O; loading and persisting leads is the caller's job.
package scoring

import (
	"time"

	"github.com/google/uuid"
)

// scoreVersion identifies the rule set that produced a stored score.
// Bump this when the scoring rules change.
const scoreVersion = "2026-rules-v1"

const defaultBatchWorkers = 8

// Clock supplies the evaluation instant.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock in UTC.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }

// FixedClock always returns the same instant.
type FixedClock struct {
	At time.Time
}

func (c FixedClock) Now() time.Time { return c.At }

// Metadata is the scoring snapshot stored next to a lead's score.
type Metadata struct {
	LastCalculated time.Time      `json:"last_calculated"`
	Classification Classification `json:"classification"`
	Breakdown      Result         `json:"breakdown"`
	Version        string         `json:"version"`
}

// Scored is the outcome of scoring one lead.
type Scored struct {
	LeadID   uuid.UUID `json:"lead_id"`
	Score    int       `json:"lead_score"`
	Metadata Metadata  `json:"scoring_metadata"`
}

// Engine binds a weight table and a clock. It holds no mutable state and
// is safe for concurrent use.
type Engine struct {
	weights *Weights
	clock   Clock
	workers int
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock overrides the evaluation clock.
func WithClock(clock Clock) Option {
	return func(e *Engine) {
		if clock != nil {
			e.clock = clock
		}
	}
}

// WithBatchWorkers sets how many leads BatchScore scores at once.
func WithBatchWorkers(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.workers = n
		}
	}
}

// NewEngine creates an engine. A nil weight table means the defaults.
func NewEngine(weights *Weights, opts ...Option) *Engine {
	if weights == nil {
		weights = DefaultWeights()
	}
	e := &Engine{
		weights: weights,
		clock:   SystemClock{},
		workers: defaultBatchWorkers,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Weights returns the engine's weight table.
func (e *Engine) Weights() *Weights {
	return e.weights
}

// Compute scores a single lead at the current instant.
func (e *Engine) Compute(lead Lead) (Result, error) {
	return Compute(lead, e.weights, e.clock.Now())
}

// Classify maps a total score to its tier.
func (e *Engine) Classify(total int) Classification {
	return Classify(total)
}

// Recommend lists improvement actions for lead at the current instant.
func (e *Engine) Recommend(lead Lead) []Recommendation {
	return Recommend(lead, e.weights, e.clock.Now())
}

// Score computes the score and metadata snapshot for one lead.
func (e *Engine) Score(lead Lead) (Scored, error) {
	return scoreAt(lead, e.weights, e.clock.Now())
}

func scoreAt(lead Lead, w *Weights, now time.Time) (Scored, error) {
	result, err := Compute(lead, w, now)
	if err != nil {
		return Scored{LeadID: lead.ID}, err
	}
	return Scored{
		LeadID: lead.ID,
		Score:  result.Total,
		Metadata: Metadata{
			LastCalculated: now,
			Classification: result.Classification,
			Breakdown:      result,
			Version:        scoreVersion,
		},
	}, nil
}

package scoring

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// BatchItem is the per-lead outcome of BatchScore. Exactly one of
// Scored or Err is meaningful.
type BatchItem struct {
	LeadID uuid.UUID
	Scored Scored
	Err    error
}

// OK reports whether the lead was scored.
func (i BatchItem) OK() bool {
	return i.Err == nil
}

// Incomplete reports whether the lead was skipped for missing updated_at.
func (i BatchItem) Incomplete() bool {
	return errors.Is(i.Err, ErrIncompleteRecord)
}

// BatchScore scores every lead against a single instant. The result has
// one item per input, in input order. A bad lead only fails its own item.
// When ctx is cancelled no further leads are started and the remaining
// items carry the context error.
func (e *Engine) BatchScore(ctx context.Context, leads []Lead) []BatchItem {
	items := make([]BatchItem, len(leads))
	now := e.clock.Now()

	var g errgroup.Group
	g.SetLimit(e.workers)

	for i := range leads {
		if err := ctx.Err(); err != nil {
			for j := i; j < len(leads); j++ {
				items[j] = BatchItem{LeadID: leads[j].ID, Err: err}
			}
			break
		}

		i := i // per-iteration copy; go.mod targets go 1.21 loop semantics
		g.Go(func() error {
			scored, err := scoreAt(leads[i], e.weights, now)
			items[i] = BatchItem{LeadID: leads[i].ID, Scored: scored, Err: err}
			return nil
		})
	}

	_ = g.Wait()
	return items
}

// CountFailures returns how many items in a batch carry an error.
func CountFailures(items []BatchItem) int {
	failed := 0
	for _, item := range items {
		if !item.OK() {
			failed++
		}
	}
	return failed
}

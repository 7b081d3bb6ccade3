package leads

import (
	"lead_portal_backend/internal/leads/scoring"
	"lead_portal_backend/platform/config"
)

// NewEngine builds the scoring engine from the weight file, target regions
// and worker count in cfg. Regions from the environment replace those in
// the file when set.
func NewEngine(cfg config.ScoringConfig) (*scoring.Engine, error) {
	weights, err := scoring.LoadWeightsFile(cfg.GetScoringWeightsFile())
	if err != nil {
		return nil, err
	}
	if regions := cfg.GetScoringTargetRegions(); len(regions) > 0 {
		weights = weights.WithTargetRegions(regions)
	}
	return scoring.NewEngine(weights, scoring.WithBatchWorkers(cfg.GetScoringBatchWorkers())), nil
}

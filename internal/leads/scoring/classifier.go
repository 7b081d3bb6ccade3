package scoring

import (
	"fmt"
	"sort"
)

// Classification is the tier a total score falls into.
type Classification string

const (
	TierHot          Classification = "Hot"
	TierWarm         Classification = "Warm"
	TierCold         Classification = "Cold"
	TierDisqualified Classification = "Disqualified"
	// TierUnknown is only returned for scores outside [MinScore, MaxScore].
	TierUnknown Classification = "Unknown"
)

// Band is a closed score range mapped to one classification.
type Band struct {
	Label Classification `json:"label"`
	Min   int            `json:"min"`
	Max   int            `json:"max"`
}

// Contains reports whether score lies inside the band.
func (b Band) Contains(score int) bool {
	return score >= b.Min && score <= b.Max
}

// scoreBands partitions [MinScore, MaxScore]; checked in this order.
var scoreBands = []Band{
	{Label: TierHot, Min: 70, Max: 100},
	{Label: TierWarm, Min: 40, Max: 69},
	{Label: TierCold, Min: 0, Max: 39},
	{Label: TierDisqualified, Min: -100, Max: -1},
}

// Classify maps a total score to its tier.
func Classify(score int) Classification {
	for _, band := range scoreBands {
		if band.Contains(score) {
			return band.Label
		}
	}
	return TierUnknown
}

// Bands returns a copy of the classification bands in evaluation order.
func Bands() []Band {
	return append([]Band(nil), scoreBands...)
}

// ValidateBands checks that bands cover [MinScore, MaxScore] exactly once,
// with no gaps and no overlaps.
func ValidateBands(bands []Band) error {
	if len(bands) == 0 {
		return fmt.Errorf("no score bands defined")
	}

	sorted := append([]Band(nil), bands...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Min < sorted[j].Min })

	if sorted[0].Min != MinScore {
		return fmt.Errorf("band %s starts at %d, want %d", sorted[0].Label, sorted[0].Min, MinScore)
	}
	for i, band := range sorted {
		if band.Min > band.Max {
			return fmt.Errorf("band %s is empty: %d > %d", band.Label, band.Min, band.Max)
		}
		if i > 0 && band.Min != sorted[i-1].Max+1 {
			return fmt.Errorf("bands %s and %s are not contiguous", sorted[i-1].Label, band.Label)
		}
	}
	if last := sorted[len(sorted)-1]; last.Max != MaxScore {
		return fmt.Errorf("band %s ends at %d, want %d", last.Label, last.Max, MaxScore)
	}
	return nil
}

package analytics

import (
	"sort"

	"github.com/baltlens/registry-cli/internal/model"
)

// TrustBand groups trust scores for display.
type TrustBand string

const (
	BandUnknown  TrustBand = "unknown"
	BandLow      TrustBand = "low"
	BandModerate TrustBand = "moderate"
	BandHigh     TrustBand = "high"
)

// Band buckets a 0..100 trust score. A missing score is unknown, not zero.
func Band(score *float64) TrustBand {
	switch {
	case score == nil:
		return BandUnknown
	case *score < 40:
		return BandLow
	case *score < 70:
		return BandModerate
	default:
		return BandHigh
	}
}

var severityRank = map[model.FlagSeverity]int{
	model.SeverityHigh:   0,
	model.SeverityMedium: 1,
	model.SeverityLow:    2,
}

// SortFlags orders red flags by severity, high first, preserving backend
// order within a severity. The input slice is not modified.
func SortFlags(flags []model.RedFlag) []model.RedFlag {
	if len(flags) == 0 {
		return nil
	}
	out := make([]model.RedFlag, len(flags))
	copy(out, flags)
	sort.SliceStable(out, func(i, j int) bool {
		ri, ok := severityRank[out[i].Severity]
		if !ok {
			ri = len(severityRank)
		}
		rj, ok := severityRank[out[j].Severity]
		if !ok {
			rj = len(severityRank)
		}
		return ri < rj
	})
	return out
}

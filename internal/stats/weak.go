package stats

import (
	"sort"

	"github.com/verte-zerg/keydyn/internal/model"
)

// SlowestTokens returns the top tokens with the highest mean interval among
// those observed at least minCount times.
func SlowestTokens(aggs []model.TokenAggregate, top, minCount int) []model.TokenAggregate {
	candidates := make([]model.TokenAggregate, 0, len(aggs))
	for _, agg := range aggs {
		if agg.Count >= minCount && agg.Count > 0 {
			candidates = append(candidates, agg)
		}
	}
	sort.Slice(candidates, func(i, j int) bool {
		mi := candidates[i].MeanMs()
		mj := candidates[j].MeanMs()
		if mi == mj {
			return candidates[i].Token < candidates[j].Token
		}
		return mi > mj
	})
	if top <= 0 || top > len(candidates) {
		top = len(candidates)
	}
	return candidates[:top]
}

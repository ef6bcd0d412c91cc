// Package stats contains statistics calculations and reporting.
package stats

import (
	"github.com/verte-zerg/keydyn/internal/model"
)

// TopByFrequency returns the n most frequent tokens.
func TopByFrequency(aggs []model.TokenAggregate, n int) []model.TokenAggregate {
	if n <= 0 || len(aggs) == 0 {
		return nil
	}
	items := make([]model.TokenAggregate, len(aggs))
	copy(items, aggs)
	sortByFrequency(items)
	if n > len(items) {
		n = len(items)
	}
	return items[:n]
}

// TopByCount returns the first n category counts, which are already ordered
// most common first.
func TopByCount(counts []model.CategoryCount, n int) []model.CategoryCount {
	if n <= 0 {
		return nil
	}
	if len(counts) > n {
		return counts[:n]
	}
	return counts
}

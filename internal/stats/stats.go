// Package stats contains statistics calculations and reporting.
package stats

import (
	"math"
	"sort"
	"strings"

	"github.com/verte-zerg/keydyn/internal/model"
)

const sparkChars = " .:-=+*#%@"

// Summary describes a set of interval values.
type Summary struct {
	Count  int
	Mean   float64
	Min    int64
	Max    int64
	StdDev float64
}

// Summarize computes count, mean, min, max and population standard deviation.
func Summarize(values []int64) Summary {
	if len(values) == 0 {
		return Summary{}
	}
	s := Summary{Count: len(values), Min: values[0], Max: values[0]}
	var sum float64
	for _, v := range values {
		sum += float64(v)
		if v < s.Min {
			s.Min = v
		}
		if v > s.Max {
			s.Max = v
		}
	}
	s.Mean = sum / float64(len(values))
	var sq float64
	for _, v := range values {
		d := float64(v) - s.Mean
		sq += d * d
	}
	s.StdDev = math.Sqrt(sq / float64(len(values)))
	return s
}

// FloatSummary is Summary for fractional samples.
type FloatSummary struct {
	Count  int
	Mean   float64
	Min    float64
	Max    float64
	StdDev float64
}

// SummarizeFloat computes count, mean, min, max and population standard deviation.
func SummarizeFloat(values []float64) FloatSummary {
	if len(values) == 0 {
		return FloatSummary{}
	}
	s := FloatSummary{Count: len(values), Min: values[0], Max: values[0]}
	var sum float64
	for _, v := range values {
		sum += v
		s.Min = math.Min(s.Min, v)
		s.Max = math.Max(s.Max, v)
	}
	s.Mean = sum / float64(len(values))
	var sq float64
	for _, v := range values {
		d := v - s.Mean
		sq += d * d
	}
	s.StdDev = math.Sqrt(sq / float64(len(values)))
	return s
}

// Aggregate groups values by token, most frequent first.
func Aggregate(tokens []string, values []int64) []model.TokenAggregate {
	index := map[string]int{}
	var out []model.TokenAggregate
	for i, tok := range tokens {
		v := values[i]
		j, ok := index[tok]
		if !ok {
			index[tok] = len(out)
			out = append(out, model.TokenAggregate{Token: tok, Count: 1, SumMs: v, MinMs: v, MaxMs: v})
			continue
		}
		agg := &out[j]
		agg.Count++
		agg.SumMs += v
		if v < agg.MinMs {
			agg.MinMs = v
		}
		if v > agg.MaxMs {
			agg.MaxMs = v
		}
	}
	sortByFrequency(out)
	return out
}

func sortByFrequency(aggs []model.TokenAggregate) {
	sort.Slice(aggs, func(i, j int) bool {
		if aggs[i].Count == aggs[j].Count {
			return aggs[i].Token < aggs[j].Token
		}
		return aggs[i].Count > aggs[j].Count
	})
}

// Histogram buckets values into n equal-width bins between min and max.
func Histogram(values []int64, n int) []float64 {
	if n <= 0 || len(values) == 0 {
		return nil
	}
	s := Summarize(values)
	bins := make([]float64, n)
	span := float64(s.Max - s.Min)
	for _, v := range values {
		idx := 0
		if span > 0 {
			idx = int(float64(v-s.Min) / span * float64(n))
		}
		if idx >= n {
			idx = n - 1
		}
		bins[idx]++
	}
	return bins
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	minVal := values[0]
	maxVal := values[0]
	for _, v := range values[1:] {
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}
	if math.Abs(maxVal-minVal) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		pos := (v - minVal) / (maxVal - minVal)
		idx := int(math.Round(pos * float64(len(sparkChars)-1)))
		if idx < 0 {
			idx = 0
		}
		if idx >= len(sparkChars) {
			idx = len(sparkChars) - 1
		}
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}

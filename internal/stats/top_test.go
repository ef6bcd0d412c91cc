package stats

import (
	"testing"

	"github.com/verte-zerg/keydyn/internal/model"
)

func TestTopByFrequency(t *testing.T) {
	aggs := []model.TokenAggregate{
		{Token: "b", Count: 3, SumMs: 300},
		{Token: "a", Count: 4, SumMs: 200},
		{Token: "c", Count: 3, SumMs: 90},
	}
	top := TopByFrequency(aggs, 2)
	if len(top) != 2 {
		t.Fatalf("expected 2 tokens, got %d", len(top))
	}
	if top[0].Token != "a" || top[1].Token != "b" {
		t.Fatalf("unexpected order: %v", top)
	}
	if aggs[0].Token != "b" {
		t.Fatalf("input was reordered: %v", aggs)
	}
	if got := TopByFrequency(aggs, 0); got != nil {
		t.Fatalf("expected nil for n=0, got %v", got)
	}
}

func TestSlowestTokens(t *testing.T) {
	aggs := []model.TokenAggregate{
		{Token: "th", Count: 5, SumMs: 500},
		{Token: "qz", Count: 1, SumMs: 900},
		{Token: "er", Count: 4, SumMs: 800},
		{Token: "an", Count: 3, SumMs: 300},
	}
	slow := SlowestTokens(aggs, 2, 3)
	if len(slow) != 2 {
		t.Fatalf("expected 2 tokens, got %d", len(slow))
	}
	if slow[0].Token != "er" || slow[1].Token != "an" {
		t.Fatalf("unexpected order: %v", slow)
	}
}

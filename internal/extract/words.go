package extract

import (
	"strings"

	"github.com/verte-zerg/keydyn/internal/model"
)

// wordSegmenter groups matched letters into words aligned to the expected
// word list. Each closed, non-empty word consumes exactly one expected slot.
type wordSegmenter struct {
	expected   []string
	index      int
	current    []Match
	candidates []model.WordRecord
	mismatched int
}

func newWordSegmenter(expected []string) wordSegmenter {
	return wordSegmenter{expected: expected}
}

func (w *wordSegmenter) add(m Match) {
	w.current = append(w.current, m)
}

// close ends the current word. Single-letter words carry no interval and
// are consumed without producing a candidate.
func (w *wordSegmenter) close() {
	defer func() {
		w.current = w.current[:0]
	}()
	if len(w.current) == 0 || w.index >= len(w.expected) {
		return
	}
	var b strings.Builder
	for _, m := range w.current {
		b.WriteString(m.Char)
	}
	typed := b.String()
	expected := w.expected[w.index]
	w.index++

	if typed != expected {
		w.mismatched++
		return
	}
	if len(w.current) < 2 {
		return
	}
	first := w.current[0].PressTime
	last := w.current[len(w.current)-1].PressTime
	w.candidates = append(w.candidates, model.WordRecord{
		Word:       expected,
		DurationMs: last - first,
	})
}

package extract

import (
	"github.com/verte-zerg/keydyn/internal/model"
)

// Bigrams returns an interval for every consecutive pair of matched
// characters where neither member is a space.
func Bigrams(typable []Match) []model.BigramRecord {
	if len(typable) < 2 {
		return nil
	}
	var out []model.BigramRecord
	for i := 0; i+1 < len(typable); i++ {
		a, b := typable[i], typable[i+1]
		if !IsTypable(a.Char) || !IsTypable(b.Char) {
			continue
		}
		out = append(out, model.BigramRecord{
			Bigram:     a.Char + b.Char,
			IntervalMs: b.PressTime - a.PressTime,
		})
	}
	return out
}

// SentenceTiming returns the first-to-last duration over matched letters.
// The text is the participant's submitted input, not the target.
func SentenceTiming(letters []Match) (model.SentenceRecord, bool) {
	if len(letters) < 2 {
		return model.SentenceRecord{}, false
	}
	first := letters[0]
	last := letters[len(letters)-1]
	return model.SentenceRecord{
		Text:       first.TypedText,
		DurationMs: last.PressTime - first.PressTime,
	}, true
}

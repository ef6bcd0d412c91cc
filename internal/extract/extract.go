package extract

import (
	"github.com/verte-zerg/keydyn/internal/model"
)

// SentenceResult holds the filtered measurements for one sentence.
type SentenceResult struct {
	Bigrams  []model.BigramRecord
	Words    []model.WordRecord
	Sentence *model.SentenceRecord
	Counts   model.Counts
}

// Extractor turns sentence groups into measurement records.
type Extractor struct {
	filter OutlierFilter
}

// New returns an Extractor that drops bigram and word intervals rejected by filter.
func New(filter OutlierFilter) *Extractor {
	return &Extractor{filter: filter}
}

// Sentence processes one sentence group in isolation.
func (e *Extractor) Sentence(group model.SentenceGroup) SentenceResult {
	var res SentenceResult
	res.Counts.Sentences = 1

	target := BuildTarget(group.Target)
	// A target without letters cannot anchor words or a sentence timing.
	if len(group.Events) == 0 || !target.HasLetters() {
		res.Counts.SkippedSentences = 1
		return res
	}

	al := Align(group.Events, target)
	res.Counts.Matched = len(al.Typable)
	res.Counts.Incorrect = al.Incorrect
	res.Counts.Ignored = al.Ignored
	res.Counts.WordsMismatched = al.WordsMismatched

	for _, w := range al.Words {
		res.Counts.WordCandidates++
		if !e.filter.Accept(w.DurationMs) {
			res.Counts.WordsDropped++
			continue
		}
		res.Words = append(res.Words, w)
	}

	if rec, ok := SentenceTiming(al.Letters); ok {
		res.Sentence = &rec
	}

	for _, bg := range Bigrams(al.Typable) {
		res.Counts.BigramCandidates++
		if !e.filter.Accept(bg.IntervalMs) {
			res.Counts.BigramsDropped++
			continue
		}
		res.Bigrams = append(res.Bigrams, bg)
	}
	return res
}

// Participant processes every sentence group of one participant in order.
func (e *Extractor) Participant(id int, groups []model.SentenceGroup) model.ParticipantResult {
	out := model.ParticipantResult{ParticipantID: id}
	for _, group := range groups {
		res := e.Sentence(group)
		out.Bigrams = append(out.Bigrams, res.Bigrams...)
		out.Words = append(out.Words, res.Words...)
		if res.Sentence != nil {
			out.Sentences = append(out.Sentences, *res.Sentence)
		}
		out.Counts.Add(res.Counts)
	}
	return out
}

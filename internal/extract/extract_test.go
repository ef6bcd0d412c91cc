package extract

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/keydyn/internal/model"
)

func events(typed string, chars []string, times []int64) []model.KeystrokeEvent {
	out := make([]model.KeystrokeEvent, len(chars))
	for i := range chars {
		out[i] = model.KeystrokeEvent{Char: chars[i], PressTime: times[i], TypedText: typed, Seq: i}
	}
	return out
}

func group(target, typed string, chars []string, times []int64) model.SentenceGroup {
	return model.SentenceGroup{
		ID:     model.SentenceID{Section: "1", Sentence: target},
		Target: target,
		Events: events(typed, chars, times),
	}
}

func defaultExtractor() *Extractor {
	return New(NewOutlierFilter(DefaultBounds))
}

func TestSentenceTypedExactly(t *testing.T) {
	g := group("The cat", "The cat",
		[]string{"t", "h", "e", " ", "c", "a", "t"},
		[]int64{0, 100, 200, 300, 400, 550, 650})

	res := defaultExtractor().Sentence(g)

	wantBigrams := []model.BigramRecord{
		{Bigram: "th", IntervalMs: 100},
		{Bigram: "he", IntervalMs: 100},
		{Bigram: "ca", IntervalMs: 150},
		{Bigram: "at", IntervalMs: 100},
	}
	if diff := cmp.Diff(wantBigrams, res.Bigrams); diff != "" {
		t.Fatalf("bigrams mismatch (-want +got):\n%s", diff)
	}
	wantWords := []model.WordRecord{
		{Word: "the", DurationMs: 200},
		{Word: "cat", DurationMs: 250},
	}
	if diff := cmp.Diff(wantWords, res.Words); diff != "" {
		t.Fatalf("words mismatch (-want +got):\n%s", diff)
	}
	require.NotNil(t, res.Sentence)
	assert.Equal(t, model.SentenceRecord{Text: "The cat", DurationMs: 650}, *res.Sentence)
	assert.Equal(t, 7, res.Counts.Matched)
	assert.Zero(t, res.Counts.Incorrect)
}

func TestSentenceMismatchDoesNotAdvancePointer(t *testing.T) {
	g := group("the cat", "the cat",
		[]string{"t", "h", "e", " ", "x", "c", "a", "t"},
		[]int64{0, 100, 200, 300, 350, 400, 550, 650})

	res := defaultExtractor().Sentence(g)

	assert.Equal(t, 1, res.Counts.Incorrect)
	for _, bg := range res.Bigrams {
		assert.NotContains(t, bg.Bigram, "x")
	}
	assert.Equal(t, []model.WordRecord{
		{Word: "the", DurationMs: 200},
		{Word: "cat", DurationMs: 250},
	}, res.Words)
	require.NotNil(t, res.Sentence)
	assert.Equal(t, int64(650), res.Sentence.DurationMs)
}

func TestSentenceRecoversAfterLaterRetype(t *testing.T) {
	// "c" is expected; the stray "a" and "t" are tested against "c" too.
	g := group("cat", "cat",
		[]string{"x", "a", "t", "c", "a", "t"},
		[]int64{0, 100, 200, 300, 400, 500})

	al := Align(g.Events, BuildTarget(g.Target))

	assert.Equal(t, 3, al.Incorrect)
	assert.Equal(t, 3, al.Pointer)
	assert.Equal(t, []model.WordRecord{{Word: "cat", DurationMs: 200}}, al.Words)
}

func TestSentenceOutliersDropped(t *testing.T) {
	fast := defaultExtractor().Sentence(group("hi", "hi",
		[]string{"h", "i"}, []int64{0, 10}))
	assert.Empty(t, fast.Words)
	assert.Empty(t, fast.Bigrams)
	assert.Equal(t, 1, fast.Counts.WordsDropped)
	assert.Equal(t, 1, fast.Counts.BigramsDropped)
	require.NotNil(t, fast.Sentence, "sentence timings are never outlier-filtered")
	assert.Equal(t, int64(10), fast.Sentence.DurationMs)

	slow := defaultExtractor().Sentence(group("ok", "ok",
		[]string{"o", "k"}, []int64{0, 5000}))
	assert.Empty(t, slow.Bigrams)
	assert.Empty(t, slow.Words)
	assert.Equal(t, 1, slow.Counts.BigramCandidates)
	require.NotNil(t, slow.Sentence)
	assert.Equal(t, int64(5000), slow.Sentence.DurationMs)
}

func TestSentenceSingleLetterWordNeverEmitted(t *testing.T) {
	g := group("a cat", "a cat",
		[]string{"a", " ", "c", "a", "t"},
		[]int64{0, 100, 200, 300, 400})

	res := defaultExtractor().Sentence(g)

	assert.Equal(t, []model.WordRecord{{Word: "cat", DurationMs: 200}}, res.Words)
}

func TestSentenceBoundaryNoLetters(t *testing.T) {
	ex := defaultExtractor()

	empty := ex.Sentence(group("", "", []string{"a", "b"}, []int64{0, 100}))
	assert.Empty(t, empty.Bigrams)
	assert.Empty(t, empty.Words)
	assert.Nil(t, empty.Sentence)
	assert.Equal(t, 1, empty.Counts.SkippedSentences)

	digits := ex.Sentence(group("12 34", "12 34",
		[]string{"1", "2", " ", "3", "4"}, []int64{0, 100, 200, 300, 400}))
	assert.Empty(t, digits.Bigrams)
	assert.Empty(t, digits.Words)
	assert.Nil(t, digits.Sentence)

	one := ex.Sentence(group("a", "a", []string{"a"}, []int64{0}))
	assert.Nil(t, one.Sentence)
}

func TestSentenceIgnoresSpecialKeys(t *testing.T) {
	g := group("Hi there", "Hi there",
		[]string{"SHIFT", "H", "i", " ", "BKSP", "t", "h", "e", "r", "e"},
		[]int64{0, 50, 150, 250, 300, 350, 450, 550, 650, 750})

	res := defaultExtractor().Sentence(g)

	assert.Equal(t, 2, res.Counts.Ignored)
	assert.Zero(t, res.Counts.Incorrect)
	assert.Equal(t, []model.WordRecord{
		{Word: "hi", DurationMs: 100},
		{Word: "there", DurationMs: 400},
	}, res.Words)
}

func TestSentencePunctuationBigrams(t *testing.T) {
	g := group("no, go", "no, go",
		[]string{"n", "o", ",", " ", "g", "o"},
		[]int64{0, 100, 200, 300, 400, 500})

	res := defaultExtractor().Sentence(g)

	assert.Equal(t, []model.BigramRecord{
		{Bigram: "no", IntervalMs: 100},
		{Bigram: "o,", IntervalMs: 100},
		{Bigram: "go", IntervalMs: 100},
	}, res.Bigrams)
	assert.Equal(t, []model.WordRecord{
		{Word: "no", DurationMs: 100},
		{Word: "go", DurationMs: 100},
	}, res.Words)
}

func TestSentenceToleratesIsolatedTypo(t *testing.T) {
	g := group("big red dog", "big red dog",
		[]string{"b", "i", "g", " ", "r", "x", "e", "d", " ", "d", "o", "g"},
		[]int64{0, 100, 200, 300, 400, 500, 600, 700, 800, 900, 1000, 1100})

	res := defaultExtractor().Sentence(g)

	assert.Equal(t, 1, res.Counts.Incorrect)
	assert.Equal(t, []model.WordRecord{
		{Word: "big", DurationMs: 200},
		{Word: "red", DurationMs: 300},
		{Word: "dog", DurationMs: 200},
	}, res.Words)
	assert.Contains(t, res.Bigrams, model.BigramRecord{Bigram: "re", IntervalMs: 200})
}

func TestSentenceStuckPointerStopsMeasurements(t *testing.T) {
	g := group("big red dog", "big rxd dog",
		[]string{"b", "i", "g", " ", "r", "x", "d", " ", "d", "o", "g"},
		[]int64{0, 100, 200, 300, 400, 500, 600, 700, 800, 900, 1000})

	al := Align(g.Events, BuildTarget(g.Target))

	assert.Equal(t, 5, al.Pointer)
	assert.Equal(t, 6, al.Incorrect)
	assert.Equal(t, []model.WordRecord{{Word: "big", DurationMs: 200}}, al.Words)
}

func TestContractionDriftsWordIndex(t *testing.T) {
	// Expected words are "don", "t", "go"; the typed "dont" is compared against "don".
	g := group("don't go", "don't go",
		[]string{"d", "o", "n", "'", "t", " ", "g", "o"},
		[]int64{0, 100, 200, 300, 400, 500, 600, 700})

	al := Align(g.Events, BuildTarget(g.Target))

	assert.Equal(t, 2, al.WordsMismatched)
	assert.Empty(t, al.Words)
}

func TestCustomBounds(t *testing.T) {
	ex := New(NewOutlierFilter(model.Bounds{MinMs: 0, MaxMs: 50}))
	res := ex.Sentence(group("hi", "hi", []string{"h", "i"}, []int64{0, 10}))
	assert.Equal(t, []model.WordRecord{{Word: "hi", DurationMs: 10}}, res.Words)
	assert.Equal(t, []model.BigramRecord{{Bigram: "hi", IntervalMs: 10}}, res.Bigrams)
}

func TestParticipantKeepsSentenceOrder(t *testing.T) {
	groups := []model.SentenceGroup{
		group("go on", "go on", []string{"g", "o", " ", "o", "n"}, []int64{0, 100, 200, 300, 400}),
		group("hi", "hi", []string{"h", "i"}, []int64{1000, 1200}),
	}

	res := defaultExtractor().Participant(7, groups)

	assert.Equal(t, 7, res.ParticipantID)
	assert.Equal(t, []string{"go", "on", "hi"}, wordsOf(res.Words))
	assert.Equal(t, []model.SentenceRecord{
		{Text: "go on", DurationMs: 400},
		{Text: "hi", DurationMs: 200},
	}, res.Sentences)
	assert.Equal(t, 2, res.Counts.Sentences)
}

func TestAlignInvariantsRandomized(t *testing.T) {
	rnd := rand.New(rand.NewSource(42))
	alphabet := []string{"a", "b", "c", " ", ".", "SHIFT", "x", "B"}
	targets := []string{"abc cab", "a b. c", "bb aa cc", "", "cab."}
	filter := NewOutlierFilter(DefaultBounds)

	for i := 0; i < 500; i++ {
		target := BuildTarget(targets[rnd.Intn(len(targets))])
		n := rnd.Intn(20)
		chars := make([]string, n)
		times := make([]int64, n)
		var now int64
		for j := 0; j < n; j++ {
			chars[j] = alphabet[rnd.Intn(len(alphabet))]
			now += int64(rnd.Intn(4000))
			times[j] = now
		}

		al := Align(events("", chars, times), target)

		prev := 0
		for _, p := range al.Trace {
			require.GreaterOrEqual(t, p, prev)
			require.LessOrEqual(t, p, len(target.Chars))
			prev = p
		}
		for _, w := range al.Words {
			require.GreaterOrEqual(t, len(w.Word), 2)
		}
		for _, bg := range Bigrams(al.Typable) {
			require.NotContains(t, bg.Bigram, " ")
			if filter.Accept(bg.IntervalMs) {
				require.True(t, bg.IntervalMs >= 30 && bg.IntervalMs <= 3000)
			}
		}
	}
}

func TestExtractIsIdempotent(t *testing.T) {
	g := group("the quick fox", "the quick fox",
		strings.Split("the quick fox", ""),
		[]int64{0, 90, 180, 300, 400, 480, 600, 700, 790, 900, 1000, 1100, 1250})

	ex := defaultExtractor()
	first := ex.Participant(1, []model.SentenceGroup{g})
	second := ex.Participant(1, []model.SentenceGroup{g})

	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("results differ between runs:\n%s", diff)
	}
}

func wordsOf(recs []model.WordRecord) []string {
	out := make([]string, len(recs))
	for i, r := range recs {
		out[i] = r.Word
	}
	return out
}

// Package model defines shared data structures.
package model

import "time"

// SentenceID identifies one sentence prompt within a participant's log.
// The same sentence text can recur across test sections.
type SentenceID struct {
	Section  string
	Sentence string
}

// Key returns the composite key used to group keystrokes.
func (id SentenceID) Key() string {
	return id.Section + "_" + id.Sentence
}

// KeystrokeEvent is one recorded key press.
type KeystrokeEvent struct {
	Char       string
	PressTime  int64
	Sentence   SentenceID
	TargetText string
	TypedText  string
	// Seq is the zero-based position of the record in its source file.
	Seq int
}

// SentenceGroup holds the keystrokes of one sentence ordered by press time.
type SentenceGroup struct {
	ID     SentenceID
	Target string
	Events []KeystrokeEvent
}

// BigramRecord is the interval between two consecutively typed characters.
type BigramRecord struct {
	Bigram     string
	IntervalMs int64
}

// WordRecord is the first-to-last letter duration of a correctly typed word.
type WordRecord struct {
	Word       string
	DurationMs int64
}

// SentenceRecord is the first-to-last letter duration of a sentence.
type SentenceRecord struct {
	Text       string
	DurationMs int64
}

// Bounds is an inclusive plausibility window for intervals in milliseconds.
type Bounds struct {
	MinMs int64
	MaxMs int64
}

// Counts tallies what happened while extracting a participant's log.
type Counts struct {
	Sentences        int
	SkippedSentences int
	Matched          int
	Incorrect        int
	Ignored          int
	BigramCandidates int
	BigramsDropped   int
	WordCandidates   int
	WordsDropped     int
	WordsMismatched  int
	MalformedRows    int
	ShortRows        int
}

// Add accumulates other into c.
func (c *Counts) Add(other Counts) {
	c.Sentences += other.Sentences
	c.SkippedSentences += other.SkippedSentences
	c.Matched += other.Matched
	c.Incorrect += other.Incorrect
	c.Ignored += other.Ignored
	c.BigramCandidates += other.BigramCandidates
	c.BigramsDropped += other.BigramsDropped
	c.WordCandidates += other.WordCandidates
	c.WordsDropped += other.WordsDropped
	c.WordsMismatched += other.WordsMismatched
	c.MalformedRows += other.MalformedRows
	c.ShortRows += other.ShortRows
}

// ParticipantResult contains the measurements extracted for one participant.
type ParticipantResult struct {
	ParticipantID int
	Bigrams       []BigramRecord
	Words         []WordRecord
	Sentences     []SentenceRecord
	Counts        Counts
}

// Empty reports whether no measurement was produced.
func (r ParticipantResult) Empty() bool {
	return len(r.Bigrams) == 0 && len(r.Words) == 0 && len(r.Sentences) == 0
}

// FilterCriteria selects eligible participants from study metadata.
type FilterCriteria struct {
	Layouts       []string
	Fingers       []string
	KeyboardTypes []string
	MaxErrorRate  float64
}

// FilterBreakdown counts participants matching each criterion.
type FilterBreakdown struct {
	Total        int
	Layout       int
	Fingers      int
	KeyboardType int
	ErrorRate    int
	Kept         int
}

// RunInfo describes a stored extraction run.
type RunInfo struct {
	ID               string
	CreatedAt        time.Time
	ParticipantsFile string
	KeystrokeDir     string
	Bounds           Bounds
	Requested        int
	Processed        int
	Missing          int
	Skipped          int
	BigramCount      int
	WordCount        int
	SentenceCount    int
}

// TokenAggregate aggregates interval measurements for one bigram or word.
type TokenAggregate struct {
	Token string
	Count int
	SumMs int64
	MinMs int64
	MaxMs int64
}

// MeanMs returns the mean interval, or 0 when there are no samples.
func (a TokenAggregate) MeanMs() float64 {
	if a.Count == 0 {
		return 0
	}
	return float64(a.SumMs) / float64(a.Count)
}

// CategoryCount is the number of participants sharing one metadata value.
type CategoryCount struct {
	Value string
	Count int
}

// Demographics describes the participants kept by the metadata filter.
type Demographics struct {
	Participants int
	Ages         []int64
	WPMs         []float64
	// Genders, Countries and Languages are ordered most common first, ties in
	// first-seen order.
	Genders   []CategoryCount
	Countries []CategoryCount
	Languages []CategoryCount
	// TimeSpent is ordered by numeric hours; non-numeric values sort last.
	TimeSpent []CategoryCount
	Trained   int
	Untrained int
}

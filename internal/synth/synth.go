// Package synth generates synthetic keystroke logs and participant metadata.
package synth

import (
	"errors"
	"math/rand"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/verte-zerg/keydyn/internal/model"
)

// Special key tokens written to the LETTER column.
const (
	KeyShift     = "SHIFT"
	KeyBackspace = "BKSP"
)

const (
	shiftLeadMs     = 40
	sentencePauseMs = 2500
	startTimeMs     = 1_500_000_000_000
)

const typoLetters = "abcdefghijklmnopqrstuvwxyz"

var (
	layouts       = []string{"qwerty", "qwerty", "qwerty", "azerty", "qwertz", "dvorak"}
	fingerGroups  = []string{"1-2", "3-4", "5-6", "7-8", "9-10", "9-10"}
	keyboardTypes = []string{"full", "laptop", "laptop", "small", "on-screen"}
	genders       = []string{"female", "male", "female", "male", "none"}
	countries     = []string{"US", "US", "GB", "IN", "DE", "FR", "CA", "AU", "BR"}
	languages     = []string{"en", "en", "en", "hi", "de", "fr", "pt", "es"}
	hoursTyping   = []string{"0", "1", "2", "3", "4", "6", "8"}
)

const (
	minAge = 18
	maxAge = 65
)

// Options configures generated typing behavior.
type Options struct {
	Seed int64
	// SentencesPerParticipant is drawn from the corpus with replacement.
	SentencesPerParticipant int
	// TypoRate is the probability of a wrong key before an intended key.
	TypoRate float64
	// CorrectRate is the probability that a typo is erased with backspace.
	CorrectRate float64
	MeanIntervalMs int64
	JitterMs       int64
	// SpeedSpread scales each participant's mean interval by a factor in
	// [1-spread, 1+spread].
	SpeedSpread float64
}

// DefaultOptions returns settings close to an average typist.
func DefaultOptions() Options {
	return Options{
		Seed:                    1,
		SentencesPerParticipant: 15,
		TypoRate:                0.03,
		CorrectRate:             0.8,
		MeanIntervalMs:          180,
		JitterMs:                80,
		SpeedSpread:             0.3,
	}
}

// Validate checks option ranges.
func (o Options) Validate() error {
	switch {
	case o.SentencesPerParticipant <= 0:
		return errors.New("sentences per participant must be > 0")
	case o.TypoRate < 0 || o.TypoRate > 1:
		return errors.New("typo rate must be between 0 and 1")
	case o.CorrectRate < 0 || o.CorrectRate > 1:
		return errors.New("correct rate must be between 0 and 1")
	case o.MeanIntervalMs <= 0:
		return errors.New("mean interval must be > 0")
	case o.JitterMs < 0:
		return errors.New("jitter must be >= 0")
	case o.SpeedSpread < 0 || o.SpeedSpread >= 1:
		return errors.New("speed spread must be in [0, 1)")
	}
	return nil
}

// Metadata is one row of the participant metadata file.
type Metadata struct {
	ParticipantID int
	Layout        string
	Fingers       string
	KeyboardType  string
	// ErrorRate is the percentage of uncorrected typos among typed characters.
	ErrorRate      float64
	Age            int
	Gender         string
	TypingCourse   bool
	Country        string
	NativeLanguage string
	// HoursTyping is the reported daily time spent typing.
	HoursTyping string
	// AvgWPM assumes five characters per word at the participant's mean interval.
	AvgWPM float64
}

// Participant holds one generated participant.
type Participant struct {
	Metadata Metadata
	Events   []model.KeystrokeEvent
}

// Generator produces randomized keystroke logs.
type Generator struct {
	rnd       *rand.Rand
	opts      Options
	sentences []string
}

// New returns a Generator over the given sentences. A zero seed uses the current time.
func New(sentences []string, opts Options) (*Generator, error) {
	if len(sentences) == 0 {
		return nil, errors.New("no sentences to type")
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Generator{
		rnd:       rand.New(rand.NewSource(seed)),
		opts:      opts,
		sentences: sentences,
	}, nil
}

// Participant generates the log and metadata of one participant.
func (g *Generator) Participant(id int) Participant {
	mean := g.opts.MeanIntervalMs
	if g.opts.SpeedSpread > 0 {
		factor := 1 + g.opts.SpeedSpread*(2*g.rnd.Float64()-1)
		mean = int64(float64(mean) * factor)
		if mean < 1 {
			mean = 1
		}
	}
	ts := &typist{g: g, mean: mean, now: startTimeMs + int64(id)*1000}

	var events []model.KeystrokeEvent
	for i := 0; i < g.opts.SentencesPerParticipant; i++ {
		text := g.sentences[g.rnd.Intn(len(g.sentences))]
		sid := model.SentenceID{
			Section:  strconv.Itoa(id*1000 + i + 1),
			Sentence: text,
		}
		events = append(events, ts.sentence(sid, text)...)
		ts.now += sentencePauseMs
	}
	for i := range events {
		events[i].Seq = i
	}

	var rate float64
	if ts.typed > 0 {
		rate = float64(ts.uncorrected) / float64(ts.typed) * 100
	}
	return Participant{
		Metadata: Metadata{
			ParticipantID:  id,
			Layout:         g.pick(layouts),
			Fingers:        g.pick(fingerGroups),
			KeyboardType:   g.pick(keyboardTypes),
			ErrorRate:      rate,
			Age:            minAge + g.rnd.Intn(maxAge-minAge+1),
			Gender:         g.pick(genders),
			TypingCourse:   g.rnd.Intn(3) == 0,
			Country:        g.pick(countries),
			NativeLanguage: g.pick(languages),
			HoursTyping:    g.pick(hoursTyping),
			AvgWPM:         60000 / (float64(mean) * 5),
		},
		Events: events,
	}
}

// Participants generates count participants numbered from firstID.
func (g *Generator) Participants(firstID, count int) []Participant {
	out := make([]Participant, 0, count)
	for i := 0; i < count; i++ {
		out = append(out, g.Participant(firstID+i))
	}
	return out
}

func (g *Generator) pick(values []string) string {
	return values[g.rnd.Intn(len(values))]
}

type typist struct {
	g           *Generator
	mean        int64
	now         int64
	typed       int
	uncorrected int
}

type key struct {
	char string
	at   int64
}

func (t *typist) interval() int64 {
	d := t.mean
	if j := t.g.opts.JitterMs; j > 0 {
		d += t.g.rnd.Int63n(2*j+1) - j
	}
	if d < 1 {
		d = 1
	}
	return d
}

// press advances the clock and records char, preceded by SHIFT for capitals.
func (t *typist) press(keys []key, char rune) []key {
	d := t.interval()
	upper := unicode.IsUpper(char)
	if upper && d <= shiftLeadMs {
		d = shiftLeadMs + 1
	}
	t.now += d
	if upper {
		keys = append(keys, key{char: KeyShift, at: t.now - shiftLeadMs})
	}
	return append(keys, key{char: string(char), at: t.now})
}

func (t *typist) sentence(id model.SentenceID, text string) []model.KeystrokeEvent {
	var (
		keys  []key
		typed strings.Builder
	)
	for _, r := range text {
		if t.g.opts.TypoRate > 0 && t.g.rnd.Float64() < t.g.opts.TypoRate {
			wrong := rune(typoLetters[t.g.rnd.Intn(len(typoLetters))])
			if unicode.ToLower(r) == wrong {
				wrong = rune(typoLetters[(int(wrong-'a')+1)%len(typoLetters)])
			}
			keys = t.press(keys, wrong)
			t.typed++
			if t.g.rnd.Float64() < t.g.opts.CorrectRate {
				t.now += t.interval()
				keys = append(keys, key{char: KeyBackspace, at: t.now})
			} else {
				typed.WriteRune(wrong)
				t.uncorrected++
			}
		}
		keys = t.press(keys, r)
		typed.WriteRune(r)
		t.typed++
	}

	events := make([]model.KeystrokeEvent, len(keys))
	for i, k := range keys {
		events[i] = model.KeystrokeEvent{
			Char:       k.char,
			PressTime:  k.at,
			Sentence:   id,
			TargetText: text,
			TypedText:  typed.String(),
		}
	}
	return events
}

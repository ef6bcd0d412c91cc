package synth

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/keydyn/internal/extract"
	"github.com/verte-zerg/keydyn/internal/keylog"
	"github.com/verte-zerg/keydyn/internal/model"
	"github.com/verte-zerg/keydyn/internal/participants"
)

func steadyOptions() Options {
	return Options{
		Seed:                    7,
		SentencesPerParticipant: 1,
		MeanIntervalMs:          100,
	}
}

func chars(events []model.KeystrokeEvent) []string {
	out := make([]string, len(events))
	for i, ev := range events {
		out[i] = ev.Char
	}
	return out
}

func TestParticipantSteadyTypist(t *testing.T) {
	gen, err := New([]string{"Go on."}, steadyOptions())
	require.NoError(t, err)

	p := gen.Participant(4)
	assert.Equal(t, []string{KeyShift, "G", "o", " ", "o", "n", "."}, chars(p.Events))
	assert.Equal(t, p.Events[1].PressTime-shiftLeadMs, p.Events[0].PressTime)
	for i, ev := range p.Events {
		assert.Equal(t, i, ev.Seq)
		assert.Equal(t, "Go on.", ev.TypedText)
		assert.Equal(t, "Go on.", ev.TargetText)
	}
	assert.Equal(t, 4, p.Metadata.ParticipantID)
	assert.Zero(t, p.Metadata.ErrorRate)

	var buf bytes.Buffer
	require.NoError(t, keylog.Write(&buf, p.Events))
	log, err := keylog.Read(&buf, "synthetic")
	require.NoError(t, err)

	res := extract.New(extract.NewOutlierFilter(extract.DefaultBounds)).Participant(4, log.Groups)
	if diff := cmp.Diff([]model.BigramRecord{
		{Bigram: "go", IntervalMs: 100},
		{Bigram: "on", IntervalMs: 100},
		{Bigram: "n.", IntervalMs: 100},
	}, res.Bigrams); diff != "" {
		t.Fatalf("bigrams mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, []model.WordRecord{{Word: "go", DurationMs: 100}, {Word: "on", DurationMs: 100}}, res.Words)
	assert.Equal(t, []model.SentenceRecord{{Text: "Go on.", DurationMs: 400}}, res.Sentences)
}

func TestParticipantCorrectedTypos(t *testing.T) {
	opts := steadyOptions()
	opts.TypoRate = 1
	opts.CorrectRate = 1
	gen, err := New([]string{"big dog"}, opts)
	require.NoError(t, err)

	p := gen.Participant(1)
	backspaces := 0
	for _, ev := range p.Events {
		if ev.Char == KeyBackspace {
			backspaces++
		}
		assert.Equal(t, "big dog", ev.TypedText)
	}
	assert.Equal(t, len("big dog"), backspaces)
	assert.Zero(t, p.Metadata.ErrorRate)

	groups := []model.SentenceGroup{{ID: p.Events[0].Sentence, Target: "big dog", Events: p.Events}}
	res := extract.New(extract.NewOutlierFilter(extract.DefaultBounds)).Participant(1, groups)
	assert.Equal(t, []string{"bi", "ig", "do", "og"}, bigramNames(res.Bigrams))
	assert.Equal(t, 7, res.Counts.Incorrect)
	assert.Equal(t, 7, res.Counts.Ignored)
}

func TestParticipantUncorrectedTypos(t *testing.T) {
	opts := steadyOptions()
	opts.TypoRate = 1
	gen, err := New([]string{"abc"}, opts)
	require.NoError(t, err)

	p := gen.Participant(1)
	require.Len(t, p.Events, 6)
	assert.Len(t, p.Events[0].TypedText, 6)
	assert.InDelta(t, 50.0, p.Metadata.ErrorRate, 1e-9)
}

func TestParticipantPressTimesIncrease(t *testing.T) {
	opts := DefaultOptions()
	opts.Seed = 99
	gen, err := New([]string{"The Quick Brown Fox.", "It's done!"}, opts)
	require.NoError(t, err)

	for _, p := range gen.Participants(1, 3) {
		require.NotEmpty(t, p.Events)
		for i := 1; i < len(p.Events); i++ {
			assert.Greater(t, p.Events[i].PressTime, p.Events[i-1].PressTime)
		}
	}
}

func TestGeneratorIsDeterministic(t *testing.T) {
	opts := DefaultOptions()
	a, err := New([]string{"one two", "three four"}, opts)
	require.NoError(t, err)
	b, err := New([]string{"one two", "three four"}, opts)
	require.NoError(t, err)

	if diff := cmp.Diff(a.Participants(1, 2), b.Participants(1, 2)); diff != "" {
		t.Fatalf("same seed produced different output:\n%s", diff)
	}
}

func TestNewValidates(t *testing.T) {
	_, err := New(nil, DefaultOptions())
	require.Error(t, err)

	for _, mutate := range []func(*Options){
		func(o *Options) { o.SentencesPerParticipant = 0 },
		func(o *Options) { o.TypoRate = 1.5 },
		func(o *Options) { o.CorrectRate = -0.1 },
		func(o *Options) { o.MeanIntervalMs = 0 },
		func(o *Options) { o.JitterMs = -1 },
		func(o *Options) { o.SpeedSpread = 1 },
	} {
		opts := DefaultOptions()
		mutate(&opts)
		_, err := New([]string{"x"}, opts)
		require.Error(t, err)
	}
}

func TestWriteDataset(t *testing.T) {
	gen, err := New([]string{"the cat sat"}, DefaultOptions())
	require.NoError(t, err)
	people := gen.Participants(1, 3)

	dir := t.TempDir()
	metaPath, err := WriteDataset(context.Background(), dir, "", people, 2)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, MetadataFile), metaPath)

	ids, err := participants.ReadIDsFile(metaPath)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, ids.IDs)

	meta, err := os.Open(metaPath)
	require.NoError(t, err)
	defer func() { _ = meta.Close() }()
	demo, err := participants.ReadDemographics(meta)
	require.NoError(t, err)
	assert.Equal(t, 3, demo.Participants)
	require.Len(t, demo.Ages, 3)
	for _, age := range demo.Ages {
		assert.GreaterOrEqual(t, age, int64(minAge))
		assert.LessOrEqual(t, age, int64(maxAge))
	}
	assert.Len(t, demo.WPMs, 3)
	assert.Equal(t, 3, demo.Trained+demo.Untrained)

	for _, p := range people {
		log, err := keylog.LoadFile(keylog.Path(filepath.Join(dir, "files"), "", p.Metadata.ParticipantID))
		require.NoError(t, err)
		assert.Equal(t, len(p.Events), log.Events)
	}
}

func TestWriteMetadata(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteMetadata(&buf, []Metadata{
		{
			ParticipantID: 5, Layout: "qwerty", Fingers: "9-10", KeyboardType: "laptop", ErrorRate: 0.5,
			Age: 31, Gender: "female", TypingCourse: true, Country: "GB", NativeLanguage: "en",
			HoursTyping: "4", AvgWPM: 66.666,
		},
	}))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "PARTICIPANT_ID\tLAYOUT\tFINGERS\tKEYBOARD_TYPE\tERROR_RATE\t"+
		"AGE\tGENDER\tHAS_TAKEN_TYPING_COURSE\tCOUNTRY\tNATIVE_LANGUAGE\tTIME_SPENT_TYPING\tAVG_WPM_15", lines[0])
	assert.Equal(t, "5\tqwerty\t9-10\tlaptop\t0.500\t31\tfemale\t1\tGB\ten\t4\t66.67", lines[1])
}

func bigramNames(recs []model.BigramRecord) []string {
	out := make([]string, len(recs))
	for i, r := range recs {
		out[i] = r.Bigram
	}
	return out
}

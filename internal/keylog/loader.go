// Package keylog reads per-participant keystroke logs and groups them by sentence.
package keylog

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/verte-zerg/keydyn/internal/model"
)

// DefaultPattern names a participant's keystroke file.
const DefaultPattern = "%d_keystrokes.txt"

// Column names of the keystroke log.
const (
	ColLetter    = "LETTER"
	ColPressTime = "PRESS_TIME"
	ColSentence  = "SENTENCE"
	ColUserInput = "USER_INPUT"
	ColSection   = "TEST_SECTION_ID"
)

// Columns lists the required columns in their conventional order.
var Columns = []string{ColLetter, ColPressTime, ColSentence, ColUserInput, ColSection}

// Log is one participant's keystrokes grouped by sentence.
type Log struct {
	Path   string
	Groups []model.SentenceGroup
	Events int
	// MalformedRows counts rows skipped because PRESS_TIME was not an integer.
	MalformedRows int
	// ShortRows counts rows with fewer fields than the header requires.
	ShortRows int
}

// Path returns the keystroke file for a participant.
func Path(dir, pattern string, participantID int) string {
	if pattern == "" {
		pattern = DefaultPattern
	}
	return filepath.Join(dir, fmt.Sprintf(pattern, participantID))
}

// LoadFile reads a keystroke log from disk.
func LoadFile(path string) (*Log, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrMissingFile, path)
		}
		return nil, fmt.Errorf("open keystroke log: %w", err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			// Best-effort close for read-only log.
			_ = cerr
		}
	}()
	return Read(file, path)
}

// Read parses a tab-delimited keystroke log. name is used in error messages.
func Read(r io.Reader, name string) (*Log, error) {
	reader := NewTSVReader(r)
	headerRow, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("read header of %s: empty file", name)
		}
		return nil, fmt.Errorf("read header of %s: %w", name, err)
	}
	idx, err := NewHeader(headerRow).Require(name, Columns...)
	if err != nil {
		return nil, err
	}
	letterIdx, timeIdx, sentenceIdx, inputIdx, sectionIdx := idx[0], idx[1], idx[2], idx[3], idx[4]
	minFields := maxIndex(idx) + 1

	log := &Log{Path: name}
	byKey := map[string]int{}
	seq := 0
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		if len(row) < minFields {
			log.ShortRows++
			continue
		}
		pressTime, err := strconv.ParseInt(strings.TrimSpace(row[timeIdx]), 10, 64)
		if err != nil {
			log.MalformedRows++
			continue
		}
		id := model.SentenceID{
			Section:  strings.TrimSpace(row[sectionIdx]),
			Sentence: strings.TrimSpace(row[sentenceIdx]),
		}
		ev := model.KeystrokeEvent{
			Char:       row[letterIdx],
			PressTime:  pressTime,
			Sentence:   id,
			TargetText: id.Sentence,
			TypedText:  strings.TrimSpace(row[inputIdx]),
			Seq:        seq,
		}
		seq++

		key := id.Key()
		gi, ok := byKey[key]
		if !ok {
			gi = len(log.Groups)
			byKey[key] = gi
			log.Groups = append(log.Groups, model.SentenceGroup{ID: id, Target: id.Sentence})
		}
		log.Groups[gi].Events = append(log.Groups[gi].Events, ev)
		log.Events++
	}

	for i := range log.Groups {
		events := log.Groups[i].Events
		sort.SliceStable(events, func(a, b int) bool {
			return events[a].PressTime < events[b].PressTime
		})
	}
	return log, nil
}

func maxIndex(idx []int) int {
	m := 0
	for _, i := range idx {
		if i > m {
			m = i
		}
	}
	return m
}

package extract

import (
	"strings"

	"github.com/verte-zerg/keydyn/internal/model"
)

// Match is a keystroke accepted as a correct, in-order production of the target.
type Match struct {
	// Char is the lower-cased character.
	Char      string
	PressTime int64
	TypedText string
}

// Alignment is the outcome of walking one sentence's keystrokes against its target.
type Alignment struct {
	// Typable holds matched characters including spaces, in press order.
	Typable []Match
	// Letters holds the alphabetic subset of Typable.
	Letters []Match
	// Words holds correctly typed multi-letter words before outlier filtering.
	Words []model.WordRecord
	// Pointer is the final expectation pointer.
	Pointer int
	// Trace records the pointer after each considered keystroke.
	Trace           []int
	Incorrect       int
	Ignored         int
	WordsMismatched int
}

// alignState lives for exactly one sentence.
type alignState struct {
	target  Target
	pointer int
	typable []Match
	letters []Match
	words   wordSegmenter
	trace   []int

	incorrect int
	ignored   int
}

// Align classifies keystrokes (already ordered by press time) as correct or
// incorrect against target using a single forward pass. A mismatch neither
// advances nor resets the pointer, so later keystrokes can still recover.
func Align(events []model.KeystrokeEvent, target Target) Alignment {
	if target.Empty() {
		return Alignment{}
	}
	st := &alignState{
		target: target,
		words:  newWordSegmenter(target.Words),
	}
	for _, ev := range events {
		st.step(ev)
	}
	return Alignment{
		Typable:         st.typable,
		Letters:         st.letters,
		Words:           st.words.candidates,
		Pointer:         st.pointer,
		Trace:           st.trace,
		Incorrect:       st.incorrect,
		Ignored:         st.ignored,
		WordsMismatched: st.words.mismatched,
	}
}

func (s *alignState) step(ev model.KeystrokeEvent) {
	if !IsTypable(ev.Char) && !IsSpace(ev.Char) {
		s.ignored++
		return
	}
	defer func() {
		s.trace = append(s.trace, s.pointer)
	}()

	char := strings.ToLower(ev.Char)
	if s.pointer >= len(s.target.Chars) || char != s.target.Chars[s.pointer] {
		s.incorrect++
		return
	}

	m := Match{Char: char, PressTime: ev.PressTime, TypedText: ev.TypedText}
	if IsLetter(char) {
		s.letters = append(s.letters, m)
		s.words.add(m)
	}
	s.typable = append(s.typable, m)
	s.pointer++

	if s.atWordBoundary(char) {
		s.words.close()
	}
}

func (s *alignState) atWordBoundary(char string) bool {
	if IsSpace(char) || s.pointer >= len(s.target.Chars) {
		return true
	}
	return IsSpace(s.target.Chars[s.pointer])
}

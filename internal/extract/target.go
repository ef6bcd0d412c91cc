// Package extract aligns keystrokes against target sentences and derives
// bigram, word and sentence timings from the correctly typed stream.
package extract

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// typableSymbols lists the non-letter characters a participant can type.
const typableSymbols = ".,!?;:\"'`~@#$%^&*()_+-=[]{}|\\<>/0123456789"

var wordPattern = regexp.MustCompile(`[a-z]+`)

// Target is the expected keystroke sequence for one sentence.
type Target struct {
	// Chars holds every typable character and space of the lower-cased text.
	Chars []string
	// Words holds maximal runs of ASCII letters of the lower-cased text.
	Words []string
}

// Empty reports whether there is nothing to align against.
func (t Target) Empty() bool {
	return len(t.Chars) == 0
}

// HasLetters reports whether any expected character is a letter.
func (t Target) HasLetters() bool {
	for _, c := range t.Chars {
		if IsLetter(c) {
			return true
		}
	}
	return false
}

// BuildTarget converts a sentence into its expected characters and words.
func BuildTarget(text string) Target {
	if text == "" {
		return Target{}
	}
	lower := strings.ToLower(text)
	var chars []string
	for _, r := range lower {
		s := string(r)
		if IsTypable(s) || IsSpace(s) {
			chars = append(chars, s)
		}
	}
	return Target{
		Chars: chars,
		Words: wordPattern.FindAllString(lower, -1),
	}
}

// IsLetter reports whether key is a single alphabetic character.
// Special-key tokens such as "SHIFT" are never letters.
func IsLetter(key string) bool {
	r, ok := singleRune(key)
	return ok && unicode.IsLetter(r)
}

// IsTypable reports whether key is a letter, digit or punctuation mark.
// Spaces are not typable.
func IsTypable(key string) bool {
	r, ok := singleRune(key)
	if !ok {
		return false
	}
	return unicode.IsLetter(r) || strings.ContainsRune(typableSymbols, r)
}

// IsSpace reports whether key is a literal space.
func IsSpace(key string) bool {
	return key == " "
}

func singleRune(key string) (rune, bool) {
	if key == "" || utf8.RuneCountInString(key) != 1 {
		return 0, false
	}
	r, _ := utf8.DecodeRuneInString(key)
	return r, true
}

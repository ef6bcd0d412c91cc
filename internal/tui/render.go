package tui

import (
	"strings"
)

const wrongSpace = "•"

// styleTarget renders each target rune according to what was typed at its position.
// Untyped runes of the word under the cursor are highlighted.
func styleTarget(target, input []rune) []string {
	cursor := len(input)
	wordStart, wordEnd := wordAround(target, cursor)

	out := make([]string, len(target))
	for i, r := range target {
		switch {
		case i < len(input) && r == ' ' && input[i] != ' ':
			out[i] = incorrectStyle.Render(wrongSpace)
		case i < len(input) && input[i] == r:
			out[i] = correctStyle.Render(string(r))
		case i < len(input):
			out[i] = incorrectStyle.Render(string(r))
		case i == cursor:
			style := pendingStyle
			if r != ' ' {
				style = currentWordStyle
			}
			out[i] = style.Underline(true).Render(string(r))
		case r != ' ' && i >= wordStart && i < wordEnd:
			out[i] = currentWordStyle.Render(string(r))
		default:
			out[i] = pendingStyle.Render(string(r))
		}
	}
	return out
}

// wordAround returns the bounds of the word containing pos, or of the next word
// when pos is on a space.
func wordAround(target []rune, pos int) (int, int) {
	if pos >= len(target) {
		return -1, -1
	}
	for pos < len(target) && target[pos] == ' ' {
		pos++
	}
	start := pos
	for start > 0 && target[start-1] != ' ' {
		start--
	}
	end := pos
	for end < len(target) && target[end] != ' ' {
		end++
	}
	return start, end
}

func renderTarget(target, input []rune) string {
	return strings.Join(styleTarget(target, input), "")
}

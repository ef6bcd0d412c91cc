package tui

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStyleTarget(t *testing.T) {
	target := []rune("ab cd ef")
	input := []rune("axxc")

	got := styleTarget(target, input)
	want := []string{
		correctStyle.Render("a"),
		incorrectStyle.Render("b"),
		incorrectStyle.Render(wrongSpace),
		correctStyle.Render("c"),
		currentWordStyle.Underline(true).Render("d"),
		pendingStyle.Render(" "),
		pendingStyle.Render("e"),
		pendingStyle.Render("f"),
	}
	assert.Equal(t, want, got)
}

func TestWordAround(t *testing.T) {
	target := []rune("ab cd  ef")
	cases := []struct {
		pos        int
		start, end int
	}{
		{pos: 0, start: 0, end: 2},
		{pos: 1, start: 0, end: 2},
		{pos: 2, start: 3, end: 5},
		{pos: 5, start: 7, end: 9},
		{pos: 9, start: -1, end: -1},
	}
	for _, tc := range cases {
		start, end := wordAround(target, tc.pos)
		assert.Equal(t, tc.start, start, "pos %d", tc.pos)
		assert.Equal(t, tc.end, end, "pos %d", tc.pos)
	}
}

package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildTarget(t *testing.T) {
	target := BuildTarget("Hello, World! ©2024")

	assert.Equal(t, []string{
		"h", "e", "l", "l", "o", ",", " ", "w", "o", "r", "l", "d", "!", " ", "2", "0", "2", "4",
	}, target.Chars)
	assert.Equal(t, []string{"hello", "world"}, target.Words)
}

func TestBuildTargetEmpty(t *testing.T) {
	target := BuildTarget("")
	assert.True(t, target.Empty())
	assert.Empty(t, target.Words)
	assert.False(t, target.HasLetters())
}

func TestBuildTargetWordsAreASCIIRuns(t *testing.T) {
	target := BuildTarget("well-known café")
	assert.Equal(t, []string{"well", "known", "caf"}, target.Words)
	assert.Contains(t, target.Chars, "é")
}

func TestKeyClassification(t *testing.T) {
	for _, key := range []string{"a", "Z", "é"} {
		assert.True(t, IsLetter(key), key)
		assert.True(t, IsTypable(key), key)
	}
	for _, key := range []string{"7", ".", "\\", "\""} {
		assert.False(t, IsLetter(key), key)
		assert.True(t, IsTypable(key), key)
	}
	for _, key := range []string{"", " ", "SHIFT", "ab", "\t", "©"} {
		assert.False(t, IsTypable(key), key)
	}
	assert.True(t, IsSpace(" "))
	assert.False(t, IsSpace("  "))
}

package export

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/keydyn/internal/model"
)

func TestWriteAll(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	paths, err := WriteAll(dir,
		[]model.BigramRecord{{Bigram: "th", IntervalMs: 100}, {Bigram: "o,", IntervalMs: 80}},
		[]model.WordRecord{{Word: "the", DurationMs: 200}},
		[]model.SentenceRecord{{Text: "the cat, again", DurationMs: 650}},
	)
	require.NoError(t, err)

	bigrams, err := os.ReadFile(paths.Bigrams)
	require.NoError(t, err)
	assert.Equal(t, "bigram,interkey_interval\nth,100\n\"o,\",80\n", string(bigrams))

	words, err := os.ReadFile(paths.Words)
	require.NoError(t, err)
	assert.Equal(t, "word,time\nthe,200\n", string(words))

	sentences, err := os.ReadFile(paths.Sentences)
	require.NoError(t, err)
	assert.Equal(t, "sentence,time\n\"the cat, again\",650\n", string(sentences))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 3, "temp files must not be left behind")
}

func TestWriteAllEmpty(t *testing.T) {
	paths, err := WriteAll(t.TempDir(), nil, nil, nil)
	require.NoError(t, err)
	data, err := os.ReadFile(paths.Words)
	require.NoError(t, err)
	assert.Equal(t, "word,time\n", string(data))
}

package corpus

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sentences.txt")
	content := "# comment\n  The cat sat.  \n\nGo on!\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	lines, err := LoadLines(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"The cat sat.", "Go on!"}, lines)
}

func TestLoadLinesEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.txt")
	require.NoError(t, os.WriteFile(path, []byte("\n# nothing\n"), 0o644))

	_, err := LoadLines(path)
	require.Error(t, err)

	_, err = LoadLines(filepath.Join(t.TempDir(), "absent.txt"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestDefaultIsCopy(t *testing.T) {
	a := Default()
	require.NotEmpty(t, a)
	a[0] = "changed"
	assert.NotEqual(t, "changed", Default()[0])
}

func TestASCIIPrintable(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{input: "hello world", want: true},
		{input: "It's 9:30.", want: true},
		{input: "", want: false},
		{input: "caf\u00e9 au lait", want: false},
		{input: "tab\tinside", want: false},
	}
	for _, tt := range tests {
		if got := ASCIIPrintable(tt.input); got != tt.want {
			t.Fatalf("ASCIIPrintable(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
	assert.Equal(t, []string{"ok"}, Filter([]string{"ok", "na\u00efve"}, ASCIIPrintable))
}

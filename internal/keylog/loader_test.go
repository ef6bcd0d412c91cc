package keylog

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/keydyn/internal/model"
)

const sampleLog = "PARTICIPANT_ID\tTEST_SECTION_ID\tSENTENCE\tUSER_INPUT\tKEYSTROKE_ID\tPRESS_TIME\tRELEASE_TIME\tLETTER\tKEYCODE\n" +
	"5\t10\tHi there\tHi there\t1\t1200\t1250\tSHIFT\t16\n" +
	"5\t10\tHi there\tHi there\t2\t1100\t1150\th\t72\n" +
	"5\t11\tno\tno\t3\t900\t950\tn\t78\n" +
	"5\t10\tHi there\tHi there\t4\tabc\t1400\ti\t73\n" +
	"5\t10\tHi there\tHi there\t5\t1100\t1420\t \t32\n" +
	"5\t11\tno\tno\t6\t1000\t1050\to\t79\n" +
	"5\t10\tHi there\n"

func TestReadGroupsAndOrders(t *testing.T) {
	log, err := Read(strings.NewReader(sampleLog), "sample")
	require.NoError(t, err)

	require.Len(t, log.Groups, 2)
	assert.Equal(t, model.SentenceID{Section: "10", Sentence: "Hi there"}, log.Groups[0].ID)
	assert.Equal(t, "Hi there", log.Groups[0].Target)
	assert.Equal(t, "no", log.Groups[1].Target)

	first := log.Groups[0].Events
	require.Len(t, first, 3)
	// Equal press times keep file order.
	assert.Equal(t, "h", first[0].Char)
	assert.Equal(t, " ", first[1].Char)
	assert.Equal(t, "SHIFT", first[2].Char)
	assert.Less(t, first[0].Seq, first[1].Seq)

	assert.Equal(t, 1, log.MalformedRows)
	assert.Equal(t, 1, log.ShortRows)
	assert.Equal(t, 5, log.Events)
}

func TestReadSameSentenceDifferentSections(t *testing.T) {
	data := "LETTER\tPRESS_TIME\tSENTENCE\tUSER_INPUT\tTEST_SECTION_ID\n" +
		"a\t1\tgo\tgo\t1\n" +
		"b\t2\tgo\tgo\t2\n"
	log, err := Read(strings.NewReader(data), "sections")
	require.NoError(t, err)
	assert.Len(t, log.Groups, 2)
}

func TestReadMissingColumn(t *testing.T) {
	data := "LETTER\tPRESS_TIME\tSENTENCE\tUSER_INPUT\na\t1\tgo\tgo\n"
	_, err := Read(strings.NewReader(data), "broken.txt")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingColumn))

	var colErr *ColumnError
	require.True(t, errors.As(err, &colErr))
	assert.Equal(t, ColSection, colErr.Column)
	assert.Contains(t, err.Error(), "broken.txt")
}

func TestReadEmpty(t *testing.T) {
	_, err := Read(strings.NewReader(""), "empty")
	require.Error(t, err)
}

func TestLoadFileMissing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "42_keystrokes.txt"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingFile))
}

func TestWriteRoundTrip(t *testing.T) {
	id := model.SentenceID{Section: "3", Sentence: `say "hi"`}
	events := []model.KeystrokeEvent{
		{Char: "s", PressTime: 10, Sentence: id, TargetText: id.Sentence, TypedText: `say "hi"`},
		{Char: " ", PressTime: 20, Sentence: id, TargetText: id.Sentence, TypedText: `say "hi"`},
		{Char: `"`, PressTime: 30, Sentence: id, TargetText: id.Sentence, TypedText: `say "hi"`},
	}
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, events))

	path := filepath.Join(t.TempDir(), Path("", "", 3))
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
	log, err := LoadFile(path)
	require.NoError(t, err)

	require.Len(t, log.Groups, 1)
	got := log.Groups[0].Events
	require.Len(t, got, 3)
	assert.Equal(t, []string{"s", " ", `"`}, []string{got[0].Char, got[1].Char, got[2].Char})
	assert.Equal(t, id, log.Groups[0].ID)
}

func TestPath(t *testing.T) {
	assert.Equal(t, filepath.Join("data", "17_keystrokes.txt"), Path("data", "", 17))
	assert.Equal(t, filepath.Join("data", "p17.tsv"), Path("data", "p%d.tsv", 17))
}

func TestReadDoubleQuoteKeystroke(t *testing.T) {
	data := "LETTER\tPRESS_TIME\tSENTENCE\tUSER_INPUT\tTEST_SECTION_ID\n" +
		"s\t100\tsay \"hi\"\tsay \"hi\"\t1\n" +
		"\"\t200\tsay \"hi\"\tsay \"hi\"\t1\n" +
		"h\t300\tsay \"hi\"\tsay \"hi\"\t1\n" +
		"i\t400\tsay \"hi\"\tsay \"hi\"\t1\n" +
		"\"\t500\tsay \"hi\"\tsay \"hi\"\t1\n"

	log, err := Read(strings.NewReader(data), "quotes")
	require.NoError(t, err)
	assert.Equal(t, 5, log.Events)
	assert.Zero(t, log.ShortRows)
	require.Len(t, log.Groups, 1)
	assert.Equal(t, `say "hi"`, log.Groups[0].Target)

	var chars []string
	for _, ev := range log.Groups[0].Events {
		chars = append(chars, ev.Char)
	}
	assert.Equal(t, []string{"s", `"`, "h", "i", `"`}, chars)
}

func TestWriteDoubleQuoteRoundTrip(t *testing.T) {
	id := model.SentenceID{Section: "3", Sentence: `a "b"`}
	events := []model.KeystrokeEvent{
		{Char: `"`, PressTime: 10, Sentence: id, TargetText: id.Sentence, TypedText: id.Sentence},
		{Char: "b", PressTime: 20, Sentence: id, TargetText: id.Sentence, TypedText: id.Sentence, Seq: 1},
	}
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, events))
	assert.Contains(t, buf.String(), "\"\t10\ta \"b\"\ta \"b\"\t3\n")

	log, err := Read(&buf, "roundtrip")
	require.NoError(t, err)
	require.Len(t, log.Groups, 1)
	assert.Equal(t, events, log.Groups[0].Events)
}

func TestTSVReaderCRLFAndBlankLines(t *testing.T) {
	reader := NewTSVReader(strings.NewReader("a\tb\r\n\r\n\nc\t\r\n"))
	row, err := reader.Read()
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, row)
	row, err = reader.Read()
	require.NoError(t, err)
	assert.Equal(t, []string{"c", ""}, row)
	assert.Equal(t, 4, reader.Line())
	_, err = reader.Read()
	assert.ErrorIs(t, err, io.EOF)
}

func TestTSVWriterRejectsDelimiters(t *testing.T) {
	writer := NewTSVWriter(io.Discard)
	err := writer.Write([]string{"ok", "tab\there"})
	assert.ErrorIs(t, err, ErrFieldDelimiter)
}

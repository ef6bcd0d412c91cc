package keylog

import (
	"io"
	"strconv"

	"github.com/verte-zerg/keydyn/internal/model"
)

// Write emits events as a tab-delimited keystroke log with a header row.
func Write(w io.Writer, events []model.KeystrokeEvent) error {
	writer := NewTSVWriter(w)
	if err := writer.Write(Columns); err != nil {
		return err
	}
	row := make([]string, len(Columns))
	for _, ev := range events {
		row[0] = ev.Char
		row[1] = strconv.FormatInt(ev.PressTime, 10)
		row[2] = ev.TargetText
		row[3] = ev.TypedText
		row[4] = ev.Sentence.Section
		if err := writer.Write(row); err != nil {
			return err
		}
	}
	return writer.Flush()
}

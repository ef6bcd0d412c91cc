package keylog

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

const maxLineBytes = 1 << 20

// ErrFieldDelimiter is returned when a field would split a TSV row.
var ErrFieldDelimiter = errors.New("field contains a tab or newline")

// TSVReader reads tab-delimited rows. Fields are never quoted, so a double
// quote is an ordinary character. Empty lines are skipped.
type TSVReader struct {
	scanner *bufio.Scanner
	line    int
}

// NewTSVReader wraps r.
func NewTSVReader(r io.Reader) *TSVReader {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	return &TSVReader{scanner: scanner}
}

// Read returns the next row, or io.EOF after the last one.
func (r *TSVReader) Read() ([]string, error) {
	for r.scanner.Scan() {
		r.line++
		line := strings.TrimSuffix(r.scanner.Text(), "\r")
		if line == "" {
			continue
		}
		return strings.Split(line, "\t"), nil
	}
	if err := r.scanner.Err(); err != nil {
		return nil, fmt.Errorf("line %d: %w", r.line+1, err)
	}
	return nil, io.EOF
}

// Line returns the number of the line most recently read.
func (r *TSVReader) Line() int {
	return r.line
}

// TSVWriter writes tab-delimited rows without quoting.
type TSVWriter struct {
	w *bufio.Writer
}

// NewTSVWriter wraps w. Call Flush when done.
func NewTSVWriter(w io.Writer) *TSVWriter {
	return &TSVWriter{w: bufio.NewWriter(w)}
}

// Write emits one row.
func (w *TSVWriter) Write(row []string) error {
	for _, field := range row {
		if strings.ContainsAny(field, "\t\r\n") {
			return fmt.Errorf("%w: %q", ErrFieldDelimiter, field)
		}
	}
	if _, err := w.w.WriteString(strings.Join(row, "\t")); err != nil {
		return err
	}
	return w.w.WriteByte('\n')
}

// Flush writes any buffered data.
func (w *TSVWriter) Flush() error {
	return w.w.Flush()
}

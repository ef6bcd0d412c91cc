package keylog

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingFile is returned when a participant's log cannot be located.
	ErrMissingFile = errors.New("keystroke log not found")
	// ErrMissingColumn is returned when a required header column is absent.
	ErrMissingColumn = errors.New("required column missing")
)

// ColumnError names the file and column that could not be found.
type ColumnError struct {
	Path   string
	Column string
}

func (e *ColumnError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: %s", ErrMissingColumn, e.Column)
	}
	return fmt.Sprintf("%s: %s in %s", ErrMissingColumn, e.Column, e.Path)
}

// Is reports ErrMissingColumn as a match.
func (e *ColumnError) Is(target error) bool {
	return target == ErrMissingColumn
}

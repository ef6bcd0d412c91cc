package keylog

import "strings"

// Header maps column names to indices.
type Header map[string]int

// NewHeader indexes a header row.
func NewHeader(row []string) Header {
	h := make(Header, len(row))
	for i, name := range row {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		if _, ok := h[name]; !ok {
			h[name] = i
		}
	}
	return h
}

// Require returns the indices of the named columns in order.
func (h Header) Require(path string, names ...string) ([]int, error) {
	idx := make([]int, len(names))
	for i, name := range names {
		col, ok := h[name]
		if !ok {
			return nil, &ColumnError{Path: path, Column: name}
		}
		idx[i] = col
	}
	return idx, nil
}

package participants

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/verte-zerg/keydyn/internal/keylog"
	"github.com/verte-zerg/keydyn/internal/model"
)

// Metadata columns used by Filter.
const (
	ColLayout       = "LAYOUT"
	ColFingers      = "FINGERS"
	ColKeyboardType = "KEYBOARD_TYPE"
	ColErrorRate    = "ERROR_RATE"
)

// DefaultCriteria keeps touch typists on full-size QWERTY keyboards with a
// low uncorrected error rate.
func DefaultCriteria() model.FilterCriteria {
	return model.FilterCriteria{
		Layouts:       []string{"qwerty"},
		Fingers:       []string{"7-8", "9-10"},
		KeyboardTypes: []string{"full", "laptop"},
		MaxErrorRate:  1.0,
	}
}

// Filter copies the header and every metadata row matching all criteria from r
// to w. Rows shorter than the header or with a non-numeric error rate are skipped.
func Filter(r io.Reader, w io.Writer, criteria model.FilterCriteria) (model.FilterBreakdown, error) {
	reader := keylog.NewTSVReader(r)
	header, err := reader.Read()
	if err != nil {
		return model.FilterBreakdown{}, fmt.Errorf("read metadata header: %w", err)
	}
	idx, err := keylog.NewHeader(header).Require("", ColLayout, ColFingers, ColKeyboardType, ColErrorRate)
	if err != nil {
		return model.FilterBreakdown{}, err
	}
	layoutIdx, fingersIdx, keyboardIdx, errorIdx := idx[0], idx[1], idx[2], idx[3]

	writer := keylog.NewTSVWriter(w)
	if err := writer.Write(header); err != nil {
		return model.FilterBreakdown{}, fmt.Errorf("write metadata header: %w", err)
	}

	layouts := toSet(criteria.Layouts, true)
	fingers := toSet(criteria.Fingers, false)
	keyboards := toSet(criteria.KeyboardTypes, true)

	var bd model.FilterBreakdown
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return bd, fmt.Errorf("read metadata: %w", err)
		}
		if len(row) < len(header) {
			continue
		}
		bd.Total++

		errorRate, err := strconv.ParseFloat(strings.TrimSpace(row[errorIdx]), 64)
		if err != nil {
			continue
		}
		layoutOK := contains(layouts, strings.ToLower(strings.TrimSpace(row[layoutIdx])))
		fingersOK := contains(fingers, strings.TrimSpace(row[fingersIdx]))
		keyboardOK := contains(keyboards, strings.ToLower(strings.TrimSpace(row[keyboardIdx])))
		errorOK := errorRate < criteria.MaxErrorRate

		if layoutOK {
			bd.Layout++
		}
		if fingersOK {
			bd.Fingers++
		}
		if keyboardOK {
			bd.KeyboardType++
		}
		if errorOK {
			bd.ErrorRate++
		}
		if layoutOK && fingersOK && keyboardOK && errorOK {
			if err := writer.Write(row); err != nil {
				return bd, fmt.Errorf("write metadata row: %w", err)
			}
			bd.Kept++
		}
	}
	if err := writer.Flush(); err != nil {
		return bd, fmt.Errorf("flush metadata: %w", err)
	}
	return bd, nil
}

func toSet(values []string, lower bool) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if lower {
			v = strings.ToLower(v)
		}
		if v == "" {
			continue
		}
		set[v] = struct{}{}
	}
	return set
}

func contains(set map[string]struct{}, v string) bool {
	_, ok := set[v]
	return ok
}

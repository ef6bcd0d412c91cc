package extract

import (
	"fmt"

	"github.com/verte-zerg/keydyn/internal/model"
)

// DefaultBounds excludes hardware bounce below 30ms and thinking pauses above 3s.
var DefaultBounds = model.Bounds{MinMs: 30, MaxMs: 3000}

// OutlierFilter accepts intervals within an inclusive window.
type OutlierFilter struct {
	bounds model.Bounds
}

// NewOutlierFilter returns a filter for the given bounds.
func NewOutlierFilter(bounds model.Bounds) OutlierFilter {
	return OutlierFilter{bounds: bounds}
}

// Accept reports whether ms lies within the window.
func (f OutlierFilter) Accept(ms int64) bool {
	return ms >= f.bounds.MinMs && ms <= f.bounds.MaxMs
}

// Bounds returns the configured window.
func (f OutlierFilter) Bounds() model.Bounds {
	return f.bounds
}

// ValidateBounds checks that a window is usable.
func ValidateBounds(b model.Bounds) error {
	if b.MinMs < 0 {
		return fmt.Errorf("minimum interval must be >= 0, got %d", b.MinMs)
	}
	if b.MaxMs < b.MinMs {
		return fmt.Errorf("maximum interval %d is below minimum %d", b.MaxMs, b.MinMs)
	}
	return nil
}

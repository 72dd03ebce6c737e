// Package category implements the deterministic size-class decision table.
// Classification scans a fixed constraint table smallest-first and returns
// the first category the known measurements fit; unknown measurements never
// disqualify a category.
package category

import (
	"fmt"
	"math"
	"strings"

	"github.com/stowage-labs/stowage/internal/model"
)

// Constraint holds the dimensional and weight limits for one category, in
// inches and pounds.
type Constraint struct {
	Category  model.Category
	MaxLength float64
	MaxWidth  float64
	MaxHeight float64
	MaxWeight float64
}

// Constraints is the decision table, ordered smallest to largest. The limits
// are monotonically non-decreasing in every field; OVERSIZED is unbounded and
// always fits, which makes Classify total.
var Constraints = []Constraint{
	{model.CategoryPouch, 12.0, 9.0, 2.0, 1.0},
	{model.CategorySmallBin, 12.0, 9.0, 6.0, 10.0},
	{model.CategoryTote, 18.0, 14.0, 12.0, 50.0},
	{model.CategoryCarton, 24.0, 18.0, 18.0, 70.0},
	{model.CategoryOversized, math.Inf(1), math.Inf(1), math.Inf(1), math.Inf(1)},
}

// Fits reports whether the given measurements fit within the constraint.
// A nil measurement means unknown and is treated as fitting.
func (c Constraint) Fits(length, width, height, weight *float64) bool {
	if c.Category == model.CategoryOversized {
		return true
	}
	if length != nil && *length > c.MaxLength {
		return false
	}
	if width != nil && *width > c.MaxWidth {
		return false
	}
	if height != nil && *height > c.MaxHeight {
		return false
	}
	if weight != nil && *weight > c.MaxWeight {
		return false
	}
	return true
}

// Classify returns the smallest category whose limits no provided measurement
// exceeds. It never fails: with no measurements at all the answer is POUCH,
// and OVERSIZED accepts anything.
func Classify(length, width, height, weight *float64) model.Category {
	for _, c := range Constraints {
		if c.Fits(length, width, height, weight) {
			return c.Category
		}
	}
	return model.CategoryOversized
}

// RejectionReasons explains, for every category strictly smaller than the
// selected one, which axes were exceeded and by how much. The selected
// category itself is never included. When multiple axes are exceeded for one
// category, all of them are reported.
func RejectionReasons(length, width, height, weight *float64) map[model.Category]string {
	reasons := make(map[model.Category]string)

	for _, c := range Constraints {
		if c.Fits(length, width, height, weight) {
			break
		}

		var exceeded []string
		if length != nil && *length > c.MaxLength {
			exceeded = append(exceeded, axisReason("length", *length, c.MaxLength))
		}
		if width != nil && *width > c.MaxWidth {
			exceeded = append(exceeded, axisReason("width", *width, c.MaxWidth))
		}
		if height != nil && *height > c.MaxHeight {
			exceeded = append(exceeded, axisReason("height", *height, c.MaxHeight))
		}
		if weight != nil && *weight > c.MaxWeight {
			exceeded = append(exceeded, fmt.Sprintf("weight %.1f lbs exceeds %.1f lbs limit by %.1f lbs",
				*weight, c.MaxWeight, *weight-c.MaxWeight))
		}

		if len(exceeded) > 0 {
			reasons[c.Category] = strings.Join(exceeded, "; ")
		}
	}

	return reasons
}

func axisReason(axis string, value, limit float64) string {
	return fmt.Sprintf("%s %.1f in exceeds %.1f in limit by %.1f in", axis, value, limit, value-limit)
}

// Package gpa computes a cumulative grade-point average from parsed course
// records. The computation is a pure weighted-average reduction; it never
// mutates its input and never fails on a malformed record.
package gpa

import (
	"math"

	"github.com/claude/gradepoint/internal/grades"
	"github.com/claude/gradepoint/internal/transcript"
)

// precisionDigits is the fixed display precision for the GPA.
const precisionDigits = 2

// Result is the outcome of a GPA calculation over one set of records.
//
// GPA is nil when no record was GPA-eligible; that is a different outcome
// from 0.00, which is a legitimate all-F average.
type Result struct {
	GPA            *float64 `json:"gpa"`
	UnitsAttempted float64  `json:"units_attempted"`
	QualityPoints  float64  `json:"quality_points"`
	EligibleCount  int      `json:"eligible_count"`

	// UnrecognizedGrades lists grade tokens that are neither in the grade
	// table nor in the exclusion set. Such records contribute nothing, but
	// they usually indicate a parse problem and are surfaced separately
	// from legitimate exclusions.
	UnrecognizedGrades []string `json:"unrecognized_grades,omitempty"`
}

// Calculate computes the cumulative GPA over the given records.
//
// Records whose grade is absent or in the exclusion set contribute zero to
// both accumulators. An unrecognized grade token also contributes zero and
// is reported in UnrecognizedGrades. Zero-unit records are skipped.
func Calculate(courses []transcript.Course) Result {
	var res Result

	for _, c := range courses {
		if c.Grade == "" || grades.NonGPA[c.Grade] {
			continue
		}
		points, ok := grades.PointsFor(c.Grade)
		if !ok {
			res.UnrecognizedGrades = append(res.UnrecognizedGrades, c.Grade)
			continue
		}
		if c.Units <= 0 {
			continue
		}
		res.QualityPoints += c.Units * points
		res.UnitsAttempted += c.Units
		res.EligibleCount++
	}

	if res.UnitsAttempted > 0 {
		g := round(res.QualityPoints/res.UnitsAttempted, precisionDigits)
		res.GPA = &g
	}
	return res
}

// round rounds half away from zero to the given number of decimal digits.
func round(v float64, digits int) float64 {
	shift := math.Pow(10, float64(digits))
	return math.Round(v*shift) / shift
}

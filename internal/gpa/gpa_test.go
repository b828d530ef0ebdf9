package gpa

import (
	"math"
	"testing"

	"github.com/claude/gradepoint/internal/transcript"
)

func course(grade string, units float64) transcript.Course {
	return transcript.Course{
		Subject: "CS",
		Number:  "110",
		Title:   "Test Course",
		Grade:   grade,
		Units:   units,
		Source:  transcript.SourceInstitution,
	}
}

// TestCalculateWeightedAverage verifies the worked example: 4 units of A and
// 3 units of B+ give 25.9 quality points over 7 units, GPA 3.70.
func TestCalculateWeightedAverage(t *testing.T) {
	res := Calculate([]transcript.Course{
		course("A", 4.0),
		course("B+", 3.0),
	})

	if math.Abs(res.QualityPoints-25.9) > 1e-9 {
		t.Errorf("quality points = %v, want 25.9", res.QualityPoints)
	}
	if res.UnitsAttempted != 7.0 {
		t.Errorf("units attempted = %v, want 7", res.UnitsAttempted)
	}
	if res.GPA == nil {
		t.Fatal("gpa = nil, want 3.70")
	}
	if math.Abs(*res.GPA-3.70) > 1e-9 {
		t.Errorf("gpa = %v, want 3.70", *res.GPA)
	}
	if res.EligibleCount != 2 {
		t.Errorf("eligible count = %d, want 2", res.EligibleCount)
	}
}

// TestCalculateExclusions verifies every non-GPA marker contributes zero
// quality points and zero attempted units.
func TestCalculateExclusions(t *testing.T) {
	for _, g := range []string{"P", "S", "U", "I", "IP", "W", "NR", "AU", "TCR", "NG"} {
		res := Calculate([]transcript.Course{course(g, 4.0)})
		if res.QualityPoints != 0 {
			t.Errorf("grade %s: quality points = %v, want 0", g, res.QualityPoints)
		}
		if res.UnitsAttempted != 0 {
			t.Errorf("grade %s: units attempted = %v, want 0", g, res.UnitsAttempted)
		}
		if len(res.UnrecognizedGrades) != 0 {
			t.Errorf("grade %s wrongly reported as unrecognized", g)
		}
	}
}

// TestCalculateZeroEligible verifies that an all-excluded record set yields a
// nil GPA, which is distinct from a GPA of 0.00.
func TestCalculateZeroEligible(t *testing.T) {
	res := Calculate([]transcript.Course{
		course("P", 4.0),
		course("IP", 4.0),
		course("", 4.0),
	})
	if res.GPA != nil {
		t.Errorf("gpa = %v, want nil", *res.GPA)
	}
	if res.UnitsAttempted != 0 {
		t.Errorf("units attempted = %v, want 0", res.UnitsAttempted)
	}
}

// TestCalculateAllF verifies that all-F records produce a real 0.00 GPA, not
// the nil no-eligible-units outcome.
func TestCalculateAllF(t *testing.T) {
	res := Calculate([]transcript.Course{
		course("F", 4.0),
		course("F", 3.0),
	})
	if res.GPA == nil {
		t.Fatal("gpa = nil, want 0.00")
	}
	if *res.GPA != 0.0 {
		t.Errorf("gpa = %v, want 0.00", *res.GPA)
	}
	if res.UnitsAttempted != 7.0 {
		t.Errorf("units attempted = %v, want 7", res.UnitsAttempted)
	}
}

// TestCalculateUnrecognizedGrade verifies that an unknown grade token is
// excluded from the aggregate and surfaced as a warning, not conflated with
// valid exclusions.
func TestCalculateUnrecognizedGrade(t *testing.T) {
	res := Calculate([]transcript.Course{
		course("X", 4.0),
		course("A", 4.0),
	})
	if res.UnitsAttempted != 4.0 {
		t.Errorf("units attempted = %v, want 4", res.UnitsAttempted)
	}
	if len(res.UnrecognizedGrades) != 1 || res.UnrecognizedGrades[0] != "X" {
		t.Errorf("unrecognized = %v, want [X]", res.UnrecognizedGrades)
	}
	if res.GPA == nil || *res.GPA != 4.0 {
		t.Errorf("gpa = %v, want 4.00", res.GPA)
	}
}

// TestCalculateSurfacesParsedUnknownGrade verifies the parse-then-calculate
// path end to end: a transcript line with an out-of-domain grade token comes
// through the parser with that grade and lands in UnrecognizedGrades.
func TestCalculateSurfacesParsedUnknownGrade(t *testing.T) {
	text := `INSTITUTION CREDIT
CS 110 UG Intro to Computer Science X 4.000 16.000
MATH 201 UG Discrete Mathematics B+ 3.000 9.900
`
	parsed, err := transcript.Parse(text)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if len(parsed.Courses) != 2 {
		t.Fatalf("courses = %d, want 2", len(parsed.Courses))
	}

	res := Calculate(parsed.Courses)
	if len(res.UnrecognizedGrades) != 1 || res.UnrecognizedGrades[0] != "X" {
		t.Fatalf("unrecognized = %v, want [X]", res.UnrecognizedGrades)
	}
	if res.UnitsAttempted != 3.0 {
		t.Errorf("units attempted = %v, want 3", res.UnitsAttempted)
	}
	if res.GPA == nil || math.Abs(*res.GPA-3.30) > 1e-9 {
		t.Errorf("gpa = %v, want 3.30", res.GPA)
	}
}

// TestCalculateEmpty verifies the degenerate empty input.
func TestCalculateEmpty(t *testing.T) {
	res := Calculate(nil)
	if res.GPA != nil {
		t.Error("gpa should be nil for empty input")
	}
	if res.QualityPoints != 0 || res.UnitsAttempted != 0 || res.EligibleCount != 0 {
		t.Errorf("empty input produced non-zero aggregates: %+v", res)
	}
}

// TestCalculateZeroUnits verifies zero-unit records are skipped entirely.
func TestCalculateZeroUnits(t *testing.T) {
	res := Calculate([]transcript.Course{
		course("A", 0),
		course("B", 4.0),
	})
	if res.UnitsAttempted != 4.0 {
		t.Errorf("units attempted = %v, want 4", res.UnitsAttempted)
	}
	if res.GPA == nil || *res.GPA != 3.0 {
		t.Errorf("gpa = %v, want 3.00", res.GPA)
	}
	if res.EligibleCount != 1 {
		t.Errorf("eligible count = %d, want 1", res.EligibleCount)
	}
}

// TestCalculateRounding verifies half-away-from-zero rounding at two digits.
func TestCalculateRounding(t *testing.T) {
	// 3 units of B- (2.7) and 3 units of B+ (3.3): 18.0 / 6 = 3.00 exactly.
	res := Calculate([]transcript.Course{
		course("B-", 3.0),
		course("B+", 3.0),
	})
	if res.GPA == nil || *res.GPA != 3.00 {
		t.Errorf("gpa = %v, want 3.00", res.GPA)
	}

	// 1 unit A, 2 units C+: (4.0 + 4.6) / 3 = 2.8666... -> 2.87.
	res = Calculate([]transcript.Course{
		course("A", 1.0),
		course("C+", 2.0),
	})
	if res.GPA == nil || math.Abs(*res.GPA-2.87) > 1e-9 {
		t.Errorf("gpa = %v, want 2.87", res.GPA)
	}
}
